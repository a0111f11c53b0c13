package service

import (
	"context"
	"log/slog"
	"net/url"
)

// Mailer delivers account emails. Delivery mechanics live outside this
// service; anything that can send a link will do.
type Mailer interface {
	SendActivation(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

// LogMailer writes the message to the log instead of sending it. Links carry
// live single-use tokens, so the token is redacted unless RevealLinks is set;
// only development setups should set it.
type LogMailer struct {
	Logger      *slog.Logger
	RevealLinks bool
}

func (m LogMailer) SendActivation(ctx context.Context, to, link string) error {
	m.logger().InfoContext(ctx, "activation email", slog.String("to", to), slog.String("link", m.render(link)))
	return nil
}

func (m LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.logger().InfoContext(ctx, "password reset email", slog.String("to", to), slog.String("link", m.render(link)))
	return nil
}

func (m LogMailer) render(link string) string {
	if m.RevealLinks {
		return link
	}
	return redactToken(link)
}

// redactToken blanks the token query parameter. Anything that does not parse
// as a URL is dropped entirely.
func redactToken(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "[redacted]"
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (m LogMailer) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
