package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogMailer_RedactsTokens(t *testing.T) {
	const link = "https://auth.example.com/auth/activate?token=s3cr3t-token&lang=en"

	var buf bytes.Buffer
	m := LogMailer{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, m.SendActivation(context.Background(), "alice@example.com", link))
	require.NoError(t, m.SendPasswordReset(context.Background(), "alice@example.com", link))

	out := buf.String()
	require.NotContains(t, out, "s3cr3t-token")
	require.Contains(t, out, "token=REDACTED")
	require.Contains(t, out, "lang=en")
	require.Contains(t, out, "alice@example.com")
}

func TestLogMailer_RevealLinks(t *testing.T) {
	const link = "https://auth.example.com/auth/reset-password?token=s3cr3t-token"

	var buf bytes.Buffer
	m := LogMailer{Logger: slog.New(slog.NewJSONHandler(&buf, nil)), RevealLinks: true}

	require.NoError(t, m.SendPasswordReset(context.Background(), "alice@example.com", link))
	require.Contains(t, buf.String(), "s3cr3t-token")
}

func TestRedactToken(t *testing.T) {
	require.Equal(t, "https://x.test/a?token=REDACTED", redactToken("https://x.test/a?token=abc"))
	require.Equal(t, "https://x.test/a", redactToken("https://x.test/a"))
	require.Equal(t, "[redacted]", redactToken("http://[::1"))
}
