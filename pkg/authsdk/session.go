package authsdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// Session is an authenticated handle on the service. It caches the
// principal returned by Me; the cache is dropped on logout and on any 401,
// and a new Session always starts empty.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	principal *Principal

	// flags is the last known flag state per user, as seen through the admin
	// views. SetFeatureFlag updates it optimistically.
	flags map[string]map[string]bool
}

func newSession(client *SDKClient, token string) *Session {
	return &Session{
		client: client,
		token:  token,
		flags:  make(map[string]map[string]bool),
	}
}

// Token returns the opaque session token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Invalidate drops the cached principal so the next Me asks the server.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.principal = nil
	s.mu.Unlock()
}

// doAuthRequest performs a request with the session token. A 401 means the
// session is gone, so the principal cache goes with it.
func (s *Session) doAuthRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrUnauthenticated
	}

	resp, err := s.client.doRequest(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		s.Invalidate()
	}
	return resp, nil
}

// Me returns the signed-in principal, from cache when possible.
func (s *Session) Me(ctx context.Context) (*Principal, error) {
	s.mu.RLock()
	if p := s.principal; p != nil {
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	p, err := decodeData[Principal](resp)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.principal = &p
	s.mu.Unlock()
	return &p, nil
}

// Logout ends the session on the server. The local state is cleared even
// when the server already considered the session dead.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	err = checkOK(resp)

	s.mu.Lock()
	s.principal = nil
	s.token = ""
	s.mu.Unlock()

	if errors.Is(err, ErrUnauthenticated) {
		return nil
	}
	return err
}
