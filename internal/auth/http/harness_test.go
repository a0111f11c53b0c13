package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/gatekeeper/internal/auth/http"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	testPassword   = "correct horse battery"
	bootstrapToken = "test-bootstrap-token"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "gatekeeper-http")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	// Every request in these tests comes from 127.0.0.1.
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type captureMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *captureMailer) SendActivation(_ context.Context, to, link string) error {
	m.set("activation:"+to, link)
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.set("reset:"+to, link)
	return nil
}

func (m *captureMailer) set(key, link string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links == nil {
		m.links = map[string]string{}
	}
	m.links[key] = link
}

func (m *captureMailer) token(t *testing.T, key string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[key]
	require.True(t, ok, "no mail for %s", key)
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

// fakeProvider stands in for an identity provider. Exchange only accepts
// the code "good".
type fakeProvider struct {
	claims domain.OAuthClaims
}

func (p *fakeProvider) Name() string { return p.claims.Provider }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (domain.OAuthClaims, error) {
	if code != "good" {
		return domain.OAuthClaims{}, service.ErrOAuthExchange
	}
	return p.claims, nil
}

type harness struct {
	store    *sqlite.Store
	mailer   *captureMailer
	provider *fakeProvider
	server   *httptest.Server
	client   *authsdk.SDKClient

	now time.Time // TOTP clock
}

func newHarness(t *testing.T, tweak ...func(*authhttp.Router)) *harness {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	keys, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "gatekeeper-test", NumKeys: 1})
	require.NoError(t, err)

	h := &harness{
		store:    st,
		mailer:   &captureMailer{},
		provider: &fakeProvider{claims: domain.OAuthClaims{Provider: "idp"}},
		now:      time.Now(),
	}

	sessions := &service.SessionService{Store: st}
	twoFactor := &service.TwoFactorService{Store: st, Issuer: "Gatekeeper", Now: func() time.Time { return h.now }}
	login := &service.LoginService{
		Store:     st,
		Sessions:  sessions,
		TwoFactor: twoFactor,
		Keys:      keys,
		Attempts:  sqlite.NewAttemptCounter(st, 15*time.Minute),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := authhttp.NewRouter(keys, "test", st, authhttp.Cookies{Secure: false}, logger)
	r.SessionService = sessions
	r.LoginService = login
	r.TwoFactorService = twoFactor
	r.AccountService = &service.AccountService{
		Store:     st,
		Tokens:    &service.TokenIssuer{Store: st},
		Sessions:  sessions,
		Mailer:    h.mailer,
		PublicURL: "https://auth.example.com",
	}
	r.AdminService = &service.AdminService{Store: st, Sessions: sessions}
	r.OAuthService = &service.OAuthService{
		Store:     st,
		Login:     login,
		Keys:      keys,
		Providers: map[string]service.Provider{"idp": h.provider},
	}
	r.BootstrapService = &service.BootstrapService{Store: st, Token: bootstrapToken}
	for _, fn := range tweak {
		fn(r)
	}
	r.ApplyRoutes()

	h.server = httptest.NewServer(r)
	t.Cleanup(h.server.Close)
	h.client = authsdk.NewSDKClient(h.server.URL)
	return h
}

// createUser inserts an active user with testPassword.
func (h *harness) createUser(t *testing.T, email string, mutate ...func(*domain.User)) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleStandardUser,
		Status:       domain.StatusActive,
	}
	for _, fn := range mutate {
		fn(&u)
	}
	require.NoError(t, h.store.Users().CreateUser(context.Background(), u))
	return u
}

func (h *harness) login(t *testing.T, email string) *authsdk.Session {
	t.Helper()
	sess, challenge, err := h.client.Login(context.Background(), email, testPassword)
	require.NoError(t, err)
	require.Nil(t, challenge)
	require.NotNil(t, sess)
	return sess
}

// founder bootstraps the service and logs the founder in.
func (h *harness) founder(t *testing.T) (*authsdk.Session, string) {
	t.Helper()
	u, err := h.client.Bootstrap(context.Background(), bootstrapToken, authsdk.BootstrapRequest{
		Email:    "founder@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	return h.login(t, "founder@example.com"), u.ID
}

// code returns a TOTP code one step after the last one handed out.
func (h *harness) code(t *testing.T, secret string) string {
	t.Helper()
	h.now = h.now.Add(30 * time.Second)
	c, err := totp.GenerateCode(secret, h.now)
	require.NoError(t, err)
	return c
}

// rawClient keeps cookies and does not follow redirects.
func (h *harness) rawClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// brokenActivityStore fails activity reads so admin views degrade.
type brokenActivityStore struct {
	store.Store
}

func (b brokenActivityStore) Activity() store.Activity { return brokenActivity{} }

type brokenActivity struct{}

func (brokenActivity) Record(context.Context, domain.Activity) error { return nil }
func (brokenActivity) ListForSubject(context.Context, string, int) ([]domain.Activity, error) {
	return nil, context.DeadlineExceeded
}
