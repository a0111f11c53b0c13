package service

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse battery"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "gatekeeper-service")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type captureMailer struct {
	mu    sync.Mutex
	links map[string][]string
}

func (m *captureMailer) SendActivation(_ context.Context, to, link string) error {
	m.add("activation:"+to, link)
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.add("reset:"+to, link)
	return nil
}

func (m *captureMailer) add(key, link string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links == nil {
		m.links = map[string][]string{}
	}
	m.links[key] = append(m.links[key], link)
}

// lastToken pulls the token query parameter out of the latest link.
func (m *captureMailer) lastToken(t *testing.T, key string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	links := m.links[key]
	require.NotEmpty(t, links, "no mail for %s", key)
	u, err := url.Parse(links[len(links)-1])
	require.NoError(t, err)
	return u.Query().Get("token")
}

func (m *captureMailer) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links[key])
}

type harness struct {
	store     *sqlite.Store
	keys      *jwtx.KeyManager
	mailer    *captureMailer
	sessions  *SessionService
	twoFactor *TwoFactorService
	login     *LoginService
	accounts  *AccountService
	admin     *AdminService
	oauth     *OAuthService

	now time.Time // TOTP clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	keys, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "gatekeeper-test", NumKeys: 2})
	require.NoError(t, err)

	h := &harness{store: st, keys: keys, mailer: &captureMailer{}, now: time.Now()}

	h.sessions = &SessionService{Store: st}
	h.twoFactor = &TwoFactorService{Store: st, Issuer: "Gatekeeper", Now: func() time.Time { return h.now }}
	h.login = &LoginService{
		Store:     st,
		Sessions:  h.sessions,
		TwoFactor: h.twoFactor,
		Keys:      keys,
		Attempts:  sqlite.NewAttemptCounter(st, 15*time.Minute),
	}
	h.accounts = &AccountService{
		Store:     st,
		Tokens:    &TokenIssuer{Store: st},
		Sessions:  h.sessions,
		Mailer:    h.mailer,
		PublicURL: "https://auth.example.com",
	}
	h.admin = &AdminService{Store: st, Sessions: h.sessions}
	h.oauth = &OAuthService{Store: st, Login: h.login, Keys: keys, Providers: map[string]Provider{}}
	return h
}

var device = domain.DeviceInfo{
	UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
	IP:        "203.0.113.7",
}

// createUser inserts an active standard user with testPassword.
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

// enableTwoFactor runs setup and confirm and returns the secret and the
// recovery codes.
func (h *harness) enableTwoFactor(t *testing.T, u domain.User) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := h.twoFactor.StartSetup(ctx, u.ID, u.Email)
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, h.now)
	require.NoError(t, err)

	codes, err := h.twoFactor.ConfirmSetup(ctx, u.ID, code, device)
	require.NoError(t, err)
	return setup.Secret, codes
}

// nextCode moves the TOTP clock one step on and returns the code for it.
func (h *harness) nextCode(t *testing.T, secret string) string {
	t.Helper()
	h.now = h.now.Add(30 * time.Second)
	code, err := totp.GenerateCode(secret, h.now)
	require.NoError(t, err)
	return code
}

func (h *harness) passwordLogin(t *testing.T, email string) domain.Authenticated {
	t.Helper()
	res, err := h.login.Login(context.Background(), email, testPassword, device)
	require.NoError(t, err)
	auth, ok := res.(domain.Authenticated)
	require.True(t, ok, "expected Authenticated, got %T", res)
	return auth
}

func (h *harness) ticketFor(t *testing.T, email string) domain.AwaitingSecondFactor {
	t.Helper()
	res, err := h.login.Login(context.Background(), email, testPassword, device)
	require.NoError(t, err)
	step, ok := res.(domain.AwaitingSecondFactor)
	require.True(t, ok, "expected AwaitingSecondFactor, got %T", res)
	return step
}

func adminActor(u domain.User, sessionID string) Actor {
	return Actor{
		UserID:      u.ID,
		SessionID:   sessionID,
		Permissions: domain.ResolvePermissions(u),
		Device:      device,
	}
}

// failingActivity breaks activity reads to exercise the degraded admin view.
type failingActivity struct {
	store.Store
}

func (f failingActivity) Activity() store.Activity { return brokenActivity{} }

type brokenActivity struct{}

func (brokenActivity) Record(context.Context, domain.Activity) error { return nil }
func (brokenActivity) ListForSubject(context.Context, string, int) ([]domain.Activity, error) {
	return nil, os.ErrDeadlineExceeded
}
