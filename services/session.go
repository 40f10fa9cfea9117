package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"devquest-hub/models"
	"devquest-hub/store"
)

// ErrNoUsernameClaim means the identity metadata carries no username, so no
// profile can be resolved. The session fails closed to profile=nil.
var ErrNoUsernameClaim = errors.New("identity has no username claim")

// resolveTimeout bounds one profile resolution round-trip.
const resolveTimeout = 15 * time.Second

// SessionManager owns the (Identity, Profile|nil, loading) triple for the
// signed-in session. Every auth-state change atomically replaces the
// identity and restarts profile resolution; a generation counter guards
// against a slow resolution for a superseded identity writing state after a
// newer one landed.
type SessionManager struct {
	auth  AuthProvider
	store store.Store

	mu       sync.Mutex
	identity *models.Identity
	profile  *models.User
	loading  bool
	gen      uint64
	cancel   context.CancelFunc
	unsub    func()
}

func NewSessionManager(auth AuthProvider, st store.Store) *SessionManager {
	return &SessionManager{auth: auth, store: st}
}

// Start primes state from the provider's current session, then subscribes
// to auth-state changes for the remaining lifetime of the process.
func (m *SessionManager) Start(ctx context.Context) {
	session, err := m.auth.GetSession(ctx)
	if err != nil {
		log.Printf("⚠️ [SESSION] initial session lookup failed: %v", err)
		session = nil
	}
	m.applySession(session)

	m.unsub = m.auth.OnAuthStateChange(func(event string, session *models.Session) {
		log.Printf("👤 [SESSION] auth state change: %s", event)
		m.applySession(session)
	})
}

// Close unsubscribes from auth changes and abandons any in-flight
// resolution.
func (m *SessionManager) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Snapshot returns the current triple. Loading is true for the whole span
// between a state-changing trigger and its terminal state.
func (m *SessionManager) Snapshot() (identity *models.Identity, profile *models.User, loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity, m.profile, m.loading
}

// SignIn returns the provider's OAuth redirect URL. The actual transition
// is driven by the auth-state change that follows the provider callback.
func (m *SessionManager) SignIn(provider, redirectTo string) (string, error) {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	target, err := m.auth.SignInWithOAuth(provider, redirectTo)
	if err != nil {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
		log.Printf("❌ [SESSION] sign-in redirect failed: %v", err)
		return "", err
	}
	return target, nil
}

// SignOut clears identity and profile synchronously, no matter what is in
// flight; the generation bump makes any pending resolution stale.
func (m *SessionManager) SignOut(ctx context.Context) error {
	err := m.auth.SignOut(ctx)
	if err != nil {
		log.Printf("⚠️ [SESSION] provider sign-out failed: %v", err)
	}
	// The provider's SIGNED_OUT notification normally clears state via the
	// subscription; apply directly as well so the clear is synchronous even
	// if the notification is delayed.
	m.applySession(nil)
	return err
}

// applySession atomically replaces the identity and restarts profile
// resolution. Called for the initial session and for every auth-state
// notification, in delivery order.
func (m *SessionManager) applySession(session *models.Session) {
	m.mu.Lock()

	m.gen++
	gen := m.gen
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if session == nil {
		m.identity = nil
		m.profile = nil
		m.loading = false
		m.mu.Unlock()
		return
	}

	identity := session.User
	m.identity = &identity
	m.profile = nil
	m.loading = true

	rctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	m.cancel = cancel
	m.mu.Unlock()

	go func() {
		defer cancel()
		profile, err := ResolveProfile(rctx, m.store, identity)
		if err != nil && !errors.Is(err, ErrNoUsernameClaim) {
			log.Printf("❌ [SESSION] profile resolution failed for %s: %v", identity.ID, err)
		}
		m.finishResolution(gen, profile)
	}()
}

// finishResolution lands a resolution result unless a newer identity change
// made it stale.
func (m *SessionManager) finishResolution(gen uint64, profile *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		// Superseded while in flight; drop the result.
		return
	}
	m.profile = profile
	m.loading = false
}

// ResolveProfile finds the profile for an identity, creating it on first
// sign-in. Creation is idempotent: a duplicate-key failure means a
// concurrent creation won the race, so the existing row is re-fetched and
// returned instead of an error.
func ResolveProfile(ctx context.Context, st store.Store, identity models.Identity) (*models.User, error) {
	username := identity.GithubUsername()
	if username == "" {
		return nil, ErrNoUsernameClaim
	}

	profile, err := st.GetUserProfile(ctx, username)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var avatarURL *string
	if identity.Metadata.AvatarURL != "" {
		avatar := identity.Metadata.AvatarURL
		avatarURL = &avatar
	}

	created, err := st.CreateUser(ctx, identity.ID, username, avatarURL)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, store.ErrDuplicateKey) {
		return st.GetUserProfile(ctx, username)
	}
	return nil, err
}
