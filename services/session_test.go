package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"devquest-hub/models"
	"devquest-hub/store"
)

const (
	idAlice = "11111111-1111-1111-1111-111111111111"
	idBob   = "22222222-2222-2222-2222-222222222222"
)

// fakeAuth is an in-memory AuthProvider whose notifications tests trigger
// directly.
type fakeAuth struct {
	mu      sync.Mutex
	session *models.Session
	subs    []func(event string, session *models.Session)
}

func (f *fakeAuth) GetSession(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeAuth) OnAuthStateChange(fn func(event string, session *models.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeAuth) SignInWithOAuth(provider, redirectTo string) (string, error) {
	return "https://auth.example/authorize?provider=" + provider, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error { return nil }

func (f *fakeAuth) emit(event string, session *models.Session) {
	f.mu.Lock()
	subs := append([]func(string, *models.Session){}, f.subs...)
	f.session = session
	f.mu.Unlock()
	for _, fn := range subs {
		fn(event, session)
	}
}

// fakeStore overrides the profile operations; everything else inherits the
// null store's empty behavior.
type fakeStore struct {
	store.NullStore

	mu          sync.Mutex
	profiles    map[string]*models.User // by github username
	createErr   error
	createCalls int

	// missFirstLookup makes the first profile lookup miss even when the
	// row exists, to exercise the lost-creation-race path.
	missFirstLookup bool

	// blocks, when set for a username, stalls its profile lookup until the
	// channel is closed.
	blocks map[string]chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[string]*models.User{},
		blocks:   map[string]chan struct{}{},
	}
}

func (f *fakeStore) GetUserProfile(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	gate := f.blocks[username]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missFirstLookup {
		f.missFirstLookup = false
		return nil, store.ErrNotFound
	}
	if p, ok := f.profiles[username]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateUser(ctx context.Context, id, username string, avatarURL *string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	user := &models.User{ID: id, GithubUsername: username, AvatarURL: avatarURL}
	f.profiles[username] = user
	copied := *user
	return &copied, nil
}

func sessionFor(id, username string) *models.Session {
	return &models.Session{
		AccessToken: "token-" + username,
		User: models.Identity{
			ID:       id,
			Metadata: models.IdentityMetadata{UserName: username, AvatarURL: "https://avatars.example/" + username},
		},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartWithoutSession(t *testing.T) {
	m := NewSessionManager(&fakeAuth{}, newFakeStore())
	m.Start(context.Background())
	defer m.Close()

	identity, profile, loading := m.Snapshot()
	if identity != nil || profile != nil || loading {
		t.Fatalf("want unauthenticated idle state, got (%v, %v, %v)", identity, profile, loading)
	}
}

func TestStartWithExistingSessionAndProfile(t *testing.T) {
	auth := &fakeAuth{session: sessionFor(idAlice, "alice")}
	st := newFakeStore()
	st.profiles["alice"] = &models.User{ID: idAlice, GithubUsername: "alice", XP: 400}

	m := NewSessionManager(auth, st)
	m.Start(context.Background())
	defer m.Close()

	waitFor(t, func() bool {
		_, profile, loading := m.Snapshot()
		return !loading && profile != nil
	})
	_, profile, _ := m.Snapshot()
	if profile.ID != idAlice || profile.XP != 400 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestFirstSignInCreatesProfile(t *testing.T) {
	auth := &fakeAuth{}
	st := newFakeStore()

	m := NewSessionManager(auth, st)
	m.Start(context.Background())
	defer m.Close()

	auth.emit(AuthEventSignedIn, sessionFor(idAlice, "alice"))

	waitFor(t, func() bool {
		_, profile, loading := m.Snapshot()
		return !loading && profile != nil
	})
	_, profile, _ := m.Snapshot()
	if profile.ID != idAlice {
		t.Fatalf("profile id %s, want identity id %s", profile.ID, idAlice)
	}
	if st.createCalls != 1 {
		t.Fatalf("createCalls=%d, want 1", st.createCalls)
	}
}

func TestDuplicateKeyCreationRecoversByRefetch(t *testing.T) {
	auth := &fakeAuth{}
	st := newFakeStore()
	// The first lookup misses, creation loses the race, and the re-fetch
	// finds the winner's row.
	st.createErr = store.ErrDuplicateKey
	st.profiles["alice"] = &models.User{ID: idAlice, GithubUsername: "alice"}
	st.missFirstLookup = true

	m := NewSessionManager(auth, st)
	m.Start(context.Background())
	defer m.Close()

	auth.emit(AuthEventSignedIn, sessionFor(idAlice, "alice"))

	waitFor(t, func() bool {
		_, profile, loading := m.Snapshot()
		return !loading && profile != nil
	})
	_, profile, _ := m.Snapshot()
	if profile.ID != idAlice {
		t.Fatalf("recovered profile id %s, want %s", profile.ID, idAlice)
	}
}

func TestMissingUsernameFailsClosed(t *testing.T) {
	auth := &fakeAuth{}
	st := newFakeStore()

	m := NewSessionManager(auth, st)
	m.Start(context.Background())
	defer m.Close()

	auth.emit(AuthEventSignedIn, &models.Session{
		AccessToken: "t",
		User:        models.Identity{ID: idAlice},
	})

	waitFor(t, func() bool {
		_, _, loading := m.Snapshot()
		return !loading
	})
	identity, profile, _ := m.Snapshot()
	if identity == nil {
		t.Fatal("identity should survive a failed resolution")
	}
	if profile != nil {
		t.Fatalf("profile should be nil without a username claim, got %+v", profile)
	}
	if st.createCalls != 0 {
		t.Fatalf("createCalls=%d, want 0", st.createCalls)
	}
}

func TestStaleResolutionIsDiscarded(t *testing.T) {
	auth := &fakeAuth{}
	st := newFakeStore()
	st.profiles["alice"] = &models.User{ID: idAlice, GithubUsername: "alice"}
	st.profiles["bob"] = &models.User{ID: idBob, GithubUsername: "bob"}
	gate := make(chan struct{})
	st.blocks["alice"] = gate

	m := NewSessionManager(auth, st)
	m.Start(context.Background())
	defer m.Close()

	// Alice's resolution stalls in flight; Bob signs in and lands first.
	auth.emit(AuthEventSignedIn, sessionFor(idAlice, "alice"))
	auth.emit(AuthEventSignedIn, sessionFor(idBob, "bob"))

	waitFor(t, func() bool {
		_, profile, loading := m.Snapshot()
		return !loading && profile != nil && profile.ID == idBob
	})

	// Releasing Alice's stale resolution must not overwrite Bob.
	close(gate)
	time.Sleep(50 * time.Millisecond)
	identity, profile, loading := m.Snapshot()
	if loading {
		t.Fatal("loading should stay false after a stale result is dropped")
	}
	if identity == nil || identity.ID != idBob {
		t.Fatalf("identity=%+v, want bob", identity)
	}
	if profile == nil || profile.ID != idBob {
		t.Fatalf("profile=%+v, want bob", profile)
	}
}

func TestSignOutClearsSynchronously(t *testing.T) {
	auth := &fakeAuth{}
	st := newFakeStore()
	st.profiles["alice"] = &models.User{ID: idAlice, GithubUsername: "alice"}
	gate := make(chan struct{})
	st.blocks["alice"] = gate

	m := NewSessionManager(auth, st)
	m.Start(context.Background())
	defer m.Close()

	auth.emit(AuthEventSignedIn, sessionFor(idAlice, "alice"))

	if err := m.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	// Cleared before the in-flight resolution finishes.
	identity, profile, loading := m.Snapshot()
	if identity != nil || profile != nil || loading {
		t.Fatalf("want cleared state right after sign-out, got (%v, %v, %v)", identity, profile, loading)
	}

	// The abandoned resolution must not resurrect the profile.
	close(gate)
	time.Sleep(50 * time.Millisecond)
	identity, profile, loading = m.Snapshot()
	if identity != nil || profile != nil || loading {
		t.Fatalf("stale resolution wrote state after sign-out: (%v, %v, %v)", identity, profile, loading)
	}
}

func TestResolveProfilePrefersExistingRow(t *testing.T) {
	st := newFakeStore()
	st.profiles["alice"] = &models.User{ID: idAlice, GithubUsername: "alice", XP: 999}

	profile, err := ResolveProfile(context.Background(), st, models.Identity{
		ID:       idAlice,
		Metadata: models.IdentityMetadata{PreferredUsername: "alice"},
	})
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}
	if profile.XP != 999 {
		t.Fatalf("profile=%+v, want the existing row", profile)
	}
	if st.createCalls != 0 {
		t.Fatalf("createCalls=%d, want 0", st.createCalls)
	}
}
