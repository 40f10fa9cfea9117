package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"devquest-hub/models"
)

// Auth-state-change event names, matching the provider's notification
// stream.
const (
	AuthEventSignedIn  = "SIGNED_IN"
	AuthEventSignedOut = "SIGNED_OUT"
)

// AuthProvider is the slice of the external identity provider the session
// manager depends on. Notifications are delivered in order, synchronously.
type AuthProvider interface {
	GetSession(ctx context.Context) (*models.Session, error)
	OnAuthStateChange(fn func(event string, session *models.Session)) (unsubscribe func())
	SignInWithOAuth(provider, redirectTo string) (string, error)
	SignOut(ctx context.Context) error
}

// AuthGateway talks to the external OAuth/session service and fans session
// transitions out to subscribers.
type AuthGateway struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	mu      sync.Mutex
	session *models.Session
	nextID  int
	subs    []authSubscriber
}

type authSubscriber struct {
	id int
	fn func(event string, session *models.Session)
}

func NewAuthGateway(baseURL, apiKey string) *AuthGateway {
	return &AuthGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SignInWithOAuth builds the provider's authorize redirect URL. It is a
// side-effecting trigger only: the state transition happens when the
// provider calls back and CompleteOAuth emits the change.
func (g *AuthGateway) SignInWithOAuth(provider, redirectTo string) (string, error) {
	if g.BaseURL == "" {
		return "", fmt.Errorf("auth gateway not configured")
	}
	u, err := url.Parse(fmt.Sprintf("%s/authorize", g.BaseURL))
	if err != nil {
		return "", fmt.Errorf("failed to parse auth base URL: %w", err)
	}
	q := u.Query()
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CompleteOAuth exchanges the callback code for a session, stores it as the
// current one and notifies subscribers.
func (g *AuthGateway) CompleteOAuth(ctx context.Context, code string) (*models.Session, error) {
	reqBody, _ := json.Marshal(map[string]string{"auth_code": code})
	target := fmt.Sprintf("%s/token?grant_type=authorization_code", g.BaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ [AUTH] token exchange returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("token exchange failed: %d", resp.StatusCode)
	}

	var session models.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	g.mu.Lock()
	g.session = &session
	g.mu.Unlock()

	g.emit(AuthEventSignedIn, &session)
	return &session, nil
}

// GetSession returns the current session, nil when signed out.
func (g *AuthGateway) GetSession(ctx context.Context) (*models.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil, nil
	}
	if !g.session.ExpiresAt.IsZero() && time.Now().After(g.session.ExpiresAt) {
		g.session = nil
		return nil, nil
	}
	copied := *g.session
	return &copied, nil
}

// GetUser validates an access token with the provider and returns the
// identity behind it.
func (g *AuthGateway) GetUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	target := fmt.Sprintf("%s/user", g.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity lookup failed: %d", resp.StatusCode)
	}

	var identity models.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	return &identity, nil
}

// SignOut revokes the session with the provider and notifies subscribers.
// Local state is cleared even when revocation fails: sign-out must always
// land in the unauthenticated state.
func (g *AuthGateway) SignOut(ctx context.Context) error {
	g.mu.Lock()
	session := g.session
	g.session = nil
	g.mu.Unlock()

	if session != nil && g.BaseURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/logout", g.BaseURL), nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+session.AccessToken)
			req.Header.Set("apikey", g.APIKey)
			if resp, doErr := g.Client.Do(req); doErr != nil {
				log.Printf("⚠️ [AUTH] logout revocation failed: %v", doErr)
			} else {
				resp.Body.Close()
			}
		}
	}

	g.emit(AuthEventSignedOut, nil)
	return nil
}

// OnAuthStateChange registers a callback for session transitions. Callbacks
// run synchronously in registration order so notifications are processed in
// the order delivered.
func (g *AuthGateway) OnAuthStateChange(fn func(event string, session *models.Session)) (unsubscribe func()) {
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.subs = append(g.subs, authSubscriber{id: id, fn: fn})
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, sub := range g.subs {
			if sub.id == id {
				g.subs = append(g.subs[:i], g.subs[i+1:]...)
				return
			}
		}
	}
}

func (g *AuthGateway) emit(event string, session *models.Session) {
	g.mu.Lock()
	subs := make([]authSubscriber, len(g.subs))
	copy(subs, g.subs)
	g.mu.Unlock()

	for _, sub := range subs {
		sub.fn(event, session)
	}
}
