// Package auth manages the client's auth session: the persisted identity and
// tokens produced by the external OAuth sign-in flow, and the guest flag. The
// browser redirect dance itself is delegated to the auth provider and never
// happens here; this package only stores, exposes and clears its outcome.
//
// Lifecycle: init (load persisted session) -> active (token present) ->
// signed-out.
package auth

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"

	"github.com/puremark/puremark-go/internal/constants"
	"github.com/puremark/puremark-go/internal/storage"
)

// Session is the persisted outcome of a completed sign-in.
type Session struct {
	// UserID is the identity the auth provider assigned to this user.
	UserID string `json:"user_id"`

	// Email is the signed-in user's address, when the provider shared it.
	Email string `json:"email,omitempty"`

	// AccessToken is the bearer credential for authenticated API calls.
	AccessToken string `json:"access_token"`

	// RefreshToken allows the auth provider to mint a new access token.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is when the access token stops being usable.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's access token has passed its expiry.
// A session without a known expiry is treated as live; the backend rejects
// stale tokens anyway.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.After(s.ExpiresAt)
}

// Manager owns the session state for the process. It loads the persisted
// session once at construction and serializes mutations.
type Manager struct {
	store storage.Store

	mu      sync.Mutex
	session *Session
	guest   bool
}

// NewManager creates a session manager and loads any persisted session and
// guest flag from the device store. Unreadable blobs degrade to signed-out.
func NewManager(ctx context.Context, store storage.Store) (*Manager, error) {
	m := &Manager{store: store}

	raw, found, err := store.Get(ctx, constants.StorageKeySession)
	if err != nil {
		// Read failures degrade to signed-out rather than blocking startup
		log.Warn().Err(err).Msg("Could not read persisted session")
	} else if found {
		var session Session
		if jsonErr := json.Unmarshal([]byte(raw), &session); jsonErr != nil {
			log.Warn().Err(jsonErr).Msg("Persisted session is malformed; discarding")
		} else {
			fillExpiryFromToken(&session)
			m.session = &session
		}
	}

	rawGuest, found, err := store.Get(ctx, constants.StorageKeyGuest)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read guest flag")
	} else if found {
		m.guest, _ = strconv.ParseBool(rawGuest)
	}

	return m, nil
}

// fillExpiryFromToken derives ExpiresAt from the access token's exp claim
// when the persisted session carries none. The token is not verified; the
// client holds no signing key and only needs the expiry for local hygiene.
func fillExpiryFromToken(session *Session) {
	if !session.ExpiresAt.IsZero() || session.AccessToken == "" {
		return
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(session.AccessToken, &claims); err != nil {
		return
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
}

// Current returns the active session, or nil when signed out or expired.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || m.session.Expired(time.Now()) {
		return nil
	}
	session := *m.session
	return &session
}

// Identity returns the signed-in user id, or false when there is none.
func (m *Manager) Identity() (string, bool) {
	session := m.Current()
	if session == nil {
		return "", false
	}
	return session.UserID, true
}

// Token returns the active access token, or "" when signed out or expired.
// Callers fall back to the anonymous key in that case.
func (m *Manager) Token() string {
	session := m.Current()
	if session == nil {
		return ""
	}
	return session.AccessToken
}

// IsGuest reports whether the user chose to continue as a guest.
func (m *Manager) IsGuest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guest
}

// SetGuest persists the guest flag.
func (m *Manager) SetGuest(ctx context.Context, guest bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, constants.StorageKeyGuest, strconv.FormatBool(guest)); err != nil {
		return err
	}
	m.guest = guest
	return nil
}

// SetSession stores the outcome of a completed sign-in and persists it.
// Signing in clears the guest flag.
func (m *Manager) SetSession(ctx context.Context, session *Session) error {
	fillExpiryFromToken(session)

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, constants.StorageKeySession, string(data)); err != nil {
		return err
	}
	if err := m.store.Set(ctx, constants.StorageKeyGuest, "false"); err != nil {
		return err
	}

	m.session = session
	m.guest = false

	log.Info().Str("user_id", session.UserID).Msg("Session stored")
	return nil
}

// SignOut clears the active session from memory and from the device store.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, constants.StorageKeySession); err != nil {
		return err
	}

	m.session = nil

	log.Info().Msg("Signed out")
	return nil
}
