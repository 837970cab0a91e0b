// Package session holds the console's durable session state: one record
// identifying the logged-in user, persisted as a JSON file the way the
// browser build kept it under a single localStorage key.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/courseboard/courseboard/internal/apiclient"
	"github.com/courseboard/courseboard/internal/model"
	"github.com/rs/zerolog"
)

// storageKey names the single durable entry.
const storageKey = "user"

// Domain errors surfaced to the views.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Session is the locally persisted record for the current user. It holds
// a bearer token rather than any password material.
type Session struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Store manages the session lifecycle: create on login/registration,
// read anywhere, clear on logout.
type Store struct {
	dir string
	api *apiclient.Client
	log zerolog.Logger
}

// NewStore creates a Store rooted at dir. The directory is created lazily
// on the first write.
func NewStore(dir string, api *apiclient.Client, log zerolog.Logger) *Store {
	return &Store{
		dir: dir,
		api: api,
		log: log.With().Str("component", "session").Logger(),
	}
}

// Authenticate performs a credential check against the API and, on
// success, persists the returned session. A missing account and a wrong
// password both come back as ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	var auth model.AuthResponse
	err := s.api.Post(ctx, "/auth/login", model.LoginRequest{Email: email, Password: password}, &auth)
	if err != nil {
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	sess := &Session{User: auth.User, Token: auth.Token}
	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Register creates a student account and establishes it as the active
// session immediately (auto-login).
func (s *Store) Register(ctx context.Context, name, email, password string) (*Session, error) {
	var auth model.AuthResponse
	err := s.api.Post(ctx, "/auth/register", model.RegisterRequest{Name: name, Email: email, Password: password}, &auth)
	if err != nil {
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	sess := &Session{User: auth.User, Token: auth.Token}
	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// EndSession tells the server to drop the active session, then clears the
// stored record. The server call is best effort; local state always goes.
func (s *Store) EndSession(ctx context.Context) error {
	if s.IsActive() {
		if err := s.api.Post(ctx, "/auth/logout", struct{}{}, nil); err != nil {
			s.log.Warn().Err(err).Msg("Server logout failed, clearing local session anyway")
		}
	}

	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsActive reports whether a session record is present.
func (s *Store) IsActive() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// Current returns the stored session, or nil when none exists. A record
// that cannot be parsed is an error the caller has to handle.
func (s *Store) Current() (*Session, error) {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &sess, nil
}

// Token implements apiclient.TokenSource. It fails soft: no session or a
// broken record simply yields an unauthenticated request.
func (s *Store) Token() string {
	sess, err := s.Current()
	if err != nil || sess == nil {
		return ""
	}
	return sess.Token
}

func (s *Store) save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path(), raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, storageKey+".json")
}
