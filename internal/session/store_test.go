package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/courseboard/courseboard/internal/apiclient"
	"github.com/courseboard/courseboard/internal/model"
	"github.com/rs/zerolog"
)

// fakeAuthServer speaks just enough of the auth API for the store.
func fakeAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req model.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode register: %v", err)
		}
		if req.Email == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"error":{"code":"EMAIL_TAKEN","message":"email already registered"}}`)
			return
		}
		resp := model.AuthResponse{
			Token: "tok-" + req.Email,
			User:  model.User{ID: 2, Name: req.Name, Email: req.Email, Role: model.RoleStudent},
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": resp})
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode login: %v", err)
		}
		if req.Password != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"code":"INVALID_CREDENTIALS","message":"invalid credentials"}}`)
			return
		}
		resp := model.AuthResponse{
			Token: "tok-" + req.Email,
			User:  model.User{ID: 1, Name: "Sam", Email: req.Email, Role: model.RoleStudent},
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": resp})
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"message":"logged out"}}`)
	})

	return httptest.NewServer(mux)
}

func newTestStore(t *testing.T, baseURL string) *Store {
	t.Helper()
	api := apiclient.New(baseURL, zerolog.Nop())
	store := NewStore(t.TempDir(), api, zerolog.Nop())
	api.SetTokenSource(store)
	return store
}

func TestCurrentWithoutSession(t *testing.T) {
	store := newTestStore(t, "http://unused")

	if store.IsActive() {
		t.Error("fresh store should not be active")
	}
	sess, err := store.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session, got %+v", sess)
	}
	if store.Token() != "" {
		t.Error("token should be empty without a session")
	}
}

func TestRegisterPersistsTokenNotPassword(t *testing.T) {
	srv := fakeAuthServer(t)
	defer srv.Close()
	store := newTestStore(t, srv.URL)

	sess, err := store.Register(context.Background(), "Sam", "sam@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.User.Role != model.RoleStudent {
		t.Errorf("role = %q, want student", sess.User.Role)
	}
	if !store.IsActive() {
		t.Error("store should be active after registration")
	}

	loaded, err := store.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if loaded.User.Email != "sam@example.com" || loaded.Token != "tok-sam@example.com" {
		t.Errorf("loaded %+v", loaded)
	}

	raw, err := os.ReadFile(filepath.Join(store.dir, "user.json"))
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	if strings.Contains(string(raw), "hunter22") {
		t.Error("session file must not contain password material")
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	srv := fakeAuthServer(t)
	defer srv.Close()
	store := newTestStore(t, srv.URL)

	_, err := store.Register(context.Background(), "Sam", "taken@example.com", "hunter22")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if store.IsActive() {
		t.Error("failed registration must not create a session")
	}
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	srv := fakeAuthServer(t)
	defer srv.Close()
	store := newTestStore(t, srv.URL)

	_, err := store.Authenticate(context.Background(), "sam@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.IsActive() {
		t.Error("failed login must not create a session")
	}
}

func TestEndSessionClearsLocalState(t *testing.T) {
	srv := fakeAuthServer(t)
	defer srv.Close()
	store := newTestStore(t, srv.URL)

	if _, err := store.Authenticate(context.Background(), "sam@example.com", "correct"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := store.EndSession(context.Background()); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if store.IsActive() {
		t.Error("store should be inactive after EndSession")
	}

	// Ending an already-ended session is a no-op.
	if err := store.EndSession(context.Background()); err != nil {
		t.Errorf("second EndSession: %v", err)
	}
}

func TestCorruptRecordSurfacesError(t *testing.T) {
	store := newTestStore(t, "http://unused")
	if err := os.MkdirAll(store.dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(store.dir, "user.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Current(); err == nil {
		t.Error("Current should fail on an unparsable record")
	}
	if store.Token() != "" {
		t.Error("Token must fail soft on an unparsable record")
	}
}
