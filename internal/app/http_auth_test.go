package app

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskboard/api/internal/auth"
	"taskboard/api/internal/session"
)

func TestRegisterReturnsUserWithoutSecrets(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "avery",
		"email":    "avery@example.com",
		"password": "password123",
	})
	expectStatus(t, rr, http.StatusCreated)

	var payload map[string]any
	decodeInto(t, rr, &payload)
	if payload["username"] != "avery" || payload["email"] != "avery@example.com" {
		t.Fatalf("unexpected user payload: %v", payload)
	}
	if _, ok := payload["passwordHash"]; ok {
		t.Fatalf("password hash leaked: %v", payload)
	}
	if _, ok := payload["password_hash"]; ok {
		t.Fatalf("password hash leaked: %v", payload)
	}
}

func TestRegisterRejections(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "avery")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{name: "malformed json", body: `{"username":`, status: http.StatusBadRequest, code: "INVALID_BODY"},
		{name: "missing password", body: map[string]any{"username": "blake", "email": "blake@example.com"}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "short password", body: map[string]any{"username": "blake", "email": "blake@example.com", "password": "short"}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "bad email", body: map[string]any{"username": "blake", "email": "not-an-email", "password": "password123"}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "duplicate username", body: map[string]any{"username": "avery", "email": "other@example.com", "password": "password123"}, status: http.StatusConflict, code: "CONFLICT"},
		{name: "duplicate email", body: map[string]any{"username": "blake", "email": "avery@example.com", "password": "password123"}, status: http.StatusConflict, code: "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			expectError(t, rr, tt.status, tt.code)
		})
	}
}

func TestLoginReturnsContract(t *testing.T) {
	env := newTestEnv(t)
	user := env.signUp(t, "avery")

	if user.Token == "" || user.RefreshToken == "" {
		t.Fatalf("expected access and refresh tokens, got %+v", user)
	}
	claims, err := auth.ParseToken([]byte(testSecret), user.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "avery" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if ttl := time.Until(claims.ExpiresAt); ttl < 59*time.Minute || ttl > time.Hour+time.Second {
		t.Fatalf("expected a one hour token, expires in %s", ttl)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "avery")

	for name, body := range map[string]map[string]any{
		"wrong password": {"username": "avery", "password": "password124"},
		"unknown user":   {"username": "nobody", "password": "password123"},
	} {
		t.Run(name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/auth/login", "", body)
			expectError(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")
		})
	}
}

func TestProtectedRoutesRequireValidBearer(t *testing.T) {
	env := newTestEnv(t)
	user := env.signUp(t, "avery")

	expired, _, err := auth.IssueToken([]byte(testSecret), user.ID, "avery", -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	foreign, _, err := auth.IssueToken([]byte("other-secret"), user.ID, "avery", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	ghost, _, err := auth.IssueToken([]byte(testSecret), user.ID+100, "ghost", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing bearer", token: ""},
		{name: "garbage bearer", token: "definitely-not-a-token"},
		{name: "expired bearer", token: expired},
		{name: "wrong secret", token: foreign},
		{name: "deleted user", token: ghost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/boards", "/api/cards/filter", "/api/users/search?q=av"} {
				rr := env.do(t, http.MethodGet, path, tt.token, nil)
				expectError(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")
			}
		})
	}
}

func TestSessionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user := env.signUp(t, "avery")

	rr := env.do(t, http.MethodGet, "/api/session", "", nil)
	expectStatus(t, rr, http.StatusOK)
	var anonymous map[string]any
	decodeInto(t, rr, &anonymous)
	if anonymous["authenticated"] != false {
		t.Fatalf("expected unauthenticated session, got %v", anonymous)
	}

	rr = env.do(t, http.MethodGet, "/api/session", user.Token, nil)
	expectStatus(t, rr, http.StatusOK)
	var current map[string]any
	decodeInto(t, rr, &current)
	if current["authenticated"] != true || current["username"] != "avery" {
		t.Fatalf("expected avery's session, got %v", current)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	cases := map[string]func(t *testing.T) session.Store{
		"database sessions": func(t *testing.T) session.Store { return nil },
		"redis sessions": func(t *testing.T) session.Store {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return session.NewRedisStoreWithClient(client)
		},
	}

	for name, sessions := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnvWithSessions(t, sessions(t))
			user := env.signUp(t, "avery")

			rr := env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refreshToken": user.RefreshToken})
			expectStatus(t, rr, http.StatusOK)
			var refreshed struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			}
			decodeInto(t, rr, &refreshed)
			if refreshed.AccessToken == "" || refreshed.RefreshToken == user.RefreshToken {
				t.Fatalf("expected rotated tokens, got %+v", refreshed)
			}

			// The old refresh token is single use.
			rr = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refreshToken": user.RefreshToken})
			expectError(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")

			rr = env.do(t, http.MethodPost, "/api/auth/logout", refreshed.AccessToken, map[string]any{"refreshToken": refreshed.RefreshToken})
			expectStatus(t, rr, http.StatusOK)

			rr = env.do(t, http.MethodGet, "/api/boards", refreshed.AccessToken, nil)
			expectError(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")
			rr = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refreshToken": refreshed.RefreshToken})
			expectError(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")

			// The first access token was never revoked.
			rr = env.do(t, http.MethodGet, "/api/boards", user.Token, nil)
			expectStatus(t, rr, http.StatusOK)
		})
	}
}

func TestSearchUsers(t *testing.T) {
	env := newTestEnv(t)
	avery := env.signUp(t, "avery")
	env.signUp(t, "avril")
	env.signUp(t, "blake")

	rr := env.do(t, http.MethodGet, "/api/users/search?q=av", avery.Token, nil)
	expectStatus(t, rr, http.StatusOK)
	var users []map[string]any
	decodeInto(t, rr, &users)
	if len(users) != 1 || users[0]["username"] != "avril" {
		t.Fatalf("expected only avril, got %v", users)
	}

	rr = env.do(t, http.MethodGet, "/api/users/search?q=a", avery.Token, nil)
	expectStatus(t, rr, http.StatusOK)
	if body := rr.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty result for a one-letter query, got %q", body)
	}
}
