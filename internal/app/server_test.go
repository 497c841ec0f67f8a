package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"taskboard/api/internal/config"
	"taskboard/api/internal/session"
	"taskboard/api/internal/store"
)

const testSecret = "test-secret"

var testDBSeq atomic.Int64

type testEnv struct {
	rawDB   *sql.DB
	db      *store.SQLStore
	service *Service
	server  *HTTPServer
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithSessions(t, nil)
}

func newTestEnvWithSessions(t *testing.T, sessions session.Store) *testEnv {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, dialect, err := store.Open(ctx, fmt.Sprintf("file:app_%s_%d?mode=memory&cache=shared", name, testDBSeq.Add(1)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(ctx, db, dialect); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	dataStore := store.NewSQLStore(db, dialect)
	svc := New(config.Config{
		JWTSecret:  testSecret,
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}, dataStore, sessions)
	server := NewHTTPServer(svc, "*", slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &testEnv{rawDB: db, db: dataStore, service: svc, server: server, handler: server.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

type testUser struct {
	ID           int64
	Token        string
	RefreshToken string
}

// signUp registers username and logs in, returning its tokens.
func (e *testEnv) signUp(t *testing.T, username string) testUser {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	expectStatus(t, rr, http.StatusCreated)

	rr = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": username,
		"password": "password123",
	})
	expectStatus(t, rr, http.StatusOK)
	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		UserID       int64  `json:"userId"`
	}
	decodeInto(t, rr, &payload)
	return testUser{ID: payload.UserID, Token: payload.AccessToken, RefreshToken: payload.RefreshToken}
}

// create POSTs body to path as user and returns the new row's id.
func (e *testEnv) create(t *testing.T, user testUser, path string, body any) int64 {
	t.Helper()
	rr := e.do(t, http.MethodPost, path, user.Token, body)
	expectStatus(t, rr, http.StatusCreated)
	var payload struct {
		ID int64 `json:"id"`
	}
	decodeInto(t, rr, &payload)
	if payload.ID == 0 {
		t.Fatalf("POST %s returned no id: %s", path, rr.Body.String())
	}
	return payload.ID
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d body=%s", want, rr.Code, rr.Body.String())
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rr, status)
	var payload map[string]any
	decodeInto(t, rr, &payload)
	if payload["code"] != code {
		t.Fatalf("expected code %s, got %v", code, payload["code"])
	}
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("parse response: %v body=%s", err, rr.Body.String())
	}
}
