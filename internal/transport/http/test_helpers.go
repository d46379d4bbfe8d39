package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adskoe96/adsk-chat/internal/auth"
	"github.com/adskoe96/adsk-chat/internal/config"
	"github.com/adskoe96/adsk-chat/internal/core"
	"github.com/adskoe96/adsk-chat/internal/store"
	"github.com/adskoe96/adsk-chat/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with the schema provisioned.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.AccountStore, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

// startTestServer spins up the full HTTP surface over an in-memory store.
func startTestServer(t *testing.T, mode core.Mode) (*httptest.Server, store.Store, *auth.Service) {
	t.Helper()

	st := createTestStore(t)

	var authService *auth.Service
	if mode == core.ModeAccounts {
		authService = createTestAuthService(t, st, "test-secret-change-me")
	}

	hub := core.NewHub(core.HubConfig{Mode: mode}, st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	disabledLogger := zerolog.Nop()
	server := NewServer(hub, authService, st, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st, authService
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}
