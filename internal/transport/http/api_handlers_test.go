package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adskoe96/adsk-chat/internal/core"
)

func postJSON(t *testing.T, ts *httptest.Server, path, token string, body any) *http.Response {
	t.Helper()
	return doJSON(t, ts, http.MethodPost, path, token, body)
}

func putJSON(t *testing.T, ts *httptest.Server, path, token string, body any) *http.Response {
	t.Helper()
	return doJSON(t, ts, http.MethodPut, path, token, body)
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// registerAccount creates an account over the REST API and returns its token.
func registerAccount(t *testing.T, ts *httptest.Server, username, password string) string {
	t.Helper()

	resp := postJSON(t, ts, "/api/register", "", RegisterRequest{Username: username, Password: password})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %q: status %d", username, resp.StatusCode)
	}
	return decodeBody[AuthResponse](t, resp).Token
}

func TestRegisterAndLogin(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	token := registerAccount(t, ts, "alice", "password123")
	if token == "" {
		t.Fatal("register returned empty token")
	}

	resp := postJSON(t, ts, "/api/login", "", LoginRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	if decodeBody[AuthResponse](t, resp).Token == "" {
		t.Fatal("login returned empty token")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	registerAccount(t, ts, "alice", "password123")

	resp := postJSON(t, ts, "/api/register", "", RegisterRequest{Username: "alice", Password: "different456"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	resp := postJSON(t, ts, "/api/register", "", RegisterRequest{Username: "alice", Password: "short"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	registerAccount(t, ts, "alice", "password123")

	resp := postJSON(t, ts, "/api/login", "", LoginRequest{Username: "alice", Password: "wrongwrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMeRequiresToken(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	resp, err := ts.Client().Get(ts.URL + "/api/me")
	if err != nil {
		t.Fatalf("get /api/me: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMeReturnsProfile(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	token := registerAccount(t, ts, "alice", "password123")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("get /api/me: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	profile := decodeBody[ProfileResponse](t, resp)
	if profile.Username != "alice" || profile.DisplayName != "alice" || profile.Role != "user" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestUpdateProfileSanitizesFields(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	token := registerAccount(t, ts, "alice", "password123")

	resp := putJSON(t, ts, "/api/me", token, UpdateProfileRequest{
		DisplayName: "<script>x</script><b>Ada</b>",
		Bio:         "hello   <img src=x>world",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	profile := decodeBody[ProfileResponse](t, resp)
	if profile.DisplayName != "<b>Ada</b>" {
		t.Fatalf("display name not sanitized: %q", profile.DisplayName)
	}
	if profile.Bio != "hello world" {
		t.Fatalf("bio not sanitized: %q", profile.Bio)
	}
}

func TestUpdateProfileRejectsEmptyResult(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	token := registerAccount(t, ts, "alice", "password123")

	resp := putJSON(t, ts, "/api/me", token, UpdateProfileRequest{DisplayName: "<img src=x>"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateAvatar(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeAccounts)

	token := registerAccount(t, ts, "alice", "password123")

	resp := putJSON(t, ts, "/api/me/avatar", token, UpdateAvatarRequest{Avatar: "avatars/alice.png"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if got := decodeBody[ProfileResponse](t, resp).Avatar; got != "avatars/alice.png" {
		t.Fatalf("avatar not persisted: %q", got)
	}
}

func TestAPIAbsentInOpenMode(t *testing.T) {
	ts, _, _ := startTestServer(t, core.ModeOpen)

	resp := postJSON(t, ts, "/api/register", "", RegisterRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
