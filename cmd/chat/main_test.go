package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"mindcare-backend/internal/client"
	"mindcare-backend/internal/models"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginStoresTokenAndLogoutClearsIt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "calm-password1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: models.APIError{Code: "UNAUTHORIZED", Message: "Invalid credentials"}})
			return
		}
		json.NewEncoder(w).Encode(models.TokenResponse{Token: "jwt-1"})
	}))
	defer srv.Close()

	home := t.TempDir()
	t.Setenv("MINDCARE_HOME", home)
	t.Setenv("MINDCARE_API_URL", srv.URL)

	if _, err := runCLI(t, "login", "--email", "a@b.co", "--password", "wrong"); err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	out, err := runCLI(t, "login", "--email", "a@b.co", "--password", "calm-password1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Logged in") {
		t.Fatalf("unexpected output %q", out)
	}

	store, err := client.OpenFileStore(filepath.Join(home, "prefs.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token := client.NewPreferences(store).AuthToken(); token != "jwt-1" {
		t.Fatalf("expected stored token, got %q", token)
	}

	if _, err := runCLI(t, "logout"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store, _ = client.OpenFileStore(filepath.Join(home, "prefs.json"))
	if token := client.NewPreferences(store).AuthToken(); token != "" {
		t.Fatalf("expected token to be cleared, got %q", token)
	}
}

func TestLoginPromptsForPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "calm-password1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: models.APIError{Code: "UNAUTHORIZED", Message: "Invalid credentials"}})
			return
		}
		json.NewEncoder(w).Encode(models.TokenResponse{Token: "jwt-2"})
	}))
	defer srv.Close()

	t.Setenv("MINDCARE_HOME", t.TempDir())
	t.Setenv("MINDCARE_API_URL", srv.URL)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("calm-password1\n"))
	cmd.SetArgs([]string{"login", "--email", "a@b.co"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Password: ") || !strings.Contains(out.String(), "Logged in") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSessionsRequiresLogin(t *testing.T) {
	t.Setenv("MINDCARE_HOME", t.TempDir())
	t.Setenv("MINDCARE_API_URL", "http://127.0.0.1:1")

	if _, err := runCLI(t, "sessions"); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected not logged in error, got %v", err)
	}
}

func TestDescribeFormatsFields(t *testing.T) {
	err := describe(&client.StatusError{
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    "Validation failed",
		Fields:     map[string]string{"password": "Password must be at least 8 characters"},
	})
	if !strings.Contains(err.Error(), "password: Password must be at least 8 characters") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	plain := errors.New("dial tcp: refused")
	if describe(plain) != plain {
		t.Fatal("non-API errors pass through")
	}
}
