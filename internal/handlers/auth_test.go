package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mindcare-backend/internal/models"
	"mindcare-backend/internal/services"
)

type stubAuthService struct {
	token        string
	err          error
	lastRegister models.RegisterRequest
	lastLogin    models.LoginRequest
}

func (s *stubAuthService) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	s.lastRegister = req
	return s.token, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	s.lastLogin = req
	return s.token, s.err
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{token: "jwt-token"}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"email":"test@example.com","password":"StrongPass123","name":"Test User"}`))
	rr := httptest.NewRecorder()

	h.Register(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if svc.lastRegister.Name != "Test User" || svc.lastRegister.Email != "test@example.com" {
		t.Fatalf("request not forwarded: %+v", svc.lastRegister)
	}

	var resp models.TokenResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Fatalf("expected token, got %q", resp.Token)
	}
}

func TestAuthHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		call     func(h *AuthHandler) http.HandlerFunc
		body     string
		err      error
		expected int
	}{
		{"register bad body", func(h *AuthHandler) http.HandlerFunc { return h.Register }, `nope`, nil, http.StatusBadRequest},
		{"register duplicate", func(h *AuthHandler) http.HandlerFunc { return h.Register }, `{}`, &services.ConflictError{Message: "Email already registered"}, http.StatusConflict},
		{"register invalid", func(h *AuthHandler) http.HandlerFunc { return h.Register }, `{}`, &services.ValidationError{Fields: map[string]string{"email": "Invalid email format"}}, http.StatusBadRequest},
		{"login bad credentials", func(h *AuthHandler) http.HandlerFunc { return h.Login }, `{"email":"a@b.co","password":"x"}`, &services.UnauthorizedError{Message: "Invalid credentials"}, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{err: tc.err})

			rr := httptest.NewRecorder()
			tc.call(h)(rr, httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(tc.body)))

			if rr.Code != tc.expected {
				t.Fatalf("expected status %d, got %d", tc.expected, rr.Code)
			}
		})
	}
}

func TestHandleServiceError_IncludesFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/register", nil)
	rr := httptest.NewRecorder()

	handleServiceError(rr, req, &services.ValidationError{Fields: map[string]string{"password": "too short"}})

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Error.Fields["password"] != "too short" {
		t.Fatalf("expected field errors, got %+v", resp.Error)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected JSON content type")
	}
}
