package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"mindcare-backend/internal/models"
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// APIClient talks to the chat backend.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient uses http.DefaultClient when hc is nil. Chat requests carry
// no client-side timeout.
func NewAPIClient(baseURL string, hc *http.Client) *APIClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *APIClient) Chat(ctx context.Context, token string, req models.ChatRequest) (*models.ChatResponse, error) {
	var resp models.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) NewChat(ctx context.Context, token string) (string, error) {
	var resp models.NewChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/new_chat", token, nil, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("api: new_chat returned no session id")
	}
	return resp.SessionID, nil
}

func (c *APIClient) Sessions(ctx context.Context, token string) ([]string, error) {
	var ids []string
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions", token, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *APIClient) History(ctx context.Context, token, sessionID string) ([]models.ChatMessage, error) {
	var turns []models.ChatMessage
	path := "/api/history/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (c *APIClient) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	var resp models.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", "", req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *APIClient) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	var resp models.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", "", req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Transcribe uploads recorded audio and returns the recognized text.
func (c *APIClient) Transcribe(ctx context.Context, token string, audio []byte, filename, lang string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("lang", lang); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transcribe", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setAuth(req, token)

	var resp models.TranscribeResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Transcript, nil
}

func (c *APIClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setAuth(req, token)
	return c.do(req, out)
}

func (c *APIClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	var env models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env); err == nil {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
		se.Fields = env.Error.Fields
	}
	return se
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
