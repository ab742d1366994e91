// Package auth is a client for the external authentication collaborator
// (a GoTrue-compatible HTTP API).
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Error is the structured failure the collaborator returns. The message
// string is the contract surface the identity store translates from.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// User is the authenticated identity as the collaborator reports it.
type User struct {
	ID       uuid.UUID         `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"user_metadata"`
}

// Session is an authenticated session with its bearer token.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Client talks to the auth collaborator.
type Client struct {
	baseURL    string
	anonKey    string
	jwtSecret  string
	httpClient *http.Client
}

// NewClient creates an auth client. With a JWT secret configured, session
// checks are verified locally from token claims; otherwise the /user
// endpoint is queried.
func NewClient(baseURL, anonKey, jwtSecret string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		anonKey:   anonKey,
		jwtSecret: jwtSecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type tokenClaims struct {
	Email    string            `json:"email"`
	Metadata map[string]string `json:"user_metadata"`
	jwt.RegisteredClaims
}

// GetSession resolves the session behind an access token. An invalid,
// expired or unknown token returns an *Error.
func (c *Client) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "missing access token"}
	}

	if c.jwtSecret != "" {
		return c.sessionFromClaims(accessToken)
	}

	var user User
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &Session{AccessToken: accessToken, User: user}, nil
}

func (c *Client) sessionFromClaims(accessToken string) (*Session, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(accessToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(c.jwtSecret), nil
	})
	if err != nil {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "invalid session token"}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "invalid session token"}
	}

	session := &Session{
		AccessToken: accessToken,
		User: User{
			ID:       userID,
			Email:    claims.Email,
			Metadata: claims.Metadata,
		},
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// SignUp registers a new identity with display metadata.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata,
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/signup", "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session behind the token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request to auth service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse auth response: %w", err)
		}
	}
	return nil
}

// parseError extracts the collaborator's message from the several error
// body shapes it uses.
func parseError(status int, body []byte) *Error {
	var envelope struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Message
	if message == "" {
		message = envelope.Msg
	}
	if message == "" {
		message = envelope.ErrorDescription
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Status: status, Message: message}
}
