package aware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// SessionsClient owns the session lifecycle: login, signup, logout, email
// confirmation, and token refresh. Its operations return classified,
// user-facing error values rather than raw backend responses, so callers
// always have a definite branch to act on.
type SessionsClient interface {
	// Login exchanges credentials for a session. On success the token store
	// holds a live session and the returned User carries the best-effort
	// profile decoded from the access token.
	Login(ctx context.Context, email, password string) (User, error)
	// Signup registers a new account. Success means the registration was
	// accepted-- the backend requires out-of-band email confirmation before a
	// session can be established, so no session exists afterwards.
	Signup(ctx context.Context, email, password, name string) error
	// Confirm posts an email confirmation token. It never leaves the caller
	// with a dangling session either way.
	Confirm(ctx context.Context, token string) ConfirmResult
	// Logout best-effort notifies the backend, then unconditionally clears
	// the local session. Calling it without a session is a no-op.
	Logout(ctx context.Context)
	// Refresh explicitly exchanges the held refresh token for a new session.
	Refresh(ctx context.Context) error
	// Resume re-establishes a session from a persisted refresh token, as done
	// on process start. It reports whether a live session resulted; a failed
	// resume clears the store and means "logged out", not an error.
	Resume(ctx context.Context) (User, bool)
	// CurrentUser returns the profile from the most recent login or resume,
	// or false if no session is live.
	CurrentUser() (User, bool)
}

type sessionsClient struct {
	*baseClient
	mu   sync.Mutex
	user *User
}

func newSessionsClient(base *baseClient) SessionsClient {
	s := &sessionsClient{
		baseClient: base,
	}
	// React to the dispatcher invalidating the session regardless of which
	// request triggered it.
	base.onSessionInvalidated(func() {
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
	})
	return s
}

func (s *sessionsClient) Login(
	ctx context.Context,
	email string,
	password string,
) (User, error) {
	resp, err := s.submitAPIRequest(
		ctx,
		apiRequest{
			method: http.MethodPost,
			path:   "auth/login",
			reqBodyObj: loginRequest{
				Email:    email,
				Password: password,
			},
		},
	)
	if err != nil {
		// Network-class failures stay network-class; they are not a statement
		// about the credentials.
		return User{}, err
	}
	if resp.statusCode != http.StatusOK {
		return User{}, NewErrAuthFailed(
			mapAuthError(decodeDetail(resp.body), "Invalid credentials"),
		)
	}
	authResp := AuthResponse{}
	if err := json.Unmarshal(resp.body, &authResp); err != nil {
		return User{}, errors.Wrap(err, "error unmarshaling login response")
	}
	return s.establishSession(authResp), nil
}

func (s *sessionsClient) Signup(
	ctx context.Context,
	email string,
	password string,
	name string,
) error {
	resp, err := s.submitAPIRequest(
		ctx,
		apiRequest{
			method: http.MethodPost,
			path:   "auth/sign_up",
			reqBodyObj: signupRequest{
				Email:    email,
				Password: password,
				Name:     name,
			},
		},
	)
	if err != nil {
		return err
	}
	if resp.statusCode != http.StatusOK {
		return NewErrAuthFailed(
			mapAuthError(decodeDetail(resp.body), "Signup failed"),
		)
	}
	return nil
}

func (s *sessionsClient) Confirm(
	ctx context.Context,
	token string,
) ConfirmResult {
	resp, err := s.submitAPIRequest(
		ctx,
		apiRequest{
			method: http.MethodPost,
			path:   "auth/confirm",
			reqBodyObj: confirmRequest{
				Token: token,
			},
		},
	)
	if err != nil {
		s.logger.Warn().Err(err).Msg("network error during email confirmation")
		return ConfirmResult{
			Message: "Network error during confirmation",
		}
	}
	if resp.statusCode != http.StatusOK {
		message := decodeDetail(resp.body)
		if message == "" {
			message = "Confirmation failed"
		}
		return ConfirmResult{
			Message: message,
		}
	}
	result := ConfirmResult{}
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return ConfirmResult{
			Message: "Confirmation failed",
		}
	}
	return result
}

func (s *sessionsClient) Logout(ctx context.Context) {
	if s.tokens.AccessToken() != "" {
		// Best effort only-- a failure to notify the backend never blocks the
		// local logout.
		logoutResp := logoutResponse{}
		if err := s.executeAPIRequest(
			ctx,
			apiRequest{
				method:       http.MethodPost,
				path:         "auth/logout",
				authenticate: true,
				respObj:      &logoutResp,
			},
		); err != nil {
			s.logger.Warn().Err(err).Msg("server-side logout failed")
		}
	}
	s.tokens.ClearTokens()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *sessionsClient) Refresh(_ context.Context) error {
	return s.refreshSession()
}

func (s *sessionsClient) Resume(_ context.Context) (User, bool) {
	if !s.tokens.HasRefreshToken() {
		return User{}, false
	}
	if err := s.refreshSession(); err != nil {
		s.logger.Debug().Err(err).Msg("session resume failed")
		s.tokens.ClearTokens()
		return User{}, false
	}
	user := userFromAccessToken(s.tokens.AccessToken(), s.tokens.UserID())
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, true
}

func (s *sessionsClient) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *sessionsClient) establishSession(authResp AuthResponse) User {
	s.tokens.SetTokens(
		authResp.AccessToken,
		authResp.RefreshToken,
		authResp.ExpiresIn,
		authResp.UserID,
	)
	user := userFromAccessToken(authResp.AccessToken, authResp.UserID)
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user
}

// mapAuthError maps the backend's detail text onto the fixed set of
// user-facing credential failure messages.
func mapAuthError(detail, fallback string) string {
	d := strings.ToLower(detail)
	switch {
	case strings.Contains(d, "invalid credentials"),
		strings.Contains(d, "user not found"):
		return "Invalid email or password"
	case strings.Contains(d, "email not confirmed"):
		return "Please verify your email before logging in"
	case strings.Contains(d, "user already registered"):
		return "This email is already registered"
	case strings.Contains(d, "account disabled"):
		return "Your account has been disabled"
	}
	if detail != "" {
		return detail
	}
	return fallback
}
