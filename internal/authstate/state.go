// Package authstate is the single source of truth for "who is logged in".
// It consumes the request pipeline and token store, and subscribes to the
// session signal so an invalidated session clears it without any view
// driving the teardown.
package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/audit"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/backend"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/logging"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/session"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/tokenstore"
)

type Phase int

const (
	Uninitialized Phase = iota
	Loading
	Authenticated
	Anonymous
)

// Snapshot is what route guards and views read. IsAdmin is always derived
// from the role, never set on its own.
type Snapshot struct {
	User    *backend.User
	IsAdmin bool
	Loading bool
}

// Result is how expected auth failures surface. Callers branch on it instead
// of catching errors; wrong-password is not exceptional.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type State struct {
	client *api.Client
	store  *tokenstore.Store
	events *audit.Producer

	mu    sync.Mutex
	phase Phase
	user  *backend.User

	unsubscribe func()
}

func New(client *api.Client, store *tokenstore.Store, signal *session.Signal, events *audit.Producer) *State {
	s := &State{
		client: client,
		store:  store,
		events: events,
		phase:  Uninitialized,
	}
	s.unsubscribe = signal.Subscribe(s.onInvalidated)
	return s
}

// Close detaches from the session signal.
func (s *State) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *State) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		User:    s.user,
		IsAdmin: s.user != nil && s.user.Role == backend.RoleAdmin,
		Loading: s.phase == Uninitialized || s.phase == Loading,
	}
}

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Initialize resolves the stored token into a session. No token means
// anonymous without a single network call; a token that no longer resolves a
// profile is cleared defensively. A cached profile from the previous run
// seeds the session immediately so views render while the fetch revalidates.
func (s *State) Initialize(ctx context.Context) {
	if s.store.Get() == nil {
		s.setAnonymous()
		return
	}

	if cached := s.cachedUser(); cached != nil {
		s.setAuthenticated(cached)
	} else {
		s.setPhase(Loading)
	}

	user, err := s.fetchProfile(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("session restore failed", "error", err)
		s.store.Clear()
		s.setAnonymous()
		return
	}
	s.setAuthenticated(user)
}

func (s *State) cachedUser() *backend.User {
	raw := s.store.CachedProfile()
	if len(raw) == 0 {
		return nil
	}
	var user backend.User
	if err := json.Unmarshal(raw, &user); err != nil || user.ID == "" {
		return nil
	}
	return &user
}

func (s *State) fetchProfile(ctx context.Context) (*backend.User, error) {
	resp, err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/user/profile",
	})
	if err != nil {
		return nil, err
	}
	var user backend.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	s.store.SaveProfile(resp.Body)
	return &user, nil
}

// Login authenticates and, on success, stores the token and the profile
// returned alongside it. Expected failures (bad credentials, blocked,
// unverified) come back as a Result, not an error.
func (s *State) Login(ctx context.Context, email, password string) Result {
	if email == "" || password == "" {
		return Result{Success: false, Message: "email and password are required", Code: "validation"}
	}

	resp, err := s.client.Do(ctx, api.Request{
		Method:       http.MethodPost,
		Path:         "/auth/login",
		Body:         map[string]string{"email": email, "password": password},
		AuthEndpoint: true,
	})
	if err != nil {
		return resultFromErr(err)
	}

	var payload struct {
		AccessToken       string        `json:"access_token"`
		AccessTokenPascal string        `json:"AccessToken"`
		User              *backend.User `json:"user"`
		UserPascal        *backend.User `json:"User"`
	}
	if err := resp.Decode(&payload); err != nil {
		return Result{Success: false, Message: "operation failed"}
	}
	token := payload.AccessToken
	if token == "" {
		token = payload.AccessTokenPascal
	}
	user := payload.User
	if user == nil {
		user = payload.UserPascal
	}
	if token == "" || user == nil {
		return Result{Success: false, Message: "operation failed"}
	}

	s.store.Set(token)
	s.setAuthenticated(user)
	s.publish(ctx, audit.TopicSessionEvents, user.ID, "user_logged_in")
	return Result{Success: true}
}

// Signup registers an account; it does not authenticate. Success means
// verification pending.
func (s *State) Signup(ctx context.Context, name, email, password string) Result {
	if name == "" || email == "" || password == "" {
		return Result{Success: false, Message: "name, email and password are required", Code: "validation"}
	}
	return s.passThrough(ctx, "/auth/signup", map[string]string{
		"name": name, "email": email, "password": password,
	})
}

func (s *State) VerifyOTP(ctx context.Context, email, code string) Result {
	return s.passThrough(ctx, "/auth/verify-otp", map[string]string{
		"email": email, "otp": code,
	})
}

func (s *State) ResendVerification(ctx context.Context, email string) Result {
	return s.passThrough(ctx, "/auth/resend-verification", map[string]string{"email": email})
}

func (s *State) ForgotPassword(ctx context.Context, email string) Result {
	return s.passThrough(ctx, "/auth/forgot-password", map[string]string{"email": email})
}

func (s *State) ResetPassword(ctx context.Context, email, otp, newPassword string) Result {
	return s.passThrough(ctx, "/auth/reset-password", map[string]string{
		"email": email, "otp": otp, "new_password": newPassword,
	})
}

// ChangePassword runs against the live session, so unlike the other password
// operations it is not an auth endpoint: an expired token here refreshes
// like any other authenticated call.
func (s *State) ChangePassword(ctx context.Context, current, newPassword string) Result {
	resp, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/change-password",
		Body:   map[string]string{"current_password": current, "new_password": newPassword},
	})
	if err != nil {
		return resultFromErr(err)
	}
	return resultFromResponse(resp)
}

// Refresh rotates the token silently. The profile and the session stay as
// they are; only the token's lifetime is extended.
func (s *State) Refresh(ctx context.Context) error {
	return s.client.Refresh(ctx)
}

// Logout invalidates server-side best effort, then clears locally no matter
// what. It never fails.
func (s *State) Logout(ctx context.Context) {
	snap := s.Current()

	_, err := s.client.Do(ctx, api.Request{
		Method:       http.MethodPost,
		Path:         "/auth/logout",
		AuthEndpoint: true,
	})
	if err != nil {
		logging.FromContext(ctx).Debug("server-side logout failed", "error", err)
	}

	s.store.Clear()
	s.setAnonymous()
	if snap.User != nil {
		s.publish(ctx, audit.TopicSessionEvents, snap.User.ID, "user_logged_out")
	}
}

func (s *State) onInvalidated(reason session.Reason) {
	s.mu.Lock()
	user := s.user
	s.user = nil
	s.phase = Anonymous
	s.mu.Unlock()

	if user != nil {
		s.publish(context.Background(), audit.TopicSessionEvents, user.ID,
			"session_invalidated:"+string(reason))
	}
}

func (s *State) passThrough(ctx context.Context, path string, body any) Result {
	resp, err := s.client.Do(ctx, api.Request{
		Method:       http.MethodPost,
		Path:         path,
		Body:         body,
		AuthEndpoint: true,
	})
	if err != nil {
		return resultFromErr(err)
	}
	return resultFromResponse(resp)
}

func (s *State) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

func (s *State) setAuthenticated(user *backend.User) {
	s.mu.Lock()
	s.user = user
	s.phase = Authenticated
	s.mu.Unlock()
}

func (s *State) setAnonymous() {
	s.mu.Lock()
	s.user = nil
	s.phase = Anonymous
	s.mu.Unlock()
}

func (s *State) publish(ctx context.Context, topic, key, kind string) {
	s.events.Publish(ctx, topic, key, map[string]any{"type": kind, "user_id": key})
}

func resultFromErr(err error) Result {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return Result{Success: false, Message: apiErr.Message, Code: apiErr.Code}
	}
	return Result{Success: false, Message: "operation failed"}
}

func resultFromResponse(resp *api.Response) Result {
	var payload struct {
		Message       string `json:"message"`
		MessagePascal string `json:"Message"`
	}
	_ = resp.Decode(&payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.MessagePascal
	}
	return Result{Success: true, Message: msg}
}
