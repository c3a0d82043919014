package authstate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/session"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/tokenstore"
)

type testEnv struct {
	state  *State
	store  *tokenstore.Store
	signal *session.Signal

	networkCalls atomic.Int32
}

func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	env := &testEnv{signal: session.NewSignal()}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.networkCalls.Add(1)
		if handler == nil {
			http.NotFound(w, r)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	store, err := tokenstore.Open(filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, err)
	env.store = store

	client := api.NewClient(srv.URL, store, env.signal)
	env.state = New(client, store, env.signal, nil)
	t.Cleanup(env.state.Close)
	return env
}

func profileHandler(role string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u1","name":"Amina","email":"a@example.com","role":"` + role + `","is_verified":true,"is_blocked":false}`))
	})
	return mux
}

func TestInitialize_NoTokenMeansAnonymousWithoutNetwork(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	env.state.Initialize(context.Background())

	snap := env.state.Current()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
	assert.Equal(t, Anonymous, env.state.Phase())
	assert.EqualValues(t, 0, env.networkCalls.Load())
}

func TestInitialize_AdminFlagDerivedFromRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role    string
		isAdmin bool
	}{
		{role: "admin", isAdmin: true},
		{role: "user", isAdmin: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.role, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, profileHandler(tt.role))
			env.store.Set("stored-token")

			env.state.Initialize(context.Background())

			snap := env.state.Current()
			require.NotNil(t, snap.User)
			assert.Equal(t, tt.isAdmin, snap.IsAdmin)
			assert.False(t, snap.Loading)
		})
	}
}

func TestInitialize_ProfileFetchFailureClearsToken(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"expired"}`))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"expired"}`))
	})

	env := newTestEnv(t, mux)
	env.store.Set("dead-token")

	env.state.Initialize(context.Background())

	assert.Equal(t, Anonymous, env.state.Phase())
	assert.Nil(t, env.store.Get())
}

func TestLogin_SuccessStoresTokenAndProfile(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"fresh-token","user":{"id":"u1","name":"Amina","email":"a@example.com","role":"user","is_verified":true}}`))
	})

	env := newTestEnv(t, mux)

	res := env.state.Login(context.Background(), "a@example.com", "secret")
	require.True(t, res.Success)

	snap := env.state.Current()
	require.NotNil(t, snap.User)
	assert.Equal(t, "Amina", snap.User.Name)
	assert.False(t, snap.IsAdmin)

	tok := env.store.Get()
	require.NotNil(t, tok)
	assert.Equal(t, "fresh-token", tok.Value)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid credentials"}}`))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})

	env := newTestEnv(t, mux)
	env.state.Initialize(context.Background())

	res := env.state.Login(context.Background(), "bad@example.com", "wrongpass")

	assert.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Message)
	assert.Equal(t, Anonymous, env.state.Phase())
	assert.Nil(t, env.state.Current().User)
	assert.EqualValues(t, 0, refreshCalls.Load())
}

func TestLogin_EmptyInputsRejectedLocally(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	res := env.state.Login(context.Background(), "", "")

	assert.False(t, res.Success)
	assert.Equal(t, "validation", res.Code)
	assert.EqualValues(t, 0, env.networkCalls.Load())
}

func TestLogout_IdempotentAndNeverFails(t *testing.T) {
	t.Parallel()

	// Backend is unreachable for logout; local clearing must still happen.
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	env.store.Set("tok")

	require.NotPanics(t, func() {
		env.state.Logout(context.Background())
		env.state.Logout(context.Background())
	})

	assert.Nil(t, env.store.Get())
	assert.Equal(t, Anonymous, env.state.Phase())
}

func TestSessionSignal_ClearsAuthenticatedState(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, profileHandler("user"))
	env.store.Set("stored-token")
	env.state.Initialize(context.Background())
	require.NotNil(t, env.state.Current().User)

	env.signal.Publish(session.ReasonExpired)

	snap := env.state.Current()
	assert.Nil(t, snap.User)
	assert.False(t, snap.IsAdmin)
	assert.Equal(t, Anonymous, env.state.Phase())
}

func TestPasswordOperations_DoNotTouchSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	})

	env := newTestEnv(t, mux)
	env.state.setAnonymous()

	ctx := context.Background()
	for _, res := range []Result{
		env.state.ForgotPassword(ctx, "a@example.com"),
		env.state.ResetPassword(ctx, "a@example.com", "123456", "newpass"),
		env.state.VerifyOTP(ctx, "a@example.com", "123456"),
		env.state.ResendVerification(ctx, "a@example.com"),
	} {
		assert.True(t, res.Success)
		assert.Equal(t, "ok", res.Message)
	}

	assert.Equal(t, Anonymous, env.state.Phase())
	assert.Nil(t, env.store.Get())
}

func TestSignup_DoesNotAuthenticate(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"verification pending"}`))
	})

	env := newTestEnv(t, mux)
	env.state.setAnonymous()

	res := env.state.Signup(context.Background(), "Amina", "a@example.com", "secret")

	require.True(t, res.Success)
	assert.Equal(t, "verification pending", res.Message)
	assert.Nil(t, env.state.Current().User)
	assert.Nil(t, env.store.Get())
}

func TestInitialize_CachedProfileRendersWhileRevalidating(t *testing.T) {
	t.Parallel()

	// The profile handler snapshots the state mid-fetch: the previous run's
	// cached user must already be visible before the backend answers.
	var mu sync.Mutex
	var midFlight Snapshot
	var env *testEnv

	mux := http.NewServeMux()
	mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		midFlight = env.state.Current()
		mu.Unlock()
		w.Write([]byte(`{"id":"u1","name":"Fresh","email":"a@example.com","role":"user","is_verified":true}`))
	})

	env = newTestEnv(t, mux)
	env.store.Set("stored-token")
	env.store.SaveProfile([]byte(`{"id":"u1","name":"Cached","email":"a@example.com","role":"user","is_verified":true}`))

	env.state.Initialize(context.Background())

	mu.Lock()
	seeded := midFlight
	mu.Unlock()
	require.NotNil(t, seeded.User, "cached profile must be visible before the fetch resolves")
	assert.Equal(t, "Cached", seeded.User.Name)
	assert.False(t, seeded.Loading)

	snap := env.state.Current()
	require.NotNil(t, snap.User)
	assert.Equal(t, "Fresh", snap.User.Name, "the fetched profile replaces the cached one")
	assert.Contains(t, string(env.store.CachedProfile()), "Fresh")
}

func TestInitialize_CorruptCachedProfileFallsBackToLoading(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, profileHandler("user"))
	env.store.Set("stored-token")
	env.store.SaveProfile([]byte(`{not json`))

	env.state.Initialize(context.Background())

	snap := env.state.Current()
	require.NotNil(t, snap.User)
	assert.Equal(t, "Amina", snap.User.Name)
}

func TestRefresh_RotatesTokenWithoutTouchingProfile(t *testing.T) {
	t.Parallel()

	var profileCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		w.Write([]byte(`{"id":"u1","name":"Amina","email":"a@example.com","role":"user","is_verified":true}`))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.Write([]byte(`{"access_token":"rotated-token"}`))
	})

	env := newTestEnv(t, mux)
	env.store.Set("live-token")
	env.state.Initialize(context.Background())
	require.NotNil(t, env.state.Current().User)

	require.NoError(t, env.state.Refresh(context.Background()))

	tok := env.store.Get()
	require.NotNil(t, tok)
	assert.Equal(t, "rotated-token", tok.Value)
	assert.EqualValues(t, 1, refreshCalls.Load())
	assert.EqualValues(t, 1, profileCalls.Load(), "a silent refresh does not refetch the profile")

	snap := env.state.Current()
	require.NotNil(t, snap.User)
	assert.Equal(t, "Amina", snap.User.Name)
	assert.Equal(t, Authenticated, env.state.Phase())
}
