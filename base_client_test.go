package aware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, apiAddress string) *client {
	t.Helper()
	logger := zerolog.Nop()
	return NewClient(
		ClientConfig{
			APIAddress:        apiAddress,
			ImageKitUploadURL: "http://localhost:0",
			RequestTimeout:    10 * time.Second,
			Logger:            &logger,
		},
	).(*client)
}

func writeAuthResponse(w http.ResponseWriter, accessToken string) {
	json.NewEncoder(w).Encode( // nolint: errcheck
		AuthResponse{
			AccessToken:  accessToken,
			RefreshToken: "rotated-refresh",
			ExpiresIn:    3600,
			UserID:       "user-1",
		},
	)
}

// TestRefreshMutualExclusion has n requests receive 401 simultaneously and
// requires that exactly one refresh exchange results, with every original
// request retried successfully on the token that single exchange produced.
func TestRefreshMutualExclusion(t *testing.T) {
	const n = 5
	var refreshCount int32
	var staleArrivals int32
	staleReleased := make(chan struct{})
	var releaseOnce sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer fresh" {
			w.Write([]byte("{}")) // nolint: errcheck
			return
		}
		// Hold all stale-token requests, then release their 401s together so
		// every caller needs the refresh at the same moment.
		if atomic.AddInt32(&staleArrivals, 1) == n {
			releaseOnce.Do(func() { close(staleReleased) })
		}
		<-staleReleased
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc(
		"/auth/refresh",
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&refreshCount, 1)
			time.Sleep(100 * time.Millisecond)
			writeAuthResponse(w, "fresh")
		},
	)
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.tokens.SetTokens("stale", "refresh-1", 3600, "user-1")

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.executeAPIRequest(
				context.Background(),
				apiRequest{
					method:       http.MethodGet,
					path:         "ping",
					authenticate: true,
				},
			)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCount))
	require.Equal(t, "fresh", c.tokens.AccessToken())
	require.Equal(t, "rotated-refresh", c.tokens.RefreshToken())
}

// TestRetryBound requires that a request still unauthorized after a
// successful refresh fails with ErrSessionExpired instead of looping.
func TestRetryBound(t *testing.T) {
	var pingCount int32
	var refreshCount int32

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pingCount, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc(
		"/auth/refresh",
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&refreshCount, 1)
			writeAuthResponse(w, "fresh")
		},
	)
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.tokens.SetTokens("stale", "refresh-1", 3600, "user-1")

	err := c.executeAPIRequest(
		context.Background(),
		apiRequest{
			method:       http.MethodGet,
			path:         "ping",
			authenticate: true,
		},
	)
	sessionExpired := &ErrSessionExpired{}
	require.ErrorAs(t, err, &sessionExpired)
	require.Equal(t, int32(2), atomic.LoadInt32(&pingCount))
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCount))
}

// TestTransparentRefresh is the happy path: an expired access token and a
// valid refresh token produce a successful call with exactly one refresh
// round-trip and no caller-visible error.
func TestTransparentRefresh(t *testing.T) {
	var refreshCount int32

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("{}")) // nolint: errcheck
	})
	mux.HandleFunc(
		"/auth/refresh",
		func(w http.ResponseWriter, r *http.Request) {
			body := refreshTokenRequest{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "refresh-1", body.RefreshToken)
			atomic.AddInt32(&refreshCount, 1)
			writeAuthResponse(w, "fresh")
		},
	)
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.tokens.SetTokens("expired", "refresh-1", 3600, "user-1")

	require.NoError(
		t,
		c.executeAPIRequest(
			context.Background(),
			apiRequest{
				method:       http.MethodGet,
				path:         "ping",
				authenticate: true,
			},
		),
	)
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCount))
}

// TestFailedRefreshInvalidatesSession requires that an irrecoverable refresh
// clears the token store, fails the original call with ErrSessionExpired, and
// fires the session-invalidated signal exactly once.
func TestFailedRefreshInvalidatesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc(
		"/auth/refresh",
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode( // nolint: errcheck
				detailResponse{Detail: "invalid refresh token"},
			)
		},
	)
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.tokens.SetTokens("stale", "refresh-1", 3600, "user-1")

	var invalidations int32
	c.OnSessionInvalidated(func() {
		atomic.AddInt32(&invalidations, 1)
	})

	pingReq := apiRequest{
		method:       http.MethodGet,
		path:         "ping",
		authenticate: true,
	}
	err := c.executeAPIRequest(context.Background(), pingReq)
	sessionExpired := &ErrSessionExpired{}
	require.ErrorAs(t, err, &sessionExpired)
	require.Equal(t, int32(1), atomic.LoadInt32(&invalidations))
	require.Empty(t, c.tokens.AccessToken())
	require.False(t, c.tokens.HasRefreshToken())

	// A subsequent call has no refresh token to spend, so it fails the same
	// way without firing the signal again.
	err = c.executeAPIRequest(context.Background(), pingReq)
	require.ErrorAs(t, err, &sessionExpired)
	require.Equal(t, int32(1), atomic.LoadInt32(&invalidations))
}

func TestTimeoutClassification(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}),
	)
	defer server.Close()

	c := newTestClient(t, server.URL)
	err := c.executeAPIRequest(
		context.Background(),
		apiRequest{
			method:  http.MethodGet,
			path:    "ping",
			timeout: 20 * time.Millisecond,
		},
	)
	timeoutErr := &ErrTimeout{}
	require.ErrorAs(t, err, &timeoutErr)
	require.True(t, IsNetworkError(err))
}

func TestNetworkClassification(t *testing.T) {
	// A server that is already closed yields a connection failure.
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	c := newTestClient(t, server.URL)
	err := c.executeAPIRequest(
		context.Background(),
		apiRequest{
			method: http.MethodGet,
			path:   "ping",
		},
	)
	netErr := &ErrNetwork{}
	require.ErrorAs(t, err, &netErr)
	require.True(t, IsNetworkError(err))
}

func TestProcessingFailureClassification(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusExpectationFailed)
			json.NewEncoder(w).Encode( // nolint: errcheck
				detailResponse{Detail: "could not read the label"},
			)
		}),
	)
	defer server.Close()

	c := newTestClient(t, server.URL)
	err := c.executeAPIRequest(
		context.Background(),
		apiRequest{
			method: http.MethodPost,
			path:   "scan",
		},
	)
	processingErr := &ErrProcessing{}
	require.ErrorAs(t, err, &processingErr)
	require.Equal(t, "could not read the label", processingErr.Reason)
	require.False(t, IsNetworkError(err))
}

func TestGenericFailureCarriesDetail(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode( // nolint: errcheck
				detailResponse{Detail: "boom"},
			)
		}),
	)
	defer server.Close()

	c := newTestClient(t, server.URL)
	err := c.executeAPIRequest(
		context.Background(),
		apiRequest{
			method: http.MethodGet,
			path:   "ping",
		},
	)
	apiErr := &ErrAPI{}
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, "boom", apiErr.Detail)
}

func TestUnauthenticatedRequestOmitsBearer(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Empty(t, r.Header.Get("Authorization"))
			w.Write([]byte("{}")) // nolint: errcheck
		}),
	)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.tokens.SetTokens("access", "refresh", 3600, "user-1")
	require.NoError(
		t,
		c.executeAPIRequest(
			context.Background(),
			apiRequest{
				method: http.MethodPost,
				path:   "auth/login",
			},
		),
	)
}
