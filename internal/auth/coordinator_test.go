package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sobhan-h/subpanel-client/internal/config"
	"github.com/sobhan-h/subpanel-client/internal/panel"
	"github.com/sobhan-h/subpanel-client/internal/store"
)

func fixedVersion(v string) VersionLookup {
	return func() (string, error) { return v, nil }
}

func testCoordinator(t *testing.T, handler http.Handler, st store.Store, opts ...Option) *Coordinator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := panel.New(&config.Config{
		BaseURL:        srv.URL,
		ConnectTimeout: time.Second,
		ReadTimeout:    2 * time.Second,
	})
	return New(st, client, opts...)
}

func TestLoginPersistsTokenAndFirstLogin(t *testing.T) {
	st := store.NewMemStore()
	deviceID, err := st.DeviceID()
	require.NoError(t, err)

	now := time.UnixMilli(1_700_000_000_000)

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, deviceID, req["device_id"])
		assert.Equal(t, "3.1.4", req["app_version"])
		w.Write([]byte(`{"token":"tok-xyz"}`))
	}), st,
		WithVersionLookup(fixedVersion("3.1.4")),
		WithClock(func() time.Time { return now }),
	)

	token, err := coord.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", token)

	stored, err := st.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", stored)

	first, ok, err := st.FirstLogin()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now.UnixMilli(), first)
}

func TestLoginKeepsOriginalFirstLogin(t *testing.T) {
	st := store.NewMemStore()
	require.NoError(t, st.SetFirstLogin(111))

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-2"}`))
	}), st, WithVersionLookup(fixedVersion("1.0.0")))

	_, err := coord.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	first, ok, err := st.FirstLogin()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(111), first)
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	st := store.NewMemStore()

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"bad credentials"}`))
	}), st, WithVersionLookup(fixedVersion("1.0.0")))

	_, err := coord.Login(context.Background(), "alice", "wrong")
	var apiErr *panel.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad credentials", apiErr.Message)

	token, err := st.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	_, ok, err := st.FirstLogin()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReportAppUpdateIfNeededDedup(t *testing.T) {
	var reports atomic.Int32
	st := store.NewMemStore()

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/report-update", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0.0", req["new_version"])
		reports.Add(1)
		w.Write([]byte(`{}`))
	}), st, WithVersionLookup(fixedVersion("2.0.0")))

	reported, err := coord.ReportAppUpdateIfNeeded(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, reported)
	assert.Equal(t, int32(1), reports.Load())

	// Same version again: short-circuits without a network call.
	reported, err = coord.ReportAppUpdateIfNeeded(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, reported)
	assert.Equal(t, int32(1), reports.Load())

	last, ok, err := st.LastReportedVersion()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", last)
}

func TestReportAppUpdateFailureRetries(t *testing.T) {
	var reports atomic.Int32
	var failing atomic.Bool
	failing.Store(true)
	st := store.NewMemStore()

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reports.Add(1)
		if failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message":"maintenance"}`))
			return
		}
		w.Write([]byte(`{}`))
	}), st, WithVersionLookup(fixedVersion("2.0.0")))

	_, err := coord.ReportAppUpdateIfNeeded(context.Background(), "tok-1")
	require.Error(t, err)
	assert.Equal(t, int32(1), reports.Load())

	// A failed report must not mark the version as reported.
	_, ok, storeErr := st.LastReportedVersion()
	require.NoError(t, storeErr)
	assert.False(t, ok)

	// The next call retries the network report and persists on success.
	failing.Store(false)
	reported, err := coord.ReportAppUpdateIfNeeded(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, reported)
	assert.Equal(t, int32(2), reports.Load())

	last, ok, err := st.LastReportedVersion()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", last)
}

func TestReportAppUpdateVersionChange(t *testing.T) {
	var reports atomic.Int32
	st := store.NewMemStore()
	require.NoError(t, st.SetLastReportedVersion("1.9.0"))

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reports.Add(1)
		w.Write([]byte(`{}`))
	}), st, WithVersionLookup(fixedVersion("2.0.0")))

	reported, err := coord.ReportAppUpdateIfNeeded(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, reported)
	assert.Equal(t, int32(1), reports.Load())
}

func TestVersionLookupFailureFallsBack(t *testing.T) {
	st := store.NewMemStore()

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultVersion, req["new_version"])
		w.Write([]byte(`{}`))
	}), st, WithVersionLookup(func() (string, error) {
		return "", errors.New("package manager unavailable")
	}))

	reported, err := coord.ReportAppUpdateIfNeeded(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, reported)
}

// brokenStore fails every read to exercise local-failure propagation.
type brokenStore struct {
	*store.MemStore
}

func (b brokenStore) LastReportedVersion() (string, bool, error) {
	return "", false, errors.New("state file corrupted")
}

func TestReportAppUpdateLocalFailure(t *testing.T) {
	var reports atomic.Int32

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reports.Add(1)
		w.Write([]byte(`{}`))
	}), brokenStore{store.NewMemStore()}, WithVersionLookup(fixedVersion("2.0.0")))

	_, err := coord.ReportAppUpdateIfNeeded(context.Background(), "tok-1")
	var apiErr *panel.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, panel.KindLocal, apiErr.Kind)

	// Store failure surfaces before any network call is made.
	assert.Equal(t, int32(0), reports.Load())
}

func TestLogoutClearsTokenEvenOnServerFailure(t *testing.T) {
	st := store.NewMemStore()
	require.NoError(t, st.SetToken("tok-1"))

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), st)

	err := coord.Logout(context.Background(), "tok-1")
	require.Error(t, err)

	token, storeErr := st.Token()
	require.NoError(t, storeErr)
	assert.Empty(t, token)
}

func TestKeepaliveUnauthorizedPassesThrough(t *testing.T) {
	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), store.NewMemStore())

	err := coord.Keepalive(context.Background(), "stale")
	assert.ErrorIs(t, err, panel.ErrUnauthorized)
}

func TestReportAppUpdateIfNeededAsync(t *testing.T) {
	st := store.NewMemStore()

	coord := testCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}), st, WithVersionLookup(fixedVersion("2.0.0")))

	select {
	case res := <-coord.ReportAppUpdateIfNeededAsync(context.Background(), "tok-1"):
		require.NoError(t, res.Err)
		assert.True(t, res.Value)
	case <-time.After(5 * time.Second):
		t.Fatal("async report did not resolve")
	}
}
