package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetStatistics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/cache/statistics", r.URL.Path)
		assert.Equal(t, "ModelCosts", r.URL.Query().Get("region"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"region":"ModelCosts","total_hits":12,"hit_rate":75}}`))
	}))
	defer srv.Close()

	stats, err := New(srv.URL).GetStatistics(t.Context(), "ModelCosts")
	require.NoError(t, err)
	assert.Equal(t, "ModelCosts", stats.Region)
	assert.Equal(t, int64(12), stats.TotalHits)
	assert.Equal(t, 75.0, stats.HitRate)
}

func TestClient_ClearCacheSendsUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/custom/cache/all", r.URL.Path)
		assert.Equal(t, "ops", r.Header.Get(headerAdminUser))
		_, _ = w.Write([]byte(`{"success":true,"message":"All caches cleared"}`))
	}))
	defer srv.Close()

	msg, err := New(srv.URL+"/", WithPrefix("/custom"), WithUser("ops")).ClearCache(t.Context(), "all")
	require.NoError(t, err)
	assert.Equal(t, "All caches cleared", msg)
}

func TestClient_APIError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Request validation failed","details":"unknown region"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetStatistics(t.Context(), "Nope")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "unknown region")
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestClient_RetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"SERVICE_UNAVAILABLE","message":"starting"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[{"region":"VirtualKeys","key_pattern":"vkey:*","hit_count":3}]}`))
	}))
	defer srv.Close()

	items, err := New(srv.URL, WithTimeout(5*time.Second)).GetTopCachedItems(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "vkey:*", items[0].KeyPattern)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_InvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy</html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithAttempts(1)).GetConfiguration(t.Context())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_RESPONSE", apiErr.Code)
}
