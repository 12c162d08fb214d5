package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/middleware"
)

func newClient(t *testing.T, handler http.HandlerFunc) *UserClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewUserClient(Config{
		BaseURL:            srv.URL,
		Timeout:            2 * time.Second,
		BreakerFailures:    2,
		BreakerOpenTimeout: time.Minute,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFindByEmail_ForwardsTokenAndDecodes(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/users/email/a@x.com", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"userId":          123,
			"document":        "CC-1",
			"name":            "Ana",
			"lastName":        "Ruiz",
			"email":           "a@x.com",
			"maxIndebtedness": 2000000,
			"baseSalary":      "5000000",
		})
	})

	ctx := middleware.WithBearerToken(context.Background(), "tok-1")
	p, err := c.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(123), p.UserID)
	assert.Equal(t, "Ana Ruiz", p.FullName())
	assert.Equal(t, "2000000", p.MaxIndebtedness.String())
	assert.Equal(t, "5000000", p.BaseSalary.String())
}

func TestFindByEmail_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   domain.Kind
	}{
		{http.StatusUnauthorized, domain.KindUnauthorized},
		{http.StatusForbidden, domain.KindForbidden},
		{http.StatusNotFound, domain.KindNotFound},
		{http.StatusUnprocessableEntity, domain.KindBadRequest},
		{http.StatusBadGateway, domain.KindUpstream},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("boom"))
			})
			_, err := c.FindByEmail(context.Background(), "a@x.com")
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.KindOf(err))
		})
	}
}

func TestFindByEmail_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for range 5 {
		_, err := c.FindByEmail(context.Background(), "ghost@x.com")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestFindByEmail_ServerErrorsOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for range 4 {
		_, err := c.FindByEmail(context.Background(), "a@x.com")
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestFindByIDs(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users/batch", r.URL.Path)

		var body batchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []int64{1, 2}, body.IDs)

		writeJSON(w, http.StatusOK, []map[string]any{
			{"userId": 1, "name": "Ana", "lastName": "Ruiz", "baseSalary": 100},
		})
	})

	profiles, err := c.FindByIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, int64(1), profiles[0].UserID)
}

func TestFindByIDs_EmptySkipsCall(t *testing.T) {
	c := newClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("unexpected call")
	})
	profiles, err := c.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestFindByIDs_NotFoundIsEmpty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	profiles, err := c.FindByIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}
