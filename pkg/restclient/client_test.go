package restclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ilbmart/pkg/restclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3005/api/v1", restclient.JoinURL("http://localhost:3005/", "/api/v1"))
	assert.Equal(t, "http://localhost:3005/api/v1", restclient.JoinURL("http://localhost:3005", "api/v1/"))
	assert.Equal(t, "http://localhost:3005", restclient.JoinURL("http://localhost:3005", ""))
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"abc"}}`))
	}))
	defer srv.Close()

	client := restclient.New(restclient.Config{BaseURL: srv.URL, Version: "/api/v1"})
	ctx := restclient.WithRequestID(context.Background(), "req-42")

	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	err := client.Post(ctx, "/user/cart", restclient.Scope{Token: "tok", Pincode: "201303"}, map[string]int{"quantity": 1}, &out)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/user/cart", gotPath)
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "201303", got.Get(restclient.HeaderPincode))
	assert.Equal(t, "req-42", got.Get(restclient.HeaderRequestID))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "abc", out.Data.Token)
}

func TestClient_NoScopeHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"categories":[]}`))
	}))
	defer srv.Close()

	client := restclient.New(restclient.Config{BaseURL: srv.URL})
	require.NoError(t, client.Get(context.Background(), "/public/categories", restclient.Scope{}, nil))

	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get(restclient.HeaderPincode))
	assert.NotEmpty(t, got.Get(restclient.HeaderRequestID))
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/http":
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid coupon"})
		case "/app":
			_, _ = w.Write([]byte(`{"success":false,"message":"Could not send OTP"}`))
		case "/status":
			_, _ = w.Write([]byte(`{"status":false,"message":"nope"}`))
		}
	}))

	client := restclient.New(restclient.Config{BaseURL: srv.URL})
	ctx := context.Background()

	err := client.Post(ctx, "/http", restclient.Scope{}, nil, nil)
	require.Error(t, err)
	assert.True(t, restclient.IsHTTP(err))
	assert.Equal(t, http.StatusBadRequest, restclient.StatusCode(err))
	assert.Equal(t, "Invalid coupon", restclient.Message(err))

	err = client.Post(ctx, "/app", restclient.Scope{}, nil, nil)
	require.Error(t, err)
	assert.True(t, restclient.IsApp(err))
	assert.Equal(t, "Could not send OTP", restclient.Message(err))

	err = client.Get(ctx, "/status", restclient.Scope{}, nil)
	assert.True(t, restclient.IsApp(err))

	srv.Close()
	err = client.Get(ctx, "/http", restclient.Scope{}, nil)
	require.Error(t, err)
	assert.True(t, restclient.IsNetwork(err))
	assert.Zero(t, restclient.StatusCode(err))
}

func TestClient_GetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	client := restclient.New(restclient.Config{
		BaseURL: srv.URL,
		Retry: restclient.RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			MaxDelay:      5 * time.Millisecond,
			BackoffFactor: 2,
		},
	})
	require.NoError(t, client.Get(context.Background(), "/x", restclient.Scope{}, nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_NoRetryByDefaultOrForClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := restclient.New(restclient.Config{BaseURL: srv.URL})
	err := client.Get(context.Background(), "/x", restclient.Scope{}, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, restclient.ErrMaxRetriesExceeded))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	client = restclient.New(restclient.Config{
		BaseURL: srv.URL,
		Retry:   restclient.RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond},
	})
	err = client.Get(context.Background(), "/x", restclient.Scope{}, nil)
	assert.ErrorIs(t, err, restclient.ErrMaxRetriesExceeded)
	assert.Equal(t, http.StatusInternalServerError, restclient.StatusCode(err))

	atomic.StoreInt32(&calls, 0)
	require.Error(t, client.Post(context.Background(), "/x", restclient.Scope{}, nil, nil))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "mutations are never retried")
}
