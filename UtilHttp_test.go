package goghostex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHttpRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DEFAULT_USER_AGENT, r.Header.Get("User-Agent"))
		assert.Equal(t, "key", r.Header.Get("X-MBX-APIKEY"))
		w.Header().Set("X-MBX-USED-WEIGHT-1M", "7")
		_, _ = w.Write([]byte(`{"serverTime":1499827319559}`))
	}))
	defer server.Close()

	resp, err := NewHttpRequest(context.Background(), server.Client(), http.MethodGet, server.URL, "",
		map[string]string{"X-MBX-APIKEY": "key"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "7", resp.Header.Get("x-mbx-used-weight-1m"))
	assert.JSONEq(t, `{"serverTime":1499827319559}`, string(resp.Body))
}

func TestNewHttpRequest_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/limited":
			w.Header().Set("X-MBX-USED-WEIGHT-1M", "6001")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":-1003,"msg":"Too much request weight used."}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream down`))
		}
	}))
	defer server.Close()

	resp, err := NewHttpRequest(context.Background(), server.Client(), http.MethodGet, server.URL+"/limited", "", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "6001", resp.Header.Get("X-Mbx-Used-Weight-1m"))

	var apiErr Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, -1003, apiErr.Code())
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HttpStatus())
	assert.True(t, IsTooManyRequests(err))
	assert.True(t, IsTooManyRequests(errors.Wrap(err, "get depth")))

	_, err = NewHttpRequest(context.Background(), server.Client(), http.MethodGet, server.URL+"/other", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
	assert.False(t, IsTooManyRequests(err))
}

func TestNewHttpRequest_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := NewHttpRequest(ctx, http.DefaultClient, http.MethodGet, "http://127.0.0.1:1", "", nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, context.Canceled)
}
