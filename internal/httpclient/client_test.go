package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Head_UserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithUserAgent("test-agent").Build()
	require.NoError(t, err)

	resp, err := client.Head(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ct, ok := resp.Header("content-type")
	assert.True(t, ok)
	assert.Equal(t, "application/json", ct)
}

func TestHTTPClient_Head_ThroughProxy(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "upstream.invalid", r.URL.Host)
		w.Header().Set("ETag", `"via-proxy"`)
	}))
	defer proxy.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithProxy(proxy.URL).WithHTTP2(false).Build()
	require.NoError(t, err)

	resp, err := client.Head(context.Background(), "http://upstream.invalid/feed.xml")
	require.NoError(t, err)

	etag, ok := resp.Header("ETag")
	assert.True(t, ok)
	assert.Equal(t, `"via-proxy"`, etag)
}

func TestHTTPClient_Head(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("ETag", `"v1"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)
	defer client.CloseIdleConnections()

	resp, err := client.Head(context.Background(), server.URL)
	require.NoError(t, err)

	etag, ok := resp.Header("ETag")
	assert.True(t, ok)
	assert.Equal(t, `"v1"`, etag)
	assert.False(t, resp.IsError())
}

func TestHTTPClient_Head_ErrorStatusIsNotTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	resp, err := client.Head(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, resp.IsError())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHTTPClient_Head_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	_, err = client.Head(context.Background(), url)
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, url, netErr.URL)
}

func TestHTTPClient_Head_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithTimeout(50 * time.Millisecond).Build()
	require.NoError(t, err)

	_, err = client.Head(context.Background(), server.URL)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestHTTPClient_Redirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.Header().Set("ETag", `"final"`)
	}))
	defer ts.Close()

	clientFollow, err := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(true).Build()
	require.NoError(t, err)
	resp, err := clientFollow.Head(context.Background(), ts.URL+"/redirect")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	etag, _ := resp.Header("ETag")
	assert.Equal(t, `"final"`, etag)

	clientNoFollow, err := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(false).Build()
	require.NoError(t, err)
	resp, err = clientNoFollow.Head(context.Background(), ts.URL+"/redirect")
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestHTTPError(t *testing.T) {
	err := NewHTTPErrorWithURL(404, "http://x")
	assert.Equal(t, "http error for URL 'http://x': status 404", err.Error())
}
