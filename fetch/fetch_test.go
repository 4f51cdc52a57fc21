package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGet_Success verifies body and User-Agent
func TestGet_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	client := NewClient(0, "")
	body, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "<html>ok</html>", body)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

// TestGet_CustomUserAgent verifies the configured User-Agent is sent
func TestGet_CustomUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	_, err := NewClient(time.Second, "tester/2.0").Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "tester/2.0", gotUA)
}

// TestGet_HTTPError verifies non-success status becomes FetchError
func TestGet_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	body, err := NewClient(time.Second, "").Get(context.Background(), server.URL)
	assert.Empty(t, body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Error(), "404")
}

// TestGet_ConnectionError verifies transport failures become FetchError
func TestGet_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(time.Second, "").Get(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
}

// TestGet_ContextCancelled verifies cancellation aborts the request
func TestGet_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(5*time.Second, "").Get(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
