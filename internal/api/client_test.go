package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDecodesEnvelopeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blog", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"title":"hello"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	var out struct {
		Title string `json:"title"`
	}
	err := c.Get(context.Background(), "/blog", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Title)
}

func TestSuccessFalseBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"nope"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "nope", apiErr.Error())
	assert.Equal(t, http.StatusOK, apiErr.Status)
}

func TestFirstValidationErrorPreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Validation failed","errors":[{"field":"email","message":"Invalid email"},{"field":"name","message":"Too short"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Post(context.Background(), "/contact", map[string]string{}, nil)
	require.Error(t, err)
	apiErr := err.(*Error)
	assert.Equal(t, "Invalid email", apiErr.Error())
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestNon2xxWithoutBodyEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Conversation not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Get(context.Background(), "/chatbot/conversation/abc", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestTransportFailureNormalizedToStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	c := NewClient(srv.URL, time.Second)
	err := c.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	apiErr := err.(*Error)
	assert.Equal(t, 0, apiErr.Status)
	assert.Contains(t, apiErr.Message, "Network error")
}

func TestNonJSONResponseNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.Equal(t, 0, err.(*Error).Status)
}

func TestTransportFailureRetriedOnce(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Post(context.Background(), "/chatbot/message", map[string]string{"message": "hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestMultipartBoundarySetByWriter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		assert.True(t, strings.HasPrefix(ct, "multipart/form-data; boundary="), "unexpected content type %q", ct)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "sess-1", r.FormValue("sessionId"))
		f, hdr, err := r.FormFile("files")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "idea.pdf", hdr.Filename)
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.PostMultipart(context.Background(), "/chatbot/message",
		map[string]string{"sessionId": "sess-1"},
		[]Upload{{Field: "files", Filename: "idea.pdf", MimeType: "application/pdf", Data: []byte("%PDF")}},
		nil)
	require.NoError(t, err)
}

func TestResolveBaseURLFallback(t *testing.T) {
	t.Setenv("PORTAL_API_BASE_URL", "")
	assert.Equal(t, defaultBaseURL, ResolveBaseURL(""))
	t.Setenv("PORTAL_API_BASE_URL", "http://backend:5000/api")
	assert.Equal(t, "http://backend:5000/api", ResolveBaseURL(""))
	assert.Equal(t, "http://explicit/api", ResolveBaseURL("http://explicit/api"))
}
