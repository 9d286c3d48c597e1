package gcs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return &Client{
		httpClient:    srv.Client(),
		defaultBucket: "nyumbalink-media",
		tokenSource: &tokenSource{
			fetch: func(context.Context) (string, time.Time, error) {
				return "test-token", time.Now().Add(time.Hour), nil
			},
		},
		apiBase:    srv.URL + "/storage/v1",
		uploadBase: srv.URL + "/upload/storage/v1",
		publicBase: "https://storage.googleapis.com",
	}
}

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "tok", time.Now().Add(time.Hour), nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if token != "tok" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}
}

func TestTokenSourceRefreshesNearExpiry(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "tok", time.Now().Add(30 * time.Second), nil
		},
	}

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refresh inside expiry window, got %d fetches", calls)
	}
}

func TestUploadObjectReturnsPublicURL(t *testing.T) {
	t.Parallel()

	var gotAuth, gotContentType, gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotName = r.URL.Query().Get("name")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"listings/abc/cover.jpg"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	url, err := client.UploadObject(context.Background(), "", "listings/abc/cover.jpg", "image/jpeg", []byte("jpegdata"))
	if err != nil {
		t.Fatalf("UploadObject: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotContentType != "image/jpeg" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if gotName != "listings/abc/cover.jpg" {
		t.Fatalf("unexpected object name %q", gotName)
	}
	want := "https://storage.googleapis.com/nyumbalink-media/listings/abc/cover.jpg"
	if url != want {
		t.Fatalf("unexpected public url %q", url)
	}
}

func TestUploadObjectSurfacesServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if _, err := client.UploadObject(context.Background(), "", "k", "image/png", nil); err == nil {
		t.Fatal("expected error from 503 response")
	}
}

func TestDeleteObjectMissingIsSentinel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	err := client.DeleteObject(context.Background(), "", "listings/gone.jpg")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestDeleteObjectSuccess(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if err := client.DeleteObject(context.Background(), "", "listings/abc/cover.jpg"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Fatalf("unexpected method %q", gotMethod)
	}
	// Object names are a single path segment in the JSON API.
	if gotPath != "/storage/v1/b/nyumbalink-media/o/listings%2Fabc%2Fcover.jpg" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestObjectURLEscapesSegments(t *testing.T) {
	t.Parallel()

	client := &Client{defaultBucket: "nyumbalink-media"}
	got := client.ObjectURL("nyumbalink-media", "pages/home/hero image.png")
	want := "https://storage.googleapis.com/nyumbalink-media/pages/home/hero%20image.png"
	if got != want {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestPingChecksBucketListing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/b/nyumbalink-media/o" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
