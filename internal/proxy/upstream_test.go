package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/booky-next/internal/config"
)

func testEndpoints() config.UpstreamEndpoints {
	return config.UpstreamEndpoints{
		Books:      "/books",
		BookDetail: "/books/:id",
		BookReview: "reviews/book/:id",
		PostLoan:   "/loans",
	}
}

func TestResolveURLSubstitutesID(t *testing.T) {
	up, err := New(config.UpstreamConfig{BaseURL: "https://api.example.com/v1/", Endpoints: testEndpoints()}, nil)
	if err != nil {
		t.Fatalf("new upstream failed: %v", err)
	}
	got, err := up.ResolveURL(EndpointBookReview, "a b", url.Values{"page": {"1"}, "limit": {"10"}})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	want := "https://api.example.com/v1/reviews/book/a%20b?limit=10&page=1"
	if got != want {
		t.Fatalf("url want %s got %s", want, got)
	}
	if _, err := up.ResolveURL(EndpointProfile, "", nil); !errors.Is(err, ErrEndpointUnknown) {
		t.Fatalf("unconfigured endpoint want ErrEndpointUnknown got %v", err)
	}
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	if _, err := New(config.UpstreamConfig{BaseURL: "not a url"}, nil); !errors.Is(err, ErrBaseURLInvalid) {
		t.Fatalf("want ErrBaseURLInvalid got %v", err)
	}
}

func TestDoForwardsHeadersAndBody(t *testing.T) {
	var gotAuth, gotBody, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	up, err := New(config.UpstreamConfig{BaseURL: srv.URL, Endpoints: testEndpoints()}, srv.Client())
	if err != nil {
		t.Fatalf("new upstream failed: %v", err)
	}
	res, err := up.Do(context.Background(), Request{
		Endpoint:      EndpointPostLoan,
		Method:        http.MethodPost,
		Body:          []byte(`{"bookId":1,"days":3}`),
		Authorization: "Bearer jwt",
	})
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if !res.OK() || res.Status != http.StatusCreated {
		t.Fatalf("status want 201 got %d", res.Status)
	}
	if gotMethod != http.MethodPost || gotAuth != "Bearer jwt" || gotBody != `{"bookId":1,"days":3}` {
		t.Fatalf("unexpected forwarded request method=%s auth=%s body=%s", gotMethod, gotAuth, gotBody)
	}
}

func TestDoReturnsNon2xxAsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"x"}`))
	}))
	defer srv.Close()

	up, err := New(config.UpstreamConfig{BaseURL: srv.URL, Endpoints: testEndpoints()}, srv.Client())
	if err != nil {
		t.Fatalf("new upstream failed: %v", err)
	}
	res, err := up.Do(context.Background(), Request{Endpoint: EndpointBookDetail, ID: "9"})
	if err != nil {
		t.Fatalf("non-2xx should not be an error: %v", err)
	}
	if res.OK() || res.Status != http.StatusNotFound || string(res.Body) != `{"message":"x"}` {
		t.Fatalf("unexpected result: %d %s", res.Status, res.Body)
	}
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	up, err := New(config.UpstreamConfig{BaseURL: base, Endpoints: testEndpoints()}, nil)
	if err != nil {
		t.Fatalf("new upstream failed: %v", err)
	}
	if _, err := up.Do(context.Background(), Request{Endpoint: EndpointBooks}); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("want ErrRequestFailed got %v", err)
	}
}
