package frps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	ilog "github.com/lunes-host/nodewatch/internal/log"
)

const listingBody = `{
	"proxies": [
		{"name": "web-1", "conf": {"custom_domains": ["a.example.com", "b.example.com"]}},
		{"name": "web-2", "conf": {"custom_domains": []}},
		{"name": "", "conf": {"custom_domains": ["ignored.example.com"]}}
	]
}`

func TestPollParsesProxyListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/proxy/http" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(listingBody))
	}))
	defer srv.Close()

	d := New(srv.URL, "", "", ilog.New("error"))
	if err := d.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := d.Snapshot()
	if got := snap.Clients["web-1"]; !reflect.DeepEqual(got, []string{"a.example.com", "b.example.com"}) {
		t.Fatalf("unexpected domains for web-1: %v", got)
	}
	if got, ok := snap.Clients["web-2"]; !ok || len(got) != 0 {
		t.Fatalf("expected web-2 with no domains, got %v (present=%v)", got, ok)
	}
	if _, ok := snap.Clients[""]; ok {
		t.Fatal("expected unnamed proxy to be skipped")
	}
	if snap.FetchedAt.IsZero() {
		t.Fatal("expected FetchedAt to be set")
	}
}

func TestPollSendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"proxies": []}`))
	}))
	defer srv.Close()

	d := New(srv.URL, "admin", "secret", ilog.New("error"))
	if err := d.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestPollFailureRetainsPreviousSnapshot(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(listingBody))
	}))
	defer srv.Close()

	d := New(srv.URL, "", "", ilog.New("error"))
	if err := d.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}

	fail = true
	if err := d.Poll(context.Background()); err == nil {
		t.Fatal("expected poll error")
	}
	if len(d.Snapshot().Clients) == 0 {
		t.Fatal("expected previous snapshot to be retained after a failed poll")
	}
}

func TestPollDisabledDirectory(t *testing.T) {
	d := New("", "", "", ilog.New("error"))
	if d.Enabled() {
		t.Fatal("expected directory without URL to be disabled")
	}
	if err := d.Poll(context.Background()); err == nil {
		t.Fatal("expected poll on disabled directory to fail")
	}
}
