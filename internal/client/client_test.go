package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
)

var ctx = context.Background()

type staticToken string

func (t staticToken) Token() string {
	return string(t)
}

type campaign struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func backend(t *testing.T) *httptest.Server {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/campaigns", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer secret" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Could not validate credentials"}`))
				return
			}
			json.NewEncoder(w).Encode([]campaign{{ID: 1, Name: "Lost Mines"}})
		})
		r.Get("/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Campaign not found"}`))
		})
		r.Post("/campaigns", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":[{"loc":["body","name"],"msg":"field required"}]}`))
		})
		r.Delete("/characters/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/users/search", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]string{r.URL.Query().Get("q")})
		})
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Error(err)
			}
			if r.Header.Get("Authorization") != "" {
				t.Error("login must not carry a bearer token")
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": r.Form.Get("username")})
		})
		r.Get("/teapot", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	})
	return httptest.NewServer(r)
}

func newClient(t *testing.T, server *httptest.Server, token string) *HttpClient {
	base, err := url.Parse(server.URL + "/api/v1")
	if err != nil {
		t.Fatal(err)
	}
	return New(base, staticToken(token), server.Client())
}

func TestDo_AttachesBearerToken(t *testing.T) {
	server := backend(t)
	defer server.Close()

	var got []campaign
	err := newClient(t, server, "secret").Get(ctx, "/campaigns", &got)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]campaign{{ID: 1, Name: "Lost Mines"}}, got); diff != "" {
		t.Errorf("unexpected campaigns (-want +got):\n%s", diff)
	}
}

func TestDo_Errors(t *testing.T) {
	server := backend(t)
	defer server.Close()

	cases := []struct {
		name    string
		token   string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{"no token is sent unauthenticated", "", http.MethodGet, "/campaigns", nil, http.StatusUnauthorized, "Could not validate credentials"},
		{"detail string", "secret", http.MethodGet, "/campaigns/5", nil, http.StatusNotFound, "Campaign not found"},
		{"detail list", "secret", http.MethodPost, "/campaigns", campaign{}, http.StatusUnprocessableEntity, "field required"},
		{"no detail", "secret", http.MethodGet, "/teapot", nil, http.StatusTeapot, "I'm a teapot"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := newClient(t, server, c.token).Do(ctx, c.method, c.path, c.body, &[]campaign{})
			var httpErr *HttpError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected *HttpError, got %v", err)
			}
			if httpErr.Status != c.status || httpErr.Message != c.message {
				t.Errorf("expected %d %q, got %d %q", c.status, c.message, httpErr.Status, httpErr.Message)
			}
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	server := backend(t)
	c := newClient(t, server, "secret")
	server.Close()

	err := c.Get(ctx, "/campaigns", nil)
	if !IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if err.Error() != NetworkError {
		t.Errorf("unexpected message %q", err.Error())
	}
	if StatusOf(err) != 0 {
		t.Errorf("expected no status, got %d", StatusOf(err))
	}
}

func TestDo_NoContent(t *testing.T) {
	server := backend(t)
	defer server.Close()

	if err := newClient(t, server, "secret").Delete(ctx, "/characters/7"); err != nil {
		t.Error(err)
	}
}

func TestDo_QueryAndForm(t *testing.T) {
	server := backend(t)
	defer server.Close()
	c := newClient(t, server, "secret")

	var found []string
	err := c.Get(ctx, "/users/search", &found, WithQuery(url.Values{"q": {"al"}}))
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0] != "al" {
		t.Errorf("unexpected search echo %v", found)
	}

	var token map[string]string
	err = c.Post(ctx, "/auth/login", nil, &token, WithForm(url.Values{"username": {"alice"}}), WithBearer(""))
	if err != nil {
		t.Fatal(err)
	}
	if token["access_token"] != "alice" {
		t.Errorf("unexpected token %v", token)
	}
}

func TestErrorPredicates(t *testing.T) {
	cases := []struct {
		err          error
		notFound     bool
		auth         bool
		unauthorized bool
	}{
		{&HttpError{Status: http.StatusNotFound}, true, false, false},
		{&HttpError{Status: http.StatusUnauthorized}, false, true, true},
		{&HttpError{Status: http.StatusForbidden}, false, true, false},
		{errors.New("other"), false, false, false},
	}

	for _, c := range cases {
		if IsNotFound(c.err) != c.notFound || IsAuthError(c.err) != c.auth || IsUnauthorized(c.err) != c.unauthorized {
			t.Errorf("unexpected classification for %v", c.err)
		}
	}
}
