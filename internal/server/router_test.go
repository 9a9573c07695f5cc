package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type multiRoute struct{}

func (multiRoute) Routes() []string { return []string{"GET /a", "GET /b"} }

func (multiRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("multi" + r.URL.Path))
}

func TestBasicRouter(t *testing.T) {
	t.Run("routes by method and path", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/{$}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("root"))
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "root" {
			t.Errorf("expected 200 root, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("wrong method is 405", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/logout", func(w http.ResponseWriter, r *http.Request) {})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, "GET") {
			t.Errorf("expected Allow to list GET, got %q", allow)
		}
	})

	t.Run("registers every handler route", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(multiRoute{})

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Body.String() != "multi"+path {
				t.Errorf("expected multi%s, got %q", path, rec.Body.String())
			}
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(tag("first"), tag("second"))
		router.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("expected first,second,handler, got %s", got)
		}
	})

	t.Run("middleware sees unmatched requests", func(t *testing.T) {
		seen := false
		router := NewBasicRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = true
				next.ServeHTTP(w, r)
			})
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		if !seen {
			t.Error("expected middleware to run for a 404")
		}
	})
}
