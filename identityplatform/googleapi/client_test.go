package googleapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/authgate/prehook/identityplatform"
	"github.com/authgate/prehook/identityplatform/googleapi"
)

func ctx() context.Context { return context.Background() }

func staticToken(tok string) googleapi.TokenSource {
	return googleapi.TokenSourceFunc(func(context.Context) (string, error) {
		return tok, nil
	})
}

// configServer emulates the project config resource: GET returns the stored
// blob, PATCH replaces the blockingFunctions section.
type configServer struct {
	mu       sync.Mutex
	blocking json.RawMessage
	lastAuth string
	lastMask string
}

func (s *configServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.lastAuth = r.Header.Get("Authorization")

		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			if s.blocking == nil {
				io.WriteString(w, `{"name":"projects/p1/config"}`)
				return
			}
			resp := map[string]json.RawMessage{"blockingFunctions": s.blocking}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				t.Error(err)
			}
		case http.MethodPatch:
			s.lastMask = r.URL.Query().Get("updateMask")
			var body struct {
				BlockingFunctions json.RawMessage `json:"blockingFunctions"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Error(err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			s.blocking = body.BlockingFunctions
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func TestGetEmptyProject(t *testing.T) {
	srv := httptest.NewServer((&configServer{}).handler(t))
	defer srv.Close()

	c := googleapi.New(googleapi.Config{BaseURL: srv.URL}, staticToken("tok"))

	cfg, err := c.GetBlockingConfig(ctx(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil || cfg.Triggers != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSetThenGet(t *testing.T) {
	state := &configServer{}
	srv := httptest.NewServer(state.handler(t))
	defer srv.Close()

	c := googleapi.New(googleapi.Config{BaseURL: srv.URL}, staticToken("tok"))

	in := &identityplatform.BlockingConfig{
		Triggers: &identityplatform.Triggers{
			BeforeCreate: &identityplatform.BlockingFunction{FunctionURI: "https://fn"},
		},
		ForwardInboundCredentials: &identityplatform.ForwardInboundCredentials{IDToken: true},
	}
	if err := c.SetBlockingConfig(ctx(), "p1", in); err != nil {
		t.Fatal(err)
	}

	if state.lastMask != "blockingFunctions" {
		t.Fatalf("expected blockingFunctions update mask, got %q", state.lastMask)
	}
	if state.lastAuth != "Bearer tok" {
		t.Fatalf("expected bearer auth, got %q", state.lastAuth)
	}

	out, err := c.GetBlockingConfig(ctx(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Triggers.BeforeCreate.RegisteredURI(); got != "https://fn" {
		t.Fatalf("expected URI round trip, got %q", got)
	}
	if !out.ForwardInboundCredentials.IDToken {
		t.Fatal("expected idToken flag to survive the round trip")
	}
}

func TestEmulatorUsesOwnerToken(t *testing.T) {
	state := &configServer{}
	srv := httptest.NewServer(state.handler(t))
	defer srv.Close()

	c := googleapi.New(googleapi.Config{EmulatorHost: srv.URL}, nil)

	if _, err := c.GetBlockingConfig(ctx(), "p1"); err != nil {
		t.Fatal(err)
	}
	if state.lastAuth != "Bearer owner" {
		t.Fatalf("expected emulator owner token, got %q", state.lastAuth)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	c := googleapi.New(googleapi.Config{BaseURL: srv.URL}, staticToken("tok"))

	_, err := c.GetBlockingConfig(ctx(), "p1")
	var apiErr *googleapi.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "The caller does not have permission" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := googleapi.ConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://identitytoolkit.googleapis.com" {
		t.Fatalf("unexpected default base URL %q", cfg.BaseURL)
	}
	if cfg.RateLimit != 10 {
		t.Fatalf("unexpected default rate limit %d", cfg.RateLimit)
	}
}
