package gcpauth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authgate/prehook/gcpauth"
)

func TestStaticSource(t *testing.T) {
	tok, err := gcpauth.Static("abc").Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "abc" {
		t.Fatalf("token = %q, want %q", tok, "abc")
	}
}

func TestParseKeyRejectsIncomplete(t *testing.T) {
	if _, err := gcpauth.ParseKey([]byte(`{"client_email":"sa@proj.iam"}`)); err == nil {
		t.Fatal("expected error for key without private_key")
	}
	if _, err := gcpauth.ParseKey([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed key file")
	}
}

func TestServiceAccountExchangesAndCaches(t *testing.T) {
	signer, pemKey := generateKey(t)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
			t.Errorf("grant_type = %q", got)
		}

		assertion := r.PostForm.Get("assertion")
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(assertion, claims, func(*jwt.Token) (any, error) {
			return &signer.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		if err != nil {
			t.Errorf("parse assertion: %v", err)
		}
		if claims["iss"] != "sa@proj.iam.gserviceaccount.com" {
			t.Errorf("iss = %v", claims["iss"])
		}
		if claims["scope"] != "https://www.googleapis.com/auth/cloud-platform" {
			t.Errorf("scope = %v", claims["scope"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "minted-token",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	key := &gcpauth.ServiceAccountKey{
		ClientEmail: "sa@proj.iam.gserviceaccount.com",
		PrivateKey:  pemKey,
		TokenURI:    srv.URL,
	}
	source, err := gcpauth.NewServiceAccount(key)
	if err != nil {
		t.Fatalf("NewServiceAccount: %v", err)
	}

	for i := 0; i < 3; i++ {
		tok, err := source.Token(context.Background())
		if err != nil {
			t.Fatalf("Token call %d: %v", i, err)
		}
		if tok != "minted-token" {
			t.Fatalf("token = %q, want %q", tok, "minted-token")
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("token endpoint calls = %d, want 1 (cached afterwards)", got)
	}
}

func TestServiceAccountSurfacesExchangeError(t *testing.T) {
	_, pemKey := generateKey(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	source, err := gcpauth.NewServiceAccount(&gcpauth.ServiceAccountKey{
		ClientEmail: "sa@proj.iam.gserviceaccount.com",
		PrivateKey:  pemKey,
		TokenURI:    srv.URL,
	})
	if err != nil {
		t.Fatalf("NewServiceAccount: %v", err)
	}

	if _, err := source.Token(context.Background()); err == nil {
		t.Fatal("expected error from failed exchange")
	}
}

func generateKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	signer, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(signer)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	return signer, pemKey
}
