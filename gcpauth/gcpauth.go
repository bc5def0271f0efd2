// Package gcpauth supplies OAuth2 bearer tokens for Google admin API calls.
//
// The ServiceAccount source implements the JWT-bearer grant: it signs an
// RS256 assertion with the service account's private key and exchanges it at
// the OAuth2 token endpoint, caching the access token until shortly before
// expiry. The Static source covers tests and pre-minted tokens.
package gcpauth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	cloudScope      = "https://www.googleapis.com/auth/cloud-platform"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionTTL = time.Hour
	// expirySlack refreshes tokens slightly early so callers never send an
	// about-to-expire token.
	expirySlack = time.Minute
)

// TokenSource supplies bearer tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Static returns a TokenSource that always yields tok.
func Static(tok string) TokenSource {
	return staticSource(tok)
}

type staticSource string

func (s staticSource) Token(context.Context) (string, error) { return string(s), nil }

// ServiceAccountKey is the subset of a service account key file this
// package needs.
type ServiceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ParseKey parses a service account key file.
func ParseKey(data []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("gcpauth: parse key file: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, errors.New("gcpauth: key file missing client_email or private_key")
	}
	return &key, nil
}

// ServiceAccount is a TokenSource backed by a service account key.
type ServiceAccount struct {
	key    *ServiceAccountKey
	signer *rsa.PrivateKey
	client *http.Client

	mu     sync.Mutex
	cached string
	expiry time.Time
}

// NewServiceAccount creates a token source from a parsed key.
func NewServiceAccount(key *ServiceAccountKey) (*ServiceAccount, error) {
	signer, err := parsePrivateKey(key.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &ServiceAccount{
		key:    key,
		signer: signer,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Token returns a cached access token, exchanging a fresh assertion when
// the cache is empty or close to expiry.
func (s *ServiceAccount) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" && time.Now().Before(s.expiry.Add(-expirySlack)) {
		return s.cached, nil
	}

	assertion, err := s.signAssertion()
	if err != nil {
		return "", err
	}

	token, ttl, err := s.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	s.cached = token
	s.expiry = time.Now().Add(ttl)
	return token, nil
}

func (s *ServiceAccount) tokenURL() string {
	if s.key.TokenURI != "" {
		return s.key.TokenURI
	}
	return defaultTokenURL
}

func (s *ServiceAccount) signAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.key.ClientEmail,
		"scope": cloudScope,
		"aud":   s.tokenURL(),
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.signer)
	if err != nil {
		return "", fmt.Errorf("gcpauth: sign assertion: %w", err)
	}
	return assertion, nil
}

func (s *ServiceAccount) exchange(ctx context.Context, assertion string) (string, time.Duration, error) {
	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("gcpauth: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("gcpauth: token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", 0, fmt.Errorf("gcpauth: token exchange: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("gcpauth: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", 0, errors.New("gcpauth: token response missing access_token")
	}

	ttl := time.Duration(payload.ExpiresIn) * time.Second
	if ttl == 0 {
		ttl = assertionTTL
	}
	return payload.AccessToken, ttl, nil
}

func parsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("gcpauth: private key is not PEM encoded")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("gcpauth: unsupported private key type %T", key)
		}
		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("gcpauth: parse private key: %w", err)
	}
	return key, nil
}
