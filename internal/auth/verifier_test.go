package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Moha1423/WIFI-drone/internal/config"
)

const testSecret = "test-secret-key"

func hsToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func rsaKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "pilot-1",
		"scopes": []string{ScopeControl, ScopeTelemetry},
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
}

func TestNewVerifier(t *testing.T) {
	_, pemKey := rsaKeyPair(t)

	tests := []struct {
		name    string
		cfg     config.AuthConfig
		wantErr bool
	}{
		{"HS256", config.AuthConfig{Algorithm: "HS256", SecretKey: testSecret}, false},
		{"HS256 without secret", config.AuthConfig{Algorithm: "HS256"}, true},
		{"RS256", config.AuthConfig{Algorithm: "RS256", PublicKeyPEM: pemKey}, false},
		{"RS256 bad PEM", config.AuthConfig{Algorithm: "RS256", PublicKeyPEM: "garbage"}, true},
		{"unsupported", config.AuthConfig{Algorithm: "ES256"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerifier(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewVerifier() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyToken_HS256(t *testing.T) {
	v, err := NewVerifier(config.AuthConfig{Algorithm: "HS256", SecretKey: testSecret})
	if err != nil {
		t.Fatalf("NewVerifier() failed: %v", err)
	}

	claims, err := v.VerifyToken(hsToken(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if claims.Subject != "pilot-1" {
		t.Errorf("Subject = %s, want pilot-1", claims.Subject)
	}
	if !claims.HasScopes(ScopeControl, ScopeTelemetry) {
		t.Errorf("Scopes = %v", claims.Scopes)
	}
}

func TestVerifyToken_Rejects(t *testing.T) {
	v, err := NewVerifier(config.AuthConfig{Algorithm: "HS256", SecretKey: testSecret})
	if err != nil {
		t.Fatalf("NewVerifier() failed: %v", err)
	}

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noSub := validClaims()
	delete(noSub, "sub")

	badScope := validClaims()
	badScope["scopes"] = []string{"admin"}

	noScopes := validClaims()
	noScopes["scopes"] = []string{}

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.jwt",
		"wrong secret": hsToken(t, "other", validClaims()),
		"expired":      hsToken(t, testSecret, expired),
		"missing sub":  hsToken(t, testSecret, noSub),
		"bad scope":    hsToken(t, testSecret, badScope),
		"no scopes":    hsToken(t, testSecret, noScopes),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := v.VerifyToken(token); err == nil {
				t.Error("VerifyToken() accepted an invalid token")
			}
		})
	}
}

func TestVerifyToken_RS256(t *testing.T) {
	key, pemKey := rsaKeyPair(t)
	v, err := NewVerifier(config.AuthConfig{Algorithm: "RS256", PublicKeyPEM: pemKey})
	if err != nil {
		t.Fatalf("NewVerifier() failed: %v", err)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims()).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	claims, err := v.VerifyToken(signed)
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if claims.Subject != "pilot-1" {
		t.Errorf("Subject = %s", claims.Subject)
	}

	// An HS256 token must not pass an RS256 verifier.
	if _, err := v.VerifyToken(hsToken(t, testSecret, validClaims())); err == nil {
		t.Error("RS256 verifier accepted an HS256 token")
	}
}

func TestVerifyToken_SpaceSeparatedScopes(t *testing.T) {
	v, _ := NewVerifier(config.AuthConfig{Algorithm: "HS256", SecretKey: testSecret})

	c := validClaims()
	c["scopes"] = "control telemetry"
	claims, err := v.VerifyToken(hsToken(t, testSecret, c))
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if len(claims.Scopes) != 2 {
		t.Errorf("Scopes = %v, want 2", claims.Scopes)
	}
}
