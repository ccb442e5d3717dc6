package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthenticateHeaderKey(t *testing.T) {
	a := New("secret-key", "")

	r := httptest.NewRequest("GET", "/commands", nil)
	r.Header.Set("x-api-key", "secret-key")
	if err := a.Authenticate(r, false); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}

	r = httptest.NewRequest("GET", "/commands", nil)
	r.Header.Set("x-api-key", "wrong")
	if err := a.Authenticate(r, false); err == nil {
		t.Fatal("expected rejection for wrong key")
	}

	r = httptest.NewRequest("GET", "/commands", nil)
	if err := a.Authenticate(r, false); err == nil {
		t.Fatal("expected rejection for missing credentials")
	}
}

func TestAuthenticateQueryFallback(t *testing.T) {
	a := New("secret-key", "")

	r := httptest.NewRequest("GET", "/downloads/cmd-1?api_key=secret-key", nil)
	if err := a.Authenticate(r, true); err != nil {
		t.Fatalf("query key rejected: %v", err)
	}
	if err := a.Authenticate(r, false); err == nil {
		t.Fatal("query key must not be accepted outside download routes")
	}

	r = httptest.NewRequest("GET", "/downloads/cmd-1?api_key=wrong", nil)
	if err := a.Authenticate(r, true); err == nil {
		t.Fatal("expected rejection for wrong query key")
	}
}

func TestMintAndVerifyToken(t *testing.T) {
	a := New("secret-key", "jwt-secret")

	token, err := a.MintToken("operator-1", time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := a.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "operator-1" {
		t.Fatalf("subject = %q, want operator-1", claims.Subject)
	}

	r := httptest.NewRequest("GET", "/commands", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if err := a.Authenticate(r, false); err != nil {
		t.Fatalf("bearer token rejected: %v", err)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	a := New("secret-key", "jwt-secret")

	token, err := a.MintToken("operator-1", -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := a.VerifyToken(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerifyTokenRejectsWrongAlgorithm(t *testing.T) {
	a := New("secret-key", "jwt-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "operator-1",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := a.VerifyToken(token); err == nil {
		t.Fatal("expected alg=none token to fail verification")
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuer := New("secret-key", "other-secret")
	token, err := issuer.MintToken("operator-1", time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	a := New("secret-key", "jwt-secret")
	if _, err := a.VerifyToken(token); err == nil {
		t.Fatal("expected token signed with a different secret to fail")
	}
}

func TestTokensDisabledWithoutSecret(t *testing.T) {
	a := New("secret-key", "")
	if _, err := a.MintToken("operator-1", time.Minute); err == nil {
		t.Fatal("expected mint to fail without a configured secret")
	}
	if _, err := a.VerifyToken("anything"); err == nil {
		t.Fatal("expected verify to fail without a configured secret")
	}
}
