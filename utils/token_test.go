package utils

import (
	"strings"
	"testing"
)

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate(7, "A")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("expected a valid token")
	}

	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claims.ID != 7 || claims.Role != "A" {
		t.Fatalf("claims round trip wrong: %+v", claims)
	}
	if claims.ExpiresAt <= claims.IssuedAt {
		t.Fatalf("token must expire after issue: %+v", claims.StandardClaims)
	}
}

func TestJwtValidateRejectsTampering(t *testing.T) {
	token, err := JwtGenerate(7, "A")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected header.payload.signature, got %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA"

	if _, err := JwtValidate(tampered); err == nil {
		t.Fatalf("tampered signature must not validate")
	}
}

func TestJwtValidateRejectsGarbage(t *testing.T) {
	if _, err := JwtValidate("not-a-token"); err == nil {
		t.Fatalf("garbage must not validate")
	}
}
