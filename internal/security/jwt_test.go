package security_test

import (
	"testing"
	"time"

	"github.com/lacus-ops/bbs-service/internal/security"
)

func TestHS256_RoundTrip(t *testing.T) {
	tok, err := security.MakeAccess("secret", "u1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	c, err := security.ParseAccess("secret", tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UID != "u1" || c.Subject != "u1" {
		t.Fatalf("claims mismatch: %#v", c)
	}
}

func TestParseAccess_WrongSecret(t *testing.T) {
	tok, err := security.MakeAccess("secret", "u1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseAccess("other", tok); err == nil {
		t.Fatal("expected an error with the wrong secret")
	}
}

func TestParseAccess_Expired(t *testing.T) {
	tok, err := security.MakeAccess("secret", "u1", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseAccess("secret", tok); err == nil {
		t.Fatal("expected an expiry error")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("StrongP@ss1")
	if err != nil {
		t.Fatal(err)
	}
	if !security.CheckPassword(hash, "StrongP@ss1") {
		t.Fatal("correct password rejected")
	}
	if security.CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
