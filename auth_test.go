package main

import (
	"fmt"
	"testing"
)

func testAuth(t *testing.T) *Auth {
	t.Helper()
	return NewAuth(testDB(t))
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	a := testAuth(t)

	id, token, err := a.Register("ace", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 || token == "" {
		t.Fatal("register should return an id and a token")
	}

	pid, usr, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if pid != id || usr != "ace" {
		t.Errorf("token claims mismatch: pid=%d usr=%q", pid, usr)
	}

	loginID, loginToken, err := a.Login("ace", "hunter2", "1.2.3.4")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginID != id || loginToken == "" {
		t.Error("login should return the same id and a fresh token")
	}

	if _, _, err := a.Login("ace", "wrong", "1.2.3.4"); err == nil {
		t.Error("wrong password should fail")
	}
	if _, _, err := a.Login("nobody", "hunter2", "1.2.3.4"); err == nil {
		t.Error("unknown user should fail")
	}
}

func TestRegisterValidation(t *testing.T) {
	a := testAuth(t)

	if _, _, err := a.Register("x", "password"); err == nil {
		t.Error("too-short username should fail")
	}
	if _, _, err := a.Register("waytoolongusername", "password"); err == nil {
		t.Error("too-long username should fail")
	}
	if _, _, err := a.Register("ace", "abc"); err == nil {
		t.Error("too-short password should fail")
	}

	if _, _, err := a.Register("ace", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := a.Register("ace", "other"); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	a := testAuth(t)
	if _, _, err := a.ValidateToken("not-a-jwt"); err == nil {
		t.Error("garbage token should fail")
	}

	// A token signed with a different secret must not validate
	other := testAuth(t)
	_, token, err := other.Register("ace", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.ValidateToken(token); err == nil {
		t.Error("token from another secret should fail")
	}
}

func TestJWTSecretPersists(t *testing.T) {
	db := testDB(t)
	a1 := NewAuth(db)
	_, token, err := a1.Register("ace", "hunter2")
	if err != nil {
		t.Fatal(err)
	}

	// A second Auth over the same database loads the same secret
	a2 := NewAuth(db)
	if _, _, err := a2.ValidateToken(token); err != nil {
		t.Errorf("restarted auth should accept old tokens: %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	a := testAuth(t)
	if _, _, err := a.Register("ace", "hunter2"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < maxLoginAttempts; i++ {
		a.Login("ace", fmt.Sprintf("wrong%d", i), "9.9.9.9")
	}
	if _, _, err := a.Login("ace", "hunter2", "9.9.9.9"); err == nil {
		t.Error("attempts past the window limit should be rejected")
	}
	// A different IP is unaffected
	if _, _, err := a.Login("ace", "hunter2", "8.8.8.8"); err != nil {
		t.Errorf("other IP should still log in: %v", err)
	}
}
