package account

import (
	"path/filepath"
	"testing"
)

func TestKeyringStoreSetGetDelete(t *testing.T) {
	k := NewKeyringStore("cashx-engine-test", filepath.Join(t.TempDir(), "fallback_secrets.json"))
	profileID := "profile-test"

	if err := k.SetToken(profileID, "token-123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := k.SetRefreshToken(profileID, "refresh-456"); err != nil {
		t.Fatalf("SetRefreshToken: %v", err)
	}
	if err := k.SetEmail(profileID, "player@example.com"); err != nil {
		t.Fatalf("SetEmail: %v", err)
	}

	token, err := k.GetToken(profileID)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token != "token-123" {
		t.Fatalf("unexpected token: %q", token)
	}

	refresh, err := k.GetRefreshToken(profileID)
	if err != nil {
		t.Fatalf("GetRefreshToken: %v", err)
	}
	if refresh != "refresh-456" {
		t.Fatalf("unexpected refresh token: %q", refresh)
	}

	email, err := k.GetEmail(profileID)
	if err != nil {
		t.Fatalf("GetEmail: %v", err)
	}
	if email != "player@example.com" {
		t.Fatalf("unexpected email: %q", email)
	}

	if err := k.DeleteAll(profileID); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
}

func TestKeyringStoreRequiresProfileID(t *testing.T) {
	k := NewKeyringStore("cashx-engine-test", filepath.Join(t.TempDir(), "fallback_secrets.json"))

	if err := k.SetToken("  ", "token"); err == nil {
		t.Error("SetToken with blank profile id succeeded")
	}
	if _, err := k.GetToken(""); err == nil {
		t.Error("GetToken with empty profile id succeeded")
	}
}
