package session

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)

	if v, ok := s.Get(KeyAccessToken); ok || v != "" {
		t.Fatalf("expected missing key, got %q ok=%v", v, ok)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set(KeyUsername, "ava"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(KeyUsername, "ben"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, ok := s.Get(KeyUsername)
	if !ok || v != "ben" {
		t.Fatalf("expected ben, got %q ok=%v", v, ok)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	s := openTestStore(t)

	fields := map[string]string{
		KeyAccessToken:  "tok",
		KeyRefreshToken: "ref",
		KeyUsername:     "ava",
		KeyLastView:     "dashboard",
	}
	for k, v := range fields {
		if err := s.Set(k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if !s.HasSession() {
		t.Fatalf("expected session before clear")
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	for k := range fields {
		if _, ok := s.Get(k); ok {
			t.Fatalf("expected %s cleared", k)
		}
	}
	if s.HasSession() {
		t.Fatalf("expected no session after clear")
	}
}

func TestBoolRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if s.GetBool(KeyAgentRunning) {
		t.Fatalf("absent flag should read false")
	}
	if err := s.SetBool(KeyAgentRunning, true); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if !s.GetBool(KeyAgentRunning) {
		t.Fatalf("expected true after SetBool")
	}
	if err := s.SetBool(KeyAgentRunning, false); err != nil {
		t.Fatalf("unset bool: %v", err)
	}
	if s.GetBool(KeyAgentRunning) {
		t.Fatalf("expected false after SetBool(false)")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(KeyClientID, "abc-123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	v, ok := s2.Get(KeyClientID)
	if !ok || v != "abc-123" {
		t.Fatalf("expected persisted client id, got %q ok=%v", v, ok)
	}
}
