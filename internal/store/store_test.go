package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "wifi-credentials.yaml"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestLoadAbsentWhenNoFile(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.Load(); ok {
		t.Error("Load() should report absent when no file exists")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("home", "pw123"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rec, ok := s.Load()
	if !ok {
		t.Fatal("Load() should report present after Save()")
	}
	if rec.Identity != "home" {
		t.Errorf("Identity = %q, want %q", rec.Identity, "home")
	}
	if rec.Secret != "pw123" {
		t.Errorf("Secret = %q, want %q", rec.Secret, "pw123")
	}
}

func TestLoadIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("home", "pw123"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	first, ok1 := s.Load()
	second, ok2 := s.Load()
	if !ok1 || !ok2 {
		t.Fatal("both Load() calls should report present")
	}
	if first != second {
		t.Errorf("consecutive Load() calls differ: %+v vs %+v", first, second)
	}
}

func TestSaveTrimsWhitespace(t *testing.T) {
	tests := []struct {
		name         string
		identity     string
		secret       string
		wantIdentity string
		wantSecret   string
	}{
		{"leading spaces", "  home", " pw", "home", "pw"},
		{"trailing spaces", "home  ", "pw ", "home", "pw"},
		{"tabs and newlines", "\thome\n", "\npw\t", "home", "pw"},
		{"interior spaces kept", "my network", "p w", "my network", "p w"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			if err := s.Save(tt.identity, tt.secret); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			rec, ok := s.Load()
			if !ok {
				t.Fatal("Load() should report present")
			}
			if rec.Identity != tt.wantIdentity {
				t.Errorf("Identity = %q, want %q", rec.Identity, tt.wantIdentity)
			}
			if rec.Secret != tt.wantSecret {
				t.Errorf("Secret = %q, want %q", rec.Secret, tt.wantSecret)
			}
		})
	}
}

func TestAbsenceNormalization(t *testing.T) {
	t.Run("empty identity", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Save("", "leftover-secret"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, ok := s.Load(); ok {
			t.Error("Load() should report absent when identity is empty, regardless of secret")
		}
	})

	t.Run("whitespace-only identity", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Save("   ", "x"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, ok := s.Load(); ok {
			t.Error("Load() should report absent when identity trims to empty")
		}
	})

	t.Run("cleared slot", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Save("home", "pw"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := s.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, ok := s.Load(); ok {
			t.Error("Load() should report absent after Clear()")
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		s := newTestStore(t)
		if err := os.WriteFile(s.Path(), []byte("{not yaml"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, ok := s.Load(); ok {
			t.Error("Load() should report absent for a corrupt slot")
		}
	})
}

func TestRoundTripLengthRange(t *testing.T) {
	s := newTestStore(t)

	for _, idLen := range []int{1, 2, 32, 63, 64} {
		for _, secLen := range []int{0, 1, 32, 64} {
			identity := strings.Repeat("a", idLen)
			secret := strings.Repeat("b", secLen)

			if err := s.Save(identity, secret); err != nil {
				t.Fatalf("Save(len %d, len %d) error = %v", idLen, secLen, err)
			}
			rec, ok := s.Load()
			if !ok {
				t.Fatalf("Load() absent after Save(len %d, len %d)", idLen, secLen)
			}
			if rec.Identity != identity || rec.Secret != secret {
				t.Errorf("round trip mismatch at lengths (%d, %d)", idLen, secLen)
			}
		}
	}
}

func TestSaveRejectsOversizedFields(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(strings.Repeat("a", 65), "pw"); err == nil {
		t.Error("Save() should reject identity over 64 bytes")
	}
	if err := s.Save("home", strings.Repeat("b", 65)); err == nil {
		t.Error("Save() should reject secret over 64 bytes")
	}

	// Failed saves must not clobber the slot
	if err := s.Save("home", "pw"); err != nil {
		t.Fatal(err)
	}
	_ = s.Save(strings.Repeat("a", 65), "pw")
	rec, ok := s.Load()
	if !ok || rec.Identity != "home" {
		t.Error("rejected Save() should leave existing record intact")
	}
}

func TestSaveOverwritesSingleSlot(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("first", "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("second", "two"); err != nil {
		t.Fatal(err)
	}

	rec, ok := s.Load()
	if !ok {
		t.Fatal("Load() should report present")
	}
	if rec.Identity != "second" || rec.Secret != "two" {
		t.Errorf("Load() = %+v, want the most recent record", rec)
	}
}

func TestClearMissingFileIsNoError(t *testing.T) {
	s := newTestStore(t)
	if err := s.Clear(); err != nil {
		t.Errorf("Clear() on empty slot should not error, got %v", err)
	}
}

func TestSaveWriteFailure(t *testing.T) {
	// Point the store at a path whose parent is a file, so MkdirAll fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := New(filepath.Join(blocker, "wifi-credentials.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	err = s.Save("home", "pw")
	if err == nil {
		t.Fatal("Save() should fail when the medium rejects the write")
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Errorf("Save() error should be *StoreError, got %T", err)
	}
}
