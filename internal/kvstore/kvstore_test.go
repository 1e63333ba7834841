package kvstore

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("k", []byte(`{"a":1}`), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if !bytes.Equal(got, []byte(`{"a":1}`)) {
		t.Errorf("Get = %s, want {\"a\":1}", got)
	}
}

func TestGet_Missing(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get("absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("absent key reported present")
	}
}

func TestPut_Overwrite(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("k", []byte("one"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put("k", []byte("two"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _, _ := s.Get("k")
	if string(got) != "two" {
		t.Errorf("Get = %s, want two", got)
	}
}

func TestPut_TooLarge(t *testing.T) {
	s := openTestStore(t)
	err := s.Put("k", make([]byte, MaxValueBytes+1), 0)
	if err != ErrTooLarge {
		t.Errorf("Put = %v, want ErrTooLarge", err)
	}
}

func TestExpiry(t *testing.T) {
	s := openTestStore(t)
	base := time.Now()
	s.SetClock(func() time.Time { return base })

	if err := s.Put("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := s.Get("k"); !ok {
		t.Fatal("fresh entry reported absent")
	}

	s.SetClock(func() time.Time { return base.Add(2 * time.Hour) })
	if _, ok, _ := s.Get("k"); ok {
		t.Error("expired entry reported present")
	}
	// The expired row is gone even if the clock rolls back.
	s.SetClock(func() time.Time { return base })
	if _, ok, _ := s.Get("k"); ok {
		t.Error("expired entry was not deleted")
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("k", []byte("v"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("deleted key reported present")
	}
	if err := s.Delete("absent"); err != nil {
		t.Errorf("Delete(absent) = %v, want nil", err)
	}
}
