package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeHash(t *testing.T) {
	tmpDir := t.TempDir()
	file1 := filepath.Join(tmpDir, "leaf00001.asd.txt")
	file2 := filepath.Join(tmpDir, "leaf00002.000.txt")
	file3 := filepath.Join(tmpDir, "renamed.asd.txt")

	os.WriteFile(file1, []byte("Text conversion of header file: leaf00001.asd"), 0644)
	os.WriteFile(file2, []byte("Text conversion of header file: leaf00002.000"), 0644)
	os.WriteFile(file3, []byte("Text conversion of header file: leaf00001.asd"), 0644)

	hash1, err := ComputeHash(file1)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	hash2, err := ComputeHash(file2)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	hash3, err := ComputeHash(file3)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	if hash1 != hash3 {
		t.Errorf("Same content should produce same hash: %s != %s", hash1, hash3)
	}
	if hash1 == hash2 {
		t.Errorf("Different content should produce different hash")
	}
	if len(hash1) != 32 {
		t.Errorf("Hash should be 32 chars, got %d", len(hash1))
	}
}

func TestComputeHashIgnoresTail(t *testing.T) {
	tmpDir := t.TempDir()
	head := make([]byte, hashBytes)
	for i := range head {
		head[i] = 'x'
	}
	a := filepath.Join(tmpDir, "a.asd.txt")
	b := filepath.Join(tmpDir, "b.asd.txt")
	os.WriteFile(a, append(append([]byte{}, head...), "350\t0.1\n"...), 0644)
	os.WriteFile(b, append(append([]byte{}, head...), "350\t0.2\n"...), 0644)

	hashA, _ := ComputeHash(a)
	hashB, _ := ComputeHash(b)
	if hashA != hashB {
		t.Errorf("Bytes past the first %d should not change the hash", hashBytes)
	}
}

func TestComputeHashMissingFile(t *testing.T) {
	if _, err := ComputeHash(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestStateStore(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	store, err := NewStateStore()
	if err != nil {
		t.Fatalf("NewStateStore failed: %v", err)
	}

	testHash := "abcdef1234567890abcdef1234567890"

	if _, ok := store.Get(testHash); ok {
		t.Error("Expected no state for unknown hash")
	}
	if row := store.Row(testHash); row != 0 {
		t.Errorf("Expected row 0 for unknown hash, got %d", row)
	}

	want := ViewState{Row: 1234, ShowMetadata: true}
	if err := store.Set(testHash, want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := store.Get(testHash)
	if !ok || got != want {
		t.Errorf("Expected %+v, got %+v (ok=%v)", want, got, ok)
	}
	if row := store.Row(testHash); row != 1234 {
		t.Errorf("Expected row 1234, got %d", row)
	}

	if err := store.Clear(testHash); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := store.Get(testHash); ok {
		t.Error("Expected no state after clear")
	}
}

func TestStateStorePersistence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)

	testHash := "abcdef1234567890abcdef1234567890"

	store1, err := NewStateStore()
	if err != nil {
		t.Fatalf("NewStateStore failed: %v", err)
	}
	store1.Set(testHash, ViewState{Row: 56})

	if _, err := os.Stat(filepath.Join(tmpDir, appName, stateFileName)); err != nil {
		t.Fatalf("State file not written: %v", err)
	}

	store2, err := NewStateStore()
	if err != nil {
		t.Fatalf("NewStateStore failed: %v", err)
	}
	if row := store2.Row(testHash); row != 56 {
		t.Errorf("Expected 56 from persisted state, got %d", row)
	}
}

func TestStateStoreCorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)

	dir := filepath.Join(tmpDir, appName)
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, stateFileName), []byte("{not json"), 0644)

	store, err := NewStateStore()
	if err != nil {
		t.Fatalf("NewStateStore should tolerate a corrupt file: %v", err)
	}
	if row := store.Row("anything"); row != 0 {
		t.Errorf("Expected empty store, got row %d", row)
	}
}
