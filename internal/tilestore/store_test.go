package tilestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tiles", "store.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	k := tile.Key{Level: 3, Row: 5, Column: 12}

	if _, err := s.Get("imagery", k); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty store: %v", err)
	}
	if err := s.Put("imagery", k, []byte("png")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("imagery", k)
	if err != nil || string(got) != "png" {
		t.Errorf("Get = %q, %v", got, err)
	}
	if _, err := s.Get("elevation", k); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get from another dataset: %v", err)
	}
	if ok, _ := s.Has("imagery", k); !ok {
		t.Error("Has = false after Put")
	}

	if err := s.Delete("imagery", k); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Has("imagery", k); ok {
		t.Error("Has = true after Delete")
	}
	if err := s.Delete("missing", k); err != nil {
		t.Errorf("Delete from a missing dataset: %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := openTestStore(t)
	k := tile.Key{Level: 0, Row: 1, Column: 1}
	s.Put("imagery", k, []byte("abc"))

	a, _ := s.Get("imagery", k)
	a[0] = 'x'
	b, _ := s.Get("imagery", k)
	if !bytes.Equal(b, []byte("abc")) {
		t.Errorf("stored payload changed to %q", b)
	}
}

func TestBatchAndKeys(t *testing.T) {
	s := openTestStore(t)
	batch := make(map[tile.Key][]byte)
	for l := 0; l < 3; l++ {
		for r := 0; r < 2; r++ {
			for c := 0; c < 3; c++ {
				batch[tile.Key{Level: l, Row: r, Column: c}] = []byte(fmt.Sprint(l, r, c))
			}
		}
	}
	if err := s.PutBatch("imagery", batch); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Count("imagery"); n != len(batch) {
		t.Errorf("Count = %d, want %d", n, len(batch))
	}

	keys, err := s.Keys("imagery", 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "[1/0/0 1/0/1 1/0/2 1/1/0 1/1/1 1/1/2]"
	if fmt.Sprint(keys) != want {
		t.Errorf("Keys = %v, want %s", keys, want)
	}

	s.Put("elevation", tile.Key{}, []byte{1})
	names, _ := s.Datasets()
	if fmt.Sprint(names) != "[elevation imagery]" {
		t.Errorf("Datasets = %v", names)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	k := tile.Key{Level: 2, Row: 7, Column: 9}
	s.Put("imagery", k, []byte("kept"))
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got, err := s.Get("imagery", k); err != nil || string(got) != "kept" {
		t.Errorf("after reopen Get = %q, %v", got, err)
	}
}

func TestOpenReplacesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.db")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 8192), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open on a corrupt file: %v", err)
	}
	defer s.Close()

	backups, _ := filepath.Glob(path + ".corrupt.*")
	if len(backups) != 1 {
		t.Errorf("backups %v", backups)
	}
	if n, err := s.Count("imagery"); err != nil || n != 0 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestDatasetRetrieve(t *testing.T) {
	s := openTestStore(t)
	k := tile.Key{Level: 1, Row: 1, Column: 1}
	s.Put("imagery", k, []byte("tile"))
	d := s.Dataset("imagery")

	if got, err := d.Retrieve(context.Background(), k); err != nil || string(got) != "tile" {
		t.Errorf("Retrieve = %q, %v", got, err)
	}
	if _, err := d.Retrieve(context.Background(), tile.Key{Level: 4}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Retrieve missing: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Retrieve(ctx, k); !errors.Is(err, context.Canceled) {
		t.Errorf("Retrieve after cancel: %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if _, err := s.Get("imagery", tile.Key{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close: %v", err)
	}
}
