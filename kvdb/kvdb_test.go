package kvdb

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type record struct {
	Grid    string   `yaml:"grid"`
	Columns []string `yaml:"columns"`
}

// initDB opens a temporary bolt database
func initDB(t *testing.T) (*DB, func()) {
	tmpDir, err := ioutil.TempDir("", "kvdb-")
	if err != nil {
		t.Fatalf("Could not create a temporary directory: %v", err)
	}
	db, err := NewDB(filepath.Join(tmpDir, "flux.db"))
	if err != nil {
		t.Fatalf("Could not open database: %v", err)
	}
	return db, func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}
}

// testStore exercises the Store contract against any implementation
func testStore(t *testing.T, s Store) {
	var r record
	found, err := s.Load("missing", &r)
	if err != nil {
		t.Fatalf("Unexpected error loading a missing key: %v", err)
	}
	if found {
		t.Errorf("Expected missing key not to be found")
	}
	in := record{Grid: "campaigns", Columns: []string{"name", "clicks"}}
	if err := s.Save("grid/campaigns", in); err != nil {
		t.Fatalf("Could not save value: %v", err)
	}
	in.Columns[0] = "mutated"
	var out record
	found, err = s.Load("grid/campaigns", &out)
	if err != nil {
		t.Fatalf("Could not load value: %v", err)
	}
	if !found {
		t.Fatalf("Expected saved key to be found")
	}
	expected := record{Grid: "campaigns", Columns: []string{"name", "clicks"}}
	if !reflect.DeepEqual(out, expected) {
		t.Errorf("Expected %v, received %v", expected, out)
	}
	if err := s.Save("", in); err != ErrEmptyKey {
		t.Errorf("Expected %v, received %v", ErrEmptyKey, err)
	}
	if err := s.Save("nil", nil); err != ErrNilValue {
		t.Errorf("Expected %v, received %v", ErrNilValue, err)
	}
	if _, err := s.Load("", &out); err != ErrEmptyKey {
		t.Errorf("Expected %v, received %v", ErrEmptyKey, err)
	}
}

// TestDB tests the bolt backed store
func TestDB(t *testing.T) {
	db, cleanUp := initDB(t)
	defer cleanUp()
	testStore(t, db)
}

// TestDBReopen ensures values survive closing and reopening the database
func TestDBReopen(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "kvdb-")
	if err != nil {
		t.Fatalf("Could not create a temporary directory: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	path := filepath.Join(tmpDir, "flux.db")
	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("Could not open database: %v", err)
	}
	if err := db.Save("metric", "clicks"); err != nil {
		t.Fatalf("Could not save value: %v", err)
	}
	db.Close()
	db, err = NewDB(path)
	if err != nil {
		t.Fatalf("Could not reopen database: %v", err)
	}
	defer db.Close()
	var metric string
	found, err := db.Load("metric", &metric)
	if err != nil || !found {
		t.Fatalf("Could not load value: found=%v err=%v", found, err)
	}
	if metric != "clicks" {
		t.Errorf("Expected clicks, received %s", metric)
	}
}

// TestMemoryStore tests the in-memory store
func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}
