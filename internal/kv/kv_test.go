package kv

import (
	"os"
	"path/filepath"
	"testing"
)

type row struct {
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
}

func TestSetGetRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	in := []row{{Title: "ค่าอาหาร", Amount: 10000}, {Title: "ค่าเดินทาง", Amount: 5000}}
	if err := s.Set(KeyExpense, in); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []row
	ok, err := s.Get(KeyExpense, &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestGetMissingKey(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	var out []row
	ok, err := s.Get(KeyGoals, &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing key")
	}
}

func TestSetLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Set(KeyIncome, []row{{Title: "เงินเดือน", Amount: 3000000}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestRawAndDelete(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Set(KeyGoals, []row{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := s.Raw(KeyGoals)
	if err != nil || !ok {
		t.Fatalf("raw: ok=%v err=%v", ok, err)
	}
	if string(data) != "[]" {
		t.Fatalf("unexpected raw payload: %s", data)
	}

	if err := s.Delete(KeyGoals); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Raw(KeyGoals); ok {
		t.Fatal("snapshot survived delete")
	}
	// Second delete is a no-op.
	if err := s.Delete(KeyGoals); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
