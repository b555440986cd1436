package romload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmchacon/beeb/bank"
)

func TestLoadSidewaysInstallsIntoSlot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dfs.rom")
	data := make([]byte, bank.SlotSize)
	data[0] = 0xAB
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	s := bank.New(nil)
	if err := LoadSideways(s, 3, path); err != nil {
		t.Fatalf("LoadSideways() error = %v", err)
	}

	s.Select(3)
	if got := s.Read(0x8000); got != 0xAB {
		t.Errorf("Read(0x8000) after LoadSideways into slot 3 = %#x, want 0xAB", got)
	}
}

func TestLoadSidewaysRejectsInvalidSlot(t *testing.T) {
	s := bank.New(nil)
	if err := LoadSideways(s, bank.NumSlots, "unused"); err == nil {
		t.Fatal("LoadSideways with an out-of-range slot returned no error")
	}
}
