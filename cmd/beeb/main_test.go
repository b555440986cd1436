package main

import (
	"testing"

	"github.com/jmchacon/beeb/model"
)

func TestRomFlagsSetParsesSlotAndPath(t *testing.T) {
	var r romFlags
	if err := r.Set("3:/roms/dnfs.rom"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if len(r) != 1 || r[0].slot != 3 || r[0].path != "/roms/dnfs.rom" {
		t.Errorf("romFlags = %+v, want one entry {slot:3 path:/roms/dnfs.rom}", r)
	}
}

func TestRomFlagsSetAccumulatesRepeatedFlags(t *testing.T) {
	var r romFlags
	r.Set("0:a.rom")
	r.Set("1:b.rom")
	if len(r) != 2 {
		t.Fatalf("len(romFlags) = %d, want 2", len(r))
	}
}

func TestRomFlagsSetRejectsMissingColon(t *testing.T) {
	var r romFlags
	if err := r.Set("nocolon"); err == nil {
		t.Error("Set(\"nocolon\") returned nil error, want a format error")
	}
}

func TestRomFlagsSetRejectsOutOfRangeSlot(t *testing.T) {
	var r romFlags
	if err := r.Set("99:whatever.rom"); err == nil {
		t.Error("Set() with slot 99 returned nil error, want a range error")
	}
}

func TestRomFlagsSetRejectsNonNumericSlot(t *testing.T) {
	var r romFlags
	if err := r.Set("x:whatever.rom"); err == nil {
		t.Error("Set() with a non-numeric slot returned nil error, want a parse error")
	}
}

func TestBuildProfileSelectsModelB(t *testing.T) {
	hw, sideways, err := buildProfile("B")
	if err != nil {
		t.Fatalf("buildProfile(\"B\") error = %v", err)
	}
	if _, ok := hw.(*model.B); !ok {
		t.Errorf("buildProfile(\"B\") profile type = %T, want *model.B", hw)
	}
	if sideways == nil {
		t.Error("buildProfile(\"B\") returned a nil *bank.Sideways")
	}
}

func TestBuildProfileSelectsModelBPlus(t *testing.T) {
	hw, _, err := buildProfile("bplus")
	if err != nil {
		t.Fatalf("buildProfile(\"bplus\") error = %v", err)
	}
	if _, ok := hw.(*model.BPlus); !ok {
		t.Errorf("buildProfile(\"bplus\") profile type = %T, want *model.BPlus", hw)
	}
}

func TestBuildProfileRejectsUnknownModel(t *testing.T) {
	if _, _, err := buildProfile("spectrum"); err == nil {
		t.Error("buildProfile(\"spectrum\") returned nil error, want an unknown-model error")
	}
}
