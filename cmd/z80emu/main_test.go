package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oisee/z80-emu/pkg/cpu"

	"github.com/oisee/z80-emu/pkg/result"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want uint16
	}{
		{"0", 0},
		{"1234", 1234},
		{"0x8000", 0x8000},
		{"0XFFFF", 0xFFFF},
		{"0FFh", 0xFF},
		{"$4000", 0x4000},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseNumber(%q) = %04X, %v; want %04X", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "0x10000", "65536", "zz", "-1"} {
		if _, err := parseNumber(bad); err == nil {
			t.Errorf("parseNumber(%q) should fail", bad)
		}
	}
}

func TestParseAssignments(t *testing.T) {
	seeds, err := parseAssignments([]string{"A=0x42", "hl=1000h", "AF'=7"})
	if err != nil {
		t.Fatal(err)
	}
	if seeds["A"] != 0x42 || seeds["hl"] != 0x1000 || seeds["AF'"] != 7 {
		t.Errorf("seeds = %v", seeds)
	}
	for _, bad := range []string{"A", "Q=1", "A=x"} {
		if _, err := parseAssignments([]string{bad}); err == nil {
			t.Errorf("parseAssignments(%q) should fail", bad)
		}
	}
}

func TestParseBytes(t *testing.T) {
	got, err := parseBytes("3E 42,0x76")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 0x3E || got[1] != 0x42 || got[2] != 0x76 {
		t.Errorf("parseBytes = % X", got)
	}
	if _, err := parseBytes("3E 100"); err == nil {
		t.Error("parseBytes should reject values above FF")
	}
}

func TestCheckpointResume(t *testing.T) {
	// LD A,1; HALT; INC A
	m, err := fresh(nil, "3E 01 76 3C", 0x8000, false, map[string]uint16{"SP": 0xF000}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.CPU.Run(0); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "m.ckpt")
	ckpt := &result.Checkpoint{Regs: m.CPU.Registers(), Halted: m.CPU.Halted(), Memory: image(m.CPU.Memory())}
	if err := result.SaveCheckpoint(path, ckpt); err != nil {
		t.Fatal(err)
	}

	resumed, err := restore(path, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !resumed.CPU.Halted() {
		t.Error("resumed machine should still be halted")
	}
	if resumed.Fingerprint() != m.Fingerprint() {
		t.Errorf("fingerprint %016x, want %016x", resumed.Fingerprint(), m.Fingerprint())
	}

	// Seeding registers on resume leaves the halt.
	resumed, err = restore(path, map[string]uint16{"PC": 0x8003}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := resumed.CPU.Step(); err != nil {
		t.Fatal(err)
	}
	if r := resumed.CPU.Registers(); r.A != 2 || r.PC != 0x8004 {
		t.Errorf("after INC A: A=%02X PC=%04X", r.A, r.PC)
	}
}

func TestApplySeedsHalvesWin(t *testing.T) {
	var r cpu.Registers
	applySeeds(&r, map[string]uint16{"AF": 0x1234, "F": 0x00, "BC": 0x5678, "C": 0x11, "hl'": 0xBEEF, "L'": 0x01})
	if r.AF() != 0x1200 || r.BC() != 0x5611 {
		t.Errorf("AF=%04X BC=%04X, want 1200 5611", r.AF(), r.BC())
	}
	if v, _ := r.Lookup("HL'"); v != 0xBE01 {
		t.Errorf("HL'=%04X, want BE01", v)
	}
}

func TestReportShowsStackTop(t *testing.T) {
	// PUSH BC; HALT
	m, err := fresh(nil, "C5 76", 0x8000, false, map[string]uint16{"SP": 0xF000, "BC": 0xCAFE}, nil)
	if err != nil {
		t.Fatal(err)
	}
	n, err := m.CPU.Run(0)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	report(&buf, m, n)
	out := buf.String()
	if !strings.Contains(out, "2 steps, halted=true") || !strings.Contains(out, "(SP) CAFE") {
		t.Errorf("report:\n%s", out)
	}
}
