package scenario

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oisee/z80-emu/pkg/memory"
)

func TestBuiltinSuitePasses(t *testing.T) {
	require := require.New(t)

	s, err := Builtin()
	require.NoError(err)
	require.NotEmpty(s.Scenarios)

	r := NewRunner(4)
	require.NoError(r.Run(context.Background(), s.Scenarios))
	require.Equal(len(s.Scenarios), r.Results.Len())

	for _, o := range r.Results.Outcomes() {
		assert.NoError(t, o.Err, o.Name)
		assert.Empty(t, o.Failures, o.Name)
	}
	assert.Zero(t, r.Results.Failed())
}

func TestExecuteReportsMismatches(t *testing.T) {
	assert := assert.New(t)

	sc := Scenario{
		Name: "wrong",
		Code: []uint8{0x2F}, // CPL
		Regs: map[string]uint16{"A": 0xF0, "F": 0},
		Expect: Expect{
			Regs: map[string]uint16{"A": 0xF0, "F": 0},
			Mem:  []Block{{Addr: 0x0000, Data: []uint8{0x00}}},
		},
	}
	o := Execute(sc)
	assert.False(o.Passed())
	assert.NoError(o.Err)
	assert.Equal(1, o.Steps)
	assert.Equal([]string{
		"A: got F, want F0",
		"F: got 12 (s0 z0 50 h1 30 P0 n1 c0), want 00 (s0 z0 50 h0 30 P0 n0 c0)",
		"(0000): got 2F, want 00",
	}, o.Failures)
}

func TestExecuteErrors(t *testing.T) {
	assert := assert.New(t)

	o := Execute(Scenario{Name: "bad", Code: []uint8{0xED, 0xFF}, Steps: 3})
	assert.Error(o.Err)
	assert.Contains(o.Err.Error(), "unimplemented")
	assert.Zero(o.Steps)

	o = Execute(Scenario{Name: "missing", Code: []uint8{0x00}, Expect: Expect{Error: "unmapped"}})
	assert.NoError(o.Err)
	assert.Equal([]string{`error: got none, want "unmapped"`}, o.Failures)

	o = Execute(Scenario{Name: "reg", Code: []uint8{0x00}, Regs: map[string]uint16{"Q": 1}})
	assert.ErrorContains(o.Err, `unknown register "Q"`)
}

func TestBuildBanked(t *testing.T) {
	assert := assert.New(t)

	_, err := Build(&Scenario{Memory: Banked, Code: []uint8{0x00}, Poke: []Block{{Addr: 0x4000, Data: []uint8{1}}}})
	assert.ErrorIs(err, memory.ErrUnmapped)

	m, err := Build(&Scenario{Memory: Banked, Org: 0x0100, Code: []uint8{0x00}, Regs: map[string]uint16{"SP": 0x3FFF}})
	assert.NoError(err)
	assert.Equal(memory.Unmapped, m.Mem.Read(0x8000))
	regs := m.CPU.Registers()
	assert.Equal(uint16(0x0100), regs.PC)
	assert.Equal(uint16(0x3FFF), regs.SP)
}

func TestBuildSeedsHalvesOverPairs(t *testing.T) {
	assert := assert.New(t)

	m, err := Build(&Scenario{
		Code: []uint8{0x00},
		Regs: map[string]uint16{"AF": 0x1234, "F": 0x00, "BC": 0x5678, "C": 0x11, "PC": 0x0010},
	})
	assert.NoError(err)
	regs := m.CPU.Registers()
	assert.Equal(uint16(0x1200), regs.AF())
	assert.Equal(uint16(0x5611), regs.BC())
	assert.Equal(uint16(0x0010), regs.PC, "seeded PC beats Org")
	assert.Empty(m.Check(&Expect{Regs: map[string]uint16{"AF": 0x1200, "c": 0x11}}))
}

func TestFingerprintDeterministic(t *testing.T) {
	sc := Scenario{
		Name:  "loop",
		Code:  []uint8{0x06, 0x10, 0x3C, 0x10, 0xFD, 0x76}, // LD B,16; INC A; DJNZ; HALT
		Steps: 40,
	}
	first := Execute(sc)
	second := Execute(sc)
	assert.True(t, first.Passed())
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	sc.Regs = map[string]uint16{"A": 1}
	assert.NotEqual(t, first.Fingerprint, Execute(sc).Fingerprint)
}

func TestLoadValidation(t *testing.T) {
	for _, tc := range []struct {
		name, doc, err string
	}{
		{"unknown key", "[[scenario]]\nname = \"x\"\ncode = [0]\nbogus = 1\n", "unknown key"},
		{"missing name", "[[scenario]]\ncode = [0]\n", "missing name"},
		{"no code", "[[scenario]]\nname = \"x\"\n", "no code"},
		{"duplicate", "[[scenario]]\nname = \"x\"\ncode = [0]\n[[scenario]]\nname = \"x\"\ncode = [0]\n", "duplicate"},
		{"memory model", "[[scenario]]\nname = \"x\"\ncode = [0]\nmemory = \"rom\"\n", "memory model"},
		{"byte range", "[[scenario]]\nname = \"x\"\ncode = [256]\n", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.doc))
			require.Error(t, err)
			if tc.err != "" {
				assert.Contains(t, err.Error(), tc.err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	require := require.New(t)

	s, err := Load(strings.NewReader(`
[[scenario]]
name = "nop"
code = [0x00]
`))
	require.NoError(err)
	require.Len(s.Scenarios, 1)
	require.Equal(Flat, s.Scenarios[0].Memory)
	require.Equal(1, s.Scenarios[0].Steps)
}

func TestLoadFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "suite.toml")
	require.NoError(os.WriteFile(path, []byte(`
[[scenario]]
name = "inc a"
code = [0x3C]
regs = { A = 0x7F, F = 0 }
[scenario.expect]
regs = { A = 0x80, F = 0x94 }
`), 0o644))

	s, err := LoadFile(path)
	require.NoError(err)
	require.Equal(path, s.Name)
	require.True(Execute(s.Scenarios[0]).Passed())
}

func TestFilter(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)
	for _, sc := range s.Filter("ld h,") {
		assert.True(t, strings.HasPrefix(sc.Name, "ld h,"))
	}
	assert.Len(t, s.Filter("ld h,"), 2)
	assert.Len(t, s.Filter(""), len(s.Scenarios))
}
