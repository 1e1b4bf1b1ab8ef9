// Package scenario runs before/after register traces against fresh CPU
// instances. A scenario seeds registers, memory and ports, loads a few
// bytes of code, steps the CPU and compares what it finds against the
// expected state.
package scenario

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Memory models a scenario can run against.
const (
	Flat   = "flat"   // 64K of RAM
	Banked = "banked" // RAM in 0000-3FFF only, the rest unmapped
)

// Suite is a named collection of scenarios, usually decoded from TOML.
type Suite struct {
	Name      string     `toml:"name"`
	Scenarios []Scenario `toml:"scenario"`
}

// Scenario is one trace: initial state, code, step count, and the
// expected state afterwards.
type Scenario struct {
	Name   string            `toml:"name"`
	Memory string            `toml:"memory"` // Flat (default) or Banked
	Org    uint16            `toml:"org"`    // load address and initial PC
	Code   []uint8           `toml:"code"`
	Steps  int               `toml:"steps"` // default 1
	Regs   map[string]uint16 `toml:"regs"`
	Poke   []Block           `toml:"poke"`
	Ports  []Port            `toml:"port"`
	Expect Expect            `toml:"expect"`
}

// Block is a run of bytes at an address.
type Block struct {
	Addr uint16  `toml:"addr"`
	Data []uint8 `toml:"data"`
}

// Port is a port number and a value.
type Port struct {
	Port  uint8 `toml:"port"`
	Value uint8 `toml:"value"`
}

// Expect is the state a scenario must end in. Registers and memory not
// named are not checked.
type Expect struct {
	Regs   map[string]uint16 `toml:"regs"`
	Mem    []Block           `toml:"mem"`
	Ports  []Port            `toml:"port"`
	Halted bool              `toml:"halted"`
	Error  string            `toml:"error"` // substring of the step error
}

//go:embed builtin.toml
var builtin string

// Builtin returns the suite shipped with the package.
func Builtin() (*Suite, error) {
	s, err := Load(strings.NewReader(builtin))
	if err != nil {
		return nil, fmt.Errorf("builtin suite: %w", err)
	}
	return s, nil
}

// Load decodes and validates a TOML suite. Unknown keys are an error.
func Load(r io.Reader) (*Suite, error) {
	var s Suite
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile decodes a TOML suite from path.
func LoadFile(path string) (*Suite, error) {
	var s Suite
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return &s, nil
}

// Validate checks every scenario and fills in defaults.
func (s *Suite) Validate() error {
	seen := make(map[string]bool, len(s.Scenarios))
	for i := range s.Scenarios {
		sc := &s.Scenarios[i]
		if sc.Name == "" {
			return fmt.Errorf("scenario %d: missing name", i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("scenario %q: duplicate name", sc.Name)
		}
		seen[sc.Name] = true
		if len(sc.Code) == 0 {
			return fmt.Errorf("scenario %q: no code", sc.Name)
		}
		switch sc.Memory {
		case "":
			sc.Memory = Flat
		case Flat, Banked:
		default:
			return fmt.Errorf("scenario %q: unknown memory model %q", sc.Name, sc.Memory)
		}
		switch {
		case sc.Steps < 0:
			return fmt.Errorf("scenario %q: negative step count", sc.Name)
		case sc.Steps == 0:
			sc.Steps = 1
		}
	}
	return nil
}

// Filter returns the scenarios whose name contains substr.
func (s *Suite) Filter(substr string) []Scenario {
	if substr == "" {
		return s.Scenarios
	}
	var out []Scenario
	for _, sc := range s.Scenarios {
		if strings.Contains(sc.Name, substr) {
			out = append(out, sc)
		}
	}
	return out
}
