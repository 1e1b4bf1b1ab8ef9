package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oisee/z80-emu/pkg/cpu"
)

// addrValue is a 16-bit pflag.Value accepting 0x1234, 1234h or decimal.
type addrValue struct {
	v   *uint16
	set bool
}

var _ pflag.Value = (*addrValue)(nil)

func newAddrValue(p *uint16, def uint16) *addrValue {
	*p = def
	return &addrValue{v: p}
}

func (a *addrValue) String() string {
	if a.v == nil {
		return "0"
	}
	return fmt.Sprintf("0x%04X", *a.v)
}

func (a *addrValue) Set(s string) error {
	n, err := parseNumber(s)
	if err != nil {
		return err
	}
	*a.v = n
	a.set = true
	return nil
}

func (a *addrValue) Type() string { return "addr" }

// parseNumber reads a 16-bit value: 0xFF, 0FFh, $FF or decimal.
func parseNumber(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	base := 10
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "0X"):
		s, base = s[2:], 16
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasSuffix(upper, "H"):
		s, base = s[:len(s)-1], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return uint16(v), nil
}

// parseAssignments turns NAME=VALUE pairs into register seeds.
func parseAssignments(pairs []string) (map[string]uint16, error) {
	seeds := make(map[string]uint16, len(pairs))
	var scratch cpu.Registers
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want NAME=VALUE", pair)
		}
		name = strings.TrimSpace(name)
		if _, known := scratch.Lookup(name); !known {
			return nil, fmt.Errorf("--set %q: unknown register %q (one of %s)", pair, name, strings.Join(cpu.Names(), " "))
		}
		v, err := parseNumber(value)
		if err != nil {
			return nil, fmt.Errorf("--set %q: %w", pair, err)
		}
		seeds[name] = v
	}
	return seeds, nil
}

// applySeeds assigns pairs before 8-bit registers, so A=.. beats AF=...
func applySeeds(r *cpu.Registers, seeds map[string]uint16) {
	for _, name := range cpu.SeedOrder(seeds) {
		r.Assign(name, seeds[name])
	}
}

// parseBytes reads "3E 42 76" or "3E,42,76" as hex bytes.
func parseBytes(s string) ([]uint8, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	out := make([]uint8, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad byte %q", f)
		}
		out = append(out, uint8(v))
	}
	return out, nil
}
