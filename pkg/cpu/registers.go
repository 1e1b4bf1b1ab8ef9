package cpu

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash"
)

// Reg identifies an 8-bit register. The first eight values follow the
// opcode register encoding, so code 6 is the (HL) memory slot.
type Reg uint8

const (
	RegB Reg = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegHLI // (HL): memory at the address in HL
	RegA
	RegF
	RegI
	RegR
)

var regNames = [...]string{"B", "C", "D", "E", "H", "L", "(HL)", "A", "F", "I", "R"}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("Reg(%d)", uint8(r))
}

// Pair identifies a 16-bit register. The first four values follow the
// 2-bit pair encoding used by 16-bit loads and arithmetic.
type Pair uint8

const (
	PairBC Pair = iota
	PairDE
	PairHL
	PairSP
	PairAF
	PairIX
	PairIY
	PairPC
)

var pairNames = [...]string{"BC", "DE", "HL", "SP", "AF", "IX", "IY", "PC"}

func (p Pair) String() string {
	if int(p) < len(pairNames) {
		return pairNames[p]
	}
	return fmt.Sprintf("Pair(%d)", uint8(p))
}

// Bank is one set of the eight general-purpose 8-bit registers.
type Bank struct {
	A, F, B, C, D, E, H, L uint8
}

// Registers is the complete CPU-visible register file. The value is
// comparable and cheap to copy, which is how snapshots are taken.
type Registers struct {
	Bank
	Alt Bank // shadow set swapped in by EX AF,AF' and EXX

	IX, IY uint16
	SP, PC uint16
	I, R   uint8

	IFF bool  // interrupt enable
	IM  uint8 // interrupt mode 0-2
}

// Reset puts the register file into its power-on state.
func (r *Registers) Reset() {
	ff := Bank{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	*r = Registers{
		Bank: ff,
		Alt:  ff,
		IX:   0xFFFF,
		IY:   0xFFFF,
		SP:   0xFFFF,
		PC:   0x0000,
		IFF:  true,
		IM:   0,
	}
}

func (b *Bank) BC() uint16 { return uint16(b.B)<<8 | uint16(b.C) }
func (b *Bank) DE() uint16 { return uint16(b.D)<<8 | uint16(b.E) }
func (b *Bank) HL() uint16 { return uint16(b.H)<<8 | uint16(b.L) }
func (b *Bank) AF() uint16 { return uint16(b.A)<<8 | uint16(b.F) }

func (b *Bank) SetBC(v uint16) { b.B, b.C = uint8(v>>8), uint8(v) }
func (b *Bank) SetDE(v uint16) { b.D, b.E = uint8(v>>8), uint8(v) }
func (b *Bank) SetHL(v uint16) { b.H, b.L = uint8(v>>8), uint8(v) }
func (b *Bank) SetAF(v uint16) { b.A, b.F = uint8(v>>8), uint8(v) }

// Pair returns the value of a 16-bit register.
func (r *Registers) Pair(p Pair) uint16 {
	switch p {
	case PairBC:
		return r.BC()
	case PairDE:
		return r.DE()
	case PairHL:
		return r.HL()
	case PairSP:
		return r.SP
	case PairAF:
		return r.AF()
	case PairIX:
		return r.IX
	case PairIY:
		return r.IY
	case PairPC:
		return r.PC
	}
	return 0
}

// SetPair assigns a 16-bit register; high byte to the first register.
func (r *Registers) SetPair(p Pair, v uint16) {
	switch p {
	case PairBC:
		r.SetBC(v)
	case PairDE:
		r.SetDE(v)
	case PairHL:
		r.SetHL(v)
	case PairSP:
		r.SP = v
	case PairAF:
		r.SetAF(v)
	case PairIX:
		r.IX = v
	case PairIY:
		r.IY = v
	case PairPC:
		r.PC = v
	}
}

// reg8 returns a pointer to an 8-bit register. RegHLI has no backing
// field and yields nil.
func (r *Registers) reg8(code Reg) *uint8 {
	switch code {
	case RegB:
		return &r.B
	case RegC:
		return &r.C
	case RegD:
		return &r.D
	case RegE:
		return &r.E
	case RegH:
		return &r.H
	case RegL:
		return &r.L
	case RegA:
		return &r.A
	case RegF:
		return &r.F
	case RegI:
		return &r.I
	case RegR:
		return &r.R
	}
	return nil
}

// Lookup returns a register by its canonical name: A..L, F, I, R, the
// primed shadow registers (A', F', ..., AF', BC'), the pairs BC, DE, HL,
// AF, SP, IX, IY, PC, and IM. Names are case-insensitive.
func (r *Registers) Lookup(name string) (uint16, bool) {
	p, ok := r.field(name)
	if !ok {
		return 0, false
	}
	return p.get(), true
}

// Assign sets a register by canonical name. Values wider than the
// register are truncated.
func (r *Registers) Assign(name string, v uint16) bool {
	p, ok := r.field(name)
	if !ok {
		return false
	}
	p.set(v)
	return true
}

// SeedOrder returns the names of seeds in the order they should be
// assigned: 16-bit registers first, then 8-bit ones, each group sorted.
// A half seeded together with its pair therefore wins over the pair.
func SeedOrder(seeds map[string]uint16) []string {
	names := make([]string, 0, len(seeds))
	for name := range seeds {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		wi, wj := wide(names[i]), wide(names[j])
		if wi != wj {
			return wi
		}
		return names[i] < names[j]
	})
	return names
}

func wide(name string) bool {
	switch strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(name)), "'") {
	case "AF", "BC", "DE", "HL", "IX", "IY", "SP", "PC":
		return true
	}
	return false
}

type field struct {
	get func() uint16
	set func(uint16)
}

func byteField(p *uint8) field {
	return field{
		get: func() uint16 { return uint16(*p) },
		set: func(v uint16) { *p = uint8(v) },
	}
}

func wordField(p *uint16) field {
	return field{
		get: func() uint16 { return *p },
		set: func(v uint16) { *p = v },
	}
}

func bankField(hi, lo *uint8) field {
	return field{
		get: func() uint16 { return uint16(*hi)<<8 | uint16(*lo) },
		set: func(v uint16) { *hi, *lo = uint8(v>>8), uint8(v) },
	}
}

func (r *Registers) field(name string) (field, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	b := &r.Bank
	if strings.HasSuffix(name, "'") {
		b = &r.Alt
		name = strings.TrimSuffix(name, "'")
		switch name {
		case "A", "F", "B", "C", "D", "E", "H", "L", "AF", "BC", "DE", "HL":
		default:
			return field{}, false
		}
	}
	switch name {
	case "A":
		return byteField(&b.A), true
	case "F":
		return byteField(&b.F), true
	case "B":
		return byteField(&b.B), true
	case "C":
		return byteField(&b.C), true
	case "D":
		return byteField(&b.D), true
	case "E":
		return byteField(&b.E), true
	case "H":
		return byteField(&b.H), true
	case "L":
		return byteField(&b.L), true
	case "AF":
		return bankField(&b.A, &b.F), true
	case "BC":
		return bankField(&b.B, &b.C), true
	case "DE":
		return bankField(&b.D, &b.E), true
	case "HL":
		return bankField(&b.H, &b.L), true
	case "I":
		return byteField(&r.I), true
	case "R":
		return byteField(&r.R), true
	case "IX":
		return wordField(&r.IX), true
	case "IY":
		return wordField(&r.IY), true
	case "SP":
		return wordField(&r.SP), true
	case "PC":
		return wordField(&r.PC), true
	case "IM":
		return field{
			get: func() uint16 { return uint16(r.IM) },
			set: func(v uint16) { r.IM = uint8(v) % 3 },
		}, true
	}
	return field{}, false
}

// Names lists the canonical register names accepted by Lookup, in
// display order.
func Names() []string {
	return []string{
		"A", "F", "B", "C", "D", "E", "H", "L",
		"AF", "BC", "DE", "HL", "IX", "IY", "SP", "PC", "I", "R", "IM",
		"AF'", "BC'", "DE'", "HL'",
	}
}

// FlagString renders F one flag per field, e.g. "s1 z0 51 h1 30 P0 n1 c0".
func FlagString(f uint8) string {
	var sb strings.Builder
	for i, name := range [8]byte{'s', 'z', '5', 'h', '3', 'P', 'n', 'c'} {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(name)
		if f&(0x80>>i) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (r Registers) String() string {
	return fmt.Sprintf("AF %04X BC %04X DE %04X HL %04X AF' %04X BC' %04X DE' %04X HL' %04X IX %04X IY %04X SP %04X PC %04X I %02X R %02X IFF %t IM %d | %s",
		r.AF(), r.BC(), r.DE(), r.HL(),
		r.Alt.AF(), r.Alt.BC(), r.Alt.DE(), r.Alt.HL(),
		r.IX, r.IY, r.SP, r.PC, r.I, r.R, r.IFF, r.IM, FlagString(r.F))
}

// Fingerprint hashes the register file. Equal register files always
// produce equal fingerprints.
func (r Registers) Fingerprint() uint64 {
	var buf [28]byte
	binary.BigEndian.PutUint16(buf[0:], r.AF())
	binary.BigEndian.PutUint16(buf[2:], r.BC())
	binary.BigEndian.PutUint16(buf[4:], r.DE())
	binary.BigEndian.PutUint16(buf[6:], r.HL())
	binary.BigEndian.PutUint16(buf[8:], r.Alt.AF())
	binary.BigEndian.PutUint16(buf[10:], r.Alt.BC())
	binary.BigEndian.PutUint16(buf[12:], r.Alt.DE())
	binary.BigEndian.PutUint16(buf[14:], r.Alt.HL())
	binary.BigEndian.PutUint16(buf[16:], r.IX)
	binary.BigEndian.PutUint16(buf[18:], r.IY)
	binary.BigEndian.PutUint16(buf[20:], r.SP)
	binary.BigEndian.PutUint16(buf[22:], r.PC)
	buf[24], buf[25] = r.I, r.R
	if r.IFF {
		buf[26] = 1
	}
	buf[27] = r.IM
	return xxhash.Sum64(buf[:])
}
