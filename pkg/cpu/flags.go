package cpu

// Z80 flag bit positions in the F register.
const (
	FlagC uint8 = 0x01 // Carry
	FlagN uint8 = 0x02 // Subtract
	FlagP uint8 = 0x04 // Parity/Overflow
	FlagV       = FlagP // Overflow (same bit as Parity)
	Flag3 uint8 = 0x08 // Undocumented bit 3
	FlagH uint8 = 0x10 // Half-carry
	Flag5 uint8 = 0x20 // Undocumented bit 5
	FlagZ uint8 = 0x40 // Zero
	FlagS uint8 = 0x80 // Sign
)

// Precomputed flag tables, ported from remogatto/z80.
var (
	// Sz53Table: S, Z, 5, 3 flags for each byte value
	Sz53Table [256]uint8
	// Sz53pTable: sz53 with parity flag included
	Sz53pTable [256]uint8
	// ParityTable: parity flag for each byte value
	ParityTable [256]uint8

	// Half-carry and overflow lookup tables.
	// For 8-bit ops: index from bits 3 and 7 of {first, second, result}.
	// For 16-bit ops (ADC/SBC HL): index from bits 11 and 15, same tables.
	HalfcarryAddTable = [8]uint8{0, FlagH, FlagH, FlagH, 0, 0, 0, FlagH}
	HalfcarrySubTable = [8]uint8{0, 0, FlagH, 0, FlagH, 0, FlagH, FlagH}
	OverflowAddTable  = [8]uint8{0, 0, 0, FlagV, FlagV, 0, 0, 0}
	OverflowSubTable  = [8]uint8{0, FlagV, 0, 0, 0, 0, FlagV, 0}
)

func init() {
	for i := 0; i < 256; i++ {
		Sz53Table[i] = uint8(i) & (Flag3 | Flag5 | FlagS)

		j := uint8(i)
		parity := uint8(0)
		for k := 0; k < 8; k++ {
			parity ^= j & 1
			j >>= 1
		}
		if parity == 0 {
			ParityTable[i] = FlagP
		}
		Sz53pTable[i] = Sz53Table[i] | ParityTable[i]
	}
	Sz53Table[0] |= FlagZ
	Sz53pTable[0] |= FlagZ
}

// Parity reports whether v has an even number of set bits.
func Parity(v uint8) bool {
	return ParityTable[v] != 0
}

func carryIn(carry bool) uint16 {
	if carry {
		return 1
	}
	return 0
}

// Add8 returns a + b (+ carry) and the resulting flags.
func Add8(a, b uint8, carry bool) (uint8, uint8) {
	sum := uint16(a) + uint16(b) + carryIn(carry)
	lookup := ((a & 0x88) >> 3) | ((b & 0x88) >> 2) | uint8((sum&0x88)>>1)
	r := uint8(sum)
	return r, bsel(sum&0x100 != 0, FlagC, 0) |
		HalfcarryAddTable[lookup&0x07] |
		OverflowAddTable[lookup>>4] |
		Sz53Table[r]
}

// Sub8 returns a - b (- carry) and the resulting flags. SUB, SBC, CP and
// NEG all go through here; bits 5 and 3 are copied from the subtrahend.
func Sub8(a, b uint8, carry bool) (uint8, uint8) {
	diff := uint16(a) - uint16(b) - carryIn(carry)
	lookup := ((a & 0x88) >> 3) | ((b & 0x88) >> 2) | uint8((diff&0x88)>>1)
	r := uint8(diff)
	return r, bsel(diff&0x100 != 0, FlagC, 0) | FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		(r & FlagS) | bsel(r == 0, FlagZ, 0) |
		(b & (Flag3 | Flag5))
}

// Logic returns the flags for an AND/OR/XOR result. AND sets H.
func Logic(r uint8, and bool) uint8 {
	return bsel(and, FlagH, 0) | Sz53pTable[r]
}

// Inc8 returns v+1 and the flags; C is carried over from f.
func Inc8(f, v uint8) (uint8, uint8) {
	r := v + 1
	return r, (f & FlagC) |
		bsel(r == 0x80, FlagV, 0) |
		bsel(r&0x0F == 0, FlagH, 0) |
		Sz53Table[r]
}

// Dec8 returns v-1 and the flags; C is carried over from f.
func Dec8(f, v uint8) (uint8, uint8) {
	r := v - 1
	return r, (f & FlagC) | FlagN |
		bsel(r == 0x7F, FlagV, 0) |
		bsel(v&0x0F == 0, FlagH, 0) |
		Sz53Table[r]
}

// Daa adjusts a after a BCD addition or subtraction.
func Daa(f, a uint8) (uint8, uint8) {
	var adj uint8
	carry := f & FlagC
	if f&FlagH != 0 || a&0x0F > 9 {
		adj = 0x06
	}
	if carry != 0 || a > 0x99 {
		adj |= 0x60
		carry = FlagC
	}
	var r, h uint8
	if f&FlagN != 0 {
		r = a - adj
		h = bsel(f&FlagH != 0 && a&0x0F < 6, FlagH, 0)
	} else {
		r = a + adj
		h = bsel(a&0x0F > 9, FlagH, 0)
	}
	return r, Sz53pTable[r] | h | (f & FlagN) | carry
}

// Add16 implements ADD HL/IX/IY, rr: only H (bit 11 carry), N and C change.
func Add16(f uint8, a, b uint16) (uint16, uint8) {
	sum := uint32(a) + uint32(b)
	hc := (a & 0x0FFF) + (b & 0x0FFF)
	return uint16(sum), (f & (FlagS | FlagZ | FlagP | Flag5 | Flag3)) |
		bsel(hc&0x1000 != 0, FlagH, 0) |
		bsel(sum&0x10000 != 0, FlagC, 0)
}

// Adc16 implements ADC HL, rr. Bits 5/3 and S come from the high byte.
func Adc16(f uint8, a, b uint16) (uint16, uint8) {
	sum := uint32(a) + uint32(b) + uint32(f&FlagC)
	lookup := uint8(((uint32(a) & 0x8800) >> 11) | ((uint32(b) & 0x8800) >> 10) | ((sum & 0x8800) >> 9))
	r := uint16(sum)
	hi := uint8(r >> 8)
	return r, bsel(sum&0x10000 != 0, FlagC, 0) |
		OverflowAddTable[lookup>>4] |
		(hi & (Flag3 | Flag5 | FlagS)) |
		HalfcarryAddTable[lookup&0x07] |
		bsel(r == 0, FlagZ, 0)
}

// Sbc16 implements SBC HL, rr.
func Sbc16(f uint8, a, b uint16) (uint16, uint8) {
	diff := uint32(a) - uint32(b) - uint32(f&FlagC)
	lookup := uint8(((uint32(a) & 0x8800) >> 11) | ((uint32(b) & 0x8800) >> 10) | ((diff & 0x8800) >> 9))
	r := uint16(diff)
	hi := uint8(r >> 8)
	return r, bsel(diff&0x10000 != 0, FlagC, 0) | FlagN |
		OverflowSubTable[lookup>>4] |
		(hi & (Flag3 | Flag5 | FlagS)) |
		HalfcarrySubTable[lookup&0x07] |
		bsel(r == 0, FlagZ, 0)
}

// Rotate codes, matching the CB opcode y field.
const (
	RotRLC uint8 = iota
	RotRRC
	RotRL
	RotRR
	RotSLA
	RotSRA
	RotSLL
	RotSRL
)

// Shift applies a CB-group rotate or shift: C is the bit shifted out,
// H and N are cleared, S/Z/5/3/P come from the result.
func Shift(kind, f, v uint8) (uint8, uint8) {
	var r, c uint8
	switch kind {
	case RotRLC:
		r = v<<1 | v>>7
		c = v >> 7
	case RotRRC:
		r = v>>1 | v<<7
		c = v & 1
	case RotRL:
		r = v<<1 | f&FlagC
		c = v >> 7
	case RotRR:
		r = v>>1 | f<<7
		c = v & 1
	case RotSLA:
		r = v << 1
		c = v >> 7
	case RotSRA:
		r = v&0x80 | v>>1
		c = v & 1
	case RotSLL:
		r = v<<1 | 0x01
		c = v >> 7
	case RotSRL:
		r = v >> 1
		c = v & 1
	}
	return r, c | Sz53pTable[r]
}

// RotateAcc implements RLCA/RRCA/RLA/RRA (kind RotRLC..RotRR): only C
// changes and H, N are cleared.
func RotateAcc(kind, f, a uint8) (uint8, uint8) {
	r, nf := Shift(kind, f, a)
	return r, (f & (FlagS | FlagZ | FlagP | Flag5 | Flag3)) | (nf & FlagC)
}

// Bit implements BIT b, v. S, 5 and 3 copy the tested bit when it is
// bit 7, 5 or 3 and set; Z and P are set when the bit is clear.
func Bit(f, b, v uint8) uint8 {
	tested := v & (1 << (b & 7))
	return (f & FlagC) | FlagH |
		(tested & (FlagS | Flag5 | Flag3)) |
		bsel(tested == 0, FlagZ|FlagP, 0)
}

// bsel returns a if cond is true, else b. Branchless flag selection.
func bsel(cond bool, a, b uint8) uint8 {
	if cond {
		return a
	}
	return b
}
