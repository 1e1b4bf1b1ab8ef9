package cpu

// Effective-address helpers. All arithmetic wraps at 64K.

// Indirect returns the address held in a pair, (HL)/(BC)/(DE)/(SP).
func Indirect(r *Registers, p Pair) uint16 {
	return r.Pair(p)
}

// Indexed returns base + sign-extended d.
func Indexed(base uint16, d int8) uint16 {
	return base + uint16(int16(d))
}

// Relative returns the target of a JR/DJNZ whose following instruction
// starts at next.
func Relative(next uint16, e int8) uint16 {
	return next + uint16(int16(e))
}

// Absolute assembles a little-endian address from its two bytes.
func Absolute(lo, hi uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
