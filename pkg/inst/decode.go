package inst

import "strings"

// Reader is the read side of a memory bus.
type Reader interface {
	Read(addr uint16) uint8
}

// Decode reads the instruction starting at pc. Address arithmetic wraps at
// 64K. Unassigned encodings decode with Op() == INVALID and a length
// covering the prefix and opcode bytes.
func Decode(mem Reader, pc uint16) Instruction {
	in := Instruction{PC: pc}
	fetch := func() uint8 {
		b := mem.Read(pc + uint16(in.Len))
		in.Bytes[in.Len] = b
		in.Len++
		return b
	}

	switch b := fetch(); b {
	case 0xCB:
		in.Prefix = PrefixCB
		in.Opcode = fetch()
	case 0xED:
		in.Prefix = PrefixED
		in.Opcode = fetch()
	case 0xDD, 0xFD:
		in.Prefix = PrefixDD
		if b == 0xFD {
			in.Prefix = PrefixFD
		}
		in.Opcode = fetch()
		if in.Opcode == 0xCB {
			in.Prefix += PrefixDDCB - PrefixDD
			in.Disp = int8(fetch())
			in.Opcode = fetch()
			in.Info = Lookup(in.Prefix, in.Opcode)
			return in
		}
	default:
		in.Opcode = b
	}

	in.Info = Lookup(in.Prefix, in.Opcode)
	switch in.Info.Mode {
	case ModeImm8:
		in.Imm = uint16(fetch())
	case ModeImm16:
		lo := fetch()
		in.Imm = uint16(lo) | uint16(fetch())<<8
	case ModeRel, ModeDisp:
		in.Disp = int8(fetch())
	case ModeDispImm8:
		in.Disp = int8(fetch())
		in.Imm = uint16(fetch())
	}
	return in
}

// Target returns the branch target of a relative jump.
func (i *Instruction) Target() uint16 {
	return i.Next() + uint16(int16(i.Disp))
}

// Disassemble renders a decoded instruction in Zilog syntax with hex
// operands ("LD (IY-02h), 0FFh"). Unassigned encodings render as DB bytes.
func Disassemble(in Instruction) string {
	if in.Op() == INVALID {
		buf := []byte("DB ")
		for i, b := range in.Encoding() {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = appendHex8(buf, b)
		}
		return string(buf)
	}

	mn := in.Info.Mnemonic
	if in.Prefix.UsesIY() {
		mn = strings.ReplaceAll(mn, "IX", "IY")
	}

	buf := make([]byte, 0, len(mn)+8)
	for i := 0; i < len(mn); i++ {
		switch c := mn[i]; {
		case c == 'n' && i+1 < len(mn) && mn[i+1] == 'n':
			buf = appendHex16(buf, in.Imm)
			i++
		case c == 'n':
			buf = appendHex8(buf, uint8(in.Imm))
		case c == 'e':
			buf = appendHex16(buf, in.Target())
		case c == '+' && i+1 < len(mn) && mn[i+1] == 'd':
			d := int(in.Disp)
			if d < 0 {
				buf = append(buf, '-')
				d = -d
			} else {
				buf = append(buf, '+')
			}
			buf = appendHex8(buf, uint8(d))
			i++
		default:
			buf = append(buf, c)
		}
	}
	return string(buf)
}

func appendHex8(buf []byte, v uint8) []byte {
	const hex = "0123456789ABCDEF"
	if v >= 0xA0 {
		buf = append(buf, '0')
	}
	buf = append(buf, hex[v>>4], hex[v&0x0F], 'h')
	return buf
}

func appendHex16(buf []byte, v uint16) []byte {
	const hex = "0123456789ABCDEF"
	if v>>12 >= 0xA {
		buf = append(buf, '0')
	}
	buf = append(buf, hex[v>>12], hex[(v>>8)&0x0F], hex[(v>>4)&0x0F], hex[v&0x0F], 'h')
	return buf
}

// Listing disassembles count instructions starting at pc.
func Listing(mem Reader, pc uint16, count int) []Instruction {
	out := make([]Instruction, 0, count)
	for i := 0; i < count; i++ {
		in := Decode(mem, pc)
		out = append(out, in)
		pc = in.Next()
	}
	return out
}
