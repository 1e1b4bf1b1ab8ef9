package inst

// Info holds static metadata for one opcode table entry.
type Info struct {
	Op       OpCode
	Mnemonic string // template: n, nn, d, e are operand placeholders
	Mode     Mode
	X, Y     uint8 // operand selectors, see the OpCode comments
	TStates  int   // nominal cost (untaken branch, single block iteration)
}

// Opcode tables, one per prefix family. DD and FD share Index, DDCB and
// FDCB share IndexCB; their mnemonics name IX and Disassemble swaps in IY.
// Entries left zero are INVALID.
var (
	Base    [256]Info
	CB      [256]Info
	ED      [256]Info
	Index   [256]Info
	IndexCB [256]Info
)

var (
	regNames   = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	pairNames  = [4]string{"BC", "DE", "HL", "SP"}
	stackNames = [4]string{"BC", "DE", "HL", "AF"}
	indexPairs = [4]string{"BC", "DE", "IX", "SP"}
	ccNames    = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
	aluNames   = [8]string{"ADD A, ", "ADC A, ", "SUB ", "SBC A, ", "AND ", "XOR ", "OR ", "CP "}
	rotNames   = [8]string{"RLC ", "RRC ", "RL ", "RR ", "SLA ", "SRA ", "SLL ", "SRL "}
)

// Table returns the opcode table selected by a prefix.
func Table(p Prefix) *[256]Info {
	switch p {
	case PrefixCB:
		return &CB
	case PrefixED:
		return &ED
	case PrefixDD, PrefixFD:
		return &Index
	case PrefixDDCB, PrefixFDCB:
		return &IndexCB
	}
	return &Base
}

// Lookup returns the table entry for an opcode byte under a prefix.
func Lookup(p Prefix, opcode uint8) *Info {
	return &Table(p)[opcode]
}

// PrefixLen returns the number of prefix bytes preceding the opcode byte
// (for DDCB/FDCB this includes the displacement byte).
func PrefixLen(p Prefix) int {
	switch p {
	case PrefixNone:
		return 0
	case PrefixDDCB, PrefixFDCB:
		return 3
	}
	return 1
}

// ByteSize returns the total encoded length of an entry under a prefix.
func ByteSize(p Prefix, info *Info) int {
	if p == PrefixDDCB || p == PrefixFDCB {
		return 4
	}
	return PrefixLen(p) + 1 + info.Mode.Size()
}

// Count returns the number of assigned entries across all tables.
func Count() int {
	n := 0
	for _, t := range []*[256]Info{&Base, &CB, &ED, &Index, &IndexCB} {
		for i := range t {
			if t[i].Op != INVALID {
				n++
			}
		}
	}
	return n
}

func regCost(code uint8, reg, mem int) int {
	if code == 6 {
		return mem
	}
	return reg
}

func init() {
	initBase()
	initCB()
	initED()
	initIndex()
	initIndexCB()
}

func initBase() {
	Base[0x00] = Info{Op: NOP, Mnemonic: "NOP", TStates: 4}

	for op := 0x40; op <= 0x7F; op++ {
		y, z := uint8(op>>3)&7, uint8(op)&7
		if op == 0x76 {
			Base[op] = Info{Op: HALT, Mnemonic: "HALT", TStates: 4}
			continue
		}
		cost := 4
		if y == 6 || z == 6 {
			cost = 7
		}
		Base[op] = Info{Op: LD_R_R, Mnemonic: "LD " + regNames[y] + ", " + regNames[z], X: y, Y: z, TStates: cost}
	}

	for op := 0x80; op <= 0xBF; op++ {
		y, z := uint8(op>>3)&7, uint8(op)&7
		Base[op] = Info{Op: ALU_R, Mnemonic: aluNames[y] + regNames[z], X: y, Y: z, TStates: regCost(z, 4, 7)}
	}

	for y := uint8(0); y < 8; y++ {
		Base[y<<3|0x04] = Info{Op: INC_R, Mnemonic: "INC " + regNames[y], X: y, TStates: regCost(y, 4, 11)}
		Base[y<<3|0x05] = Info{Op: DEC_R, Mnemonic: "DEC " + regNames[y], X: y, TStates: regCost(y, 4, 11)}
		Base[y<<3|0x06] = Info{Op: LD_R_N, Mnemonic: "LD " + regNames[y] + ", n", Mode: ModeImm8, X: y, TStates: regCost(y, 7, 10)}

		Base[0xC0|y<<3] = Info{Op: RET_CC, Mnemonic: "RET " + ccNames[y], X: y, TStates: 5}
		Base[0xC2|y<<3] = Info{Op: JP_CC, Mnemonic: "JP " + ccNames[y] + ", nn", Mode: ModeImm16, X: y, TStates: 10}
		Base[0xC4|y<<3] = Info{Op: CALL_CC, Mnemonic: "CALL " + ccNames[y] + ", nn", Mode: ModeImm16, X: y, TStates: 10}
		Base[0xC6|y<<3] = Info{Op: ALU_N, Mnemonic: aluNames[y] + "n", Mode: ModeImm8, X: y, TStates: 7}
		Base[0xC7|y<<3] = Info{Op: RST, Mnemonic: "RST " + hex8(y<<3), X: y << 3, TStates: 11}
	}

	for p := uint8(0); p < 4; p++ {
		Base[p<<4|0x01] = Info{Op: LD_RR_NN, Mnemonic: "LD " + pairNames[p] + ", nn", Mode: ModeImm16, X: p, TStates: 10}
		Base[p<<4|0x03] = Info{Op: INC_RR, Mnemonic: "INC " + pairNames[p], X: p, TStates: 6}
		Base[p<<4|0x09] = Info{Op: ADD_HL_RR, Mnemonic: "ADD HL, " + pairNames[p], X: p, TStates: 11}
		Base[p<<4|0x0B] = Info{Op: DEC_RR, Mnemonic: "DEC " + pairNames[p], X: p, TStates: 6}
		Base[0xC1|p<<4] = Info{Op: POP, Mnemonic: "POP " + stackNames[p], X: p, TStates: 10}
		Base[0xC5|p<<4] = Info{Op: PUSH, Mnemonic: "PUSH " + stackNames[p], X: p, TStates: 11}
	}

	for cc := uint8(0); cc < 4; cc++ {
		Base[0x20|cc<<3] = Info{Op: JR_CC, Mnemonic: "JR " + ccNames[cc] + ", e", Mode: ModeRel, X: cc, TStates: 7}
	}

	Base[0x02] = Info{Op: LD_RRI_A, Mnemonic: "LD (BC), A", X: 0, TStates: 7}
	Base[0x12] = Info{Op: LD_RRI_A, Mnemonic: "LD (DE), A", X: 1, TStates: 7}
	Base[0x0A] = Info{Op: LD_A_RRI, Mnemonic: "LD A, (BC)", X: 0, TStates: 7}
	Base[0x1A] = Info{Op: LD_A_RRI, Mnemonic: "LD A, (DE)", X: 1, TStates: 7}
	Base[0x22] = Info{Op: LD_NNI_RR, Mnemonic: "LD (nn), HL", Mode: ModeImm16, X: 2, TStates: 16}
	Base[0x2A] = Info{Op: LD_RR_NNI, Mnemonic: "LD HL, (nn)", Mode: ModeImm16, X: 2, TStates: 16}
	Base[0x32] = Info{Op: LD_NNI_A, Mnemonic: "LD (nn), A", Mode: ModeImm16, TStates: 13}
	Base[0x3A] = Info{Op: LD_A_NNI, Mnemonic: "LD A, (nn)", Mode: ModeImm16, TStates: 13}

	Base[0x07] = Info{Op: RLCA, Mnemonic: "RLCA", TStates: 4}
	Base[0x0F] = Info{Op: RRCA, Mnemonic: "RRCA", TStates: 4}
	Base[0x17] = Info{Op: RLA, Mnemonic: "RLA", TStates: 4}
	Base[0x1F] = Info{Op: RRA, Mnemonic: "RRA", TStates: 4}
	Base[0x27] = Info{Op: DAA, Mnemonic: "DAA", TStates: 4}
	Base[0x2F] = Info{Op: CPL, Mnemonic: "CPL", TStates: 4}
	Base[0x37] = Info{Op: SCF, Mnemonic: "SCF", TStates: 4}
	Base[0x3F] = Info{Op: CCF, Mnemonic: "CCF", TStates: 4}

	Base[0x08] = Info{Op: EX_AF, Mnemonic: "EX AF, AF'", TStates: 4}
	Base[0x10] = Info{Op: DJNZ, Mnemonic: "DJNZ e", Mode: ModeRel, TStates: 8}
	Base[0x18] = Info{Op: JR, Mnemonic: "JR e", Mode: ModeRel, TStates: 12}

	Base[0xC3] = Info{Op: JP, Mnemonic: "JP nn", Mode: ModeImm16, TStates: 10}
	Base[0xC9] = Info{Op: RET, Mnemonic: "RET", TStates: 10}
	Base[0xCD] = Info{Op: CALL, Mnemonic: "CALL nn", Mode: ModeImm16, TStates: 17}
	Base[0xD3] = Info{Op: OUT_N_A, Mnemonic: "OUT (n), A", Mode: ModeImm8, TStates: 11}
	Base[0xD9] = Info{Op: EXX, Mnemonic: "EXX", TStates: 4}
	Base[0xDB] = Info{Op: IN_A_N, Mnemonic: "IN A, (n)", Mode: ModeImm8, TStates: 11}
	Base[0xE3] = Info{Op: EX_SP_HL, Mnemonic: "EX (SP), HL", TStates: 19}
	Base[0xE9] = Info{Op: JP_HL, Mnemonic: "JP (HL)", TStates: 4}
	Base[0xEB] = Info{Op: EX_DE_HL, Mnemonic: "EX DE, HL", TStates: 4}
	Base[0xF3] = Info{Op: DI, Mnemonic: "DI", TStates: 4}
	Base[0xF9] = Info{Op: LD_SP_HL, Mnemonic: "LD SP, HL", TStates: 6}
	Base[0xFB] = Info{Op: EI, Mnemonic: "EI", TStates: 4}
}

func initCB() {
	for op := 0; op < 256; op++ {
		x, y, z := uint8(op>>6), uint8(op>>3)&7, uint8(op)&7
		switch x {
		case 0:
			CB[op] = Info{Op: ROT, Mnemonic: rotNames[y] + regNames[z], X: y, Y: z, TStates: regCost(z, 8, 15)}
		case 1:
			CB[op] = Info{Op: BIT, Mnemonic: "BIT " + digit(y) + ", " + regNames[z], X: y, Y: z, TStates: regCost(z, 8, 12)}
		case 2:
			CB[op] = Info{Op: RES, Mnemonic: "RES " + digit(y) + ", " + regNames[z], X: y, Y: z, TStates: regCost(z, 8, 15)}
		case 3:
			CB[op] = Info{Op: SET, Mnemonic: "SET " + digit(y) + ", " + regNames[z], X: y, Y: z, TStates: regCost(z, 8, 15)}
		}
	}
}

func initED() {
	for y := uint8(0); y < 8; y++ {
		in, out := "IN "+regNames[y]+", (C)", "OUT (C), "+regNames[y]
		if y == 6 {
			in, out = "IN F, (C)", "OUT (C), 0"
		}
		ED[0x40|y<<3] = Info{Op: IN_R_C, Mnemonic: in, X: y, TStates: 12}
		ED[0x41|y<<3] = Info{Op: OUT_C_R, Mnemonic: out, X: y, TStates: 12}
	}

	for p := uint8(0); p < 4; p++ {
		ED[0x42|p<<4] = Info{Op: SBC_HL_RR, Mnemonic: "SBC HL, " + pairNames[p], X: p, TStates: 15}
		ED[0x4A|p<<4] = Info{Op: ADC_HL_RR, Mnemonic: "ADC HL, " + pairNames[p], X: p, TStates: 15}
		ED[0x43|p<<4] = Info{Op: LD_NNI_RR, Mnemonic: "LD (nn), " + pairNames[p], Mode: ModeImm16, X: p, TStates: 20}
		ED[0x4B|p<<4] = Info{Op: LD_RR_NNI, Mnemonic: "LD " + pairNames[p] + ", (nn)", Mode: ModeImm16, X: p, TStates: 20}
	}

	ED[0x44] = Info{Op: NEG, Mnemonic: "NEG", TStates: 8}
	ED[0x45] = Info{Op: RETN, Mnemonic: "RETN", TStates: 14}
	ED[0x4D] = Info{Op: RETI, Mnemonic: "RETI", TStates: 14}
	ED[0x46] = Info{Op: IM, Mnemonic: "IM 0", X: 0, TStates: 8}
	ED[0x56] = Info{Op: IM, Mnemonic: "IM 1", X: 1, TStates: 8}
	ED[0x5E] = Info{Op: IM, Mnemonic: "IM 2", X: 2, TStates: 8}
	ED[0x47] = Info{Op: LD_I_A, Mnemonic: "LD I, A", TStates: 9}
	ED[0x4F] = Info{Op: LD_R_A, Mnemonic: "LD R, A", TStates: 9}
	ED[0x57] = Info{Op: LD_A_I, Mnemonic: "LD A, I", TStates: 9}
	ED[0x5F] = Info{Op: LD_A_R, Mnemonic: "LD A, R", TStates: 9}
	ED[0x67] = Info{Op: RRD, Mnemonic: "RRD", TStates: 18}
	ED[0x6F] = Info{Op: RLD, Mnemonic: "RLD", TStates: 18}

	block := []struct {
		enc uint8
		op  OpCode
		mn  string
	}{
		{0xA0, LDI, "LDI"}, {0xA1, CPI, "CPI"}, {0xA2, INI, "INI"}, {0xA3, OUTI, "OUTI"},
		{0xA8, LDD, "LDD"}, {0xA9, CPD, "CPD"}, {0xAA, IND, "IND"}, {0xAB, OUTD, "OUTD"},
		{0xB0, LDIR, "LDIR"}, {0xB1, CPIR, "CPIR"}, {0xB2, INIR, "INIR"}, {0xB3, OTIR, "OTIR"},
		{0xB8, LDDR, "LDDR"}, {0xB9, CPDR, "CPDR"}, {0xBA, INDR, "INDR"}, {0xBB, OTDR, "OTDR"},
	}
	for _, b := range block {
		ED[b.enc] = Info{Op: b.op, Mnemonic: b.mn, TStates: 16}
	}
}

func initIndex() {
	for p := uint8(0); p < 4; p++ {
		Index[p<<4|0x09] = Info{Op: ADD_HL_RR, Mnemonic: "ADD IX, " + indexPairs[p], X: p, TStates: 15}
	}
	Index[0x21] = Info{Op: LD_RR_NN, Mnemonic: "LD IX, nn", Mode: ModeImm16, X: 2, TStates: 14}
	Index[0x22] = Info{Op: LD_NNI_RR, Mnemonic: "LD (nn), IX", Mode: ModeImm16, X: 2, TStates: 20}
	Index[0x2A] = Info{Op: LD_RR_NNI, Mnemonic: "LD IX, (nn)", Mode: ModeImm16, X: 2, TStates: 20}
	Index[0x23] = Info{Op: INC_RR, Mnemonic: "INC IX", X: 2, TStates: 10}
	Index[0x2B] = Info{Op: DEC_RR, Mnemonic: "DEC IX", X: 2, TStates: 10}
	Index[0x34] = Info{Op: INC_IDX, Mnemonic: "INC (IX+d)", Mode: ModeDisp, TStates: 23}
	Index[0x35] = Info{Op: DEC_IDX, Mnemonic: "DEC (IX+d)", Mode: ModeDisp, TStates: 23}
	Index[0x36] = Info{Op: LD_IDX_N, Mnemonic: "LD (IX+d), n", Mode: ModeDispImm8, TStates: 19}

	for y := uint8(0); y < 8; y++ {
		Index[0x86|y<<3] = Info{Op: ALU_IDX, Mnemonic: aluNames[y] + "(IX+d)", Mode: ModeDisp, X: y, TStates: 19}
		if y == 6 {
			continue
		}
		Index[0x46|y<<3] = Info{Op: LD_R_IDX, Mnemonic: "LD " + regNames[y] + ", (IX+d)", Mode: ModeDisp, X: y, TStates: 19}
		Index[0x70|y] = Info{Op: LD_IDX_R, Mnemonic: "LD (IX+d), " + regNames[y], Mode: ModeDisp, Y: y, TStates: 19}
	}

	Index[0xE1] = Info{Op: POP, Mnemonic: "POP IX", X: 2, TStates: 14}
	Index[0xE3] = Info{Op: EX_SP_HL, Mnemonic: "EX (SP), IX", TStates: 23}
	Index[0xE5] = Info{Op: PUSH, Mnemonic: "PUSH IX", X: 2, TStates: 15}
	Index[0xE9] = Info{Op: JP_HL, Mnemonic: "JP (IX)", TStates: 8}
	Index[0xF9] = Info{Op: LD_SP_HL, Mnemonic: "LD SP, IX", TStates: 10}
}

// initIndexCB fills only the (IX+d) operand forms; the variants that also
// copy the result into a register are left INVALID.
func initIndexCB() {
	for y := uint8(0); y < 8; y++ {
		base := y<<3 | 6
		IndexCB[base] = Info{Op: ROT_IDX, Mnemonic: rotNames[y] + "(IX+d)", Mode: ModeDisp, X: y, TStates: 23}
		IndexCB[0x40|base] = Info{Op: BIT_IDX, Mnemonic: "BIT " + digit(y) + ", (IX+d)", Mode: ModeDisp, X: y, TStates: 20}
		IndexCB[0x80|base] = Info{Op: RES_IDX, Mnemonic: "RES " + digit(y) + ", (IX+d)", Mode: ModeDisp, X: y, TStates: 23}
		IndexCB[0xC0|base] = Info{Op: SET_IDX, Mnemonic: "SET " + digit(y) + ", (IX+d)", Mode: ModeDisp, X: y, TStates: 23}
	}
}

func digit(v uint8) string {
	return string(rune('0' + v))
}

func hex8(v uint8) string {
	return string(appendHex8(nil, v))
}
