package inst

// OpCode identifies the operation class a table entry dispatches to.
// It is not the raw byte encoding: one OpCode covers a whole family of
// encodings (e.g. LD_R_R covers 0x40-0x7F except HALT), with the operand
// selectors carried in Info.X and Info.Y.
type OpCode uint8

// Mode describes the operand bytes that follow the opcode byte.
type Mode uint8

const (
	ModeNone     Mode = iota
	ModeImm8          // n
	ModeImm16         // nn, little-endian
	ModeRel           // e, signed offset from the next instruction
	ModeDisp          // d, signed index displacement
	ModeDispImm8      // d then n
)

// Size returns the number of operand bytes for the mode.
func (m Mode) Size() int {
	switch m {
	case ModeImm8, ModeRel, ModeDisp:
		return 1
	case ModeImm16, ModeDispImm8:
		return 2
	}
	return 0
}

// Prefix records which opcode table an instruction was decoded from.
type Prefix uint8

const (
	PrefixNone Prefix = iota
	PrefixCB
	PrefixED
	PrefixDD
	PrefixFD
	PrefixDDCB
	PrefixFDCB
)

// Indexed reports whether the prefix substitutes IX or IY for HL.
func (p Prefix) Indexed() bool {
	return p == PrefixDD || p == PrefixFD || p == PrefixDDCB || p == PrefixFDCB
}

// UsesIY reports whether the prefix selects IY rather than IX.
func (p Prefix) UsesIY() bool {
	return p == PrefixFD || p == PrefixFDCB
}

// Instruction is one decoded instruction: the table entry it resolved to
// plus its immediate operands and raw encoding.
type Instruction struct {
	PC     uint16 // address of the first byte
	Prefix Prefix
	Opcode uint8 // opcode byte after any prefix (and displacement)
	Info   *Info
	Imm    uint16 // n or nn
	Disp   int8   // d or e
	Len    int
	Bytes  [4]uint8
}

// Op returns the operation class, INVALID for an unassigned encoding.
func (i *Instruction) Op() OpCode {
	if i.Info == nil {
		return INVALID
	}
	return i.Info.Op
}

// Encoding returns the raw bytes of the instruction.
func (i *Instruction) Encoding() []uint8 {
	return i.Bytes[:i.Len]
}

// Next returns the address of the following instruction.
func (i *Instruction) Next() uint16 {
	return i.PC + uint16(i.Len)
}

// Operation classes. Operand selectors live in Info.X / Info.Y:
//
//	register codes follow B,C,D,E,H,L,(HL),A (0-7)
//	pair codes follow BC,DE,HL,SP (0-3), AF replacing SP for PUSH/POP
//	condition codes follow NZ,Z,NC,C,PO,PE,P,M (0-7)
//	ALU codes follow ADD,ADC,SUB,SBC,AND,XOR,OR,CP (0-7)
//	rotate codes follow RLC,RRC,RL,RR,SLA,SRA,SLL,SRL (0-7)
const (
	INVALID OpCode = iota

	NOP
	HALT

	// 8-bit loads
	LD_R_R   // LD r, r'          X=dst Y=src
	LD_R_N   // LD r, n           X=dst
	LD_R_IDX // LD r, (IX+d)      X=dst
	LD_IDX_R // LD (IX+d), r      Y=src
	LD_IDX_N // LD (IX+d), n
	LD_A_RRI // LD A, (BC)/(DE)   X=pair
	LD_RRI_A // LD (BC)/(DE), A   X=pair
	LD_A_NNI // LD A, (nn)
	LD_NNI_A // LD (nn), A
	LD_I_A
	LD_R_A
	LD_A_I
	LD_A_R

	// 16-bit loads
	LD_RR_NN  // LD rr, nn        X=pair
	LD_RR_NNI // LD rr, (nn)      X=pair
	LD_NNI_RR // LD (nn), rr      X=pair
	LD_SP_HL

	// 8-bit arithmetic and logic
	ALU_R   // X=alu Y=src
	ALU_N   // X=alu
	ALU_IDX // X=alu
	INC_R   // X=reg
	DEC_R   // X=reg
	INC_IDX
	DEC_IDX
	DAA
	CPL
	NEG
	SCF
	CCF

	// 16-bit arithmetic
	INC_RR    // X=pair
	DEC_RR    // X=pair
	ADD_HL_RR // X=pair
	ADC_HL_RR // X=pair
	SBC_HL_RR // X=pair

	// accumulator rotates
	RLCA
	RRCA
	RLA
	RRA

	// CB group
	ROT     // X=rotate Y=reg
	BIT     // X=bit Y=reg
	RES     // X=bit Y=reg
	SET     // X=bit Y=reg
	ROT_IDX // X=rotate
	BIT_IDX // X=bit
	RES_IDX // X=bit
	SET_IDX // X=bit
	RRD
	RLD

	// exchange
	EX_AF
	EXX
	EX_DE_HL
	EX_SP_HL

	// stack
	PUSH // X=pair (AF for 3)
	POP  // X=pair (AF for 3)

	// control transfer
	JP
	JP_CC // X=cc
	JP_HL
	JR
	JR_CC // X=cc (NZ,Z,NC,C only)
	DJNZ
	CALL
	CALL_CC // X=cc
	RET
	RET_CC // X=cc
	RETI
	RETN
	RST // X=vector

	// input/output
	IN_A_N
	OUT_N_A
	IN_R_C  // X=reg, 6 = flags only
	OUT_C_R // X=reg, 6 = zero

	// interrupt control
	DI
	EI
	IM // X=mode

	// block transfer, compare and I/O
	LDI
	LDD
	LDIR
	LDDR
	CPI
	CPD
	CPIR
	CPDR
	INI
	IND
	INIR
	INDR
	OUTI
	OUTD
	OTIR
	OTDR

	OpCodeCount
)
