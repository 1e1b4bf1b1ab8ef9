package cpu

import "github.com/oisee/z80-emu/pkg/inst"

type handler func(c *CPU, in *inst.Instruction) error

// handlers maps each operation class to its executor. PC already points
// at the next instruction when a handler runs; control transfers
// overwrite it.
var handlers [inst.OpCodeCount]handler

func init() {
	handlers = [inst.OpCodeCount]handler{
		inst.NOP:  func(*CPU, *inst.Instruction) error { return nil },
		inst.HALT: execHalt,

		inst.LD_R_R:   execLdRR,
		inst.LD_R_N:   execLdRN,
		inst.LD_R_IDX: execLdRIdx,
		inst.LD_IDX_R: execLdIdxR,
		inst.LD_IDX_N: execLdIdxN,
		inst.LD_A_RRI: execLdARRI,
		inst.LD_RRI_A: execLdRRIA,
		inst.LD_A_NNI: execLdANNI,
		inst.LD_NNI_A: execLdNNIA,
		inst.LD_I_A:   func(c *CPU, _ *inst.Instruction) error { c.regs.I = c.regs.A; return nil },
		inst.LD_R_A:   func(c *CPU, _ *inst.Instruction) error { c.regs.R = c.regs.A; return nil },
		inst.LD_A_I:   func(c *CPU, _ *inst.Instruction) error { c.ldSpecial(c.regs.I); return nil },
		inst.LD_A_R:   func(c *CPU, _ *inst.Instruction) error { c.ldSpecial(c.regs.R); return nil },

		inst.LD_RR_NN:  execLdRRNN,
		inst.LD_RR_NNI: execLdRRNNI,
		inst.LD_NNI_RR: execLdNNIRR,
		inst.LD_SP_HL:  execLdSPHL,

		inst.ALU_R:   func(c *CPU, in *inst.Instruction) error { c.alu(in.Info.X, c.get8(Reg(in.Info.Y))); return nil },
		inst.ALU_N:   func(c *CPU, in *inst.Instruction) error { c.alu(in.Info.X, uint8(in.Imm)); return nil },
		inst.ALU_IDX: func(c *CPU, in *inst.Instruction) error { c.alu(in.Info.X, c.read(c.indexAddr(in))); return nil },
		inst.INC_R:   execIncR,
		inst.DEC_R:   execDecR,
		inst.INC_IDX: execIncIdx,
		inst.DEC_IDX: execDecIdx,
		inst.DAA:     execDaa,
		inst.CPL:     execCpl,
		inst.NEG:     execNeg,
		inst.SCF:     execScf,
		inst.CCF:     execCcf,

		inst.INC_RR:    execIncRR,
		inst.DEC_RR:    execDecRR,
		inst.ADD_HL_RR: execAddHL,
		inst.ADC_HL_RR: execAdcHL,
		inst.SBC_HL_RR: execSbcHL,

		inst.RLCA: execRotateAcc,
		inst.RRCA: execRotateAcc,
		inst.RLA:  execRotateAcc,
		inst.RRA:  execRotateAcc,

		inst.ROT:     execRot,
		inst.BIT:     execBit,
		inst.RES:     execRes,
		inst.SET:     execSet,
		inst.ROT_IDX: execRotIdx,
		inst.BIT_IDX: execBitIdx,
		inst.RES_IDX: execResIdx,
		inst.SET_IDX: execSetIdx,
		inst.RRD:     execRrd,
		inst.RLD:     execRld,

		inst.EX_AF:    execExAF,
		inst.EXX:      execExx,
		inst.EX_DE_HL: execExDEHL,
		inst.EX_SP_HL: execExSPHL,

		inst.PUSH: execPush,
		inst.POP:  execPop,

		inst.JP:      func(c *CPU, in *inst.Instruction) error { c.regs.PC = in.Imm; return nil },
		inst.JP_CC:   execJpCC,
		inst.JP_HL:   func(c *CPU, in *inst.Instruction) error { c.regs.PC = c.regs.Pair(c.hlPair(in)); return nil },
		inst.JR:      func(c *CPU, in *inst.Instruction) error { c.regs.PC = Relative(in.Next(), in.Disp); return nil },
		inst.JR_CC:   execJrCC,
		inst.DJNZ:    execDjnz,
		inst.CALL:    execCall,
		inst.CALL_CC: execCallCC,
		inst.RET:     execRet,
		inst.RET_CC:  execRetCC,
		inst.RETI:    execRet,
		inst.RETN:    execRet,
		inst.RST:     execRst,

		inst.IN_A_N:  func(c *CPU, in *inst.Instruction) error { c.regs.A = c.in(uint8(in.Imm)); return nil },
		inst.OUT_N_A: func(c *CPU, in *inst.Instruction) error { return c.out(uint8(in.Imm), c.regs.A) },
		inst.IN_R_C:  execInRC,
		inst.OUT_C_R: execOutCR,

		inst.DI: func(c *CPU, _ *inst.Instruction) error { c.regs.IFF = false; return nil },
		inst.EI: func(c *CPU, _ *inst.Instruction) error { c.regs.IFF = true; return nil },
		inst.IM: func(c *CPU, in *inst.Instruction) error { c.regs.IM = in.Info.X; return nil },

		inst.LDI:  func(c *CPU, _ *inst.Instruction) error { return c.ldx(1) },
		inst.LDD:  func(c *CPU, _ *inst.Instruction) error { return c.ldx(0xFFFF) },
		inst.LDIR: func(c *CPU, _ *inst.Instruction) error { return c.ldxr(1) },
		inst.LDDR: func(c *CPU, _ *inst.Instruction) error { return c.ldxr(0xFFFF) },
		inst.CPI:  func(c *CPU, _ *inst.Instruction) error { c.cpx(1); return nil },
		inst.CPD:  func(c *CPU, _ *inst.Instruction) error { c.cpx(0xFFFF); return nil },
		inst.CPIR: func(c *CPU, _ *inst.Instruction) error { c.cpxr(1); return nil },
		inst.CPDR: func(c *CPU, _ *inst.Instruction) error { c.cpxr(0xFFFF); return nil },
		inst.INI:  func(c *CPU, _ *inst.Instruction) error { return c.inx(1) },
		inst.IND:  func(c *CPU, _ *inst.Instruction) error { return c.inx(0xFFFF) },
		inst.INIR: func(c *CPU, _ *inst.Instruction) error { return c.inxr(1) },
		inst.INDR: func(c *CPU, _ *inst.Instruction) error { return c.inxr(0xFFFF) },
		inst.OUTI: func(c *CPU, _ *inst.Instruction) error { return c.outx(1) },
		inst.OUTD: func(c *CPU, _ *inst.Instruction) error { return c.outx(0xFFFF) },
		inst.OTIR: func(c *CPU, _ *inst.Instruction) error { return c.outxr(1) },
		inst.OTDR: func(c *CPU, _ *inst.Instruction) error { return c.outxr(0xFFFF) },
	}
}

// hlPair returns HL, or the index register selected by the prefix.
func (c *CPU) hlPair(in *inst.Instruction) Pair {
	switch {
	case in.Prefix.UsesIY():
		return PairIY
	case in.Prefix.Indexed():
		return PairIX
	}
	return PairHL
}

// pair decodes a 2-bit pair code; code 2 follows the index prefix.
func (c *CPU) pair(in *inst.Instruction, code uint8) Pair {
	if code&3 == 2 {
		return c.hlPair(in)
	}
	return Pair(code & 3)
}

// stackPair decodes the PUSH/POP pair code, where 3 is AF.
func (c *CPU) stackPair(in *inst.Instruction, code uint8) Pair {
	if code&3 == 3 {
		return PairAF
	}
	return c.pair(in, code)
}

func (c *CPU) indexAddr(in *inst.Instruction) uint16 {
	return Indexed(c.regs.Pair(c.hlPair(in)), in.Disp)
}

// cond evaluates a 3-bit condition code against F.
func (c *CPU) cond(cc uint8) bool {
	f := c.regs.F
	switch cc & 7 {
	case 0:
		return f&FlagZ == 0
	case 1:
		return f&FlagZ != 0
	case 2:
		return f&FlagC == 0
	case 3:
		return f&FlagC != 0
	case 4:
		return f&FlagP == 0
	case 5:
		return f&FlagP != 0
	case 6:
		return f&FlagS == 0
	}
	return f&FlagS != 0
}

func execHalt(c *CPU, in *inst.Instruction) error {
	c.halted = true
	c.haltInst = *in
	return nil
}

// === 8-bit loads ===

func execLdRR(c *CPU, in *inst.Instruction) error {
	return c.set8(Reg(in.Info.X), c.get8(Reg(in.Info.Y)))
}

func execLdRN(c *CPU, in *inst.Instruction) error {
	return c.set8(Reg(in.Info.X), uint8(in.Imm))
}

func execLdRIdx(c *CPU, in *inst.Instruction) error {
	return c.set8(Reg(in.Info.X), c.read(c.indexAddr(in)))
}

func execLdIdxR(c *CPU, in *inst.Instruction) error {
	return c.write(c.indexAddr(in), c.get8(Reg(in.Info.Y)))
}

func execLdIdxN(c *CPU, in *inst.Instruction) error {
	return c.write(c.indexAddr(in), uint8(in.Imm))
}

func execLdARRI(c *CPU, in *inst.Instruction) error {
	c.regs.A = c.read(Indirect(&c.regs, Pair(in.Info.X)))
	return nil
}

func execLdRRIA(c *CPU, in *inst.Instruction) error {
	return c.write(Indirect(&c.regs, Pair(in.Info.X)), c.regs.A)
}

func execLdANNI(c *CPU, in *inst.Instruction) error {
	c.regs.A = c.read(in.Imm)
	return nil
}

func execLdNNIA(c *CPU, in *inst.Instruction) error {
	return c.write(in.Imm, c.regs.A)
}

// ldSpecial implements LD A,I and LD A,R: P/V reflects the interrupt
// enable flag.
func (c *CPU) ldSpecial(v uint8) {
	c.regs.A = v
	c.regs.F = (c.regs.F & FlagC) | Sz53Table[v] | bsel(c.regs.IFF, FlagP, 0)
}

// === 16-bit loads ===

func execLdRRNN(c *CPU, in *inst.Instruction) error {
	c.regs.SetPair(c.pair(in, in.Info.X), in.Imm)
	return nil
}

func execLdRRNNI(c *CPU, in *inst.Instruction) error {
	lo := c.read(in.Imm)
	hi := c.read(in.Imm + 1)
	c.regs.SetPair(c.pair(in, in.Info.X), Absolute(lo, hi))
	return nil
}

func execLdNNIRR(c *CPU, in *inst.Instruction) error {
	return c.write16(in.Imm, c.regs.Pair(c.pair(in, in.Info.X)))
}

func execLdSPHL(c *CPU, in *inst.Instruction) error {
	c.regs.SP = c.regs.Pair(c.hlPair(in))
	return nil
}

// === 8-bit arithmetic and logic ===

// alu applies one of ADD, ADC, SUB, SBC, AND, XOR, OR, CP to A.
func (c *CPU) alu(op, v uint8) {
	r := &c.regs
	switch op & 7 {
	case 0:
		r.A, r.F = Add8(r.A, v, false)
	case 1:
		r.A, r.F = Add8(r.A, v, r.F&FlagC != 0)
	case 2:
		r.A, r.F = Sub8(r.A, v, false)
	case 3:
		r.A, r.F = Sub8(r.A, v, r.F&FlagC != 0)
	case 4:
		r.A &= v
		r.F = Logic(r.A, true)
	case 5:
		r.A ^= v
		r.F = Logic(r.A, false)
	case 6:
		r.A |= v
		r.F = Logic(r.A, false)
	case 7:
		_, r.F = Sub8(r.A, v, false)
	}
}

func execIncR(c *CPU, in *inst.Instruction) error {
	reg := Reg(in.Info.X)
	v, f := Inc8(c.regs.F, c.get8(reg))
	c.regs.F = f
	return c.set8(reg, v)
}

func execDecR(c *CPU, in *inst.Instruction) error {
	reg := Reg(in.Info.X)
	v, f := Dec8(c.regs.F, c.get8(reg))
	c.regs.F = f
	return c.set8(reg, v)
}

func execIncIdx(c *CPU, in *inst.Instruction) error {
	addr := c.indexAddr(in)
	v, f := Inc8(c.regs.F, c.read(addr))
	c.regs.F = f
	return c.write(addr, v)
}

func execDecIdx(c *CPU, in *inst.Instruction) error {
	addr := c.indexAddr(in)
	v, f := Dec8(c.regs.F, c.read(addr))
	c.regs.F = f
	return c.write(addr, v)
}

func execDaa(c *CPU, _ *inst.Instruction) error {
	c.regs.A, c.regs.F = Daa(c.regs.F, c.regs.A)
	return nil
}

func execCpl(c *CPU, _ *inst.Instruction) error {
	c.regs.A = ^c.regs.A
	c.regs.F = (c.regs.F & (FlagS | FlagZ | Flag5 | Flag3 | FlagP | FlagC)) | FlagH | FlagN
	return nil
}

func execNeg(c *CPU, _ *inst.Instruction) error {
	c.regs.A, c.regs.F = Sub8(0, c.regs.A, false)
	return nil
}

func execScf(c *CPU, _ *inst.Instruction) error {
	c.regs.F = (c.regs.F & (FlagS | FlagZ | Flag5 | Flag3 | FlagP)) | FlagC
	return nil
}

// execCcf complements C; H takes the previous carry.
func execCcf(c *CPU, _ *inst.Instruction) error {
	f := c.regs.F
	c.regs.F = (f & (FlagS | FlagZ | Flag5 | Flag3 | FlagP)) |
		bsel(f&FlagC != 0, FlagH, FlagC)
	return nil
}

// === 16-bit arithmetic ===

func execIncRR(c *CPU, in *inst.Instruction) error {
	p := c.pair(in, in.Info.X)
	c.regs.SetPair(p, c.regs.Pair(p)+1)
	return nil
}

func execDecRR(c *CPU, in *inst.Instruction) error {
	p := c.pair(in, in.Info.X)
	c.regs.SetPair(p, c.regs.Pair(p)-1)
	return nil
}

func execAddHL(c *CPU, in *inst.Instruction) error {
	dst := c.hlPair(in)
	v, f := Add16(c.regs.F, c.regs.Pair(dst), c.regs.Pair(c.pair(in, in.Info.X)))
	c.regs.SetPair(dst, v)
	c.regs.F = f
	return nil
}

func execAdcHL(c *CPU, in *inst.Instruction) error {
	v, f := Adc16(c.regs.F, c.regs.HL(), c.regs.Pair(Pair(in.Info.X)))
	c.regs.SetHL(v)
	c.regs.F = f
	return nil
}

func execSbcHL(c *CPU, in *inst.Instruction) error {
	v, f := Sbc16(c.regs.F, c.regs.HL(), c.regs.Pair(Pair(in.Info.X)))
	c.regs.SetHL(v)
	c.regs.F = f
	return nil
}

// === rotates, shifts and bit operations ===

var accRotate = map[inst.OpCode]uint8{
	inst.RLCA: RotRLC,
	inst.RRCA: RotRRC,
	inst.RLA:  RotRL,
	inst.RRA:  RotRR,
}

func execRotateAcc(c *CPU, in *inst.Instruction) error {
	c.regs.A, c.regs.F = RotateAcc(accRotate[in.Op()], c.regs.F, c.regs.A)
	return nil
}

func execRot(c *CPU, in *inst.Instruction) error {
	reg := Reg(in.Info.Y)
	v, f := Shift(in.Info.X, c.regs.F, c.get8(reg))
	c.regs.F = f
	return c.set8(reg, v)
}

func execBit(c *CPU, in *inst.Instruction) error {
	c.regs.F = Bit(c.regs.F, in.Info.X, c.get8(Reg(in.Info.Y)))
	return nil
}

func execRes(c *CPU, in *inst.Instruction) error {
	reg := Reg(in.Info.Y)
	return c.set8(reg, c.get8(reg)&^(1<<in.Info.X))
}

func execSet(c *CPU, in *inst.Instruction) error {
	reg := Reg(in.Info.Y)
	return c.set8(reg, c.get8(reg)|1<<in.Info.X)
}

func execRotIdx(c *CPU, in *inst.Instruction) error {
	addr := c.indexAddr(in)
	v, f := Shift(in.Info.X, c.regs.F, c.read(addr))
	c.regs.F = f
	return c.write(addr, v)
}

func execBitIdx(c *CPU, in *inst.Instruction) error {
	c.regs.F = Bit(c.regs.F, in.Info.X, c.read(c.indexAddr(in)))
	return nil
}

func execResIdx(c *CPU, in *inst.Instruction) error {
	addr := c.indexAddr(in)
	return c.write(addr, c.read(addr)&^(1<<in.Info.X))
}

func execSetIdx(c *CPU, in *inst.Instruction) error {
	addr := c.indexAddr(in)
	return c.write(addr, c.read(addr)|1<<in.Info.X)
}

// execRrd rotates the low nibble of A through (HL) to the right.
func execRrd(c *CPU, _ *inst.Instruction) error {
	addr := c.regs.HL()
	m := c.read(addr)
	a := c.regs.A
	c.regs.A = a&0xF0 | m&0x0F
	c.regs.F = (c.regs.F & FlagC) | Sz53pTable[c.regs.A]
	return c.write(addr, a<<4|m>>4)
}

func execRld(c *CPU, _ *inst.Instruction) error {
	addr := c.regs.HL()
	m := c.read(addr)
	a := c.regs.A
	c.regs.A = a&0xF0 | m>>4
	c.regs.F = (c.regs.F & FlagC) | Sz53pTable[c.regs.A]
	return c.write(addr, m<<4|a&0x0F)
}

// === exchange ===

func execExAF(c *CPU, _ *inst.Instruction) error {
	r := &c.regs
	r.A, r.Alt.A = r.Alt.A, r.A
	r.F, r.Alt.F = r.Alt.F, r.F
	return nil
}

func execExx(c *CPU, _ *inst.Instruction) error {
	r := &c.regs
	r.B, r.Alt.B = r.Alt.B, r.B
	r.C, r.Alt.C = r.Alt.C, r.C
	r.D, r.Alt.D = r.Alt.D, r.D
	r.E, r.Alt.E = r.Alt.E, r.E
	r.H, r.Alt.H = r.Alt.H, r.H
	r.L, r.Alt.L = r.Alt.L, r.L
	return nil
}

func execExDEHL(c *CPU, _ *inst.Instruction) error {
	r := &c.regs
	r.D, r.H = r.H, r.D
	r.E, r.L = r.L, r.E
	return nil
}

func execExSPHL(c *CPU, in *inst.Instruction) error {
	p := c.hlPair(in)
	sp := c.regs.SP
	lo, hi := c.read(sp), c.read(sp+1)
	if err := c.write16(sp, c.regs.Pair(p)); err != nil {
		return err
	}
	c.regs.SetPair(p, Absolute(lo, hi))
	return nil
}

// === stack ===

func execPush(c *CPU, in *inst.Instruction) error {
	return c.Push(c.regs.Pair(c.stackPair(in, in.Info.X)))
}

func execPop(c *CPU, in *inst.Instruction) error {
	c.regs.SetPair(c.stackPair(in, in.Info.X), c.Pop())
	return nil
}

// === control transfer ===

func execJpCC(c *CPU, in *inst.Instruction) error {
	if c.cond(in.Info.X) {
		c.regs.PC = in.Imm
	}
	return nil
}

func execJrCC(c *CPU, in *inst.Instruction) error {
	if c.cond(in.Info.X) {
		c.regs.PC = Relative(in.Next(), in.Disp)
	}
	return nil
}

func execDjnz(c *CPU, in *inst.Instruction) error {
	c.regs.B--
	if c.regs.B != 0 {
		c.regs.PC = Relative(in.Next(), in.Disp)
	}
	return nil
}

func execCall(c *CPU, in *inst.Instruction) error {
	if err := c.Push(c.regs.PC); err != nil {
		return err
	}
	c.regs.PC = in.Imm
	return nil
}

func execCallCC(c *CPU, in *inst.Instruction) error {
	if !c.cond(in.Info.X) {
		return nil
	}
	return execCall(c, in)
}

func execRet(c *CPU, _ *inst.Instruction) error {
	c.regs.PC = c.Pop()
	return nil
}

func execRetCC(c *CPU, in *inst.Instruction) error {
	if c.cond(in.Info.X) {
		c.regs.PC = c.Pop()
	}
	return nil
}

func execRst(c *CPU, in *inst.Instruction) error {
	if err := c.Push(c.regs.PC); err != nil {
		return err
	}
	c.regs.PC = uint16(in.Info.X)
	return nil
}

// === input/output ===

// execInRC reads port C; code 6 only sets flags.
func execInRC(c *CPU, in *inst.Instruction) error {
	v := c.in(c.regs.C)
	c.regs.F = (c.regs.F & FlagC) | Sz53pTable[v]
	if in.Info.X != uint8(RegHLI) {
		*c.regs.reg8(Reg(in.Info.X)) = v
	}
	return nil
}

func execOutCR(c *CPU, in *inst.Instruction) error {
	var v uint8
	if in.Info.X != uint8(RegHLI) {
		v = *c.regs.reg8(Reg(in.Info.X))
	}
	return c.out(c.regs.C, v)
}
