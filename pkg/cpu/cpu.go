package cpu

import (
	"fmt"

	"github.com/oisee/z80-emu/pkg/inst"
)

// CPU is one Z80 instruction engine bound to its memory and I/O
// collaborators. A CPU is not safe for concurrent use; independent
// instances share nothing.
type CPU struct {
	regs Registers
	mem  Memory
	io   IO

	trace Tracer

	halted   bool
	haltInst inst.Instruction

	fault error  // sticky until Reset
	where string // location of the last detected violation
}

// Option configures a CPU at construction.
type Option func(*CPU)

// WithTracer installs a diagnostic sink that receives one line per step.
func WithTracer(t Tracer) Option {
	return func(c *CPU) { c.trace = t }
}

// New returns a CPU in its reset state. A nil io answers 0xFF on every
// port.
func New(mem Memory, io IO, opts ...Option) *CPU {
	if io == nil {
		io = nullIO{}
	}
	c := &CPU{mem: mem, io: io}
	for _, o := range opts {
		o(c)
	}
	c.Reset()
	return c
}

// Reset restores the power-on register state and clears halt and fault
// conditions. Memory is not touched.
func (c *CPU) Reset() {
	c.regs.Reset()
	c.halted = false
	c.haltInst = inst.Instruction{}
	c.fault = nil
	c.where = ""
}

// Registers returns a snapshot of the register file.
func (c *CPU) Registers() Registers {
	return c.regs
}

// Load replaces the whole register file.
func (c *CPU) Load(r Registers) {
	c.regs = r
}

// Restore loads a saved register file and halt state, clearing any
// fault. A halted CPU resumes stopped on the HALT just before PC.
func (c *CPU) Restore(r Registers, halted bool) {
	c.Reset()
	c.regs = r
	if halted {
		c.halted = true
		c.haltInst = inst.Decode(c.mem, r.PC-1)
	}
}

// Lookup reads a register by canonical name (see Registers.Lookup).
func (c *CPU) Lookup(name string) (uint16, bool) {
	return c.regs.Lookup(name)
}

// Assign writes a register by canonical name (see Registers.Assign).
func (c *CPU) Assign(name string, v uint16) bool {
	return c.regs.Assign(name, v)
}

// Halted reports whether the CPU is stopped on HALT.
func (c *CPU) Halted() bool {
	return c.halted
}

// Memory returns the memory collaborator.
func (c *CPU) Memory() Memory {
	return c.mem
}

// Get reads an 8-bit register by its 3-bit code; code 6 reads memory at HL.
func (c *CPU) Get(code uint8) (uint8, Reg) {
	r := Reg(code & 7)
	return c.get8(r), r
}

// Set writes an 8-bit register by its 3-bit code; code 6 writes memory at HL.
func (c *CPU) Set(code uint8, v uint8) (Reg, error) {
	r := Reg(code & 7)
	return r, c.set8(r, v)
}

// GetPair reads a register pair by its 2-bit code (BC, DE, HL, SP).
func (c *CPU) GetPair(code uint8) (uint16, Pair) {
	p := Pair(code & 3)
	return c.regs.Pair(p), p
}

// SetPair writes a register pair by its 2-bit code (BC, DE, HL, SP).
func (c *CPU) SetPair(code uint8, v uint16) Pair {
	p := Pair(code & 3)
	c.regs.SetPair(p, v)
	return p
}

// Push stores v below SP, high byte first, and lowers SP by two.
func (c *CPU) Push(v uint16) error {
	c.regs.SP--
	if err := c.write(c.regs.SP, uint8(v>>8)); err != nil {
		return err
	}
	c.regs.SP--
	return c.write(c.regs.SP, uint8(v))
}

// Pop loads the word at SP and raises SP by two.
func (c *CPU) Pop() uint16 {
	lo := c.read(c.regs.SP)
	hi := c.read(c.regs.SP + 1)
	c.regs.SP += 2
	return Absolute(lo, hi)
}

// Step executes exactly one instruction, block-repeat groups included,
// and returns it. While halted, Step does nothing and returns the HALT.
// A fatal error leaves the CPU faulted until Reset.
func (c *CPU) Step() (inst.Instruction, error) {
	if c.fault != nil {
		return inst.Instruction{}, fmt.Errorf("%w: %w", ErrFaulted, c.fault)
	}
	if c.halted {
		return c.haltInst, nil
	}

	in := inst.Decode(c.mem, c.regs.PC)
	c.refresh(in.Prefix)
	if c.trace != nil {
		c.trace(fmt.Sprintf("%04X  %-11s  %s", in.PC, fmt.Sprintf("% X", in.Encoding()), inst.Disassemble(in)))
	}

	op := in.Op()
	if op == inst.INVALID {
		c.where = caller(0)
		return in, c.fail(&in, ErrUnimplemented)
	}

	// A failed instruction leaves the register file as it was before it;
	// memory writes that succeeded before the fault are kept.
	before := c.regs
	c.regs.PC = in.Next()
	if err := handlers[op](c, &in); err != nil {
		c.regs = before
		return in, c.fail(&in, err)
	}
	return in, nil
}

// Run steps until the CPU halts, an error occurs, or max instructions
// have executed (max <= 0 means no limit). It returns the number of
// instructions executed.
func (c *CPU) Run(max int) (int, error) {
	n := 0
	for max <= 0 || n < max {
		if c.halted {
			break
		}
		if _, err := c.Step(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Accept services an interrupt: it pushes PC, disables interrupts,
// leaves the halted state and jumps to vector. Choosing the vector from
// the interrupt mode, and honouring IFF, is the caller's job.
func (c *CPU) Accept(vector uint16) error {
	if c.fault != nil {
		return fmt.Errorf("%w: %w", ErrFaulted, c.fault)
	}
	before, halted := c.regs, c.halted
	c.halted = false
	c.regs.IFF = false
	if err := c.Push(c.regs.PC); err != nil {
		c.regs, c.halted = before, halted
		c.fault = &StepError{PC: c.regs.PC, Regs: c.regs, Where: c.where, Err: err}
		return c.fault
	}
	c.regs.PC = vector
	return nil
}

func (c *CPU) fail(in *inst.Instruction, err error) error {
	where := c.where
	if where == "" {
		where = caller(1)
	}
	c.fault = &StepError{
		PC:    in.PC,
		Bytes: append([]uint8(nil), in.Encoding()...),
		Regs:  c.regs,
		Where: where,
		Err:   err,
	}
	return c.fault
}

// refresh advances the low seven bits of R once per opcode fetch.
func (c *CPU) refresh(p inst.Prefix) {
	n := uint8(1)
	if p != inst.PrefixNone {
		n = 2
	}
	c.regs.R = c.regs.R&0x80 | (c.regs.R+n)&0x7F
}

func (c *CPU) read(addr uint16) uint8 {
	return c.mem.Read(addr)
}

func (c *CPU) write(addr uint16, v uint8) error {
	if err := c.mem.Write(addr, v); err != nil {
		c.where = caller(1)
		return fmt.Errorf("write %04X: %w", addr, err)
	}
	return nil
}

func (c *CPU) write16(addr uint16, v uint16) error {
	if err := c.write(addr, uint8(v)); err != nil {
		return err
	}
	return c.write(addr+1, uint8(v>>8))
}

func (c *CPU) in(port uint8) uint8 {
	return c.io.In(port)
}

func (c *CPU) out(port, v uint8) error {
	if err := c.io.Out(port, v); err != nil {
		c.where = caller(1)
		return fmt.Errorf("out %02X: %w", port, err)
	}
	return nil
}

func (c *CPU) get8(r Reg) uint8 {
	if r == RegHLI {
		return c.read(c.regs.HL())
	}
	return *c.regs.reg8(r)
}

func (c *CPU) set8(r Reg, v uint8) error {
	if r == RegHLI {
		return c.write(c.regs.HL(), v)
	}
	*c.regs.reg8(r) = v
	return nil
}
