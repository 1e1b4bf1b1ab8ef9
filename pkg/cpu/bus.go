package cpu

// Memory is the 64K address space the CPU executes against. Read must
// answer for every address; Write may reject an address, which faults
// the instruction that issued it.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8) error
}

// IO is the 256-entry port space used by IN and OUT.
type IO interface {
	In(port uint8) uint8
	Out(port uint8, v uint8) error
}

// Tracer receives one free-form line per executed instruction. It never
// influences execution.
type Tracer func(msg string)

// nullIO answers 0xFF on every port and discards writes.
type nullIO struct{}

func (nullIO) In(uint8) uint8         { return 0xFF }
func (nullIO) Out(uint8, uint8) error { return nil }
