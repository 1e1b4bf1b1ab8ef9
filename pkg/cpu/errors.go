package cpu

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

var (
	// ErrUnimplemented is returned for encodings with no table entry.
	ErrUnimplemented = errors.New("cpu: unimplemented opcode")
	// ErrFaulted is wrapped by every Step after a fatal error until Reset.
	ErrFaulted = errors.New("cpu: faulted")
)

// StepError reports a fatal condition detected while executing one
// instruction. Regs is the register file as it was when the fault was
// detected; Where is the file:line that raised it.
type StepError struct {
	PC    uint16
	Bytes []uint8
	Regs  Registers
	Where string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step at %04X [% X]: %v (%s)\n%s", e.PC, e.Bytes, e.Err, e.Where, e.Regs)
}

func (e *StepError) Unwrap() error { return e.Err }

// caller returns "file:line" of the function skip frames above it.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
