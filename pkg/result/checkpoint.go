package result

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/oisee/z80-emu/pkg/cpu"
)

// CheckpointVersion is bumped whenever Checkpoint changes shape.
const CheckpointVersion = 1

// Checkpoint is a resumable machine image: the register file, the halt
// state and the full 64K memory contents.
type Checkpoint struct {
	Version int
	Regs    cpu.Registers
	Halted  bool
	Memory  []uint8
}

// WriteCheckpoint gob-encodes ckpt to w.
func WriteCheckpoint(w io.Writer, ckpt *Checkpoint) error {
	c := *ckpt
	c.Version = CheckpointVersion
	return gob.NewEncoder(w).Encode(&c)
}

// ReadCheckpoint decodes a checkpoint written by WriteCheckpoint.
func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	var ckpt Checkpoint
	if err := gob.NewDecoder(r).Decode(&ckpt); err != nil {
		return nil, err
	}
	if ckpt.Version != CheckpointVersion {
		return nil, fmt.Errorf("checkpoint version %d, want %d", ckpt.Version, CheckpointVersion)
	}
	return &ckpt, nil
}

// SaveCheckpoint writes a machine image to a file.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCheckpoint(f, ckpt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadCheckpoint loads a machine image from a file.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ckpt, err := ReadCheckpoint(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ckpt, nil
}
