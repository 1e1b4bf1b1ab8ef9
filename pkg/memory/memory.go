// Package memory provides the memory and I/O collaborators a CPU runs
// against: a flat 64K RAM, a slot/page banked address space, and a
// 256-entry port space.
package memory

import (
	"errors"

	"github.com/cespare/xxhash"
)

// ErrUnmapped is returned for writes to an address with no backing page.
var ErrUnmapped = errors.New("memory: unmapped address")

// Size is the size of the Z80 address space.
const Size = 0x10000

// RAM is a flat, fully writable 64K address space.
type RAM struct {
	data [Size]uint8
}

// NewRAM returns zero-filled RAM.
func NewRAM() *RAM {
	return &RAM{}
}

func (m *RAM) Read(addr uint16) uint8 {
	return m.data[addr]
}

func (m *RAM) Write(addr uint16, v uint8) error {
	m.data[addr] = v
	return nil
}

// Load copies b into memory starting at addr, wrapping at 64K.
func (m *RAM) Load(addr uint16, b []uint8) {
	for i, v := range b {
		m.data[addr+uint16(i)] = v
	}
}

// Reset zero-fills the whole address space.
func (m *RAM) Reset() {
	clear(m.data[:])
}

// Bytes exposes the backing store.
func (m *RAM) Bytes() []uint8 {
	return m.data[:]
}

// Fingerprint hashes the full memory image.
func (m *RAM) Fingerprint() uint64 {
	return xxhash.Sum64(m.data[:])
}

// Word reads a little-endian 16-bit value through any memory.
func Word(mem interface{ Read(uint16) uint8 }, addr uint16) uint16 {
	return uint16(mem.Read(addr)) | uint16(mem.Read(addr+1))<<8
}
