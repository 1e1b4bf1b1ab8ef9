package memory

import (
	"fmt"

	"github.com/cespare/xxhash"
)

const (
	// Slots is the number of 16K windows in the address space.
	Slots = 4
	// Pages is the number of pages selectable in each slot.
	Pages = 4
	// PageSize is the size of one slot window.
	PageSize = 0x4000
	// Unmapped is returned by reads from an unmapped window.
	Unmapped uint8 = 0xEE
)

// Page is one 16K block of backing store.
type Page [PageSize]uint8

// Banked splits the address space into four 16K slots, each showing one
// of four pages. A nil page is unmapped: reads return Unmapped and
// writes fail with ErrUnmapped.
type Banked struct {
	pages [Slots][Pages]*Page
	sel   [Slots]int
}

// NewBanked returns a banked space with RAM in slot 0 page 0 and every
// other window unmapped.
func NewBanked() *Banked {
	b := &Banked{}
	b.pages[0][0] = &Page{}
	return b
}

// Map installs p (nil to unmap) as page of slot.
func (b *Banked) Map(slot, page int, p *Page) error {
	if slot < 0 || slot >= Slots || page < 0 || page >= Pages {
		return fmt.Errorf("memory: map slot %d page %d: out of range", slot, page)
	}
	b.pages[slot][page] = p
	return nil
}

// Select makes page the visible page of slot.
func (b *Banked) Select(slot, page int) error {
	if slot < 0 || slot >= Slots || page < 0 || page >= Pages {
		return fmt.Errorf("memory: select slot %d page %d: out of range", slot, page)
	}
	b.sel[slot] = page
	return nil
}

func (b *Banked) window(addr uint16) *Page {
	slot := addr >> 14
	return b.pages[slot][b.sel[slot]]
}

func (b *Banked) Read(addr uint16) uint8 {
	p := b.window(addr)
	if p == nil {
		return Unmapped
	}
	return p[addr&(PageSize-1)]
}

func (b *Banked) Write(addr uint16, v uint8) error {
	p := b.window(addr)
	if p == nil {
		return fmt.Errorf("%w: %04X", ErrUnmapped, addr)
	}
	p[addr&(PageSize-1)] = v
	return nil
}

// Load copies data into the visible pages starting at addr.
func (b *Banked) Load(addr uint16, data []uint8) error {
	for i, v := range data {
		if err := b.Write(addr+uint16(i), v); err != nil {
			return err
		}
	}
	return nil
}

// Reset zero-fills every mapped page and selects page 0 everywhere.
func (b *Banked) Reset() {
	for s := range b.pages {
		for _, p := range b.pages[s] {
			if p != nil {
				clear(p[:])
			}
		}
		b.sel[s] = 0
	}
}

// Fingerprint hashes the visible 64K, unmapped windows included.
func (b *Banked) Fingerprint() uint64 {
	h := xxhash.New()
	for s := 0; s < Slots; s++ {
		p := b.pages[s][b.sel[s]]
		if p == nil {
			var hole Page
			for i := range hole {
				hole[i] = Unmapped
			}
			h.Write(hole[:])
			continue
		}
		h.Write(p[:])
	}
	return h.Sum64()
}
