package scenario

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/cespare/xxhash"
	"golang.org/x/sync/errgroup"

	"github.com/oisee/z80-emu/pkg/cpu"
	"github.com/oisee/z80-emu/pkg/memory"
	"github.com/oisee/z80-emu/pkg/result"
)

// Runner executes scenarios in parallel, one CPU per scenario.
type Runner struct {
	Workers int
	Verbose bool
	Results *result.Table
}

// NewRunner creates a runner with the given number of workers.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		Workers: workers,
		Results: result.NewTable(),
	}
}

// Run executes every scenario and records one outcome each. It returns
// early only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for _, sc := range scenarios {
		sc := sc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o := Execute(sc)
			if r.Verbose {
				status := "ok"
				if !o.Passed() {
					status = "FAIL"
				}
				fmt.Printf("  %-4s %s (%d steps)\n", status, o.Name, o.Steps)
			}
			r.Results.Add(o)
			return nil
		})
	}
	return g.Wait()
}

// Machine is a CPU together with the collaborators a scenario built.
type Machine struct {
	CPU   *cpu.CPU
	Mem   Store
	Ports *memory.Ports
}

// Store is a memory collaborator that can fingerprint its contents.
type Store interface {
	cpu.Memory
	Fingerprint() uint64
}

// Build constructs a machine in the scenario's initial state: fresh
// memory with code and pokes loaded, ports preset, registers reset and
// then seeded, PC at Org unless seeded explicitly.
func Build(sc *Scenario, opts ...cpu.Option) (*Machine, error) {
	var mem Store
	if sc.Memory == Banked {
		mem = memory.NewBanked()
	} else {
		mem = memory.NewRAM()
	}
	if err := load(mem, sc.Org, sc.Code); err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}
	for _, b := range sc.Poke {
		if err := load(mem, b.Addr, b.Data); err != nil {
			return nil, fmt.Errorf("poke %04X: %w", b.Addr, err)
		}
	}
	ports := &memory.Ports{}
	for _, p := range sc.Ports {
		ports.Set(p.Port, p.Value)
	}

	c := cpu.New(mem, ports, opts...)
	c.Assign("PC", sc.Org)
	for _, name := range cpu.SeedOrder(sc.Regs) {
		if !c.Assign(name, sc.Regs[name]) {
			return nil, fmt.Errorf("unknown register %q", name)
		}
	}
	return &Machine{CPU: c, Mem: mem, Ports: ports}, nil
}

// Fingerprint hashes the register file and memory together.
func (m *Machine) Fingerprint() uint64 {
	regs := m.CPU.Registers()
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:], regs.Fingerprint())
	binary.LittleEndian.PutUint64(buf[8:], m.Mem.Fingerprint())
	return xxhash.Sum64(buf[:])
}

// Execute runs one scenario on a fresh machine and checks its
// expectations.
func Execute(sc Scenario) result.Outcome {
	o := result.Outcome{Name: sc.Name}
	m, err := Build(&sc)
	if err != nil {
		o.Err = err
		return o
	}

	steps := sc.Steps
	if steps <= 0 {
		steps = 1
	}
	var stepErr error
	for o.Steps < steps {
		if _, stepErr = m.CPU.Step(); stepErr != nil {
			break
		}
		o.Steps++
	}

	switch {
	case sc.Expect.Error != "" && stepErr == nil:
		o.Failures = append(o.Failures, fmt.Sprintf("error: got none, want %q", sc.Expect.Error))
	case sc.Expect.Error != "" && !strings.Contains(stepErr.Error(), sc.Expect.Error):
		o.Failures = append(o.Failures, fmt.Sprintf("error: got %q, want %q", stepErr, sc.Expect.Error))
	case sc.Expect.Error == "" && stepErr != nil:
		o.Err = stepErr
	}

	o.Failures = append(o.Failures, m.Check(&sc.Expect)...)
	o.Fingerprint = m.Fingerprint()
	return o
}

// Check compares the machine against exp and returns one line per
// mismatch.
func (m *Machine) Check(exp *Expect) []string {
	var failures []string
	for _, name := range sortedNames(exp.Regs) {
		want := exp.Regs[name]
		got, ok := m.CPU.Lookup(name)
		switch {
		case !ok:
			failures = append(failures, fmt.Sprintf("%s: unknown register", name))
		case got != want && strings.EqualFold(name, "F"):
			failures = append(failures, fmt.Sprintf("F: got %02X (%s), want %02X (%s)",
				got, cpu.FlagString(uint8(got)), want, cpu.FlagString(uint8(want))))
		case got != want:
			failures = append(failures, fmt.Sprintf("%s: got %X, want %X", name, got, want))
		}
	}
	for _, b := range exp.Mem {
		for i, want := range b.Data {
			addr := b.Addr + uint16(i)
			if got := m.Mem.Read(addr); got != want {
				failures = append(failures, fmt.Sprintf("(%04X): got %02X, want %02X", addr, got, want))
			}
		}
	}
	for _, p := range exp.Ports {
		if got := m.Ports.In(p.Port); got != p.Value {
			failures = append(failures, fmt.Sprintf("port %02X: got %02X, want %02X", p.Port, got, p.Value))
		}
	}
	if exp.Halted && !m.CPU.Halted() {
		failures = append(failures, "not halted")
	}
	return failures
}

func load(mem cpu.Memory, addr uint16, data []uint8) error {
	switch m := mem.(type) {
	case *memory.RAM:
		m.Load(addr, data)
		return nil
	case *memory.Banked:
		return m.Load(addr, data)
	}
	for i, v := range data {
		if err := mem.Write(addr+uint16(i), v); err != nil {
			return err
		}
	}
	return nil
}

func sortedNames(m map[string]uint16) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
