package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oisee/z80-emu/pkg/cpu"
	"github.com/oisee/z80-emu/pkg/inst"
	"github.com/oisee/z80-emu/pkg/memory"
	"github.com/oisee/z80-emu/pkg/result"
	"github.com/oisee/z80-emu/pkg/scenario"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "z80emu",
		Short: "Z80 instruction engine: run, trace and disassemble machine code",
	}

	// run command
	var org, pc uint16
	var sets []string
	var hexCode string
	var maxSteps int
	var banked, verbose bool
	var save, load string

	orgFlag := newAddrValue(&org, 0)
	pcFlag := newAddrValue(&pc, 0)

	runCmd := &cobra.Command{
		Use:   "run [program.bin]",
		Short: "Load a program and execute it until HALT, an error, or the step limit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			if pcFlag.set {
				seeds["PC"] = pc
			}

			var opts []cpu.Option
			if verbose {
				opts = append(opts, cpu.WithTracer(func(msg string) {
					fmt.Fprintln(os.Stderr, msg)
				}))
			}

			var m *scenario.Machine
			if load != "" {
				if len(args) > 0 || hexCode != "" || banked {
					return fmt.Errorf("--load restores a flat machine; drop the program, --hex and --banked")
				}
				m, err = restore(load, seeds, opts)
			} else {
				m, err = fresh(args, hexCode, org, banked, seeds, opts)
			}
			if err != nil {
				return err
			}

			n, runErr := m.CPU.Run(maxSteps)
			report(os.Stdout, m, n)

			if save != "" {
				ckpt := &result.Checkpoint{Regs: m.CPU.Registers(), Halted: m.CPU.Halted(), Memory: image(m.CPU.Memory())}
				if err := result.SaveCheckpoint(save, ckpt); err != nil {
					return fmt.Errorf("save checkpoint: %w", err)
				}
				fmt.Printf("Checkpoint written to %s\n", save)
			}
			return runErr
		},
	}
	runCmd.Flags().Var(orgFlag, "org", "Load address (0x8000, 8000h or decimal)")
	runCmd.Flags().Var(pcFlag, "pc", "Initial PC (default: --org)")
	runCmd.Flags().StringArrayVar(&sets, "set", nil, "Seed a register, NAME=VALUE (repeatable)")
	runCmd.Flags().StringVar(&hexCode, "hex", "", "Program as hex bytes instead of a file, e.g. \"3E 42 76\"")
	runCmd.Flags().IntVar(&maxSteps, "max", 1_000_000, "Step limit (0 = until HALT)")
	runCmd.Flags().BoolVar(&banked, "banked", false, "Banked memory: RAM at 0000-3FFF only")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Trace every instruction to stderr")
	runCmd.Flags().StringVar(&save, "save", "", "Write a checkpoint after the run")
	runCmd.Flags().StringVar(&load, "load", "", "Resume from a checkpoint")

	// disasm command
	var disOrg uint16
	var disHex string
	var count int

	disasmCmd := &cobra.Command{
		Use:   "disasm [program.bin]",
		Short: "Disassemble a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := program(args, disHex)
			if err != nil {
				return err
			}
			ram := memory.NewRAM()
			ram.Load(disOrg, code)

			var listing []inst.Instruction
			if count > 0 {
				listing = inst.Listing(ram, disOrg, count)
			} else {
				for off := 0; off < len(code); {
					in := inst.Decode(ram, disOrg+uint16(off))
					listing = append(listing, in)
					off += in.Len
				}
			}
			for _, in := range listing {
				fmt.Printf("%04X  %-11s  %s\n", in.PC, fmt.Sprintf("% X", in.Encoding()), inst.Disassemble(in))
			}
			return nil
		},
	}
	disasmCmd.Flags().Var(newAddrValue(&disOrg, 0), "org", "Address of the first byte")
	disasmCmd.Flags().StringVar(&disHex, "hex", "", "Program as hex bytes instead of a file")
	disasmCmd.Flags().IntVarP(&count, "count", "n", 0, "Number of instructions (0 = whole program)")

	// scenarios command
	var filter string
	var numWorkers int
	var scVerbose bool

	scenariosCmd := &cobra.Command{
		Use:   "scenarios [suite.toml...]",
		Short: "Run register-trace scenarios (the built-in suite when no file is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var all []scenario.Scenario
			if len(args) == 0 {
				s, err := scenario.Builtin()
				if err != nil {
					return err
				}
				all = s.Filter(filter)
			}
			for _, path := range args {
				s, err := scenario.LoadFile(path)
				if err != nil {
					return err
				}
				all = append(all, s.Filter(filter)...)
			}

			r := scenario.NewRunner(numWorkers)
			r.Verbose = scVerbose
			if err := r.Run(context.Background(), all); err != nil {
				return err
			}

			for _, o := range r.Results.Outcomes() {
				if o.Passed() {
					break
				}
				fmt.Printf("FAIL %s\n", o.Name)
				if o.Err != nil {
					fmt.Printf("  error: %v\n", o.Err)
				}
				for _, f := range o.Failures {
					fmt.Printf("  %s\n", f)
				}
			}
			failed := r.Results.Failed()
			fmt.Printf("%d scenarios, %d passed, %d failed\n", r.Results.Len(), r.Results.Len()-failed, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, r.Results.Len())
			}
			return nil
		},
	}
	scenariosCmd.Flags().StringVar(&filter, "run", "", "Only run scenarios whose name contains this")
	scenariosCmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	scenariosCmd.Flags().BoolVarP(&scVerbose, "verbose", "v", false, "Print every outcome")

	// regs command
	var regSets []string

	regsCmd := &cobra.Command{
		Use:   "regs",
		Short: "Show the power-on register file and the accepted register names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := parseAssignments(regSets)
			if err != nil {
				return err
			}
			var r cpu.Registers
			r.Reset()
			applySeeds(&r, seeds)
			fmt.Println(r)
			for _, name := range cpu.Names() {
				v, _ := r.Lookup(name)
				fmt.Printf("  %-4s %04X\n", name, v)
			}
			return nil
		},
	}
	regsCmd.Flags().StringArrayVar(&regSets, "set", nil, "Apply NAME=VALUE before printing (repeatable)")

	rootCmd.AddCommand(runCmd, disasmCmd, scenariosCmd, regsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// program reads code from a file argument or from --hex.
func program(args []string, hexCode string) ([]uint8, error) {
	switch {
	case len(args) > 0 && hexCode != "":
		return nil, fmt.Errorf("give a program file or --hex, not both")
	case len(args) > 0:
		return os.ReadFile(args[0])
	case hexCode != "":
		return parseBytes(hexCode)
	}
	return nil, fmt.Errorf("no program: give a file or --hex")
}

func fresh(args []string, hexCode string, org uint16, banked bool, seeds map[string]uint16, opts []cpu.Option) (*scenario.Machine, error) {
	code, err := program(args, hexCode)
	if err != nil {
		return nil, err
	}
	if len(code) > memory.Size {
		return nil, fmt.Errorf("program is %d bytes, larger than the address space", len(code))
	}
	sc := scenario.Scenario{Name: "run", Memory: scenario.Flat, Org: org, Code: code, Regs: seeds}
	if banked {
		sc.Memory = scenario.Banked
	}
	return scenario.Build(&sc, opts...)
}

func restore(path string, seeds map[string]uint16, opts []cpu.Option) (*scenario.Machine, error) {
	ckpt, err := result.LoadCheckpoint(path)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if len(ckpt.Memory) != memory.Size {
		return nil, fmt.Errorf("load checkpoint: memory image is %d bytes, want %d", len(ckpt.Memory), memory.Size)
	}
	m, err := scenario.Build(&scenario.Scenario{Name: "resume", Memory: scenario.Flat, Code: ckpt.Memory}, opts...)
	if err != nil {
		return nil, err
	}
	regs := ckpt.Regs
	applySeeds(&regs, seeds)
	m.CPU.Restore(regs, ckpt.Halted && len(seeds) == 0)
	return m, nil
}

// report prints the machine state after a run of n steps, with the
// word on top of the stack.
func report(w io.Writer, m *scenario.Machine, n int) {
	regs := m.CPU.Registers()
	fmt.Fprintf(w, "%d steps, halted=%v, fingerprint %016x\n", n, m.CPU.Halted(), m.Fingerprint())
	fmt.Fprintln(w, regs)
	fmt.Fprintf(w, "(SP) %04X\n", memory.Word(m.CPU.Memory(), regs.SP))
}

// image copies the visible 64K out of any memory.
func image(mem cpu.Memory) []uint8 {
	out := make([]uint8, memory.Size)
	for i := range out {
		out[i] = mem.Read(uint16(i))
	}
	return out
}
