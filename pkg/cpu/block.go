package cpu

// Block transfer, compare and I/O groups. step is +1 (0x0001) for the
// incrementing forms and -1 (0xFFFF) for the decrementing ones. The
// repeating forms run to completion inside one Step.

func (c *CPU) ldx(step uint16) error {
	r := &c.regs
	v := c.read(r.HL())
	if err := c.write(r.DE(), v); err != nil {
		return err
	}
	r.SetHL(r.HL() + step)
	r.SetDE(r.DE() + step)
	r.SetBC(r.BC() - 1)
	n := r.A + v
	r.F = (r.F & (FlagS | FlagZ | FlagC)) |
		bsel(r.BC() != 0, FlagV, 0) |
		bsel(n&0x02 != 0, Flag5, 0) |
		(n & Flag3)
	return nil
}

// ldxr repeats until BC reaches zero; BC == 0 on entry copies 64K bytes.
func (c *CPU) ldxr(step uint16) error {
	for {
		if err := c.ldx(step); err != nil {
			return err
		}
		if c.regs.BC() == 0 {
			return nil
		}
	}
}

func (c *CPU) cpx(step uint16) {
	r := &c.regs
	v := c.read(r.HL())
	diff, f := Sub8(r.A, v, false)
	r.SetHL(r.HL() + step)
	r.SetBC(r.BC() - 1)
	n := diff - bsel(f&FlagH != 0, 1, 0)
	r.F = (r.F & FlagC) | FlagN |
		(f & (FlagS | FlagZ | FlagH)) |
		bsel(r.BC() != 0, FlagV, 0) |
		bsel(n&0x02 != 0, Flag5, 0) |
		(n & Flag3)
}

// cpxr repeats until BC reaches zero or a match sets Z.
func (c *CPU) cpxr(step uint16) {
	for {
		c.cpx(step)
		if c.regs.BC() == 0 || c.regs.F&FlagZ != 0 {
			return
		}
	}
}

// blockIOFlags sets N, sets Z from the new B, keeps everything else.
func (c *CPU) blockIOFlags() {
	r := &c.regs
	r.F = (r.F & (FlagS | FlagH | FlagP | FlagC | Flag5 | Flag3)) |
		FlagN | bsel(r.B == 0, FlagZ, 0)
}

func (c *CPU) inx(step uint16) error {
	r := &c.regs
	v := c.in(r.C)
	if err := c.write(r.HL(), v); err != nil {
		return err
	}
	r.SetHL(r.HL() + step)
	r.B--
	c.blockIOFlags()
	return nil
}

func (c *CPU) inxr(step uint16) error {
	for {
		if err := c.inx(step); err != nil {
			return err
		}
		if c.regs.B == 0 {
			return nil
		}
	}
}

func (c *CPU) outx(step uint16) error {
	r := &c.regs
	r.B--
	v := c.read(r.HL())
	if err := c.out(r.C, v); err != nil {
		return err
	}
	r.SetHL(r.HL() + step)
	c.blockIOFlags()
	return nil
}

func (c *CPU) outxr(step uint16) error {
	for {
		if err := c.outx(step); err != nil {
			return err
		}
		if c.regs.B == 0 {
			return nil
		}
	}
}
