package cpu

import "testing"

// TestFlagTables verifies the precomputed tables.
func TestFlagTables(t *testing.T) {
	if Sz53Table[0]&FlagZ == 0 {
		t.Error("Sz53Table[0] should have Z flag")
	}
	if Sz53pTable[0]&FlagZ == 0 {
		t.Error("Sz53pTable[0] should have Z flag")
	}
	if Sz53Table[0x80]&FlagS == 0 {
		t.Error("Sz53Table[0x80] should have S flag")
	}
	if Sz53Table[0x28] != Flag5|Flag3 {
		t.Errorf("Sz53Table[0x28] = %02X, want 28", Sz53Table[0x28])
	}
}

func TestParity(t *testing.T) {
	tests := []struct {
		v    uint8
		want bool
	}{
		{0, true}, {127, false}, {128, false}, {129, true}, {255, true},
		{0x03, true}, {0x07, false},
	}
	for _, tc := range tests {
		if got := Parity(tc.v); got != tc.want {
			t.Errorf("Parity(%d) = %v, want %v", tc.v, got, tc.want)
		}
	}
	for v := 0; v < 256; v++ {
		n := 0
		for b := v; b != 0; b >>= 1 {
			n += b & 1
		}
		if Parity(uint8(v)) != (n%2 == 0) {
			t.Errorf("Parity(%02X) disagrees with popcount %d", v, n)
		}
	}
}

// TestAddFlags verifies ADD flag behavior for key cases.
func TestAddFlags(t *testing.T) {
	tests := []struct {
		a, val       uint8
		wantA        uint8
		wantCarry    bool
		wantZero     bool
		wantSign     bool
		wantHalf     bool
		wantOverflow bool
	}{
		{0, 0, 0, false, true, false, false, false},
		{1, 1, 2, false, false, false, false, false},
		{0xFF, 1, 0, true, true, false, true, false},
		{0x0F, 1, 0x10, false, false, false, true, false},
		{0x7F, 1, 0x80, false, false, true, true, true}, // pos + pos = neg
		{0x80, 0x80, 0, true, true, false, false, true}, // neg + neg = pos
	}

	for _, tc := range tests {
		a, f := Add8(tc.a, tc.val, false)
		if a != tc.wantA {
			t.Errorf("ADD %02X + %02X: got A=%02X, want %02X", tc.a, tc.val, a, tc.wantA)
		}
		if (f&FlagC != 0) != tc.wantCarry {
			t.Errorf("ADD %02X + %02X: carry=%v, want %v", tc.a, tc.val, f&FlagC != 0, tc.wantCarry)
		}
		if (f&FlagZ != 0) != tc.wantZero {
			t.Errorf("ADD %02X + %02X: zero=%v, want %v", tc.a, tc.val, f&FlagZ != 0, tc.wantZero)
		}
		if (f&FlagS != 0) != tc.wantSign {
			t.Errorf("ADD %02X + %02X: sign=%v, want %v", tc.a, tc.val, f&FlagS != 0, tc.wantSign)
		}
		if (f&FlagH != 0) != tc.wantHalf {
			t.Errorf("ADD %02X + %02X: half=%v, want %v", tc.a, tc.val, f&FlagH != 0, tc.wantHalf)
		}
		if (f&FlagV != 0) != tc.wantOverflow {
			t.Errorf("ADD %02X + %02X: overflow=%v, want %v", tc.a, tc.val, f&FlagV != 0, tc.wantOverflow)
		}
		if f&FlagN != 0 {
			t.Errorf("ADD %02X + %02X: N set", tc.a, tc.val)
		}
	}
}

// TestExhaustiveAddSub cross-checks the lookup-table flags against direct
// arithmetic for every operand pair and carry-in.
func TestExhaustiveAddSub(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			for carry := 0; carry < 2; carry++ {
				r, f := Add8(uint8(a), uint8(b), carry == 1)
				sum := a + b + carry
				if r != uint8(sum) {
					t.Fatalf("ADC %02X+%02X+%d: got %02X", a, b, carry, r)
				}
				half := (a&0x0F)+(b&0x0F)+carry > 0x0F
				ov := int(int8(a))+int(int8(b))+carry != int(int8(r))
				if (f&FlagC != 0) != (sum > 0xFF) || (f&FlagH != 0) != half || (f&FlagV != 0) != ov {
					t.Fatalf("ADC %02X+%02X+%d: F=%02X", a, b, carry, f)
				}
				if f&(Flag5|Flag3) != r&(Flag5|Flag3) {
					t.Fatalf("ADC %02X+%02X+%d: 5/3 %02X do not mirror result %02X", a, b, carry, f, r)
				}

				r, f = Sub8(uint8(a), uint8(b), carry == 1)
				diff := a - b - carry
				if r != uint8(diff) {
					t.Fatalf("SBC %02X-%02X-%d: got %02X", a, b, carry, r)
				}
				half = (a & 0x0F) < (b&0x0F)+carry
				ov = int(int8(a))-int(int8(b))-carry != int(int8(r))
				if (f&FlagC != 0) != (diff < 0) || (f&FlagH != 0) != half || (f&FlagV != 0) != ov {
					t.Fatalf("SBC %02X-%02X-%d: F=%02X", a, b, carry, f)
				}
				if f&FlagN == 0 || (f&FlagZ != 0) != (r == 0) || (f&FlagS != 0) != (r&0x80 != 0) {
					t.Fatalf("SBC %02X-%02X-%d: F=%02X", a, b, carry, f)
				}
				if f&(Flag5|Flag3) != uint8(b)&(Flag5|Flag3) {
					t.Fatalf("SBC %02X-%02X-%d: 5/3 %02X do not copy subtrahend", a, b, carry, f)
				}
			}
		}
	}
}

func TestSubExact(t *testing.T) {
	// SUB B with A=F0, B=21 from the end-to-end trace.
	a, f := Sub8(0xF0, 0x21, false)
	if a != 0xCF || f != 0xB2 {
		t.Errorf("F0-21: got A=%02X F=%02X, want CF B2", a, f)
	}
}

func TestLogic(t *testing.T) {
	if f := Logic(0xF0&0x21, true); f != 0x30 {
		t.Errorf("AND F0,21: F=%02X, want 30", f)
	}
	if f := Logic(0, false); f != FlagZ|FlagP {
		t.Errorf("XOR A: F=%02X, want 44", f)
	}
	if f := Logic(0xFF, false); f != FlagS|Flag5|Flag3|FlagP {
		t.Errorf("OR FF: F=%02X, want AC", f)
	}
}

// TestIncDec verifies INC/DEC flag behavior.
func TestIncDec(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(f, v uint8) (uint8, uint8)
		f, v  uint8
		wantV uint8
		wantF uint8
	}{
		{"INC 7F", Inc8, 0, 0x7F, 0x80, FlagS | FlagH | FlagV},
		{"INC FF", Inc8, FlagC, 0xFF, 0x00, FlagZ | FlagH | FlagC},
		{"INC 27", Inc8, 0, 0x27, 0x28, Flag5 | Flag3},
		{"DEC 80", Dec8, FlagC, 0x80, 0x7F, 0x3F},
		{"DEC 01", Dec8, 0, 0x01, 0x00, FlagZ | FlagN},
		{"DEC 00", Dec8, 0, 0x00, 0xFF, FlagS | Flag5 | FlagH | Flag3 | FlagN},
	}
	for _, tc := range tests {
		v, f := tc.fn(tc.f, tc.v)
		if v != tc.wantV || f != tc.wantF {
			t.Errorf("%s: got %02X F=%02X, want %02X F=%02X", tc.name, v, f, tc.wantV, tc.wantF)
		}
	}
}

func TestDAA(t *testing.T) {
	tests := []struct {
		a, f   uint8
		wantA  uint8
		wantCF bool
	}{
		{0x0A, 0, 0x10, false},
		{0x9A, 0, 0x00, true},
		{0x15, 0, 0x15, false},
		{0x0F, FlagN, 0x09, false}, // after 0x10 - 0x01
		{0x00, FlagC, 0x60, true},
	}
	for _, tc := range tests {
		a, f := Daa(tc.f, tc.a)
		if a != tc.wantA {
			t.Errorf("DAA %02X (F=%02X): got %02X, want %02X", tc.a, tc.f, a, tc.wantA)
		}
		if (f&FlagC != 0) != tc.wantCF {
			t.Errorf("DAA %02X (F=%02X): carry=%v, want %v", tc.a, tc.f, f&FlagC != 0, tc.wantCF)
		}
		if f&FlagN != tc.f&FlagN {
			t.Errorf("DAA %02X: N not preserved", tc.a)
		}
		if (f&FlagP != 0) != Parity(a) {
			t.Errorf("DAA %02X: P/V should be parity of result", tc.a)
		}
	}
}

func TestAdd16(t *testing.T) {
	// ADD HL,BC from the end-to-end trace: 5/3 must not follow the result.
	v, f := Add16(0, 0x21F0, 0x5703)
	if v != 0x78F3 || f != 0 {
		t.Errorf("21F0+5703: got %04X F=%02X, want 78F3 00", v, f)
	}
	v, f = Add16(FlagC, 0x0F0F, 0x7F7F)
	if v != 0x8E8E || f != FlagH {
		t.Errorf("0F0F+7F7F: got %04X F=%02X, want 8E8E 10", v, f)
	}
	v, f = Add16(FlagS|FlagZ|FlagP|Flag5|Flag3, 0xFFFF, 0x0001)
	if v != 0 || f != FlagS|FlagZ|FlagP|Flag5|Flag3|FlagH|FlagC {
		t.Errorf("FFFF+0001: got %04X F=%02X", v, f)
	}
}

func TestAdcSbc16(t *testing.T) {
	v, f := Adc16(FlagC, 0x0F0F, 0x7F7F)
	if v != 0x8E8F || f != 0x9C {
		t.Errorf("ADC 0F0F+7F7F+1: got %04X F=%02X, want 8E8F 9C", v, f)
	}
	v, f = Sbc16(FlagC, 0x2929, 0xF021)
	if v != 0x3907 || f != 0x2B {
		t.Errorf("SBC 2929-F021-1: got %04X F=%02X, want 3907 2B", v, f)
	}
	v, f = Sbc16(0, 0x1234, 0x1234)
	if v != 0 || f != FlagZ|FlagN {
		t.Errorf("SBC 1234-1234: got %04X F=%02X, want 0000 42", v, f)
	}
	v, f = Adc16(0, 0xFFFF, 0x0001)
	if v != 0 || f&(FlagZ|FlagC|FlagH) != FlagZ|FlagC|FlagH {
		t.Errorf("ADC FFFF+0001: got %04X F=%02X", v, f)
	}
}

// TestCBShifts verifies the rotate/shift group on one value.
func TestCBShifts(t *testing.T) {
	tests := []struct {
		kind   uint8
		in, f  uint8
		want   uint8
		wantCF bool
	}{
		{RotRLC, 0x81, 0, 0x03, true},
		{RotRRC, 0x81, 0, 0xC0, true},
		{RotRL, 0x80, FlagC, 0x01, true},
		{RotRR, 0x01, FlagC, 0x80, true},
		{RotSLA, 0x40, 0, 0x80, false},
		{RotSRA, 0x81, 0, 0xC0, true},
		{RotSLL, 0x80, 0, 0x01, true},
		{RotSRL, 0x80, 0, 0x40, false},
	}
	for _, tc := range tests {
		v, f := Shift(tc.kind, tc.f, tc.in)
		if v != tc.want {
			t.Errorf("shift %d of %02X: got %02X, want %02X", tc.kind, tc.in, v, tc.want)
		}
		if (f&FlagC != 0) != tc.wantCF {
			t.Errorf("shift %d of %02X: carry=%v, want %v", tc.kind, tc.in, f&FlagC != 0, tc.wantCF)
		}
		if f&(FlagH|FlagN) != 0 {
			t.Errorf("shift %d of %02X: H/N should be clear, F=%02X", tc.kind, tc.in, f)
		}
		if f&^FlagC != Sz53pTable[v] {
			t.Errorf("shift %d of %02X: F=%02X, want S/Z/5/3/P of %02X", tc.kind, tc.in, f, v)
		}
	}
}

func TestRotateAccPreservesFlags(t *testing.T) {
	keep := FlagS | FlagZ | FlagP | Flag5 | Flag3
	a, f := RotateAcc(RotRLC, keep|FlagH|FlagN, 0x80)
	if a != 0x01 || f != keep|FlagC {
		t.Errorf("RLCA 80: got %02X F=%02X, want 01 %02X", a, f, keep|FlagC)
	}
	a, f = RotateAcc(RotRR, 0, 0x01)
	if a != 0x00 || f != FlagC {
		t.Errorf("RRA 01: got %02X F=%02X, want 00 01", a, f)
	}
}

func TestBit(t *testing.T) {
	tests := []struct {
		b, v, f uint8
		want    uint8
	}{
		{0, 0xFF, 0, FlagH},                     // end-to-end trace: BIT 0,C with C=FF
		{7, 0x80, 0, FlagS | FlagH},             // S only for bit 7
		{5, 0x20, FlagC, Flag5 | FlagH | FlagC}, // C preserved
		{3, 0x08, 0, Flag3 | FlagH},
		{4, 0xEF, 0, FlagZ | FlagP | FlagH},
		{7, 0x7F, FlagN, FlagZ | FlagP | FlagH}, // N cleared
	}
	for _, tc := range tests {
		if got := Bit(tc.f, tc.b, tc.v); got != tc.want {
			t.Errorf("BIT %d,%02X (F=%02X): got %02X, want %02X", tc.b, tc.v, tc.f, got, tc.want)
		}
	}
}
