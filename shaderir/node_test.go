package shaderir

import "testing"

func testEnv(sgprs map[uint32]uint64, mem map[uint64]uint64) Env {
	return Env{
		UserSgpr: func(index uint32) (uint64, bool) {
			v, ok := sgprs[index]
			return v, ok
		},
		ReadMemory: func(addr uint64, bytes int) (uint64, bool) {
			v, ok := mem[addr]
			return v, ok
		},
	}
}

func TestEval_Imm(t *testing.T) {
	v, err := Eval(Imm(42), Env{})
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if v != 42 {
		t.Errorf("Eval() = %d, want 42", v)
	}
}

func TestEval_UserSgprRead(t *testing.T) {
	env := testEnv(map[uint32]uint64{3: 0xdead}, nil)
	v, err := Eval(UserSgpr(3), env)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if v != 0xdead {
		t.Errorf("Eval() = %#x, want 0xdead", v)
	}
}

func TestEval_UserSgprUnbound(t *testing.T) {
	env := testEnv(nil, nil)
	if _, err := Eval(UserSgpr(0), env); err == nil {
		t.Error("expected error for unbound user sgpr")
	}
}

func TestEval_ArithmeticChain(t *testing.T) {
	// (sgpr0 + 0x100) << 2
	expr := ShiftLeft(Add(UserSgpr(0), Imm(0x100)), Imm(2))
	env := testEnv(map[uint32]uint64{0: 0x10}, nil)

	v, err := Eval(expr, env)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	want := uint64((0x10 + 0x100) << 2)
	if v != want {
		t.Errorf("Eval() = %#x, want %#x", v, want)
	}
}

func TestEval_ReadMemory(t *testing.T) {
	env := testEnv(nil, map[uint64]uint64{0x2000: 0xcafe})
	v, err := Eval(ReadMemory(Imm(0x2000)), env)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if v != 0xcafe {
		t.Errorf("Eval() = %#x, want 0xcafe", v)
	}
}

func TestEval_ReadMemoryNotResident(t *testing.T) {
	env := testEnv(nil, nil)
	if _, err := Eval(ReadMemory(Imm(0x2000)), env); err == nil {
		t.Error("expected error for non-resident address")
	}
}

func TestEval_LoadRejectsInvalidWidth(t *testing.T) {
	env := testEnv(nil, map[uint64]uint64{0x3000: 1})
	if _, err := Eval(Load(Imm(0x3000), 3), env); err == nil {
		t.Error("expected error for invalid load width")
	}
}

func TestEval_LoadValidWidths(t *testing.T) {
	env := testEnv(nil, map[uint64]uint64{0x3000: 0x11223344})
	for _, w := range LoadWidths {
		if _, err := Eval(Load(Imm(0x3000), w), env); err != nil {
			t.Errorf("Eval() with width %d error = %v", w, err)
		}
	}
}

func TestEval_Move(t *testing.T) {
	v, err := Eval(Move(Imm(7)), Env{})
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if v != 7 {
		t.Errorf("Eval() = %d, want 7", v)
	}
}

func TestEval_SubAndAnd(t *testing.T) {
	v, err := Eval(And(Sub(Imm(10), Imm(3)), Imm(0x6)), Env{})
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if v != (10-3)&0x6 {
		t.Errorf("Eval() = %d, want %d", v, (10-3)&0x6)
	}
}
