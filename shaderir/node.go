package shaderir

import "fmt"

// Node is one expression in the resource-descriptor IR tree.
type Node struct {
	Op Opcode

	// Imm holds OpImm's constant value.
	Imm uint64
	// SgprIndex holds OpUserSgprRead's source register index.
	SgprIndex uint32
	// LoadBytes holds OpLoad's access width; one of LoadWidths.
	LoadBytes int

	// Operands holds the node's operands: zero for OpImm/OpUserSgprRead,
	// one for OpReadMemory/OpMove/OpLoad, two for the arithmetic ops.
	Operands []*Node
}

// Imm builds a constant leaf node.
func Imm(value uint64) *Node {
	return &Node{Op: OpImm, Imm: value}
}

// UserSgpr builds a user-SGPR-read leaf node.
func UserSgpr(index uint32) *Node {
	return &Node{Op: OpUserSgprRead, SgprIndex: index}
}

// ReadMemory builds a 32-bit memory-read node over addr.
func ReadMemory(addr *Node) *Node {
	return &Node{Op: OpReadMemory, Operands: []*Node{addr}}
}

// Load builds a memory-read node over addr with an explicit access
// width. bytes must be one of LoadWidths.
func Load(addr *Node, bytes int) *Node {
	return &Node{Op: OpLoad, LoadBytes: bytes, Operands: []*Node{addr}}
}

// Move builds a pass-through node over src.
func Move(src *Node) *Node {
	return &Node{Op: OpMove, Operands: []*Node{src}}
}

func binary(op Opcode, lhs, rhs *Node) *Node {
	return &Node{Op: op, Operands: []*Node{lhs, rhs}}
}

func Add(lhs, rhs *Node) *Node       { return binary(OpAdd, lhs, rhs) }
func Sub(lhs, rhs *Node) *Node       { return binary(OpSub, lhs, rhs) }
func Mul(lhs, rhs *Node) *Node       { return binary(OpMul, lhs, rhs) }
func ShiftLeft(lhs, rhs *Node) *Node { return binary(OpShiftLeft, lhs, rhs) }
func And(lhs, rhs *Node) *Node       { return binary(OpAnd, lhs, rhs) }

// Env supplies the two kinds of external state a reduction may read:
// a shader stage's user SGPR inputs, and guest memory.
type Env struct {
	// UserSgpr returns the current value of user SGPR index, or false
	// if it is unbound for this draw.
	UserSgpr func(index uint32) (uint64, bool)
	// ReadMemory reads a little-endian value of the given byte width
	// from guest address addr, or false if addr is not resident.
	ReadMemory func(addr uint64, bytes int) (uint64, bool)
}

// Eval reduces node to a scalar value against env. It returns an error
// if any operand cannot be resolved — the caller (shaderres) treats
// this as aborting compilation of the draw, per the descriptor
// contract: every resource-descriptor expression must reduce to a
// compile-time constant before a Tag can submit the draw.
func Eval(node *Node, env Env) (uint64, error) {
	if node == nil {
		return 0, fmt.Errorf("shaderir: nil node")
	}

	switch node.Op {
	case OpImm:
		return node.Imm, nil

	case OpUserSgprRead:
		v, ok := env.UserSgpr(node.SgprIndex)
		if !ok {
			return 0, fmt.Errorf("shaderir: user sgpr %d is unbound", node.SgprIndex)
		}
		return v, nil

	case OpReadMemory:
		addr, err := Eval(node.Operands[0], env)
		if err != nil {
			return 0, fmt.Errorf("shaderir: read_memory address: %w", err)
		}
		v, ok := env.ReadMemory(addr, 4)
		if !ok {
			return 0, fmt.Errorf("shaderir: read_memory at %#x is not resident", addr)
		}
		return v, nil

	case OpLoad:
		if !isValidLoadWidth(node.LoadBytes) {
			return 0, fmt.Errorf("shaderir: load width %d is not one of %v", node.LoadBytes, LoadWidths)
		}
		addr, err := Eval(node.Operands[0], env)
		if err != nil {
			return 0, fmt.Errorf("shaderir: load address: %w", err)
		}
		v, ok := env.ReadMemory(addr, node.LoadBytes)
		if !ok {
			return 0, fmt.Errorf("shaderir: load at %#x is not resident", addr)
		}
		return v, nil

	case OpMove:
		return Eval(node.Operands[0], env)

	case OpAdd, OpSub, OpMul, OpShiftLeft, OpAnd:
		lhs, err := Eval(node.Operands[0], env)
		if err != nil {
			return 0, fmt.Errorf("shaderir: %s lhs: %w", node.Op.gcnOpcode(), err)
		}
		rhs, err := Eval(node.Operands[1], env)
		if err != nil {
			return 0, fmt.Errorf("shaderir: %s rhs: %w", node.Op.gcnOpcode(), err)
		}
		return reduceArith(node.Op, lhs, rhs), nil

	default:
		return 0, fmt.Errorf("shaderir: unknown opcode %d", node.Op)
	}
}

func reduceArith(op Opcode, lhs, rhs uint64) uint64 {
	switch op {
	case OpAdd:
		return uint64(uint32(lhs) + uint32(rhs))
	case OpSub:
		return uint64(uint32(lhs) - uint32(rhs))
	case OpMul:
		return uint64(uint32(lhs) * uint32(rhs))
	case OpShiftLeft:
		return uint64(uint32(lhs) << (rhs & 31))
	case OpAnd:
		return uint64(uint32(lhs) & uint32(rhs))
	default:
		return 0
	}
}
