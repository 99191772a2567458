package isa

import (
	"encoding/binary"
	"reflect"
)

// maxOperands is the largest operand count of any opcode in the table
// below (the three-operand binary group). DecodeOne uses it to size a
// fixed array instead of a heap-allocated slice, so a single decode
// step never allocates.
const maxOperands = 3

// opcodeEntry is the single source of truth mapping an opcode to its
// operand layout and to the typed record it decodes into. Encode
// (below) is the mirror: a switch over concrete Instruction types
// covering exactly the opcodes listed here.
type opcodeEntry struct {
	operands []operandKind
	build    func(vals [maxOperands]uint64) Instruction
}

var opcodeTable = map[OpCode]opcodeEntry{
	OpNop: {nil, func(v [maxOperands]uint64) Instruction { return NoOp{} }},

	OpLoad: {[]operandKind{kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Load{Target: StackAddr(v[0]), SourcePtr: StackAddr(v[1])}
	}},
	OpStore: {[]operandKind{kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Store{TargetPtr: StackAddr(v[0]), Source: StackAddr(v[1])}
	}},

	OpPush: {[]operandKind{kindStack}, func(v [maxOperands]uint64) Instruction {
		return Push{Source: StackAddr(v[0])}
	}},
	OpPop: {nil, func(v [maxOperands]uint64) Instruction { return Pop{} }},

	OpJal: {[]operandKind{kindProgram}, func(v [maxOperands]uint64) Instruction {
		return Jal{Target: ProgramAddr(v[0])}
	}},
	OpJnn: {[]operandKind{kindProgram, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Jnn{Target: ProgramAddr(v[0]), Subject: StackAddr(v[1])}
	}},
	OpJnz: {[]operandKind{kindProgram, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Jnz{Target: ProgramAddr(v[0]), Subject: StackAddr(v[1])}
	}},

	OpLogicalNot: {[]operandKind{kindProgram, kindStack}, func(v [maxOperands]uint64) Instruction {
		return LogicalNot{Result: ProgramAddr(v[0]), Subject: StackAddr(v[1])}
	}},
	OpNegate: {[]operandKind{kindProgram, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Negate{Result: ProgramAddr(v[0]), Subject: StackAddr(v[1])}
	}},
	OpIncrement: {[]operandKind{kindProgram, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Increment{Result: ProgramAddr(v[0]), Subject: StackAddr(v[1])}
	}},
	OpDecrement: {[]operandKind{kindProgram, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Decrement{Result: ProgramAddr(v[0]), Subject: StackAddr(v[1])}
	}},
	OpBitwiseNot: {[]operandKind{kindProgram, kindStack}, func(v [maxOperands]uint64) Instruction {
		return BitwiseNot{Result: ProgramAddr(v[0]), Subject: StackAddr(v[1])}
	}},

	OpAnd: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return And{Result: StackAddr(v[0]), A: StackAddr(v[1]), B: StackAddr(v[2])}
	}},
	OpOr: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Or{Result: StackAddr(v[0]), A: StackAddr(v[1]), B: StackAddr(v[2])}
	}},
	OpXor: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Xor{Result: StackAddr(v[0]), A: StackAddr(v[1]), B: StackAddr(v[2])}
	}},
	OpAdd: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Add{Sum: StackAddr(v[0]), A: StackAddr(v[1]), B: StackAddr(v[2])}
	}},
	OpSub: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Sub{Diff: StackAddr(v[0]), Minuend: StackAddr(v[1]), Subtrahend: StackAddr(v[2])}
	}},
	OpMul: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Mul{Product: StackAddr(v[0]), Multiplicand: StackAddr(v[1]), Multiplier: StackAddr(v[2])}
	}},
	OpDiv: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Div{Quotient: StackAddr(v[0]), Dividend: StackAddr(v[1]), Divisor: StackAddr(v[2])}
	}},
	OpMod: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Mod{Remainder: StackAddr(v[0]), Dividend: StackAddr(v[1]), Divisor: StackAddr(v[2])}
	}},
	OpShl: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Shl{Result: StackAddr(v[0]), Subject: StackAddr(v[1]), Shift: StackAddr(v[2])}
	}},
	OpShr: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Shr{Result: StackAddr(v[0]), Subject: StackAddr(v[1]), Shift: StackAddr(v[2])}
	}},
	OpUshr: {[]operandKind{kindStack, kindStack, kindStack}, func(v [maxOperands]uint64) Instruction {
		return Ushr{Result: StackAddr(v[0]), Subject: StackAddr(v[1]), Shift: StackAddr(v[2])}
	}},

	OpTrap: {[]operandKind{kindSymbol, kindProgram}, func(v [maxOperands]uint64) Instruction {
		return Trap{ExceptionType: SymbolAddr(v[0]), Handler: ProgramAddr(v[1])}
	}},
	OpEmit: {[]operandKind{kindStack}, func(v [maxOperands]uint64) Instruction {
		return Emit{ExceptionPtr: StackAddr(v[0])}
	}},

	OpPrint: {nil, func(v [maxOperands]uint64) Instruction { return Print{} }},
	OpErr: {[]operandKind{kindStack}, func(v [maxOperands]uint64) Instruction {
		return Err{MessagePtr: StackAddr(v[0])}
	}},
	OpCrash: {nil, func(v [maxOperands]uint64) Instruction { return Crash{} }},
}

func readLE(b []byte) uint64 {
	switch len(b) {
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	default:
		panic("isa: unsupported operand width")
	}
}

// DecodeOne decodes a single instruction from the head of program. It
// returns the decoded instruction and the number of bytes consumed.
func DecodeOne(program []byte) (Instruction, int) {
	if len(program) == 0 {
		return Bad{Opcode: OpInvalid, Expected: 0, Found: 0}, 0
	}

	op := OpCode(program[0])
	entry, ok := opcodeTable[op]
	if !ok {
		return Invalid{}, 1
	}

	pos := 1
	var vals [maxOperands]uint64
	for i, kind := range entry.operands {
		width := kind.width()
		if pos+width > len(program) {
			return Bad{Opcode: op, Expected: len(entry.operands), Found: i}, pos
		}
		vals[i] = readLE(program[pos : pos+width])
		pos += width
	}

	return entry.build(vals), pos
}

func appendLE(buf []byte, v uint64, width int) []byte {
	switch width {
	case 2:
		return binary.LittleEndian.AppendUint16(buf, uint16(v))
	case 8:
		return binary.LittleEndian.AppendUint64(buf, v)
	default:
		panic("isa: unsupported operand width")
	}
}

// Encode is the inverse of DecodeOne for every non-error instruction:
// DecodeOne(Encode(x)) reproduces x exactly for any representable x.
// Invalid and Bad carry no wire representation and encode to nil.
func Encode(instr Instruction) []byte {
	buf := []byte{byte(instr.Op())}

	switch v := instr.(type) {
	case NoOp, Pop, Print, Crash:
		// no operands
	case Load:
		buf = appendLE(buf, uint64(v.Target), 2)
		buf = appendLE(buf, uint64(v.SourcePtr), 2)
	case Store:
		buf = appendLE(buf, uint64(v.TargetPtr), 2)
		buf = appendLE(buf, uint64(v.Source), 2)
	case Push:
		buf = appendLE(buf, uint64(v.Source), 2)
	case Jal:
		buf = appendLE(buf, uint64(v.Target), 8)
	case Jnn:
		buf = appendLE(buf, uint64(v.Target), 8)
		buf = appendLE(buf, uint64(v.Subject), 2)
	case Jnz:
		buf = appendLE(buf, uint64(v.Target), 8)
		buf = appendLE(buf, uint64(v.Subject), 2)
	case LogicalNot:
		buf = appendLE(buf, uint64(v.Result), 8)
		buf = appendLE(buf, uint64(v.Subject), 2)
	case Negate:
		buf = appendLE(buf, uint64(v.Result), 8)
		buf = appendLE(buf, uint64(v.Subject), 2)
	case Increment:
		buf = appendLE(buf, uint64(v.Result), 8)
		buf = appendLE(buf, uint64(v.Subject), 2)
	case Decrement:
		buf = appendLE(buf, uint64(v.Result), 8)
		buf = appendLE(buf, uint64(v.Subject), 2)
	case BitwiseNot:
		buf = appendLE(buf, uint64(v.Result), 8)
		buf = appendLE(buf, uint64(v.Subject), 2)
	case And:
		buf = appendLE(buf, uint64(v.Result), 2)
		buf = appendLE(buf, uint64(v.A), 2)
		buf = appendLE(buf, uint64(v.B), 2)
	case Or:
		buf = appendLE(buf, uint64(v.Result), 2)
		buf = appendLE(buf, uint64(v.A), 2)
		buf = appendLE(buf, uint64(v.B), 2)
	case Xor:
		buf = appendLE(buf, uint64(v.Result), 2)
		buf = appendLE(buf, uint64(v.A), 2)
		buf = appendLE(buf, uint64(v.B), 2)
	case Add:
		buf = appendLE(buf, uint64(v.Sum), 2)
		buf = appendLE(buf, uint64(v.A), 2)
		buf = appendLE(buf, uint64(v.B), 2)
	case Sub:
		buf = appendLE(buf, uint64(v.Diff), 2)
		buf = appendLE(buf, uint64(v.Minuend), 2)
		buf = appendLE(buf, uint64(v.Subtrahend), 2)
	case Mul:
		buf = appendLE(buf, uint64(v.Product), 2)
		buf = appendLE(buf, uint64(v.Multiplicand), 2)
		buf = appendLE(buf, uint64(v.Multiplier), 2)
	case Div:
		buf = appendLE(buf, uint64(v.Quotient), 2)
		buf = appendLE(buf, uint64(v.Dividend), 2)
		buf = appendLE(buf, uint64(v.Divisor), 2)
	case Mod:
		buf = appendLE(buf, uint64(v.Remainder), 2)
		buf = appendLE(buf, uint64(v.Dividend), 2)
		buf = appendLE(buf, uint64(v.Divisor), 2)
	case Shl:
		buf = appendLE(buf, uint64(v.Result), 2)
		buf = appendLE(buf, uint64(v.Subject), 2)
		buf = appendLE(buf, uint64(v.Shift), 2)
	case Shr:
		buf = appendLE(buf, uint64(v.Result), 2)
		buf = appendLE(buf, uint64(v.Subject), 2)
		buf = appendLE(buf, uint64(v.Shift), 2)
	case Ushr:
		buf = appendLE(buf, uint64(v.Result), 2)
		buf = appendLE(buf, uint64(v.Subject), 2)
		buf = appendLE(buf, uint64(v.Shift), 2)
	case Trap:
		buf = appendLE(buf, uint64(v.ExceptionType), 8)
		buf = appendLE(buf, uint64(v.Handler), 8)
	case Emit:
		buf = appendLE(buf, uint64(v.ExceptionPtr), 2)
	case Err:
		buf = appendLE(buf, uint64(v.MessagePtr), 2)
	case Invalid, Bad:
		return nil
	default:
		panic("isa: Encode: unhandled instruction type")
	}

	return buf
}

// Compare totally orders two instructions by opcode tag first, then
// by operand fields in declaration order. Field comparison uses
// reflection rather than a method on every concrete type, since every
// field is either a uintN-based address newtype or a plain int (as in
// Bad); both kinds are handled so no field is silently skipped.
func Compare(a, b Instruction) int {
	if a.Op() != b.Op() {
		if a.Op() < b.Op() {
			return -1
		}
		return 1
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Kind() != reflect.Struct || bv.Kind() != reflect.Struct {
		return 0
	}
	n := av.NumField()
	if bv.NumField() < n {
		n = bv.NumField()
	}
	for i := 0; i < n; i++ {
		af, bf := av.Field(i), bv.Field(i)
		switch {
		case af.CanUint() && bf.CanUint():
			x, y := af.Uint(), bf.Uint()
			if x != y {
				if x < y {
					return -1
				}
				return 1
			}
		case af.CanInt() && bf.CanInt():
			x, y := af.Int(), bf.Int()
			if x != y {
				if x < y {
					return -1
				}
				return 1
			}
		}
	}
	return 0
}

// Equal reports whether two instructions have the same tag and the
// same operand fields.
func Equal(a, b Instruction) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b) && Compare(a, b) == 0
}
