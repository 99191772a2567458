package isa

import "strings"

// mnemonics maps each opcode's lowercase ASCII mnemonic to its opcode,
// grouped the same way the opcode constants themselves are grouped.
// A flat literal map rather than a generated table, so a reviewer can
// see the whole mapping at a glance.
var mnemonics = map[string]OpCode{
	"nop": OpNop,

	"load":  OpLoad,
	"store": OpStore,

	"push": OpPush,
	"pop":  OpPop,

	"jal": OpJal,
	"jnn": OpJnn,
	"jnz": OpJnz,

	"lneg":   OpLogicalNot,
	"numneg": OpNegate,
	"inc":    OpIncrement,
	"dec":    OpDecrement,
	"bwneg":  OpBitwiseNot,

	"and":  OpAnd,
	"or":   OpOr,
	"xor":  OpXor,
	"add":  OpAdd,
	"sub":  OpSub,
	"mul":  OpMul,
	"div":  OpDiv,
	"mod":  OpMod,
	"shl":  OpShl,
	"shr":  OpShr,
	"ushr": OpUshr,

	"trap": OpTrap,
	"emit": OpEmit,

	"print": OpPrint,
	"err":   OpErr,
	"crash": OpCrash,
}

// mnemonicOf is the inverse of mnemonics, built once at init time.
// Bijective by construction: mnemonics has no duplicate values (every
// opcode in the table above appears exactly once).
var mnemonicOf = func() map[OpCode]string {
	m := make(map[OpCode]string, len(mnemonics))
	for name, op := range mnemonics {
		m[op] = name
	}
	return m
}()

// Assemble returns the opcode whose lowercased mnemonic equals the
// lowercased input, or OpInvalid if none matches. Comparison is
// exact-length and case-insensitive; prefix matches do not count.
func Assemble(mnemonic string) OpCode {
	if mnemonic == "" {
		return OpInvalid
	}
	if op, ok := mnemonics[strings.ToLower(mnemonic)]; ok {
		return op
	}
	return OpInvalid
}

// Disassemble returns the mnemonic for op, or ("", false) if op has
// none (the reserved/invalid opcodes, and any opcode absent from the
// mnemonic table).
func Disassemble(op OpCode) (string, bool) {
	m, ok := mnemonicOf[op]
	return m, ok
}
