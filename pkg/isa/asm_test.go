package isa

import (
	"strings"
	"testing"
)

// allMnemonics lists every mnemonic in the opcode table, used by
// several tests below to exercise the whole enumeration without
// duplicating the table from asm.go.
var allMnemonics = []string{
	"nop", "load", "store", "push", "pop", "jal", "jnn", "jnz",
	"lneg", "numneg", "inc", "dec", "bwneg",
	"and", "or", "xor", "add", "sub", "mul", "div", "mod", "shl", "shr", "ushr",
	"trap", "emit", "print", "err", "crash",
}

func TestAssembleDisassembleBijection(t *testing.T) {
	// For every mnemonic, assembling its upper-case form then
	// disassembling returns the lowercase mnemonic.
	for _, m := range allMnemonics {
		t.Run(m, func(t *testing.T) {
			op := Assemble(strings.ToUpper(m))
			if op == OpInvalid {
				t.Fatalf("Assemble(%q) = OpInvalid, want a real opcode", m)
			}
			got, ok := Disassemble(op)
			if !ok {
				t.Fatalf("Disassemble(%v) returned no mnemonic", op)
			}
			if got != m {
				t.Fatalf("round trip: Assemble(%q) -> %v -> Disassemble = %q, want %q", m, op, got, m)
			}
		})
	}
}

func TestAssembleDisassembleInverse(t *testing.T) {
	// The other direction: for every opcode with a mnemonic,
	// assemble(disassemble(op)) == op.
	for op := 0; op <= 0xFF; op++ {
		m, ok := Disassemble(OpCode(op))
		if !ok {
			continue
		}
		if got := Assemble(m); got != OpCode(op) {
			t.Errorf("Assemble(Disassemble(0x%02X)) = 0x%02X, want 0x%02X", op, got, op)
		}
	}
}

func TestAssembleUnknown(t *testing.T) {
	for _, bad := range []string{"XYZ", "loadx", "lo", "", "  load"} {
		if got := Assemble(bad); got != OpInvalid {
			t.Errorf("Assemble(%q) = %v, want OpInvalid", bad, got)
		}
	}
}

func TestAssembleCaseInsensitive(t *testing.T) {
	for _, variant := range []string{"LOAD", "Load", "lOaD", "load"} {
		if got := Assemble(variant); got != OpLoad {
			t.Errorf("Assemble(%q) = %v, want OpLoad", variant, got)
		}
	}
}

func TestDisassembleReservedHasNoMnemonic(t *testing.T) {
	for _, op := range []OpCode{OpInvalid, 0x02, 0x05, 0x0A, 0x13, 0x25, 0x4B, 0xE2, 0xFC} {
		if _, ok := Disassemble(op); ok {
			t.Errorf("Disassemble(0x%02X) unexpectedly has a mnemonic", byte(op))
		}
	}
}

func TestMnemonicTableWellFormed(t *testing.T) {
	// Mnemonics must be unique, non-empty, lowercase ASCII.
	seen := make(map[OpCode]string)
	for name, op := range mnemonics {
		if name == "" {
			t.Fatalf("empty mnemonic for opcode 0x%02X", byte(op))
		}
		if strings.ToLower(name) != name {
			t.Errorf("mnemonic %q is not lowercase", name)
		}
		if prev, ok := seen[op]; ok {
			t.Errorf("opcode 0x%02X has two mnemonics: %q and %q", byte(op), prev, name)
		}
		seen[op] = name
	}
}
