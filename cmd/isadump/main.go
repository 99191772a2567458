// isadump is a thin, flag-based driver over pkg/isa and pkg/tree. It
// never participates in a test of either library; it only consumes
// their exported APIs.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/quillisa/core/pkg/isa"
	"github.com/quillisa/core/pkg/tree"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "assemble":
		err = runAssemble(args[1:])
	case "disasm":
		err = runDisasm(args[1:])
	case "tree":
		err = runTree(args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "isadump: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  isadump assemble [-o out.bin] <file.asm>")
	fmt.Fprintln(os.Stderr, "  isadump disasm <file.bin>")
	fmt.Fprintln(os.Stderr, "  isadump tree [-leaf-cap=N] <keys.txt>")
}

// === assemble ===

func runAssemble(args []string) error {
	fs := flag.NewFlagSet("assemble", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("assemble requires exactly one input file")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	var code []byte
	for lineNum, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}
		instr, err := assembleLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum+1, err)
		}
		code = append(code, isa.Encode(instr)...)
	}

	if *out == "" {
		_, err = os.Stdout.Write(code)
		return err
	}
	return os.WriteFile(*out, code, 0o644)
}

// assembleLine builds one Instruction from a "mnemonic operand..."
// line. This mapping duplicates isa's opcode↔mnemonic lookup with the
// concrete operand count and types each opcode needs, since the
// textual operand syntax lives here rather than in pkg/isa.
func assembleLine(line string) (isa.Instruction, error) {
	fields := strings.Fields(line)
	mnemonic, operands := fields[0], fields[1:]

	op := isa.Assemble(mnemonic)
	if op == isa.OpInvalid {
		return nil, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}

	want := operandCounts[op]
	if len(operands) != want {
		return nil, fmt.Errorf("%s expects %d operand(s), got %d", mnemonic, want, len(operands))
	}

	vals := make([]uint64, len(operands))
	for i, s := range operands {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid operand %q: %w", mnemonic, s, err)
		}
		vals[i] = v
	}

	switch op {
	case isa.OpNop:
		return isa.NoOp{}, nil
	case isa.OpLoad:
		return isa.Load{Target: isa.StackAddr(vals[0]), SourcePtr: isa.StackAddr(vals[1])}, nil
	case isa.OpStore:
		return isa.Store{TargetPtr: isa.StackAddr(vals[0]), Source: isa.StackAddr(vals[1])}, nil
	case isa.OpPush:
		return isa.Push{Source: isa.StackAddr(vals[0])}, nil
	case isa.OpPop:
		return isa.Pop{}, nil
	case isa.OpJal:
		return isa.Jal{Target: isa.ProgramAddr(vals[0])}, nil
	case isa.OpJnn:
		return isa.Jnn{Target: isa.ProgramAddr(vals[0]), Subject: isa.StackAddr(vals[1])}, nil
	case isa.OpJnz:
		return isa.Jnz{Target: isa.ProgramAddr(vals[0]), Subject: isa.StackAddr(vals[1])}, nil
	case isa.OpLogicalNot:
		return isa.LogicalNot{Result: isa.ProgramAddr(vals[0]), Subject: isa.StackAddr(vals[1])}, nil
	case isa.OpNegate:
		return isa.Negate{Result: isa.ProgramAddr(vals[0]), Subject: isa.StackAddr(vals[1])}, nil
	case isa.OpIncrement:
		return isa.Increment{Result: isa.ProgramAddr(vals[0]), Subject: isa.StackAddr(vals[1])}, nil
	case isa.OpDecrement:
		return isa.Decrement{Result: isa.ProgramAddr(vals[0]), Subject: isa.StackAddr(vals[1])}, nil
	case isa.OpBitwiseNot:
		return isa.BitwiseNot{Result: isa.ProgramAddr(vals[0]), Subject: isa.StackAddr(vals[1])}, nil
	case isa.OpAnd:
		return isa.And{Result: isa.StackAddr(vals[0]), A: isa.StackAddr(vals[1]), B: isa.StackAddr(vals[2])}, nil
	case isa.OpOr:
		return isa.Or{Result: isa.StackAddr(vals[0]), A: isa.StackAddr(vals[1]), B: isa.StackAddr(vals[2])}, nil
	case isa.OpXor:
		return isa.Xor{Result: isa.StackAddr(vals[0]), A: isa.StackAddr(vals[1]), B: isa.StackAddr(vals[2])}, nil
	case isa.OpAdd:
		return isa.Add{Sum: isa.StackAddr(vals[0]), A: isa.StackAddr(vals[1]), B: isa.StackAddr(vals[2])}, nil
	case isa.OpSub:
		return isa.Sub{Diff: isa.StackAddr(vals[0]), Minuend: isa.StackAddr(vals[1]), Subtrahend: isa.StackAddr(vals[2])}, nil
	case isa.OpMul:
		return isa.Mul{Product: isa.StackAddr(vals[0]), Multiplicand: isa.StackAddr(vals[1]), Multiplier: isa.StackAddr(vals[2])}, nil
	case isa.OpDiv:
		return isa.Div{Quotient: isa.StackAddr(vals[0]), Dividend: isa.StackAddr(vals[1]), Divisor: isa.StackAddr(vals[2])}, nil
	case isa.OpMod:
		return isa.Mod{Remainder: isa.StackAddr(vals[0]), Dividend: isa.StackAddr(vals[1]), Divisor: isa.StackAddr(vals[2])}, nil
	case isa.OpShl:
		return isa.Shl{Result: isa.StackAddr(vals[0]), Subject: isa.StackAddr(vals[1]), Shift: isa.StackAddr(vals[2])}, nil
	case isa.OpShr:
		return isa.Shr{Result: isa.StackAddr(vals[0]), Subject: isa.StackAddr(vals[1]), Shift: isa.StackAddr(vals[2])}, nil
	case isa.OpUshr:
		return isa.Ushr{Result: isa.StackAddr(vals[0]), Subject: isa.StackAddr(vals[1]), Shift: isa.StackAddr(vals[2])}, nil
	case isa.OpTrap:
		return isa.Trap{ExceptionType: isa.SymbolAddr(vals[0]), Handler: isa.ProgramAddr(vals[1])}, nil
	case isa.OpEmit:
		return isa.Emit{ExceptionPtr: isa.StackAddr(vals[0])}, nil
	case isa.OpPrint:
		return isa.Print{}, nil
	case isa.OpErr:
		return isa.Err{MessagePtr: isa.StackAddr(vals[0])}, nil
	case isa.OpCrash:
		return isa.Crash{}, nil
	default:
		return nil, fmt.Errorf("unhandled opcode %v", op)
	}
}

// operandCounts gives the operand arity for each opcode; kept next to
// assembleLine's switch so the two can't silently drift apart.
var operandCounts = map[isa.OpCode]int{
	isa.OpNop: 0, isa.OpLoad: 2, isa.OpStore: 2, isa.OpPush: 1, isa.OpPop: 0,
	isa.OpJal: 1, isa.OpJnn: 2, isa.OpJnz: 2,
	isa.OpLogicalNot: 2, isa.OpNegate: 2, isa.OpIncrement: 2, isa.OpDecrement: 2, isa.OpBitwiseNot: 2,
	isa.OpAnd: 3, isa.OpOr: 3, isa.OpXor: 3, isa.OpAdd: 3, isa.OpSub: 3, isa.OpMul: 3,
	isa.OpDiv: 3, isa.OpMod: 3, isa.OpShl: 3, isa.OpShr: 3, isa.OpUshr: 3,
	isa.OpTrap: 2, isa.OpEmit: 1, isa.OpPrint: 0, isa.OpErr: 1, isa.OpCrash: 0,
}

// === disasm ===

func runDisasm(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("disasm requires exactly one input file")
	}
	program, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	d := isa.NewDecoder(program)
	for !d.Empty() {
		pc := d.ProgramCounter()
		instr := d.Advance()
		fmt.Printf("%04X: %s\n", pc, formatInstruction(instr))
		if _, ok := instr.(isa.Bad); ok {
			break // end the walk at a Bad; the Decoder does not stop on its own
		}
	}
	return nil
}

func formatInstruction(instr isa.Instruction) string {
	if bad, ok := instr.(isa.Bad); ok {
		return fmt.Sprintf("bad opcode=%s expected=%d found=%d", bad.Opcode, bad.Expected, bad.Found)
	}
	if _, ok := instr.(isa.Invalid); ok {
		return "invalid"
	}

	name, ok := isa.Disassemble(instr.Op())
	if !ok {
		name = instr.Op().String()
	}

	v := reflect.ValueOf(instr)
	if v.NumField() == 0 {
		return name
	}
	parts := make([]string, 0, v.NumField()+1)
	parts = append(parts, name)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		parts = append(parts, fmt.Sprintf("%s=%d", t.Field(i).Name, v.Field(i).Uint()))
	}
	return strings.Join(parts, " ")
}

// === tree ===

func runTree(args []string) error {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	leafCap := fs.Int("leaf-cap", 4, "leaf capacity L")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("tree requires exactly one key file")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	compare := func(a, b string) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	idx := tree.New[string, int](*leafCap, compare)

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		if idx.Insert(key, n) {
			n++
		} else {
			fmt.Fprintf(os.Stderr, "isadump: duplicate key %q skipped\n", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	dumpNode(idx.Root(), 0)
	return nil
}

func dumpNode(n *tree.Node[string, int], depth int) {
	if n == nil {
		fmt.Println("(empty)")
		return
	}
	indent := strings.Repeat("  ", depth)
	keys := make([]string, 0, n.Len())
	for _, leaf := range n.Leaves() {
		keys = append(keys, leaf.Key)
	}
	fmt.Printf("%s[%s]\n", indent, strings.Join(keys, ", "))
	for _, c := range n.Children() {
		dumpNode(c, depth+1)
	}
}
