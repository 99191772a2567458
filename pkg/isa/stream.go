package isa

// Decoder is a streaming decoder over an owned, read-only program byte
// slice. It exposes a lazy, restartable sequence of decoded
// instructions and the program-counter after the most recent read.
// It holds a byte slice plus an int cursor, with no extra buffering.
type Decoder struct {
	program []byte
	pc      int
	current Instruction
}

// NewDecoder returns a Decoder positioned at the start of program.
// program is borrowed: the Decoder never writes to it and it must
// outlive the Decoder.
func NewDecoder(program []byte) *Decoder {
	return &Decoder{program: program}
}

// Load resets the cursor to zero and swaps in a new program.
func (d *Decoder) Load(program []byte) {
	d.program = program
	d.pc = 0
	d.current = nil
}

// Empty reports whether the program counter has reached or passed the
// end of the loaded program.
func (d *Decoder) Empty() bool {
	return d.pc >= len(d.program)
}

// Advance decodes one instruction at the current position, stores it
// as Current, and advances the program counter by the consumed byte
// count. It returns the decoded instruction.
func (d *Decoder) Advance() Instruction {
	instr, n := DecodeOne(d.program[d.pc:])
	d.current = instr
	d.pc += n
	return instr
}

// Current returns the most recently decoded instruction, or nil if
// Advance has not yet been called since the last Load.
func (d *Decoder) Current() Instruction {
	return d.current
}

// ProgramCounter returns the byte position immediately after the most
// recently decoded instruction (0 before any decode).
func (d *Decoder) ProgramCounter() int {
	return d.pc
}
