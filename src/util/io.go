package util

import (
	"fmt"
	"os"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Writer buffers generated output text (Koopa IR or RISC-V assembly) in a strings.Builder and
// flushes it to a destination file or stdout. The compiler is single-threaded, so the Writer is a
// plain synchronous buffer.
type Writer struct {
	sb strings.Builder
}

// ---------------------
// ----- Functions -----
// ---------------------

// Write writes a format string to the Writer's buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString writes a plain string to the Writer's buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Ins1 writes a one-line instruction using the operator and single operand, e.g. "ret".
func (w *Writer) Ins1(op string) {
	w.sb.WriteString(fmt.Sprintf("  %s\n", op))
}

// Ins2 writes a one-line instruction using the operator, destination and single source operand.
func (w *Writer) Ins2(op, rd, rs1 string) {
	w.sb.WriteString(fmt.Sprintf("  %s %s, %s\n", op, rd, rs1))
}

// Ins2imm writes a one-line instruction using the operator, destination register, source register and
// signed immediate, e.g. "addi sp, sp, -16".
func (w *Writer) Ins2imm(op, rd, rs1 string, imm int) {
	w.sb.WriteString(fmt.Sprintf("  %s %s, %s, %d\n", op, rd, rs1, imm))
}

// Ins3 writes a one-line instruction using the operator, destination register and two source registers.
func (w *Writer) Ins3(op, rd, rs1, rs2 string) {
	w.sb.WriteString(fmt.Sprintf("  %s %s, %s, %s\n", op, rd, rs1, rs2))
}

// LoadStore writes a load or store instruction of register reg with offset to the base register
// (usually sp), e.g. "lw t0, 4(sp)".
func (w *Writer) LoadStore(op, reg string, offset int, base string) {
	w.sb.WriteString(fmt.Sprintf("  %s %s, %d(%s)\n", op, reg, offset, base))
}

// Label writes a one-line label with the given name.
func (w *Writer) Label(name string) {
	w.sb.WriteString(fmt.Sprintf("%s:\n", name))
}

// String returns the buffered content.
func (w *Writer) String() string {
	return w.sb.String()
}

// NewWriter returns a new, empty Writer.
func NewWriter() Writer {
	return Writer{sb: strings.Builder{}}
}

// ReadSource reads source code from the file named by opt.Src.
func ReadSource(opt Options) (string, error) {
	b, err := os.ReadFile(opt.Src)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteOutput writes s to the file named by opt.Out, or to stdout if opt.Out is empty.
func WriteOutput(opt Options, s string) error {
	if len(opt.Out) == 0 {
		_, err := fmt.Print(s)
		return err
	}
	return os.WriteFile(opt.Out, []byte(s), 0644)
}
