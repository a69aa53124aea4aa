package codegen

import (
	"bufio"
	"fmt"
	"io"
)

// Emitter owns the output stream, the monotonic label counter, and the
// handful of low-level writers every AST-walking method builds on.
type Emitter struct {
	out        *bufio.Writer
	labelCount int
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{out: bufio.NewWriter(w)}
}

// NewLabel returns a fresh `L<n>` label; labels are unique for the
// lifetime of one Emitter, matching the "monotonic label counter"
// requirement.
func (e *Emitter) NewLabel() string {
	label := fmt.Sprintf("L%d", e.labelCount)
	e.labelCount++
	return label
}

func (e *Emitter) Directive(dir string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintf(e.out, "    %s %s\n", dir, fmt.Sprint(args...))
	} else {
		fmt.Fprintf(e.out, "    %s\n", dir)
	}
}

func (e *Emitter) Label(name string) {
	fmt.Fprintf(e.out, "%s:\n", name)
}

// Raw emits a line verbatim, used only for inline asm statements.
func (e *Emitter) Raw(text string) {
	fmt.Fprintf(e.out, "    %s\n", text)
}

func (e *Emitter) Instr0(op string) {
	fmt.Fprintf(e.out, "    %s\n", op)
}

func (e *Emitter) Instr1(op string, a1 interface{}) {
	fmt.Fprintf(e.out, "    %s %v\n", op, a1)
}

func (e *Emitter) Instr2(op string, a1, a2 interface{}) {
	fmt.Fprintf(e.out, "    %s %v, %v\n", op, a1, a2)
}

// RodataString emits one `.rodata` entry for a string literal; callers
// are responsible for bracketing it with the right `.section` directives.
func (e *Emitter) RodataString(label, value string) {
	fmt.Fprintf(e.out, "%s: .string %q\n", label, value)
}

func (e *Emitter) BlankLine() {
	fmt.Fprintln(e.out)
}

func (e *Emitter) Flush() error { return e.out.Flush() }
