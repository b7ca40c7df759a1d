package internal

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// The vm has two kinds of instructions the writer must check before writing:
// * Memory access commands: push|pop segment index, where segment can be
//   argument, local, static, constant, this, that, pointer, temp.
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// Program flow and function calling commands only carry labels, names and counts.

type Segment string

const (
	ConstantSegment Segment = "constant"
	ArgumentSegment Segment = "argument"
	LocalSegment    Segment = "local"
	StaticSegment   Segment = "static"
	ThisSegment     Segment = "this"
	ThatSegment     Segment = "that"
	PointerSegment  Segment = "pointer"
	TempSegment     Segment = "temp"
)

var segments = map[Segment]bool{
	ConstantSegment: true,
	ArgumentSegment: true,
	LocalSegment:    true,
	StaticSegment:   true,
	ThisSegment:     true,
	ThatSegment:     true,
	PointerSegment:  true,
	TempSegment:     true,
}

type Command string

const (
	AddCommand Command = "add"
	SubCommand Command = "sub"
	NegCommand Command = "neg"
	EqCommand  Command = "eq"
	GtCommand  Command = "gt"
	LtCommand  Command = "lt"
	AndCommand Command = "and"
	OrCommand  Command = "or"
	NotCommand Command = "not"
)

var commands = map[Command]bool{
	AddCommand: true,
	SubCommand: true,
	NegCommand: true,
	EqCommand:  true,
	GtCommand:  true,
	LtCommand:  true,
	AndCommand: true,
	OrCommand:  true,
	NotCommand: true,
}

type VMWriter struct {
	writer *bufio.Writer
	lines  int
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{writer: bufio.NewWriter(w)}
}

// Lines returns how many instructions were written so far.
func (vw *VMWriter) Lines() int {
	return vw.lines
}

func (vw *VMWriter) WritePush(segment Segment, index int) error {
	return vw.writeMemoryAccess("push", segment, index)
}

func (vw *VMWriter) WritePop(segment Segment, index int) error {
	return vw.writeMemoryAccess("pop", segment, index)
}

func (vw *VMWriter) writeMemoryAccess(op string, segment Segment, index int) error {
	if !segments[segment] {
		return makeError(InvalidInstructionError, string(segment), "invalid segment for %s", op)
	}
	if index < 0 {
		return makeError(InvalidInstructionError, fmt.Sprintf("%s %d", segment, index), "negative index for %s", op)
	}
	return vw.writeOutput(fmt.Sprintf("%s %s %d", op, segment, index))
}

func (vw *VMWriter) WriteArithmetic(command Command) error {
	if !commands[command] {
		return makeError(InvalidInstructionError, string(command), "invalid arithmetic command")
	}
	return vw.writeOutput(string(command))
}

func (vw *VMWriter) WriteLabel(label string) error {
	return vw.writeOutput("label " + label)
}

func (vw *VMWriter) WriteGoto(label string) error {
	return vw.writeOutput("goto " + label)
}

func (vw *VMWriter) WriteIf(label string) error {
	return vw.writeOutput("if-goto " + label)
}

func (vw *VMWriter) WriteCall(name string, nArgs int) error {
	return vw.writeOutput(fmt.Sprintf("call %s %d", name, nArgs))
}

func (vw *VMWriter) WriteFunction(name string, nLocals int) error {
	return vw.writeOutput(fmt.Sprintf("function %s %d", name, nLocals))
}

func (vw *VMWriter) WriteReturn() error {
	return vw.writeOutput("return")
}

func (vw *VMWriter) writeOutput(output string) error {
	_, err := vw.writer.WriteString(output + "\n")
	if err != nil {
		return errors.WithStack(err)
	}
	vw.lines++
	return nil
}

func (vw *VMWriter) Flush() error {
	return errors.WithStack(vw.writer.Flush())
}
