package internal

import (
	"fmt"
	"strings"
	"unicode"
)

// Expressions have no operator priority: expression: term (op term)*, and every op is written
// right after its right hand term, so a + b * c is (a + b) * c.
//
// term:           integerConstant | stringConstant | keywordConstant | varName |
//                 varName '[' expression ']' | subroutineCall | '(' expression ')' | unaryOp term
// subroutineCall: subroutineName '(' expressionList ')' |
//                 (className|varName) '.' subroutineName '(' expressionList ')'
// expressionList: (expression (',' expression)*)?

// maxIntConstant is the largest integer constant a vm word can hold.
const maxIntConstant = 32767

var opCommands = map[byte]Command{
	'+': AddCommand,
	'-': SubCommand,
	'&': AndCommand,
	'|': OrCommand,
	'<': LtCommand,
	'>': GtCommand,
	'=': EqCommand,
}

// Multiply and divide are not vm commands, the os Math class does them.
var opCalls = map[byte]string{
	'*': "Math.multiply",
	'/': "Math.divide",
}

func (engine *CompilationEngine) matchOp() bool {
	if engine.tokenizer.TokenType() != SymbolTP {
		return false
	}
	symbol := engine.tokenizer.Symbol()
	_, isCommand := opCommands[symbol]
	_, isCall := opCalls[symbol]
	return isCommand || isCall
}

func (engine *CompilationEngine) compileExpression() error {
	return engine.element("expression", engine.compileExpressionTerms)
}

func (engine *CompilationEngine) compileExpressionTerms() error {
	err := engine.element("term", engine.compileTerm)
	if err != nil {
		return err
	}
	for {
		err = engine.tokenizer.Advance()
		if err != nil {
			return err
		}
		if !engine.matchOp() {
			return engine.tokenizer.Retreat()
		}
		op := engine.tokenizer.Symbol()
		err = engine.writeTerminal()
		if err != nil {
			return err
		}
		err = engine.element("term", engine.compileTerm)
		if err != nil {
			return err
		}
		err = engine.compileOp(op)
		if err != nil {
			return err
		}
	}
}

func (engine *CompilationEngine) compileOp(op byte) error {
	if command, ok := opCommands[op]; ok {
		return engine.writer.WriteArithmetic(command)
	}
	if name, ok := opCalls[op]; ok {
		return engine.writer.WriteCall(name, 2)
	}
	return makeError(UnexpectedTokenError, string(op), "invalid operator")
}

func (engine *CompilationEngine) compileTerm() error {
	err := engine.tokenizer.Advance()
	if err != nil {
		return err
	}
	switch engine.tokenizer.TokenType() {
	case IntegerTP:
		v := engine.tokenizer.IntVal()
		if v > maxIntConstant {
			return engine.unexpected(fmt.Sprintf("integer constant out of range 0..%d", maxIntConstant))
		}
		err = engine.writeTerminal()
		if err != nil {
			return err
		}
		return engine.writer.WritePush(ConstantSegment, v)
	case StringTP:
		return engine.compileStringConstant(engine.tokenizer.StringVal())
	case KeyWordTP:
		return engine.compileKeyWordConstant()
	case IdentifierTP:
		return engine.compileVarOrCall(engine.tokenizer.Identifier())
	case SymbolTP:
		switch engine.tokenizer.Symbol() {
		case '(':
			err = engine.writeTerminal()
			if err != nil {
				return err
			}
			err = engine.compileExpression()
			if err != nil {
				return err
			}
			return engine.eatSymbol(')')
		case '-':
			return engine.compileUnaryTerm(NegCommand)
		case '~':
			return engine.compileUnaryTerm(NotCommand)
		}
	}
	return engine.unexpected("expect a term")
}

func (engine *CompilationEngine) compileUnaryTerm(command Command) error {
	err := engine.writeTerminal()
	if err != nil {
		return err
	}
	err = engine.element("term", engine.compileTerm)
	if err != nil {
		return err
	}
	return engine.writer.WriteArithmetic(command)
}

// true is -1, which is not 0. false and null are 0.
func (engine *CompilationEngine) compileKeyWordConstant() error {
	kw := engine.tokenizer.KeyWord()
	if kw != TrueKeyWord && kw != FalseKeyWord && kw != NullKeyWord && kw != ThisKeyWord {
		return engine.unexpected("expect true, false, null or this")
	}
	err := engine.writeTerminal()
	if err != nil {
		return err
	}
	switch kw {
	case TrueKeyWord:
		err = engine.writer.WritePush(ConstantSegment, 0)
		if err != nil {
			return err
		}
		return engine.writer.WriteArithmetic(NotCommand)
	case ThisKeyWord:
		return engine.writer.WritePush(PointerSegment, 0)
	}
	return engine.writer.WritePush(ConstantSegment, 0)
}

// A string constant builds a new String object and appends each character to it. appendChar
// returns the string, so it stays on the stack between calls. The vm character set is ASCII, so
// one byte is one character.
func (engine *CompilationEngine) compileStringConstant(str string) error {
	if strings.IndexFunc(str, func(r rune) bool { return r > unicode.MaxASCII }) >= 0 {
		return engine.unexpected("string constant has a non-ASCII character")
	}
	err := engine.writeTerminal()
	if err != nil {
		return err
	}
	err = engine.writer.WritePush(ConstantSegment, len(str))
	if err != nil {
		return err
	}
	err = engine.writer.WriteCall("String.new", 1)
	if err != nil {
		return err
	}
	for i := 0; i < len(str); i++ {
		err = engine.writer.WritePush(ConstantSegment, int(str[i]))
		if err != nil {
			return err
		}
		err = engine.writer.WriteCall("String.appendChar", 2)
		if err != nil {
			return err
		}
	}
	return nil
}

// compileVarOrCall decides by the token after name: '[' is an array element, '(' or '.' a call,
// anything else a plain variable.
func (engine *CompilationEngine) compileVarOrCall(name string) error {
	err := engine.tokenizer.Advance()
	if err != nil {
		return err
	}
	switch {
	case engine.isSymbol('['):
		return engine.compileArrayElement(name)
	case engine.isSymbol('('), engine.isSymbol('.'):
		err = engine.tokenizer.Retreat()
		if err != nil {
			return err
		}
		return engine.compileSubroutineCall(name)
	}
	err = engine.tokenizer.Retreat()
	if err != nil {
		return err
	}
	segment, index, err := engine.resolveVariable(name)
	if err != nil {
		return err
	}
	return engine.writer.WritePush(segment, index)
}

// name '[' expression ']' with '[' already read.
//
// vm codes:
// push base
// index expression
// add
// pop pointer 1
// push that 0
func (engine *CompilationEngine) compileArrayElement(name string) error {
	segment, index, err := engine.resolveVariable(name)
	if err != nil {
		return err
	}
	err = engine.writeTerminal()
	if err != nil {
		return err
	}
	err = engine.writer.WritePush(segment, index)
	if err != nil {
		return err
	}
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	err = engine.eatSymbol(']')
	if err != nil {
		return err
	}
	err = engine.writer.WriteArithmetic(AddCommand)
	if err != nil {
		return err
	}
	err = engine.writer.WritePop(PointerSegment, 1)
	if err != nil {
		return err
	}
	return engine.writer.WritePush(ThatSegment, 0)
}

// compileSubroutineCall compiles a call whose first identifier is name; the cursor stays on name.
// * foo(...): a method of the current object, this goes first.
// * v.foo(...) where v is a variable: a method of v's class, v goes first.
// * C.foo(...) where C is unknown: a function or constructor of class C.
func (engine *CompilationEngine) compileSubroutineCall(name string) error {
	err := engine.tokenizer.Advance()
	if err != nil {
		return err
	}
	var callee string
	receivers := 0
	switch {
	case engine.isSymbol('('):
		err = engine.tree.Name(name, "subroutine", false)
		if err != nil {
			return err
		}
		err = engine.writer.WritePush(PointerSegment, 0)
		if err != nil {
			return err
		}
		callee, receivers = engine.className+"."+name, 1
		err = engine.tokenizer.Retreat()
		if err != nil {
			return err
		}
	case engine.isSymbol('.'):
		callee, receivers, err = engine.compileCallReceiver(name)
		if err != nil {
			return err
		}
	default:
		return engine.unexpected("expect '(' or '.' in subroutine call")
	}
	err = engine.eatSymbol('(')
	if err != nil {
		return err
	}
	var nArgs int
	err = engine.element("expressionList", func() (err error) {
		nArgs, err = engine.compileExpressionList()
		return
	})
	if err != nil {
		return err
	}
	err = engine.eatSymbol(')')
	if err != nil {
		return err
	}
	return engine.writer.WriteCall(callee, nArgs+receivers)
}

// compileCallReceiver handles (className|varName) '.' subroutineName with the cursor on '.'. It
// returns the full callee name and the number of receivers pushed.
func (engine *CompilationEngine) compileCallReceiver(name string) (string, int, error) {
	className, receivers := name, 0
	if engine.symbols.KindOf(name) == KindNone {
		err := engine.tree.Name(name, "class", false)
		if err != nil {
			return "", 0, err
		}
	} else {
		segment, index, err := engine.resolveVariable(name)
		if err != nil {
			return "", 0, err
		}
		err = engine.writer.WritePush(segment, index)
		if err != nil {
			return "", 0, err
		}
		className, receivers = engine.symbols.TypeOf(name), 1
	}
	err := engine.writeTerminal()
	if err != nil {
		return "", 0, err
	}
	subroutineName, err := engine.eatIdentifier()
	if err != nil {
		return "", 0, err
	}
	err = engine.tree.Name(subroutineName, "subroutine", false)
	if err != nil {
		return "", 0, err
	}
	return className + "." + subroutineName, receivers, nil
}

// compileExpressionList returns how many expressions it compiled.
func (engine *CompilationEngine) compileExpressionList() (int, error) {
	empty, err := engine.peekSymbol(')')
	if err != nil || empty {
		return 0, err
	}
	count := 0
	for {
		err = engine.compileExpression()
		if err != nil {
			return count, err
		}
		count++
		more, err := engine.peekSymbol(',')
		if err != nil || !more {
			return count, err
		}
		err = engine.eatSymbol(',')
		if err != nil {
			return count, err
		}
	}
}
