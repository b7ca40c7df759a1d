package internal

import (
	"fmt"
)

// CompilationEngine recognizes one jack class and writes its vm code while parsing. There is no
// ast: every rule checks its tokens and emits instructions and symbols as it goes. With a
// ParseTreeWriter set, every rule also streams its element of the parse tree.
//
// Grammar:
// class:          'class' className '{' classVarDec* subroutineDec* '}'
// classVarDec:    ('static'|'field') type varName (',' varName)* ';'
// subroutineDec:  ('constructor'|'function'|'method') ('void'|type) subroutineName
//                 '(' parameterList ')' subroutineBody
// parameterList:  ((type varName) (',' type varName)*)?
// subroutineBody: '{' varDec* statements '}'
// varDec:         'var' type varName (',' varName)* ';'
// statements:     (letStatement|ifStatement|whileStatement|doStatement|returnStatement)*
type CompilationEngine struct {
	tokenizer *Tokenizer
	symbols   *SymbolTable
	writer    *VMWriter
	tree      *ParseTreeWriter

	className      string
	subroutineName string

	ifLabelIndex    int
	whileLabelIndex int
}

func NewCompilationEngine(tokenizer *Tokenizer, symbols *SymbolTable, writer *VMWriter) *CompilationEngine {
	return &CompilationEngine{tokenizer: tokenizer, symbols: symbols, writer: writer}
}

// SetParseTreeWriter makes the engine also stream the parse tree to tree while compiling.
func (engine *CompilationEngine) SetParseTreeWriter(tree *ParseTreeWriter) {
	engine.tree = tree
}

func (engine *CompilationEngine) ClassName() string {
	return engine.className
}

func (engine *CompilationEngine) CompileClass() error {
	err := engine.element("class", engine.compileClass)
	if err != nil {
		return err
	}
	if !engine.tokenizer.HasMoreTokens() {
		return nil
	}
	err = engine.tokenizer.Advance()
	if err != nil {
		return err
	}
	return makeError(StructuralError, engine.tokenizer.Current().Content(),
		"trailing tokens after the end of class %s", engine.className)
}

func (engine *CompilationEngine) compileClass() (err error) {
	err = engine.eatKeyWord(ClassKeyWord)
	if err != nil {
		return
	}
	engine.className, err = engine.eatIdentifier()
	if err != nil {
		return
	}
	err = engine.tree.Name(engine.className, "class", true)
	if err != nil {
		return
	}
	err = engine.eatSymbol('{')
	if err != nil {
		return
	}
	for {
		match, err := engine.peekKeyWord(StaticKeyWord, FieldKeyWord)
		if err != nil {
			return err
		}
		if !match {
			break
		}
		err = engine.element("classVarDec", engine.compileClassVarDec)
		if err != nil {
			return err
		}
	}
	for {
		match, err := engine.peekKeyWord(ConstructorKeyWord, FunctionKeyWord, MethodKeyWord)
		if err != nil {
			return err
		}
		if !match {
			break
		}
		err = engine.element("subroutineDec", engine.compileSubroutine)
		if err != nil {
			return err
		}
	}
	return engine.eatSymbol('}')
}

// element wraps compile in an open and a close tag of the parse tree.
func (engine *CompilationEngine) element(tag string, compile func() error) error {
	err := engine.tree.Open(tag)
	if err != nil {
		return err
	}
	err = compile()
	if err != nil {
		return err
	}
	return engine.tree.Close(tag)
}

// classVarDec: ('static'|'field') type varName (',' varName)* ';'
func (engine *CompilationEngine) compileClassVarDec() error {
	err := engine.tokenizer.Advance()
	if err != nil {
		return err
	}
	var kind Kind
	switch {
	case engine.isKeyWord(StaticKeyWord):
		kind = Static
	case engine.isKeyWord(FieldKeyWord):
		kind = Field
	default:
		return engine.unexpected("expect static or field")
	}
	err = engine.writeTerminal()
	if err != nil {
		return err
	}
	return engine.compileVariableDeclarationList(kind)
}

// compileVariableDeclarationList handles: type varName (',' varName)* ';'
func (engine *CompilationEngine) compileVariableDeclarationList(kind Kind) error {
	tp, err := engine.compileType(false)
	if err != nil {
		return err
	}
	for {
		name, err := engine.eatIdentifier()
		if err != nil {
			return err
		}
		err = engine.tree.Variable(engine.symbols.Define(name, tp, kind), true)
		if err != nil {
			return err
		}
		err = engine.tokenizer.Advance()
		if err != nil {
			return err
		}
		if !engine.isSymbol(',') && !engine.isSymbol(';') {
			return engine.unexpected("expect ',' or ';' in declaration")
		}
		err = engine.writeTerminal()
		if err != nil || engine.isSymbol(';') {
			return err
		}
	}
}

// compileType handles: 'int'|'char'|'boolean'|className, and 'void' for return types.
func (engine *CompilationEngine) compileType(allowVoid bool) (string, error) {
	err := engine.tokenizer.Advance()
	if err != nil {
		return "", err
	}
	switch engine.tokenizer.TokenType() {
	case KeyWordTP:
		kw := engine.tokenizer.KeyWord()
		switch kw {
		case IntKeyWord, CharKeyWord, BooleanKeyWord:
			return kw.String(), engine.writeTerminal()
		case VoidKeyWord:
			if allowVoid {
				return kw.String(), engine.writeTerminal()
			}
		}
	case IdentifierTP:
		name := engine.tokenizer.Identifier()
		return name, engine.tree.Name(name, "class", false)
	}
	return "", engine.unexpected("expect a type")
}

// subroutineDec: ('constructor'|'function'|'method') ('void'|type) subroutineName
// '(' parameterList ')' subroutineBody
func (engine *CompilationEngine) compileSubroutine() (err error) {
	err = engine.tokenizer.Advance()
	if err != nil {
		return
	}
	if !engine.isKeyWord(ConstructorKeyWord, FunctionKeyWord, MethodKeyWord) {
		return engine.unexpected("expect constructor, function or method")
	}
	subroutineKind := engine.tokenizer.KeyWord()
	err = engine.writeTerminal()
	if err != nil {
		return
	}
	_, err = engine.compileType(true)
	if err != nil {
		return
	}
	engine.subroutineName, err = engine.eatIdentifier()
	if err != nil {
		return
	}
	err = engine.tree.Name(engine.subroutineName, "subroutine", true)
	if err != nil {
		return
	}
	T().WithField("subroutine", engine.functionName()).Debug("compiler: compile subroutine")
	engine.symbols.StartSubroutine()
	if subroutineKind == MethodKeyWord {
		// The receiver is always argument 0 of a method.
		engine.symbols.Define("this", engine.className, Arg)
	}
	err = engine.eatSymbol('(')
	if err != nil {
		return
	}
	err = engine.element("parameterList", engine.compileParameterList)
	if err != nil {
		return
	}
	err = engine.eatSymbol(')')
	if err != nil {
		return
	}
	err = engine.element("subroutineBody", func() error {
		return engine.compileSubroutineBody(subroutineKind)
	})
	engine.subroutineName = ""
	return
}

// parameterList: ((type varName) (',' type varName)*)?
func (engine *CompilationEngine) compileParameterList() error {
	match, err := engine.peekSymbol(')')
	if err != nil || match {
		return err
	}
	for {
		tp, err := engine.compileType(false)
		if err != nil {
			return err
		}
		name, err := engine.eatIdentifier()
		if err != nil {
			return err
		}
		err = engine.tree.Variable(engine.symbols.Define(name, tp, Arg), true)
		if err != nil {
			return err
		}
		match, err := engine.peekSymbol(',')
		if err != nil || !match {
			return err
		}
		err = engine.eatSymbol(',')
		if err != nil {
			return err
		}
	}
}

// subroutineBody: '{' varDec* statements '}'
// The function header needs the number of locals, so it's written after all varDec are read.
func (engine *CompilationEngine) compileSubroutineBody(subroutineKind KeyWord) error {
	err := engine.eatSymbol('{')
	if err != nil {
		return err
	}
	for {
		match, err := engine.peekKeyWord(VarKeyWord)
		if err != nil {
			return err
		}
		if !match {
			break
		}
		err = engine.element("varDec", engine.compileVarDec)
		if err != nil {
			return err
		}
	}
	err = engine.writer.WriteFunction(engine.functionName(), engine.symbols.VarCount(Var))
	if err != nil {
		return err
	}
	switch subroutineKind {
	case ConstructorKeyWord:
		err = engine.compileConstructorPrologue()
	case MethodKeyWord:
		err = engine.compileMethodPrologue()
	}
	if err != nil {
		return err
	}
	err = engine.element("statements", engine.compileStatements)
	if err != nil {
		return err
	}
	return engine.eatSymbol('}')
}

// A constructor allocates one word per field and anchors this to the new block.
func (engine *CompilationEngine) compileConstructorPrologue() error {
	err := engine.writer.WritePush(ConstantSegment, engine.symbols.VarCount(Field))
	if err != nil {
		return err
	}
	err = engine.writer.WriteCall("Memory.alloc", 1)
	if err != nil {
		return err
	}
	return engine.writer.WritePop(PointerSegment, 0)
}

// A method anchors this to its receiver, passed as argument 0.
func (engine *CompilationEngine) compileMethodPrologue() error {
	err := engine.writer.WritePush(ArgumentSegment, 0)
	if err != nil {
		return err
	}
	return engine.writer.WritePop(PointerSegment, 0)
}

// varDec: 'var' type varName (',' varName)* ';'
func (engine *CompilationEngine) compileVarDec() error {
	err := engine.eatKeyWord(VarKeyWord)
	if err != nil {
		return err
	}
	return engine.compileVariableDeclarationList(Var)
}

var statementTags = map[KeyWord]string{
	LetKeyWord:    "letStatement",
	IfKeyWord:     "ifStatement",
	WhileKeyWord:  "whileStatement",
	DoKeyWord:     "doStatement",
	ReturnKeyWord: "returnStatement",
}

// statements: statement*
// Stops at the first token which can't start a statement and leaves it unread.
func (engine *CompilationEngine) compileStatements() error {
	for {
		err := engine.tokenizer.Advance()
		if err != nil {
			return err
		}
		if engine.tokenizer.TokenType() != KeyWordTP {
			return engine.tokenizer.Retreat()
		}
		kw := engine.tokenizer.KeyWord()
		tag, ok := statementTags[kw]
		if !ok {
			return engine.unexpected("expect a statement")
		}
		err = engine.tokenizer.Retreat()
		if err != nil {
			return err
		}
		var compile func() error
		switch kw {
		case LetKeyWord:
			compile = engine.compileLet
		case IfKeyWord:
			compile = engine.compileIf
		case WhileKeyWord:
			compile = engine.compileWhile
		case DoKeyWord:
			compile = engine.compileDo
		case ReturnKeyWord:
			compile = engine.compileReturn
		}
		err = engine.element(tag, compile)
		if err != nil {
			return err
		}
	}
}

// letStatement: 'let' varName ('[' expression ']')? '=' expression ';'
func (engine *CompilationEngine) compileLet() error {
	err := engine.eatKeyWord(LetKeyWord)
	if err != nil {
		return err
	}
	name, err := engine.eatIdentifier()
	if err != nil {
		return err
	}
	segment, index, err := engine.resolveVariable(name)
	if err != nil {
		return err
	}
	isArray, err := engine.peekSymbol('[')
	if err != nil {
		return err
	}
	if isArray {
		// Target address: base + index, computed before the value.
		err = engine.eatSymbol('[')
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
	}
	err = engine.eatSymbol('=')
	if err != nil {
		return err
	}
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	err = engine.eatSymbol(';')
	if err != nil {
		return err
	}
	if !isArray {
		return engine.writer.WritePop(segment, index)
	}
	return engine.compileArrayStore()
}

// The value is on top of the target address. The value can't go straight to that 0, the
// address must be popped to pointer 1 first, so temp 0 holds the value meanwhile.
func (engine *CompilationEngine) compileArrayStore() error {
	err := engine.writer.WritePop(TempSegment, 0)
	if err != nil {
		return err
	}
	err = engine.writer.WritePop(PointerSegment, 1)
	if err != nil {
		return err
	}
	err = engine.writer.WritePush(TempSegment, 0)
	if err != nil {
		return err
	}
	return engine.writer.WritePop(ThatSegment, 0)
}

// ifStatement: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
//
// vm codes:
// condition
// if-goto IF_TRUEn
// goto IF_FALSEn
// label IF_TRUEn
// statements
// goto IF_ENDn        (only with else)
// label IF_FALSEn
// else statements     (only with else)
// label IF_ENDn       (only with else)
func (engine *CompilationEngine) compileIf() error {
	err := engine.eatKeyWord(IfKeyWord)
	if err != nil {
		return err
	}
	ifTrueLabel := fmt.Sprintf("IF_TRUE%d", engine.ifLabelIndex)
	ifFalseLabel := fmt.Sprintf("IF_FALSE%d", engine.ifLabelIndex)
	ifEndLabel := fmt.Sprintf("IF_END%d", engine.ifLabelIndex)
	engine.ifLabelIndex++
	err = engine.compileCondition()
	if err != nil {
		return err
	}
	err = engine.writer.WriteIf(ifTrueLabel)
	if err != nil {
		return err
	}
	err = engine.writer.WriteGoto(ifFalseLabel)
	if err != nil {
		return err
	}
	err = engine.writer.WriteLabel(ifTrueLabel)
	if err != nil {
		return err
	}
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	hasElse, err := engine.peekKeyWord(ElseKeyWord)
	if err != nil {
		return err
	}
	if !hasElse {
		return engine.writer.WriteLabel(ifFalseLabel)
	}
	err = engine.eatKeyWord(ElseKeyWord)
	if err != nil {
		return err
	}
	err = engine.writer.WriteGoto(ifEndLabel)
	if err != nil {
		return err
	}
	err = engine.writer.WriteLabel(ifFalseLabel)
	if err != nil {
		return err
	}
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	return engine.writer.WriteLabel(ifEndLabel)
}

// whileStatement: 'while' '(' expression ')' '{' statements '}'
//
// vm codes:
// label WHILE_EXPn
// condition
// not
// if-goto WHILE_ENDn
// statements
// goto WHILE_EXPn
// label WHILE_ENDn
func (engine *CompilationEngine) compileWhile() error {
	err := engine.eatKeyWord(WhileKeyWord)
	if err != nil {
		return err
	}
	whileExpLabel := fmt.Sprintf("WHILE_EXP%d", engine.whileLabelIndex)
	whileEndLabel := fmt.Sprintf("WHILE_END%d", engine.whileLabelIndex)
	engine.whileLabelIndex++
	err = engine.writer.WriteLabel(whileExpLabel)
	if err != nil {
		return err
	}
	err = engine.compileCondition()
	if err != nil {
		return err
	}
	err = engine.writer.WriteArithmetic(NotCommand)
	if err != nil {
		return err
	}
	err = engine.writer.WriteIf(whileEndLabel)
	if err != nil {
		return err
	}
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	err = engine.writer.WriteGoto(whileExpLabel)
	if err != nil {
		return err
	}
	return engine.writer.WriteLabel(whileEndLabel)
}

// '(' expression ')'
func (engine *CompilationEngine) compileCondition() error {
	err := engine.eatSymbol('(')
	if err != nil {
		return err
	}
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	return engine.eatSymbol(')')
}

// '{' statements '}'
func (engine *CompilationEngine) compileBlock() error {
	err := engine.eatSymbol('{')
	if err != nil {
		return err
	}
	err = engine.element("statements", engine.compileStatements)
	if err != nil {
		return err
	}
	return engine.eatSymbol('}')
}

// doStatement: 'do' subroutineCall ';'
// The callee always leaves a value on the stack, which a do statement throws away.
func (engine *CompilationEngine) compileDo() error {
	err := engine.eatKeyWord(DoKeyWord)
	if err != nil {
		return err
	}
	name, err := engine.eatIdentifier()
	if err != nil {
		return err
	}
	err = engine.compileSubroutineCall(name)
	if err != nil {
		return err
	}
	err = engine.eatSymbol(';')
	if err != nil {
		return err
	}
	return engine.writer.WritePop(TempSegment, 0)
}

// returnStatement: 'return' expression? ';'
// Even void subroutines must return something.
func (engine *CompilationEngine) compileReturn() error {
	err := engine.eatKeyWord(ReturnKeyWord)
	if err != nil {
		return err
	}
	empty, err := engine.peekSymbol(';')
	if err != nil {
		return err
	}
	if empty {
		err = engine.writer.WritePush(ConstantSegment, 0)
	} else {
		err = engine.compileExpression()
	}
	if err != nil {
		return err
	}
	err = engine.eatSymbol(';')
	if err != nil {
		return err
	}
	return engine.writer.WriteReturn()
}

func (engine *CompilationEngine) functionName() string {
	return engine.className + "." + engine.subroutineName
}

var kindSegments = map[Kind]Segment{
	Arg:    ArgumentSegment,
	Field:  ThisSegment,
	Static: StaticSegment,
	Var:    LocalSegment,
}

// resolveVariable maps a declared name to the segment and index it lives at, and writes this use
// of name to the parse tree.
func (engine *CompilationEngine) resolveVariable(name string) (Segment, int, error) {
	desc := engine.symbols.lookUp(name)
	if desc == nil {
		return "", 0, engine.unexpected(fmt.Sprintf("%s is not a variable in %s", name, engine.functionName()))
	}
	err := engine.tree.Variable(desc, false)
	if err != nil {
		return "", 0, err
	}
	return kindSegments[desc.Kind], desc.Index, nil
}

func (engine *CompilationEngine) isKeyWord(kws ...KeyWord) bool {
	if engine.tokenizer.TokenType() != KeyWordTP {
		return false
	}
	current := engine.tokenizer.KeyWord()
	for _, kw := range kws {
		if kw == current {
			return true
		}
	}
	return false
}

func (engine *CompilationEngine) isSymbol(symbol byte) bool {
	return engine.tokenizer.TokenType() == SymbolTP && engine.tokenizer.Symbol() == symbol
}

// peekKeyWord reports whether the next token is one of kws. The cursor is left where it was.
func (engine *CompilationEngine) peekKeyWord(kws ...KeyWord) (bool, error) {
	err := engine.tokenizer.Advance()
	if err != nil {
		return false, err
	}
	match := engine.isKeyWord(kws...)
	return match, engine.tokenizer.Retreat()
}

// peekSymbol reports whether the next token is symbol. The cursor is left where it was.
func (engine *CompilationEngine) peekSymbol(symbol byte) (bool, error) {
	err := engine.tokenizer.Advance()
	if err != nil {
		return false, err
	}
	match := engine.isSymbol(symbol)
	return match, engine.tokenizer.Retreat()
}

func (engine *CompilationEngine) eatKeyWord(kw KeyWord) error {
	err := engine.tokenizer.Advance()
	if err != nil {
		return err
	}
	if !engine.isKeyWord(kw) {
		return engine.unexpected("expect keyword " + kw.String())
	}
	return engine.writeTerminal()
}

func (engine *CompilationEngine) eatSymbol(symbol byte) error {
	err := engine.tokenizer.Advance()
	if err != nil {
		return err
	}
	if !engine.isSymbol(symbol) {
		return engine.unexpected(fmt.Sprintf("expect symbol '%c'", symbol))
	}
	return engine.writeTerminal()
}

// eatIdentifier doesn't write to the parse tree, the caller knows what the name stands for.
func (engine *CompilationEngine) eatIdentifier() (string, error) {
	err := engine.tokenizer.Advance()
	if err != nil {
		return "", err
	}
	if engine.tokenizer.TokenType() != IdentifierTP {
		return "", engine.unexpected("expect an identifier")
	}
	return engine.tokenizer.Identifier(), nil
}

// writeTerminal writes the current keyword, symbol or constant to the parse tree. Identifiers go
// through the tree's Name and Variable, which annotate them.
func (engine *CompilationEngine) writeTerminal() error {
	return engine.tree.Terminal(engine.tokenizer.TokenType(), tokenText(engine.tokenizer))
}

func (engine *CompilationEngine) unexpected(msg string) error {
	return makeError(UnexpectedTokenError, engine.tokenizer.Current().Content(), msg)
}
