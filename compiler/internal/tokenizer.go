package internal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xiaobogaga/jackc/util"
)

// A simple Tokenizer for jack.

// Jack language has those elements:
// * KeyWord: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * Constant: integer, string ("xxx")
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: /**/, //.
//
// The whole source is tokenized up front. The parser walks the tokens with Advance and
// steps back with Retreat, which gives it a one token lookahead.

type TokenType int

const (
	KeyWordTP    TokenType = iota // class
	SymbolTP                      // {
	IdentifierTP                  // varA
	IntegerTP                     // 1010
	StringTP                      // "xxx"
	UnknownTP                     // @
)

func (tp TokenType) String() string {
	switch tp {
	case KeyWordTP:
		return "keyword"
	case SymbolTP:
		return "symbol"
	case IdentifierTP:
		return "identifier"
	case IntegerTP:
		return "integerConstant"
	case StringTP:
		return "stringConstant"
	}
	return "unknown"
}

type KeyWord int

const (
	ClassKeyWord KeyWord = iota
	ConstructorKeyWord
	FunctionKeyWord
	MethodKeyWord
	FieldKeyWord
	StaticKeyWord
	VarKeyWord
	IntKeyWord
	CharKeyWord
	BooleanKeyWord
	VoidKeyWord
	TrueKeyWord
	FalseKeyWord
	NullKeyWord
	ThisKeyWord
	LetKeyWord
	DoKeyWord
	IfKeyWord
	ElseKeyWord
	WhileKeyWord
	ReturnKeyWord
)

// keyWordMap is the mapping from reserved word to the corresponding KeyWord.
var keyWordMap = map[string]KeyWord{
	"class":       ClassKeyWord,
	"constructor": ConstructorKeyWord,
	"function":    FunctionKeyWord,
	"method":      MethodKeyWord,
	"field":       FieldKeyWord,
	"static":      StaticKeyWord,
	"var":         VarKeyWord,
	"int":         IntKeyWord,
	"char":        CharKeyWord,
	"boolean":     BooleanKeyWord,
	"void":        VoidKeyWord,
	"true":        TrueKeyWord,
	"false":       FalseKeyWord,
	"null":        NullKeyWord,
	"this":        ThisKeyWord,
	"let":         LetKeyWord,
	"do":          DoKeyWord,
	"if":          IfKeyWord,
	"else":        ElseKeyWord,
	"while":       WhileKeyWord,
	"return":      ReturnKeyWord,
}

func (kw KeyWord) String() string {
	for word, k := range keyWordMap {
		if k == kw {
			return word
		}
	}
	return "unknown"
}

const symbols = "{}()[].,;+-*/&|<>=~"

var (
	// regex from http://blog.ostermiller.org/find-comment
	commentRegex = regexp.MustCompile(`(?:/\*(?:[^*]|(?:\*+[^*/]))*\*+/)|(?://.*)`)
	// Alternation order matters: symbol, integer, string, identifier. Anything else is a single
	// unknown character.
	tokenRegex = regexp.MustCompile(`[{}()\[\].,;+\-*/&|<>=~]|[0-9]+|"[^"\n]*"|[A-Za-z_][A-Za-z0-9_]*|\S`)
)

// RemoveCommentsAndWhitespace strips every comment from source and trims the result.
// It is a textual pass, so comment delimiters inside a string literal are stripped as well.
func RemoveCommentsAndWhitespace(source string) string {
	return strings.TrimSpace(commentRegex.ReplaceAllString(source, ""))
}

type Token struct {
	content string
	tp      TokenType
}

func (t Token) Content() string {
	return t.content
}

func (t Token) Type() TokenType {
	return t.tp
}

// classify is a pure function of the lexeme, Advance and Retreat both rely on it.
func classify(content string) TokenType {
	if _, ok := keyWordMap[content]; ok {
		return KeyWordTP
	}
	if len(content) == 1 && strings.Contains(symbols, content) {
		return SymbolTP
	}
	if util.IsInteger(content) {
		return IntegerTP
	}
	if len(content) >= 2 && content[0] == '"' && content[len(content)-1] == '"' &&
		!strings.Contains(content[1:len(content)-1], `"`) {
		return StringTP
	}
	if util.IsIdentifier(content) {
		return IdentifierTP
	}
	return UnknownTP
}

type Tokenizer struct {
	tokens          []string
	currentTokenPos int
	current         Token
}

// NewTokenizer preprocesses source and splits it into tokens. The cursor starts before the
// first token.
func NewTokenizer(source string) *Tokenizer {
	return &Tokenizer{
		tokens:          tokenRegex.FindAllString(RemoveCommentsAndWhitespace(source), -1),
		currentTokenPos: -1,
		current:         Token{tp: UnknownTP},
	}
}

func (tokenizer *Tokenizer) Len() int {
	return len(tokenizer.tokens)
}

func (tokenizer *Tokenizer) HasMoreTokens() bool {
	return tokenizer.currentTokenPos < len(tokenizer.tokens)-1
}

func (tokenizer *Tokenizer) Advance() error {
	if !tokenizer.HasMoreTokens() {
		return makeError(StructuralError, tokenizer.current.content, "unexpected end of input")
	}
	tokenizer.currentTokenPos++
	tokenizer.setCurrent()
	return nil
}

func (tokenizer *Tokenizer) Retreat() error {
	if tokenizer.currentTokenPos < 1 {
		return makeError(StructuralError, tokenizer.current.content, "cannot retreat before the first token")
	}
	tokenizer.currentTokenPos--
	tokenizer.setCurrent()
	return nil
}

func (tokenizer *Tokenizer) setCurrent() {
	content := tokenizer.tokens[tokenizer.currentTokenPos]
	tokenizer.current = Token{content: content, tp: classify(content)}
}

func (tokenizer *Tokenizer) Current() Token {
	return tokenizer.current
}

func (tokenizer *Tokenizer) TokenType() TokenType {
	return tokenizer.current.tp
}

func (tokenizer *Tokenizer) mustBe(tp TokenType) {
	if tokenizer.current.tp != tp {
		panic(fmt.Sprintf("tokenizer: current token %q is a %s, not a %s", tokenizer.current.content,
			tokenizer.current.tp, tp))
	}
}

func (tokenizer *Tokenizer) KeyWord() KeyWord {
	tokenizer.mustBe(KeyWordTP)
	return keyWordMap[tokenizer.current.content]
}

func (tokenizer *Tokenizer) Symbol() byte {
	tokenizer.mustBe(SymbolTP)
	return tokenizer.current.content[0]
}

func (tokenizer *Tokenizer) Identifier() string {
	tokenizer.mustBe(IdentifierTP)
	return tokenizer.current.content
}

// IntVal returns the value of an integer constant. Digit runs too long for an int saturate, range
// checking against the vm word size is left to the parser.
func (tokenizer *Tokenizer) IntVal() int {
	tokenizer.mustBe(IntegerTP)
	v, err := strconv.Atoi(tokenizer.current.content)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return v
}

// StringVal returns a string constant without its quotes.
func (tokenizer *Tokenizer) StringVal() string {
	tokenizer.mustBe(StringTP)
	return tokenizer.current.content[1 : len(tokenizer.current.content)-1]
}
