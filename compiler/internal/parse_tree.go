package internal

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// ParseTreeWriter streams the parse tree of a class as indented markup while the CompilationEngine
// recognizes it. Every nonterminal is an element around its children, every terminal is one line:
// <letStatement>
//   <keyword> let </keyword>
//   <identifier kind="var" number="0" definition="false" type="int"> x </identifier>
//   ...
// </letStatement>
// All methods of a nil *ParseTreeWriter do nothing.
type ParseTreeWriter struct {
	encoder *xml.Encoder
}

func NewParseTreeWriter(w io.Writer) *ParseTreeWriter {
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	return &ParseTreeWriter{encoder: encoder}
}

func (tw *ParseTreeWriter) Open(tag string) error {
	if tw == nil {
		return nil
	}
	return errors.WithStack(tw.encoder.EncodeToken(xml.StartElement{Name: xml.Name{Local: tag}}))
}

// Close ends the element opened last; tag must match it.
func (tw *ParseTreeWriter) Close(tag string) error {
	if tw == nil {
		return nil
	}
	return errors.WithStack(tw.encoder.EncodeToken(xml.EndElement{Name: xml.Name{Local: tag}}))
}

// Terminal writes one token, e.g. <symbol> &lt; </symbol>.
func (tw *ParseTreeWriter) Terminal(tp TokenType, text string, attrs ...xml.Attr) error {
	if tw == nil {
		return nil
	}
	start := xml.StartElement{Name: xml.Name{Local: tp.String()}, Attr: attrs}
	for _, token := range []xml.Token{start, xml.CharData(" " + text + " "), start.End()} {
		err := tw.encoder.EncodeToken(token)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// Name writes a class or subroutine name. category is "class" or "subroutine".
func (tw *ParseTreeWriter) Name(name, category string, definition bool) error {
	return tw.Terminal(IdentifierTP, name,
		attr("kind", category),
		attr("definition", strconv.FormatBool(definition)))
}

// Variable writes a variable name annotated with its symbol table entry.
func (tw *ParseTreeWriter) Variable(desc *SymbolDesc, definition bool) error {
	return tw.Terminal(IdentifierTP, desc.Name,
		attr("kind", desc.Kind.String()),
		attr("number", strconv.Itoa(desc.Index)),
		attr("definition", strconv.FormatBool(definition)),
		attr("type", desc.Type))
}

func (tw *ParseTreeWriter) Flush() error {
	if tw == nil {
		return nil
	}
	return errors.WithStack(tw.encoder.Flush())
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}
