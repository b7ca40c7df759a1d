package internal

import (
	"bufio"
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
)

// WriteTokensXML writes every token of tokenizer as markup, one element per line:
// <tokens>
// <keyword> class </keyword>
// ...
// </tokens>
// The tokenizer is consumed.
func WriteTokensXML(tokenizer *Tokenizer, w io.Writer) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString("<tokens>\n")
	for tokenizer.HasMoreTokens() {
		err := tokenizer.Advance()
		if err != nil {
			return err
		}
		tag := tokenizer.TokenType().String()
		_, _ = bw.WriteString("<" + tag + "> ")
		err = xml.EscapeText(bw, []byte(tokenText(tokenizer)))
		if err != nil {
			return errors.WithStack(err)
		}
		_, _ = bw.WriteString(" </" + tag + ">\n")
	}
	_, _ = bw.WriteString("</tokens>\n")
	return errors.WithStack(bw.Flush())
}

// tokenText is the markup text of the current token, string constants lose their quotes.
func tokenText(tokenizer *Tokenizer) string {
	if tokenizer.TokenType() == StringTP {
		return tokenizer.StringVal()
	}
	return tokenizer.Current().Content()
}

// DumpTokensFile writes the tokens of a jack file to FooT.xml beside it.
func DumpTokensFile(path string) (err error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	out, err := os.Create(replaceExtension(path, TokenSuffix))
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		closeErr := out.Close()
		if err == nil && closeErr != nil {
			err = errors.WithStack(closeErr)
		}
	}()
	return WriteTokensXML(NewTokenizer(string(source)), out)
}
