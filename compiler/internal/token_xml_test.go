package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTokensXML(t *testing.T) {
	source := `if (x < 10) { let s = "a & b"; } // done`
	buf := &bytes.Buffer{}
	require.NoError(t, WriteTokensXML(NewTokenizer(source), buf))
	expect := "<tokens>\n" +
		"<keyword> if </keyword>\n" +
		"<symbol> ( </symbol>\n" +
		"<identifier> x </identifier>\n" +
		"<symbol> &lt; </symbol>\n" +
		"<integerConstant> 10 </integerConstant>\n" +
		"<symbol> ) </symbol>\n" +
		"<symbol> { </symbol>\n" +
		"<keyword> let </keyword>\n" +
		"<identifier> s </identifier>\n" +
		"<symbol> = </symbol>\n" +
		"<stringConstant> a &amp; b </stringConstant>\n" +
		"<symbol> ; </symbol>\n" +
		"<symbol> } </symbol>\n" +
		"</tokens>\n"
	assert.Equal(t, expect, buf.String())
}

func TestWriteTokensXML_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteTokensXML(NewTokenizer("/* only a comment */"), buf))
	assert.Equal(t, "<tokens>\n</tokens>\n", buf.String())
}

func TestWriteTokensXML_Unknown(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteTokensXML(NewTokenizer("a @ b"), buf))
	assert.Contains(t, buf.String(), "<unknown> @ </unknown>\n")
}
