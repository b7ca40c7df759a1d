package internal

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainSource = `
// Entry point.
class Main {
	function void main() {
		do Output.printInt(1 + 2);
		return;
	}
}`

const otherSource = `
class Other {
	field int v;
	method int get() { return v; }
}`

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func discardLogs(t *testing.T) {
	SetLogOutput(io.Discard)
	t.Cleanup(func() { SetLogOutput(os.Stderr) })
}

func TestOutputPath(t *testing.T) {
	testData := []struct {
		Source string
		Expect string
	}{
		{Source: "Main.jack", Expect: "Main.vm"},
		{Source: "dir/Main.jack", Expect: "dir/Main.vm"},
		{Source: "dir.v1/Main.JACK", Expect: "dir.v1/Main.vm"},
	}
	for _, data := range testData {
		assert.Equal(t, data.Expect, OutputPath(data.Source))
	}
	assert.Equal(t, "dir/MainT.xml", replaceExtension("dir/Main.jack", TokenSuffix))
}

func TestIsJackFile(t *testing.T) {
	assert.True(t, IsJackFile("Main.jack"))
	assert.True(t, IsJackFile("Main.JACK"))
	assert.False(t, IsJackFile("Main.vm"))
	assert.False(t, IsJackFile("jack"))
}

func TestCompile_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	writeFile(t, path, mainSource)
	require.NoError(t, Compile(path, Options{}))
	expect := "function Main.main 0\n" +
		"push constant 1\n" +
		"push constant 2\n" +
		"add\n" +
		"call Output.printInt 1\n" +
		"pop temp 0\n" +
		"push constant 0\n" +
		"return\n"
	assert.Equal(t, expect, readFile(t, filepath.Join(dir, "Main.vm")))
	assert.NoFileExists(t, filepath.Join(dir, "MainT.xml"))
}

func TestCompile_NotJackFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.txt")
	writeFile(t, path, mainSource)
	assert.Error(t, Compile(path, Options{}))
	assert.NoFileExists(t, filepath.Join(dir, "Main.vm"))
}

func TestCompile_MissingPath(t *testing.T) {
	assert.Error(t, Compile(filepath.Join(t.TempDir(), "Nope.jack"), Options{}))
}

func TestCompile_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)
	writeFile(t, filepath.Join(dir, "Other.jack"), otherSource)
	writeFile(t, filepath.Join(dir, "notes.txt"), "class Notes {}")
	writeFile(t, filepath.Join(dir, "sub", "Sub.jack"), "class Sub {}")

	files, err := FindSourceFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "Main.jack"), filepath.Join(dir, "Other.jack")}, files)

	require.NoError(t, Compile(dir, Options{}))
	assert.FileExists(t, filepath.Join(dir, "Main.vm"))
	assert.Equal(t, "function Other.get 0\npush argument 0\npop pointer 0\npush this 0\nreturn\n",
		readFile(t, filepath.Join(dir, "Other.vm")))
	assert.NoFileExists(t, filepath.Join(dir, "notes.vm"))
	assert.NoFileExists(t, filepath.Join(dir, "sub", "Sub.vm"))
}

func TestCompile_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "nothing to see")
	err := Compile(dir, Options{})
	require.Error(t, err)
	assert.Equal(t, ErrNoSourceFiles, errors.Cause(err))
}

func TestCompile_FailingFileKeepsGoing(t *testing.T) {
	discardLogs(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Bad.jack"), "class Bad { function void f() { let y = 1; return; } }")
	writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)

	err := Compile(dir, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	// Output written before the error is kept.
	assert.Equal(t, "function Bad.f 0\n", readFile(t, filepath.Join(dir, "Bad.vm")))
	assert.FileExists(t, filepath.Join(dir, "Main.vm"))
}

func TestCompileFile_Error(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Bad.jack")
	writeFile(t, path, "class Bad { function int f() { return 99999; } }")
	err := CompileFile(path, false)
	require.Error(t, err)
	compileErr, ok := AsCompileError(err)
	require.True(t, ok)
	assert.Equal(t, UnexpectedTokenError, compileErr.Kind)
	assert.Equal(t, "99999", compileErr.Near)
	assert.Contains(t, err.Error(), "compile "+path)
	assert.Equal(t, "function Bad.f 0\n", readFile(t, filepath.Join(dir, "Bad.vm")))
}

func TestCompile_DumpTokens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	writeFile(t, path, mainSource)
	require.NoError(t, Compile(path, Options{DumpTokens: true}))
	tokens := readFile(t, filepath.Join(dir, "MainT.xml"))
	assert.Contains(t, tokens, "<keyword> class </keyword>\n")
	assert.Contains(t, tokens, "<identifier> Main </identifier>\n")
	assert.FileExists(t, filepath.Join(dir, "Main.vm"))
}

func TestCompile_ParseTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	writeFile(t, path, mainSource)
	require.NoError(t, Compile(path, Options{ParseTree: true}))
	tree := readFile(t, filepath.Join(dir, "Main.xml"))
	assert.True(t, strings.HasPrefix(tree, "<class>\n  <keyword> class </keyword>\n"))
	assert.Contains(t, tree, `<identifier kind="class" definition="true"> Main </identifier>`)
	assert.Contains(t, tree, "<doStatement>")
	assert.True(t, strings.HasSuffix(tree, "</class>"))
	assert.FileExists(t, filepath.Join(dir, "Main.vm"))
	assert.NoFileExists(t, filepath.Join(dir, "MainT.xml"))
}

func TestCompile_NoParseTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	writeFile(t, path, mainSource)
	require.NoError(t, Compile(path, Options{}))
	assert.NoFileExists(t, filepath.Join(dir, "Main.xml"))
}
