package internal

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	SourceExtension = ".jack"
	VMExtension     = ".vm"
	TokenSuffix     = "T.xml"
	TreeExtension   = ".xml"
)

type Options struct {
	// DumpTokens writes FooT.xml with the tokens of Foo.jack next to the vm output.
	DumpTokens bool
	// ParseTree writes Foo.xml with the annotated parse tree of Foo.jack, built in the same pass
	// as the vm output.
	ParseTree bool
}

// Compile compiles path, which is either a jack file or a directory holding jack files. Files in a
// directory are compiled one after another, a failing file doesn't stop the others.
func Compile(path string, opts Options) error {
	T().WithField("path", path).Debug("compiler: start")
	info, err := os.Stat(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if !info.IsDir() {
		if !IsJackFile(path) {
			return errors.Errorf("%s is not a %s file", path, SourceExtension)
		}
		return compileFile(path, opts)
	}
	files, err := FindSourceFiles(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Wrapf(ErrNoSourceFiles, "directory %s", path)
	}
	failed := 0
	for _, file := range files {
		err = compileFile(file, opts)
		if err != nil {
			T().WithField("file", file).Errorf("compiler: %v", err)
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files failed to compile", failed, len(files))
	}
	return nil
}

func compileFile(path string, opts Options) error {
	if opts.DumpTokens {
		err := DumpTokensFile(path)
		if err != nil {
			return err
		}
	}
	return CompileFile(path, opts.ParseTree)
}

func IsJackFile(fileName string) bool {
	return strings.HasSuffix(strings.ToLower(fileName), SourceExtension)
}

// FindSourceFiles lists the jack files directly inside dir, sub directories are not searched.
func FindSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsJackFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// replaceExtension swaps the source extension of path for ext, e.g. dir/Main.jack -> dir/Main.vm.
func replaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func OutputPath(sourcePath string) string {
	return replaceExtension(sourcePath, VMExtension)
}

// CompileFile compiles one jack file to its sibling vm file, and to its sibling parse tree file
// when parseTree is set. The outputs are flushed and closed on every path, so on error they hold
// everything written before the error.
func CompileFile(path string, parseTree bool) (err error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	outputPath := OutputPath(path)
	out, err := os.Create(outputPath)
	if err != nil {
		return errors.WithStack(err)
	}
	writer := NewVMWriter(out)
	defer closeOutput(out, writer.Flush, &err)
	var tree *ParseTreeWriter
	if parseTree {
		var treeOut *os.File
		treeOut, err = os.Create(replaceExtension(path, TreeExtension))
		if err != nil {
			return errors.WithStack(err)
		}
		tree = NewParseTreeWriter(treeOut)
		defer closeOutput(treeOut, tree.Flush, &err)
	}
	err = CompileSource(string(source), writer, tree)
	if err != nil {
		return errors.Wrapf(err, "compile %s", path)
	}
	T().WithField("file", outputPath).WithField("lines", writer.Lines()).Debug("compiler: save vm file")
	return nil
}

// closeOutput flushes and closes out, and reports the first failure through err unless err
// already holds one.
func closeOutput(out io.Closer, flush func() error, err *error) {
	flushErr := flush()
	closeErr := out.Close()
	if *err == nil && flushErr != nil {
		*err = flushErr
	}
	if *err == nil && closeErr != nil {
		*err = errors.WithStack(closeErr)
	}
}

// CompileSource compiles the single class in source, also writing its parse tree to tree unless
// tree is nil. Every call gets its own tokenizer, symbol table and label counters.
func CompileSource(source string, writer *VMWriter, tree *ParseTreeWriter) error {
	tokenizer := NewTokenizer(source)
	T().WithField("tokens", tokenizer.Len()).Debug("compiler: start compile class")
	engine := NewCompilationEngine(tokenizer, NewSymbolTable(), writer)
	engine.SetParseTreeWriter(tree)
	return engine.CompileClass()
}

// CompileTo is CompileSource writing to any io.Writer. The writer is flushed even on error.
func CompileTo(source string, w io.Writer) error {
	writer := NewVMWriter(w)
	err := CompileSource(source, writer, nil)
	flushErr := writer.Flush()
	if err != nil {
		return err
	}
	return flushErr
}
