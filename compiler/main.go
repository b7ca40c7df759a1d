package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/xiaobogaga/jackc/compiler/internal"
)

// A jack compiler: compiles a .jack file, or every .jack file of a directory, to .vm files beside them.

var (
	verbose    = flag.Bool("v", false, "whether print compile progress")
	dumpTokens = flag.Bool("tokens", false, "whether also write the tokens of each file to FooT.xml")
	parseTree  = flag.Bool("xml", false, "whether also write the parse tree of each file to Foo.xml")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-v] [-tokens] [-xml] <file.jack|directory>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return
	}
	internal.SetVerbose(*verbose)
	err := internal.Compile(flag.Arg(0), internal.Options{DumpTokens: *dumpTokens, ParseTree: *parseTree})
	if errors.Cause(err) == internal.ErrNoSourceFiles {
		internal.T().Warnf("compiler: %v", err)
		return
	}
	if err != nil {
		fmt.Printf("Error: %+v\n", err)
		os.Exit(1)
	}
}
