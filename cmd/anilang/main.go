// Command anilang is the compiler/interpreter front end:
// compile a source file to a binary artifact, or interpret source or a
// compiled artifact directly. The interactive REPL is the separate
// `console` command.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"anilang/internal/artifact"
	"anilang/internal/bytecode"
	"anilang/internal/diag"
	"anilang/internal/dump"
	"anilang/internal/lexer"
	"anilang/internal/lower"
	"anilang/internal/parser"
	"anilang/internal/source"
	"anilang/internal/stdlib"
	"anilang/internal/value"
	"anilang/internal/vm"
)

const quickStart = `anilang quick start

  let x = 1 + 2 * 3;          declare and bind
  if x > 5 { print(x); }      branch
  while x > 0 { x = x - 1; }  loop
  let add = fn(a, b) { a + b };
  add(1, 2)

  [1, 2, 3][0]                list indexing
  ({ name: "a" }).name        object property access
  interface Point { Point(x, y) { this.x = x; this.y = y; } }

Run a file:       anilang --interpret path/to/file.ani
Compile a file:    anilang --compile path/to/file.ani [out.bin]
Run an artifact:   anilang path/to/file.bin
Start a REPL:      console
`

func main() {
	var (
		compileSrc   string
		interpretSrc string
		showSyntax   bool
		showAST      bool
		showBytecode bool
	)

	root := &cobra.Command{
		Use:           "anilang [file]",
		Short:         "compile and run anilang programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case showSyntax:
				fmt.Print(quickStart)
				return nil
			case compileSrc != "":
				out := ""
				if len(args) > 0 {
					out = args[0]
				}
				return runCompile(compileSrc, out)
			case interpretSrc != "":
				return runInterpret(interpretSrc, showAST, showBytecode)
			case len(args) == 1:
				return runArtifact(args[0])
			default:
				return cmd.Help()
			}
		},
	}

	root.Flags().StringVar(&compileSrc, "compile", "", "compile SRC to a binary artifact")
	root.Flags().StringVar(&interpretSrc, "interpret", "", "interpret SRC directly")
	root.Flags().BoolVar(&showSyntax, "syntax", false, "print a quick-start guide")
	root.Flags().BoolVar(&showAST, "show-ast", false, "print the parsed AST before running")
	root.Flags().BoolVar(&showBytecode, "show-bytecode", false, "print the lowered bytecode before running")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultArtifactPath(srcPath string) string {
	if i := strings.LastIndexByte(srcPath, '.'); i >= 0 {
		return srcPath[:i]
	}
	return srcPath + ".bin"
}

func runCompile(srcPath, outPath string) error {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}
	if outPath == "" {
		outPath = defaultArtifactPath(srcPath)
	}

	text := source.New(string(raw))
	rep := diag.NewReporter(text)
	toks := lexer.Lex(text, rep)
	block := parser.Parse(toks, text, rep)
	prog := lower.Lower(block, true, rep)
	if rep.Any() {
		return fmt.Errorf("compilation failed: %d error(s)", rep.ErrorCount())
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()
	if err := artifact.Save(f, prog, text); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}

	fmt.Printf("compiled %s -> %s\n", srcPath, outPath)
	return nil
}

func runInterpret(srcPath string, showAST, showBytecode bool) error {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}

	text := source.New(string(raw))
	rep := diag.NewReporter(text)
	toks := lexer.Lex(text, rep)
	block := parser.Parse(toks, text, rep)
	if showAST {
		dump.AST(os.Stdout, block)
	}
	if rep.Any() {
		return nil
	}

	prog := lower.Lower(block, true, rep)
	if showBytecode {
		dump.Bytecode(os.Stdout, prog)
	}
	if rep.Any() {
		return nil
	}

	installStdlib(prog)
	vm.New(rep).Run(prog)
	return nil
}

func runArtifact(binPath string) error {
	f, err := os.Open(binPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", binPath, err)
	}
	defer f.Close()

	art, err := artifact.Load(f)
	if err != nil {
		return fmt.Errorf("loading artifact: %w", err)
	}

	rep := diag.NewReporter(art.Text)
	installStdlib(art.Program)
	vm.New(rep).Run(art.Program)
	return nil
}

func installStdlib(prog bytecode.Program) {
	if len(prog) == 0 {
		return
	}
	if sc, ok := prog[0].Operand.(*value.Scope); ok {
		stdlib.Install(sc)
	}
}
