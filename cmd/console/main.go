// Command console is the interactive REPL: read a line, lex,
// parse, lower, and evaluate it against one long-lived top-level scope,
// print the resulting value. Deliberately thin: no multi-line indent
// tracking and no linting.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

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

const historyFile = ".anilang_history"

func main() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyPath()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	top := value.NewScope(0, nil)
	stdlib.Install(top)
	showAST := false
	showBytecode := false

	fmt.Println("anilang REPL — .tree toggles AST, .bytecode toggles bytecode, .exit quits")

	lineNo := 1
	for {
		text, err := line.Prompt(">> ")
		if err != nil {
			break
		}
		line.AppendHistory(text)

		switch strings.TrimSpace(text) {
		case "":
			continue
		case ".exit", ".quit":
			saveHistory(line)
			return
		case ".tree":
			showAST = !showAST
			fmt.Printf("AST printing %s\n", onOff(showAST))
			continue
		case ".bytecode":
			showBytecode = !showBytecode
			fmt.Printf("bytecode printing %s\n", onOff(showBytecode))
			continue
		}

		result := evalLine(top, text, lineNo, showAST, showBytecode)
		if result != nil {
			fmt.Println(result.String())
		}
		lineNo++
	}
	saveHistory(line)
}

func evalLine(top *value.Scope, src string, lineNo int, showAST, showBytecode bool) *value.Value {
	text := source.NewWithOffset(src, lineNo)
	rep := diag.NewReporter(text)
	toks := lexer.Lex(text, rep)
	block := parser.Parse(toks, text, rep)
	if showAST {
		dump.AST(os.Stdout, block)
	}
	if rep.Any() {
		return nil
	}

	prog := lower.LowerWithScope(block, true, rep, top)
	if showBytecode {
		dump.Bytecode(os.Stdout, prog)
	}
	if rep.Any() {
		return nil
	}

	result := vm.New(rep).Run(prog)
	if rep.Any() {
		return nil
	}
	return &result
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

func saveHistory(line *liner.State) {
	f, err := os.Create(historyPath())
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
