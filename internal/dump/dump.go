// Package dump renders an AST or bytecode vector as indented text, shared by
// the `--show-ast`/`--show-bytecode` CLI flags and the REPL's `.tree`/
// `.bytecode` toggles so both front ends print the same shape.
package dump

import (
	"fmt"
	"io"
	"strings"

	"anilang/internal/ast"
	"anilang/internal/bytecode"
)

// AST writes a one-node-per-line indented dump of n to w.
func AST(w io.Writer, n ast.Node) {
	printNode(w, n, 0)
}

func printNode(w io.Writer, n ast.Node, depth int) {
	pad := strings.Repeat("  ", depth)
	switch node := n.(type) {
	case *ast.Block:
		fmt.Fprintf(w, "%sBlock\n", pad)
		for _, s := range node.Statements {
			printNode(w, s, depth+1)
		}
	case *ast.If:
		fmt.Fprintf(w, "%sIf\n", pad)
		printNode(w, node.Cond, depth+1)
		printNode(w, node.Then, depth+1)
		if node.Else != nil {
			printNode(w, node.Else, depth+1)
		}
	case *ast.Loop:
		fmt.Fprintf(w, "%sLoop\n", pad)
		for _, s := range node.Statements {
			printNode(w, s, depth+1)
		}
	case *ast.Binary:
		fmt.Fprintf(w, "%sBinary %s\n", pad, node.Op)
		printNode(w, node.Left, depth+1)
		printNode(w, node.Right, depth+1)
	case *ast.Unary:
		fmt.Fprintf(w, "%sUnary %s\n", pad, node.Op)
		printNode(w, node.Child, depth+1)
	case *ast.Index:
		fmt.Fprintf(w, "%sIndex\n", pad)
		printNode(w, node.Child, depth+1)
		printNode(w, node.Index, depth+1)
	case *ast.Declaration:
		fmt.Fprintf(w, "%sDeclaration %s\n", pad, node.Ident)
		printNode(w, node.Value, depth+1)
	case *ast.Assignment:
		fmt.Fprintf(w, "%sAssignment %s\n", pad, node.Ident)
		for _, idx := range node.Indices {
			printNode(w, idx, depth+1)
		}
		printNode(w, node.Value, depth+1)
	case *ast.FnDeclaration:
		fmt.Fprintf(w, "%sFnDeclaration %s(%s)\n", pad, node.Ident, strings.Join(node.Params, ", "))
		printNode(w, node.Body, depth+1)
	case *ast.FnCall:
		fmt.Fprintf(w, "%sFnCall\n", pad)
		printNode(w, node.Callee, depth+1)
		for _, a := range node.Args {
			printNode(w, a, depth+1)
		}
	case *ast.Return:
		fmt.Fprintf(w, "%sReturn\n", pad)
		if node.Value != nil {
			printNode(w, node.Value, depth+1)
		}
	case *ast.List:
		fmt.Fprintf(w, "%sList\n", pad)
		for _, e := range node.Elements {
			printNode(w, e, depth+1)
		}
	case *ast.Object:
		fmt.Fprintf(w, "%sObject\n", pad)
		for _, p := range node.Pairs {
			printNode(w, p.Key, depth+1)
			printNode(w, p.Value, depth+1)
		}
	case *ast.Interface:
		fmt.Fprintf(w, "%sInterface %s\n", pad, node.Name)
		for _, m := range node.Members {
			fmt.Fprintf(w, "%s  %s\n", pad, m.Name)
			printNode(w, m.Value, depth+2)
		}
	case *ast.Variable:
		fmt.Fprintf(w, "%sVariable %s\n", pad, node.Ident)
	case *ast.Literal:
		fmt.Fprintf(w, "%sLiteral %s\n", pad, node.Value.String())
	case *ast.Break:
		fmt.Fprintf(w, "%sBreak\n", pad)
	case *ast.Bad:
		fmt.Fprintf(w, "%sBad\n", pad)
	default:
		fmt.Fprintf(w, "%s%T\n", pad, node)
	}
}

// Bytecode writes one instruction per line: index, opcode, operand.
func Bytecode(w io.Writer, prog bytecode.Program) {
	for i, instr := range prog {
		fmt.Fprintf(w, "%4d  %-14s %v\n", i, instr.Op, instr.Operand)
	}
}
