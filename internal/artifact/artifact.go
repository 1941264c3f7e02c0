// Package artifact implements the binary layout of a compiled anilang
// program: a source header so diagnostics raised while running a
// precompiled artifact still render against the original text, a
// scope/identifier table, and the instruction vector itself. Little-endian
// throughout, via encoding/binary.
package artifact

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"anilang/internal/bytecode"
	"anilang/internal/source"
	"anilang/internal/value"
)

var (
	magicSourceStart = [4]byte{'s', 'r', 'c', 's'}
	magicSourceEnd   = [4]byte{'s', 'r', 'c', 'e'}
)

// Value tags, one byte each, in the order of the Value variants.
const (
	tagNull byte = iota
	tagBool
	tagInt
	tagFloat
	tagRange
	tagString
	tagList
	tagObject
	tagFunction
)

// Artifact is a compiled program plus the source text it was compiled from.
type Artifact struct {
	Program bytecode.Program
	Text    *source.Text
}

// Save writes prog, compiled from text, to w.
func Save(w io.Writer, prog bytecode.Program, text *source.Text) error {
	bw := bufio.NewWriter(w)
	enc := &encoder{w: bw}

	if err := enc.writeSource(text); err != nil {
		return err
	}

	scopes, idents := collect(prog)
	if err := enc.writeScopeTable(scopes); err != nil {
		return err
	}
	if err := enc.writeIdentTable(idents); err != nil {
		return err
	}

	idx := indexOf(idents)
	if err := enc.writeProgram(prog, idx); err != nil {
		return err
	}
	return bw.Flush()
}

// Load reads an artifact previously written by Save.
func Load(r io.Reader) (*Artifact, error) {
	dec := &decoder{r: bufio.NewReader(r)}

	text, err := dec.readSource()
	if err != nil {
		return nil, fmt.Errorf("artifact: reading source header: %w", err)
	}
	scopeByID, err := dec.readScopeTable()
	if err != nil {
		return nil, fmt.Errorf("artifact: reading scope table: %w", err)
	}
	idents, err := dec.readIdentTable()
	if err != nil {
		return nil, fmt.Errorf("artifact: reading identifier table: %w", err)
	}
	prog, err := dec.readProgram(scopeByID, idents)
	if err != nil {
		return nil, fmt.Errorf("artifact: reading instructions: %w", err)
	}
	return &Artifact{Program: prog, Text: text}, nil
}

// ---- collection pass: every distinct scope and identifier reachable from
// prog, including nested function-literal bodies, gathered once so the
// scope/ident tables are written a single time up front.

func collect(prog bytecode.Program) ([]*value.Scope, []string) {
	c := &collector{scopes: map[value.ScopeID]*value.Scope{}, idents: map[string]struct{}{}}
	c.walk(prog)
	return c.orderedScopes(), c.orderedIdents()
}

type collector struct {
	scopes     map[value.ScopeID]*value.Scope
	scopeOrder []value.ScopeID
	idents     map[string]struct{}
	identOrder []string
}

func (c *collector) addIdent(s string) {
	if _, ok := c.idents[s]; !ok {
		c.idents[s] = struct{}{}
		c.identOrder = append(c.identOrder, s)
	}
}

func (c *collector) walk(prog bytecode.Program) {
	for _, instr := range prog {
		switch instr.Op {
		case bytecode.PushVar:
			sc := instr.Operand.(*value.Scope)
			if _, ok := c.scopes[sc.ID()]; !ok {
				c.scopes[sc.ID()] = sc
				c.scopeOrder = append(c.scopeOrder, sc.ID())
			}
		case bytecode.Load:
			c.addIdent(instr.Operand.(string))
		case bytecode.Store:
			c.addIdent(instr.Operand.(bytecode.StoreOperand).Ident)
		case bytecode.Push:
			c.walkValue(instr.Operand.(value.Value))
		}
	}
}

func (c *collector) walkValue(v value.Value) {
	switch v.Kind() {
	case value.KindList:
		for _, e := range v.AsList() {
			c.walkValue(e)
		}
	case value.KindObject:
		for _, e := range v.AsObject() {
			c.walkValue(e)
		}
	case value.KindFunction:
		fn := v.AsFunc()
		if fn.IsNative() {
			return
		}
		for _, p := range fn.Params() {
			c.addIdent(p)
		}
		c.walk(fn.Body())
	}
}

func (c *collector) orderedScopes() []*value.Scope {
	out := make([]*value.Scope, len(c.scopeOrder))
	for i, id := range c.scopeOrder {
		out[i] = c.scopes[id]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (c *collector) orderedIdents() []string {
	out := make([]string, len(c.identOrder))
	copy(out, c.identOrder)
	sort.Strings(out)
	return out
}

func indexOf(idents []string) map[string]uint32 {
	m := make(map[string]uint32, len(idents))
	for i, s := range idents {
		m[s] = uint32(i)
	}
	return m
}
