package artifact

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"anilang/internal/bytecode"
	"anilang/internal/source"
	"anilang/internal/value"
)

// encoder writes the little-endian primitives every section is built from.
type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) u8(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *encoder) u32(n uint32) {
	if e.err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	_, e.err = e.w.Write(buf[:])
}

func (e *encoder) i32(n int32) { e.u32(uint32(n)) }

func (e *encoder) i64(n int64) {
	if e.err != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	_, e.err = e.w.Write(buf[:])
}

func (e *encoder) f64(f float64) { e.i64(int64(math.Float64bits(f))) }

func (e *encoder) bytes(b []byte) {
	e.u32(uint32(len(b)))
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) str(s string) { e.bytes([]byte(s)) }

func (e *encoder) bool(b bool) {
	if b {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

// writeSource emits the source header: a magic bookend, the lexer's starting
// line offset, and the raw source bytes. The line-range index itself is not
// stored — source.NewWithOffset rebuilds it deterministically from the bytes
// and offset on load, so storing it again would just be redundant data that
// could drift out of sync with the bytes next to it.
func (e *encoder) writeSource(text *source.Text) error {
	if e.err != nil {
		return e.err
	}
	if _, err := e.w.Write(magicSourceStart[:]); err != nil {
		return err
	}
	e.i32(int32(text.LineOffset()))
	e.str(text.Source())
	if e.err != nil {
		return e.err
	}
	_, err := e.w.Write(magicSourceEnd[:])
	return err
}

// writeScopeTable emits every distinct scope id with its parent id, in
// ascending id order, so the decoder can reconstruct the whole scope forest
// by a single left-to-right pass (every parent id is written before any
// scope that references it, since ids are assigned in allocation order).
func (e *encoder) writeScopeTable(scopes []*value.Scope) error {
	e.u32(uint32(len(scopes)))
	for _, sc := range scopes {
		e.i32(int32(sc.ID()))
		if pid, ok := sc.ParentID(); ok {
			e.bool(true)
			e.i32(int32(pid))
		} else {
			e.bool(false)
		}
	}
	return e.err
}

func (e *encoder) writeIdentTable(idents []string) error {
	e.u32(uint32(len(idents)))
	for _, s := range idents {
		e.str(s)
	}
	return e.err
}

func (e *encoder) writeProgram(prog bytecode.Program, idx map[string]uint32) error {
	e.u32(uint32(len(prog)))
	for _, instr := range prog {
		if e.err != nil {
			return e.err
		}
		e.u8(byte(instr.Op))
		e.u32(uint32(instr.Span.Start))
		e.u32(uint32(instr.Span.Len))
		e.writeOperand(instr, idx)
	}
	return e.err
}

func (e *encoder) writeOperand(instr bytecode.Instr, idx map[string]uint32) {
	switch instr.Op {
	case bytecode.Push:
		e.writeValue(instr.Operand.(value.Value), idx)
	case bytecode.PushVar:
		e.i32(int32(instr.Operand.(*value.Scope).ID()))
	case bytecode.Load:
		e.u32(idx[instr.Operand.(string)])
	case bytecode.Store:
		op := instr.Operand.(bytecode.StoreOperand)
		e.u32(idx[op.Ident])
		e.bool(op.Declaration)
	case bytecode.MakeList, bytecode.MakeObject, bytecode.CallFunction:
		e.i32(int32(instr.Operand.(int)))
	case bytecode.JumpTo, bytecode.PopJumpIfTrue:
		e.i32(int32(instr.Operand.(bytecode.LabelNumber)))
	case bytecode.Label:
		e.i32(int32(instr.Operand.(bytecode.LabelNumber)))
	}
}

func (e *encoder) writeValue(v value.Value, idx map[string]uint32) {
	switch v.Kind() {
	case value.KindNull:
		e.u8(tagNull)
	case value.KindBool:
		e.u8(tagBool)
		e.bool(v.AsBool())
	case value.KindInt:
		e.u8(tagInt)
		e.i64(v.AsInt())
	case value.KindFloat:
		e.u8(tagFloat)
		e.f64(v.AsFloat())
	case value.KindRange:
		e.u8(tagRange)
		start, end := v.AsRange()
		e.i64(start)
		e.i64(end)
	case value.KindString:
		e.u8(tagString)
		e.str(v.AsString())
	case value.KindList:
		e.u8(tagList)
		elems := v.AsList()
		e.u32(uint32(len(elems)))
		for _, el := range elems {
			e.writeValue(el, idx)
		}
	case value.KindObject:
		e.u8(tagObject)
		fields := v.AsObject()
		e.u32(uint32(len(fields)))
		for k, val := range fields {
			e.str(k)
			e.writeValue(val, idx)
		}
	case value.KindFunction:
		e.u8(tagFunction)
		fn := v.AsFunc()
		if fn.IsNative() {
			if e.err == nil {
				e.err = fmt.Errorf("artifact: cannot serialize a native function value")
			}
			return
		}
		e.u32(uint32(len(fn.Params())))
		for _, p := range fn.Params() {
			e.u32(idx[p])
		}
		e.writeProgram(fn.Body(), idx)
	}
}

// decoder mirrors encoder, reading the same little-endian primitives back.
type decoder struct {
	r   *bufio.Reader
	err error
}

func (d *decoder) u8() byte {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	if err != nil {
		d.err = err
	}
	return b
}

func (d *decoder) u32() uint32 {
	if d.err != nil {
		return 0
	}
	var buf [4]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		d.err = err
		return 0
	}
	return binary.LittleEndian.Uint32(buf[:])
}

func (d *decoder) i32() int32 { return int32(d.u32()) }

func (d *decoder) i64() int64 {
	if d.err != nil {
		return 0
	}
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		d.err = err
		return 0
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

func (d *decoder) f64() float64 { return math.Float64frombits(uint64(d.i64())) }

func (d *decoder) bytes() []byte {
	n := d.u32()
	if d.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.err = err
		return nil
	}
	return buf
}

func (d *decoder) str() string { return string(d.bytes()) }

func (d *decoder) bool() bool { return d.u8() != 0 }

func (d *decoder) readSource() (*source.Text, error) {
	var magic [4]byte
	if _, err := io.ReadFull(d.r, magic[:]); err != nil {
		return nil, err
	}
	if magic != magicSourceStart {
		return nil, fmt.Errorf("artifact: bad source header magic")
	}
	lineOffset := int(d.i32())
	src := d.str()
	if d.err != nil {
		return nil, d.err
	}
	if _, err := io.ReadFull(d.r, magic[:]); err != nil {
		return nil, err
	}
	if magic != magicSourceEnd {
		return nil, fmt.Errorf("artifact: bad source footer magic")
	}
	return source.NewWithOffset(src, lineOffset), nil
}

func (d *decoder) readScopeTable() (map[int32]*value.Scope, error) {
	n := d.u32()
	byID := make(map[int32]*value.Scope, n)
	// Written in ascending id order with every parent preceding its
	// children, so a single pass can always resolve the parent pointer.
	for i := uint32(0); i < n && d.err == nil; i++ {
		id := d.i32()
		hasParent := d.bool()
		var parent *value.Scope
		if hasParent {
			pid := d.i32()
			parent = byID[pid]
		}
		byID[id] = value.NewScope(value.ScopeID(id), parent)
	}
	return byID, d.err
}

func (d *decoder) readIdentTable() ([]string, error) {
	n := d.u32()
	out := make([]string, n)
	for i := range out {
		out[i] = d.str()
	}
	return out, d.err
}

func (d *decoder) readProgram(scopes map[int32]*value.Scope, idents []string) (bytecode.Program, error) {
	n := d.u32()
	prog := make(bytecode.Program, n)
	for i := range prog {
		if d.err != nil {
			break
		}
		op := bytecode.Op(d.u8())
		start := int(d.u32())
		length := int(d.u32())
		span := source.NewSpan(start, start+length)
		operand, err := d.readOperand(op, scopes, idents)
		if err != nil {
			return nil, err
		}
		prog[i] = bytecode.Instr{Op: op, Span: span, Operand: operand}
	}
	return prog, d.err
}

func (d *decoder) readOperand(op bytecode.Op, scopes map[int32]*value.Scope, idents []string) (any, error) {
	switch op {
	case bytecode.Push:
		v, err := d.readValue(scopes, idents)
		if err != nil {
			return nil, err
		}
		// Decoded constants are bytecode-embedded just like freshly folded
		// ones, so they need the same pinning against the collector.
		v.Pin()
		return v, d.err
	case bytecode.PushVar:
		id := d.i32()
		sc, ok := scopes[id]
		if !ok {
			return nil, fmt.Errorf("artifact: unknown scope id %d", id)
		}
		return sc, d.err
	case bytecode.Load:
		return idents[d.u32()], d.err
	case bytecode.Store:
		ident := idents[d.u32()]
		decl := d.bool()
		return bytecode.StoreOperand{Ident: ident, Declaration: decl}, d.err
	case bytecode.MakeList, bytecode.MakeObject, bytecode.CallFunction:
		return int(d.i32()), d.err
	case bytecode.JumpTo, bytecode.PopJumpIfTrue, bytecode.Label:
		return bytecode.LabelNumber(d.i32()), d.err
	default:
		return nil, d.err
	}
}

func (d *decoder) readValue(scopes map[int32]*value.Scope, idents []string) (value.Value, error) {
	tag := d.u8()
	switch tag {
	case tagNull:
		return value.Null(), d.err
	case tagBool:
		return value.Bool(d.bool()), d.err
	case tagInt:
		return value.Int(d.i64()), d.err
	case tagFloat:
		return value.Float(d.f64()), d.err
	case tagRange:
		start := d.i64()
		end := d.i64()
		return value.Range(start, end), d.err
	case tagString:
		return value.Str(d.str()), d.err
	case tagList:
		n := d.u32()
		elems := make([]value.Value, n)
		for i := range elems {
			v, err := d.readValue(scopes, idents)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.List(elems), d.err
	case tagObject:
		n := d.u32()
		fields := make(map[string]value.Value, n)
		for i := uint32(0); i < n; i++ {
			key := d.str()
			v, err := d.readValue(scopes, idents)
			if err != nil {
				return value.Value{}, err
			}
			fields[key] = v
		}
		return value.Object(fields), d.err
	case tagFunction:
		numParams := d.u32()
		params := make([]string, numParams)
		for i := range params {
			params[i] = idents[d.u32()]
		}
		body, err := d.readProgram(scopes, idents)
		if err != nil {
			return value.Value{}, err
		}
		return value.FuncValue(value.NewUserFunction(params, body)), d.err
	default:
		return value.Value{}, fmt.Errorf("artifact: unknown value tag %d", tag)
	}
}
