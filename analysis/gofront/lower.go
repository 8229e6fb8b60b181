// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gofront

import (
	"fmt"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"

	"github.com/awslabs/taintflow/analysis/ir"
)

// Lower translates one SSA function body into an IL control-flow graph.
// Functions without a body (external declarations) cannot be lowered.
func Lower(fn *ssa.Function, fset *token.FileSet) (*ir.CFG, error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("cannot lower %s: no function body", fn)
	}
	l := &lowerer{
		fn:    fn,
		fset:  fset,
		vars:  map[ssa.Value]ir.Var{},
		heads: map[*ssa.BasicBlock]ir.NodeID{},
		tails: map[*ssa.BasicBlock]ir.NodeID{},
	}
	g := l.lower()
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("lowering %s produced a malformed graph: %w", fn, err)
	}
	return g, nil
}

type lowerer struct {
	fn    *ssa.Function
	fset  *token.FileSet
	vars  map[ssa.Value]ir.Var
	next  ir.VarID
	nodes []*ir.Node
	heads map[*ssa.BasicBlock]ir.NodeID
	tails map[*ssa.BasicBlock]ir.NodeID
	rets  []ir.NodeID
}

func (l *lowerer) lower() *ir.CFG {
	params := make([]ir.Var, len(l.fn.Params))
	for i, p := range l.fn.Params {
		params[i] = l.varFor(p)
	}

	entry := l.emit(ir.KindEntry, ir.LVal{}, nil, l.fn.Pos())

	for _, b := range l.fn.Blocks {
		l.lowerBlock(b)
	}

	l.link(entry, l.heads[l.fn.Blocks[0]])
	for _, b := range l.fn.Blocks {
		tail := l.tails[b]
		for _, s := range b.Succs {
			l.link(tail, l.heads[s])
		}
	}

	exit := l.emit(ir.KindExit, ir.LVal{}, nil, token.NoPos)
	for _, r := range l.rets {
		l.link(r, exit)
	}
	for _, b := range l.fn.Blocks {
		if len(b.Succs) == 0 && len(l.nodes[l.tails[b]].Succs) == 0 {
			l.link(l.tails[b], exit)
		}
	}

	return &ir.CFG{
		Name:   FuncRefOf(l.fn),
		Params: params,
		Entry:  entry,
		Nodes:  l.nodes,
	}
}

// lowerBlock emits the nodes of one basic block and records its head and
// tail. Blocks whose instructions all lower to nothing get a placeholder.
func (l *lowerer) lowerBlock(b *ssa.BasicBlock) {
	first := ir.NodeID(len(l.nodes))
	prev := ir.NodeID(-1)
	for _, instr := range b.Instrs {
		id, ok := l.lowerInstr(instr)
		if !ok {
			continue
		}
		if prev >= 0 {
			l.link(prev, id)
		}
		prev = id
	}
	if prev < 0 {
		first = l.emit(ir.KindNop, ir.LVal{}, nil, token.NoPos)
		prev = first
	}
	l.heads[b] = first
	l.tails[b] = prev
}

// lowerInstr emits at most one node per instruction and reports whether one
// was emitted.
func (l *lowerer) lowerInstr(instr ssa.Instruction) (ir.NodeID, bool) {
	switch instr := instr.(type) {
	case *ssa.Phi:
		args := make([]*ir.Expr, len(instr.Edges))
		for i, e := range instr.Edges {
			args[i] = l.valueExpr(e)
		}
		return l.assign(lvalOf(l.varFor(instr)), ir.NewPhi(args, l.pos(instr.Pos()))), true

	case *ssa.Call:
		return l.assign(lvalOf(l.varFor(instr)), l.callExpr(instr.Common(), instr.Pos())), true

	case *ssa.Go:
		return l.emit(ir.KindExprStmt, ir.LVal{}, l.callExpr(instr.Common(), instr.Pos()), instr.Pos()), true

	case *ssa.Defer:
		return l.emit(ir.KindExprStmt, ir.LVal{}, l.callExpr(instr.Common(), instr.Pos()), instr.Pos()), true

	case *ssa.BinOp:
		e := ir.NewBinop(instr.Op.String(), l.valueExpr(instr.X), l.valueExpr(instr.Y),
			typeOf(instr.Type()), l.pos(instr.Pos()))
		return l.assign(lvalOf(l.varFor(instr)), e), true

	case *ssa.UnOp:
		e := ir.NewUnop(instr.Op.String(), l.valueExpr(instr.X), typeOf(instr.Type()), l.pos(instr.Pos()))
		return l.assign(lvalOf(l.varFor(instr)), e), true

	case *ssa.FieldAddr:
		e := ir.NewFieldRead(l.varFor(instr.X), fieldPath(instr.X.Type(), instr.Field), l.pos(instr.Pos()))
		return l.assign(lvalOf(l.varFor(instr)), e), true

	case *ssa.Field:
		e := ir.NewFieldRead(l.varFor(instr.X), fieldPath(instr.X.Type(), instr.Field), l.pos(instr.Pos()))
		return l.assign(lvalOf(l.varFor(instr)), e), true

	case *ssa.Store:
		return l.assign(l.storeTarget(instr.Addr), l.valueExpr(instr.Val)), true

	case *ssa.MapUpdate:
		// Weak update: the map keeps the taint of its previous contents.
		m := l.varFor(instr.Map)
		merge := ir.NewPhi([]*ir.Expr{
			ir.NewVarRead(m, l.pos(instr.Pos())),
			l.valueExpr(instr.Value),
		}, l.pos(instr.Pos()))
		return l.assign(lvalOf(m), merge), true

	case *ssa.If:
		return l.emit(ir.KindBranch, ir.LVal{}, l.valueExpr(instr.Cond), instr.Pos()), true

	case *ssa.Return:
		var e *ir.Expr
		switch len(instr.Results) {
		case 0:
		case 1:
			e = l.valueExpr(instr.Results[0])
		default:
			args := make([]*ir.Expr, len(instr.Results))
			for i, r := range instr.Results {
				args[i] = l.valueExpr(r)
			}
			e = ir.NewPhi(args, l.pos(instr.Pos()))
		}
		id := l.emit(ir.KindReturn, ir.LVal{}, e, instr.Pos())
		l.rets = append(l.rets, id)
		return id, true

	case *ssa.Panic:
		return l.emit(ir.KindExprStmt, ir.LVal{}, l.valueExpr(instr.X), instr.Pos()), true

	case *ssa.Jump, *ssa.RunDefers, *ssa.DebugRef, *ssa.Alloc:
		// Jumps are encoded as block edges; allocations introduce fresh
		// untainted storage.
		return 0, false

	case *ssa.Send:
		return l.emit(ir.KindExprStmt, ir.LVal{}, l.valueExpr(instr.X), instr.Pos()), true

	default:
		// Any other value-producing instruction degrades to a merge of its
		// operands, which over-approximates its taint flow.
		if v, ok := instr.(ssa.Value); ok {
			rands := instr.Operands(nil)
			var args []*ir.Expr
			for _, r := range rands {
				if r != nil && *r != nil {
					args = append(args, l.valueExpr(*r))
				}
			}
			if len(args) == 0 {
				return 0, false
			}
			return l.assign(lvalOf(l.varFor(v)), ir.NewPhi(args, l.pos(v.Pos()))), true
		}
		return 0, false
	}
}

// storeTarget maps a store address to an assignable IL location: stores
// through field addresses update the qualified lvalue, anything else updates
// the address register itself.
func (l *lowerer) storeTarget(addr ssa.Value) ir.LVal {
	if fa, ok := addr.(*ssa.FieldAddr); ok {
		return ir.LVal{Base: l.varFor(fa.X), Path: fieldPath(fa.X.Type(), fa.Field)}
	}
	return lvalOf(l.varFor(addr))
}

func (l *lowerer) callExpr(common *ssa.CallCommon, pos token.Pos) *ir.Expr {
	args := make([]*ir.Expr, 0, len(common.Args)+1)
	if common.IsInvoke() {
		args = append(args, l.valueExpr(common.Value))
	}
	for _, a := range common.Args {
		args = append(args, l.valueExpr(a))
	}
	return ir.NewCall(calleeRef(common), args, l.pos(pos))
}

func (l *lowerer) valueExpr(v ssa.Value) *ir.Expr {
	switch v := v.(type) {
	case *ssa.Const:
		return ir.NewLit(v.String(), typeOf(v.Type()), l.pos(v.Pos()))
	case *ssa.Function, *ssa.Builtin:
		return ir.NewLit(v.String(), ir.Object, l.pos(v.Pos()))
	default:
		return ir.NewVarRead(l.varFor(v), l.pos(v.Pos()))
	}
}

func (l *lowerer) varFor(v ssa.Value) ir.Var {
	if existing, ok := l.vars[v]; ok {
		return existing
	}
	nv := ir.Var{Name: v.Name(), ID: l.next}
	l.next++
	l.vars[v] = nv
	return nv
}

func (l *lowerer) assign(lhs ir.LVal, rhs *ir.Expr) ir.NodeID {
	return l.emit(ir.KindAssign, lhs, rhs, token.NoPos)
}

func (l *lowerer) emit(kind ir.NodeKind, lhs ir.LVal, rhs *ir.Expr, pos token.Pos) ir.NodeID {
	id := ir.NodeID(len(l.nodes))
	p := l.pos(pos)
	if !p.IsValid() && rhs != nil {
		p = rhs.Pos
	}
	l.nodes = append(l.nodes, &ir.Node{ID: id, Kind: kind, LHS: lhs, RHS: rhs, Pos: p})
	return id
}

func (l *lowerer) link(from, to ir.NodeID) {
	n := l.nodes[from]
	n.Succs = append(n.Succs, to)
}

func (l *lowerer) pos(p token.Pos) ir.Pos {
	if l.fset == nil || !p.IsValid() {
		return ir.NoPos
	}
	position := l.fset.Position(p)
	return ir.Pos{File: position.Filename, Line: position.Line, Col: position.Column}
}

func lvalOf(v ir.Var) ir.LVal { return ir.LVal{Base: v} }

// FuncRefOf builds the IL reference of an SSA function.
func FuncRefOf(f *ssa.Function) ir.FuncRef {
	ref := ir.FuncRef{Name: f.Name()}
	if f.Pkg != nil && f.Pkg.Pkg != nil {
		ref.Package = f.Pkg.Pkg.Path()
	}
	if recv := f.Signature.Recv(); recv != nil {
		ref.Receiver = receiverName(recv.Type())
	}
	return ref
}

func calleeRef(common *ssa.CallCommon) ir.FuncRef {
	if common.IsInvoke() {
		ref := ir.FuncRef{Name: common.Method.Name()}
		if named, ok := common.Value.Type().(*types.Named); ok {
			ref.Receiver = named.Obj().Name()
			if named.Obj().Pkg() != nil {
				ref.Package = named.Obj().Pkg().Path()
			}
		}
		return ref
	}
	if callee := common.StaticCallee(); callee != nil {
		return FuncRefOf(callee)
	}
	if b, ok := common.Value.(*ssa.Builtin); ok {
		return ir.FuncRef{Name: b.Name()}
	}
	// dynamic call through a function value: no identity, the solver falls
	// back to the conservative policy
	return ir.FuncRef{}
}

func receiverName(t types.Type) string {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return ""
}

// fieldPath renders a struct field access as a dotted IL path.
func fieldPath(t types.Type, field int) string {
	t = t.Underlying()
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem().Underlying()
	}
	if s, ok := t.(*types.Struct); ok && field >= 0 && field < s.NumFields() {
		return "." + s.Field(field).Name()
	}
	return fmt.Sprintf(".#%d", field)
}

// typeOf coarsens a Go type to the IL type lattice used by the pruning
// heuristic.
func typeOf(t types.Type) ir.Type {
	if b, ok := t.Underlying().(*types.Basic); ok {
		info := b.Info()
		switch {
		case info&types.IsBoolean != 0:
			return ir.Bool
		case info&types.IsInteger != 0:
			return ir.Int
		case info&(types.IsFloat|types.IsComplex) != 0:
			return ir.Float
		case info&types.IsString != 0:
			return ir.String
		}
		return ir.Unknown
	}
	return ir.Object
}
