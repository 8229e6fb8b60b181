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

package ir

import (
	"fmt"
	"strings"
)

// An ExprKind discriminates the variants of Expr.
type ExprKind int

const (
	// ExprLit is a literal; literals never carry taint.
	ExprLit ExprKind = iota
	// ExprVar reads a variable.
	ExprVar
	// ExprField reads a field of a variable through an explicit access path.
	ExprField
	// ExprProp reads a property of a variable where the underlying storage is
	// not syntactically visible (implicit getter); resolution goes through
	// the class-attribute capability.
	ExprProp
	// ExprUnop applies a unary operator to Args[0].
	ExprUnop
	// ExprBinop applies a binary operator to Args[0] and Args[1].
	ExprBinop
	// ExprPhi merges the values in Args flowing from different predecessors.
	ExprPhi
	// ExprCall calls Callee with Args.
	ExprCall
)

func (k ExprKind) String() string {
	switch k {
	case ExprLit:
		return "lit"
	case ExprVar:
		return "var"
	case ExprField:
		return "field"
	case ExprProp:
		return "prop"
	case ExprUnop:
		return "unop"
	case ExprBinop:
		return "binop"
	case ExprPhi:
		return "phi"
	case ExprCall:
		return "call"
	default:
		return "invalid"
	}
}

// An Expr is one node of the IL expression language. Only the fields relevant
// to the Kind are meaningful; the remaining fields hold zero values.
type Expr struct {
	Kind ExprKind

	// Var is the variable read by ExprVar, and the base variable of
	// ExprField and ExprProp.
	Var Var

	// Path is the access path of an ExprField, e.g. ".name".
	Path string

	// Class and Prop identify the property read by an ExprProp.
	Class ClassID
	Prop  string

	// Lit is the literal text of an ExprLit.
	Lit string

	// Op is the operator of an ExprUnop or ExprBinop.
	Op string

	// Callee is the called function of an ExprCall.
	Callee FuncRef

	// Args holds operands for ExprUnop, ExprBinop and ExprPhi, and the
	// arguments of an ExprCall.
	Args []*Expr

	// Type is the static type of the expression when the frontend knows it.
	// The type-inference capability may refine Unknown types on demand.
	Type Type

	// Pos is the source position of the expression.
	Pos Pos
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExprLit:
		return e.Lit
	case ExprVar:
		return e.Var.String()
	case ExprField:
		return e.Var.String() + e.Path
	case ExprProp:
		return e.Var.String() + "." + e.Prop
	case ExprUnop:
		return e.Op + e.Args[0].String()
	case ExprBinop:
		return e.Args[0].String() + " " + e.Op + " " + e.Args[1].String()
	case ExprPhi:
		return "phi(" + joinExprs(e.Args) + ")"
	case ExprCall:
		return e.Callee.String() + "(" + joinExprs(e.Args) + ")"
	default:
		return fmt.Sprintf("<invalid expr kind %d>", e.Kind)
	}
}

func joinExprs(args []*Expr) string {
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = a.String()
	}
	return strings.Join(strs, ", ")
}

// Constructors below cover the shapes frontends need. They keep expression
// building terse in lowering code and in tests.

// NewLit returns a literal expression.
func NewLit(text string, t Type, pos Pos) *Expr {
	return &Expr{Kind: ExprLit, Lit: text, Type: t, Pos: pos}
}

// NewVarRead returns a variable read.
func NewVarRead(v Var, pos Pos) *Expr {
	return &Expr{Kind: ExprVar, Var: v, Pos: pos}
}

// NewFieldRead returns a field read of base through path.
func NewFieldRead(base Var, path string, pos Pos) *Expr {
	return &Expr{Kind: ExprField, Var: base, Path: path, Pos: pos}
}

// NewPropRead returns a property read to be resolved through the
// class-attribute capability.
func NewPropRead(base Var, class ClassID, prop string, pos Pos) *Expr {
	return &Expr{Kind: ExprProp, Var: base, Class: class, Prop: prop, Pos: pos}
}

// NewUnop returns a unary operation.
func NewUnop(op string, x *Expr, t Type, pos Pos) *Expr {
	return &Expr{Kind: ExprUnop, Op: op, Args: []*Expr{x}, Type: t, Pos: pos}
}

// NewBinop returns a binary operation.
func NewBinop(op string, x, y *Expr, t Type, pos Pos) *Expr {
	return &Expr{Kind: ExprBinop, Op: op, Args: []*Expr{x, y}, Type: t, Pos: pos}
}

// NewPhi returns a phi merge of the argument expressions.
func NewPhi(args []*Expr, pos Pos) *Expr {
	return &Expr{Kind: ExprPhi, Args: args, Pos: pos}
}

// NewCall returns a call expression.
func NewCall(callee FuncRef, args []*Expr, pos Pos) *Expr {
	return &Expr{Kind: ExprCall, Callee: callee, Args: args, Pos: pos}
}
