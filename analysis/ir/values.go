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
	"strconv"
)

// A VarID is the unique binding identifier of a variable. Two syntactically
// identical names in different scopes carry different VarIDs, so VarID is the
// part of a variable that is safe to use as a map key across scopes.
type VarID int32

// A Var is a program variable: a human-readable name paired with its binding
// identifier. Vars are immutable once created.
type Var struct {
	Name string
	ID   VarID
}

func (v Var) String() string {
	return v.Name + "#" + strconv.Itoa(int(v.ID))
}

// IsZero returns true for the zero Var, used as "no variable" in optional
// positions (e.g. statement-only calls have no assignment target).
func (v Var) IsZero() bool {
	return v.Name == "" && v.ID == 0
}

// An LVal is an assignable location: a variable plus an optional dotted
// access path for qualified lvalues such as object fields ("o.field" has
// Base o and Path ".field"). An empty Path designates the variable itself.
type LVal struct {
	Base Var
	Path string
}

func (l LVal) String() string {
	return l.Base.String() + l.Path
}

// A FuncRef identifies a function for summary keying and predicate matching.
// Receiver is empty for plain functions.
type FuncRef struct {
	Package  string
	Receiver string
	Name     string
}

func (f FuncRef) String() string {
	if f.Receiver != "" {
		return fmt.Sprintf("(%s.%s).%s", f.Package, f.Receiver, f.Name)
	}
	if f.Package != "" {
		return f.Package + "." + f.Name
	}
	return f.Name
}

// IsZero returns true when the reference does not name any function.
func (f FuncRef) IsZero() bool {
	return f.Package == "" && f.Receiver == "" && f.Name == ""
}

// A ClassID identifies a declared type for property resolution.
type ClassID struct {
	Package string
	Name    string
}

func (c ClassID) String() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// A Pos is a source position carried through lowering for reporting.
type Pos struct {
	File string
	Line int
	Col  int
}

// NoPos is the zero position, used when a frontend has no location.
var NoPos = Pos{}

// IsValid returns true when the position carries location information.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// A Type is the coarse static type of an expression, as far as the frontend
// or the type-inference oracle knows it. The taint analysis only needs enough
// type structure to drive the scalar-pruning heuristic.
type Type int

const (
	// Unknown is the default when no type information is available.
	Unknown Type = iota
	// Bool is a boolean type.
	Bool
	// Int is any integral numeric type.
	Int
	// Float is any floating-point numeric type.
	Float
	// String is a string type.
	String
	// Object is any structured or reference type.
	Object
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// IsNumeric returns true for integral and floating-point types.
func (t Type) IsNumeric() bool {
	return t == Int || t == Float
}
