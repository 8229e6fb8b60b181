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

package taint

import (
	"fmt"
	"strings"

	"github.com/awslabs/taintflow/analysis/ir"
	"github.com/awslabs/taintflow/internal/funcutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// envKey is the environment key for a variable or qualified lvalue. Only the
// binding identifier matters; names are display payload.
type envKey struct {
	Var  ir.VarID
	Path string
}

// controlKey is the reserved key carrying the ambient control taint when
// control-taint propagation is enabled. VarID -1 can never be produced by a
// frontend binding.
var controlKey = envKey{Var: -1, Path: "<control>"}

// An Env maps variables (and qualified lvalues) to taint sets. Absence of a
// key means untainted (bottom); empty sets are never stored, keeping
// environments sparse. An Env is single-owner mutable: Bind mutates in place,
// Copy and Join produce fresh maps.
type Env struct {
	m map[envKey]Set
}

// NewEnv returns an empty environment.
func NewEnv() Env {
	return Env{m: map[envKey]Set{}}
}

// Lookup returns the taint of a variable: the union of the taint bound to
// the variable itself and to any of its qualified lvalues. A tainted field
// taints the whole object when read as a unit (over-approximation).
func (e Env) Lookup(v ir.Var) Set {
	t := e.m[envKey{Var: v.ID}]
	for k, s := range e.m {
		if k.Var == v.ID && k.Path != "" {
			t = t.Union(s)
		}
	}
	return t
}

// LookupLVal returns the taint of a qualified lvalue: the union of the exact
// binding and the base variable's own taint (a tainted object taints all of
// its fields).
func (e Env) LookupLVal(l ir.LVal) Set {
	if l.Path == "" {
		return e.Lookup(l.Base)
	}
	return e.m[envKey{Var: l.Base.ID, Path: l.Path}].Union(e.m[envKey{Var: l.Base.ID}])
}

// Bind binds the lvalue to the taint set, replacing any previous binding
// (strong update). Binding the empty set removes the key.
func (e Env) Bind(l ir.LVal, s Set) {
	k := envKey{Var: l.Base.ID, Path: l.Path}
	if s.IsEmpty() {
		delete(e.m, k)
		return
	}
	e.m[k] = s
}

// ControlTaint returns the ambient control taint.
func (e Env) ControlTaint() Set {
	return e.m[controlKey]
}

// SetControlTaint replaces the ambient control taint.
func (e Env) SetControlTaint(s Set) {
	if s.IsEmpty() {
		delete(e.m, controlKey)
		return
	}
	e.m[controlKey] = s
}

// Copy returns an independent copy of the environment. Sets are immutable,
// so only the key map is duplicated.
func (e Env) Copy() Env {
	c := make(map[envKey]Set, len(e.m))
	for k, s := range e.m {
		c[k] = s
	}
	return Env{m: c}
}

// Join returns a new environment binding every key present in either
// environment to the union of its taints, missing entries defaulting to
// bottom.
func (e Env) Join(o Env) Env {
	j := e.Copy()
	funcutil.Merge(j.m, o.m, func(a, b Set) Set { return a.Union(b) })
	return j
}

// Equal is true set equality on every key. This is the fixpoint stability
// test; reference comparison would not terminate the solver correctly.
func (e Env) Equal(o Env) bool {
	if len(e.m) != len(o.m) {
		return false
	}
	for k, s := range e.m {
		if !s.Equal(o.m[k]) {
			return false
		}
	}
	return true
}

// Size returns the number of live bindings.
func (e Env) Size() int {
	return len(e.m)
}

func (e Env) String() string {
	if len(e.m) == 0 {
		return "[]"
	}
	keys := maps.Keys(e.m)
	slices.SortFunc(keys, func(a, b envKey) bool {
		if a.Var != b.Var {
			return a.Var < b.Var
		}
		return a.Path < b.Path
	})
	var b strings.Builder
	b.WriteString("[")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "v%d%s=%s", k.Var, k.Path, e.m[k])
	}
	b.WriteString("]")
	return b.String()
}
