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
	"github.com/awslabs/taintflow/analysis/ir"
)

// Prune applies the type-based precision heuristic: when the expression is
// statically known to be boolean or numeric and the corresponding option is
// set, data taint is dropped. A boolean produced by comparing a tainted
// string to a constant is not an attacker-controlled payload in the sense
// rule authors intend, and propagating taint through it is a major source of
// false positives. This is a documented soundness/precision tradeoff, always
// overridable through the options.
//
// Control taint survives pruning when control-taint propagation is enabled.
func Prune(s Set, t ir.Type, opts Options) Set {
	if s.IsEmpty() {
		return s
	}
	drop := (t == ir.Bool && opts.AssumeSafeBooleans) ||
		(t.IsNumeric() && opts.AssumeSafeNumbers)
	if !drop {
		return s
	}
	if !opts.PropagateControl {
		return Bottom
	}
	return s.Filter(func(l *Label) bool { return l.Class == ControlTaint })
}

// exprType resolves the static type of an expression: the frontend's
// annotation when present, otherwise the type-inference oracle, otherwise
// Unknown (which disables pruning for that expression).
func (a *Analysis) exprType(e *ir.Expr) ir.Type {
	if e == nil {
		return ir.Unknown
	}
	if e.Type != ir.Unknown {
		return e.Type
	}
	if a.Types != nil {
		return a.Types.TypeOf(e)
	}
	return ir.Unknown
}
