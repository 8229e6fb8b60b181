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

	"github.com/awslabs/taintflow/analysis/config"
	"github.com/awslabs/taintflow/analysis/ir"
)

// Options are the taint-semantics switches of one analysis instance. The
// zero value is the most conservative configuration: no pruning, no control
// taint, call-path insensitive.
type Options struct {
	// PropagateControl enables control-taint propagation: the taint of a
	// branch condition flows, as control taint, to the values assigned under
	// the branch (approximated locally through the environment, not via a
	// dominance computation).
	PropagateControl bool

	// CallPathSensitive distinguishes taints from the same syntactic source
	// through different call paths. Off, such taints merge.
	CallPathSensitive bool

	// AssumeSafeNumbers drops data taint from expressions statically known
	// to be numeric. See Prune.
	AssumeSafeNumbers bool

	// AssumeSafeBooleans drops data taint from expressions statically known
	// to be boolean. See Prune.
	AssumeSafeBooleans bool
}

// OptionsFromConfig maps the tool configuration onto solver options and
// applies the configured call-path depth bound.
func OptionsFromConfig(c *config.Config) Options {
	if c.MaxCallPathDepth > 0 {
		SetMaxCallPathDepth(c.MaxCallPathDepth)
	}
	return Options{
		PropagateControl:   c.ControlTaint,
		CallPathSensitive:  c.CallPathSensitive,
		AssumeSafeNumbers:  c.AssumeSafeNumbers,
		AssumeSafeBooleans: c.AssumeSafeBooleans,
	}
}

// Predicates bundle the rule-engine callbacks that decide which program
// constructs are sources, sinks, sanitizers and propagators. The solver
// treats them as opaque; they are evaluated on IL nodes, never on source
// syntax.
type Predicates struct {
	// IsSource reports whether the node's expression matches a source
	// pattern. A fresh label is minted per matching node.
	IsSource func(*ir.Node) bool

	// IsSink reports whether the node matches a sink pattern.
	IsSink func(*ir.Node) bool

	// Sanitizer returns the labels the node neutralizes, and whether the
	// node matches a sanitizer pattern at all. Returned labels absent from
	// the incoming taint are a no-op.
	Sanitizer func(*ir.Node) (Set, bool)

	// IsSafeCall reports whether the callee is taint-opaque (e.g. pure
	// arithmetic builtins). Which calls are taint-opaque is configuration
	// data from the rule provider, not solver policy.
	IsSafeCall func(ir.FuncRef) bool

	// Propagator, when non-nil and returning true, overrides the default
	// taint flow of a call: it receives the call expression and the taints
	// of its arguments and produces the result taint.
	Propagator func(call *ir.Expr, args []Set) (Set, bool)
}

// SignatureResolver supplies taint signatures for call targets beyond the
// local summary cache, e.g. cross-file results from a whole-program pass.
type SignatureResolver interface {
	ResolveSignature(callee ir.FuncRef) (Signature, bool)
}

// AttrResolver resolves a (type, property) pair to the underlying field
// variable when no explicit getter or setter is visible in the current unit.
type AttrResolver interface {
	ResolveAttribute(class ir.ClassID, prop string) (ir.Var, bool)
}

// TypeOracle supplies the static type of an expression, consumed by the
// scalar-pruning heuristic.
type TypeOracle interface {
	TypeOf(e *ir.Expr) ir.Type
}

// A Finding is one observation of tainted data reaching a sink, reported
// during the fixpoint. The same finding may be delivered more than once
// across iterations; deduplication belongs to the handler.
type Finding struct {
	// Taint is the taint set observed at the sink.
	Taint Set

	// Sink is the matched sink node.
	Sink *ir.Node

	// Pos is the sink's source position.
	Pos ir.Pos
}

func (f Finding) String() string {
	return fmt.Sprintf("taint %s reaches sink %s at %s", f.Taint, f.Sink, f.Pos)
}

// A Handler consumes findings as they are observed. Handlers are
// side-effecting and caller-owned.
type Handler func(Finding)

// Dedup wraps a handler so that each (sink, taint-identity) pair is
// delivered at most once. Most callers want this, since the fixpoint
// revisits nodes.
func Dedup(h Handler) Handler {
	seen := map[string]bool{}
	return func(f Finding) {
		key := fmt.Sprintf("%d|%s", f.Sink.ID, f.Taint)
		if seen[key] {
			return
		}
		seen[key] = true
		h(f)
	}
}

// NodeEnvs is the pair of environments around one CFG node: the environment
// just before the node executes and just after.
type NodeEnvs struct {
	In  Env
	Out Env
}

// A Mapping is the analyzer's final output artifact: the environment pair of
// every CFG node. Unreachable nodes keep bottom (empty) environments.
type Mapping map[ir.NodeID]NodeEnvs

// An Analysis is one analysis instance: predicates, capability hooks,
// options and the finding handler, bundled for repeated Run invocations.
// The three capability hooks are optional; a nil hook disables the
// corresponding feature and never fails.
type Analysis struct {
	Preds     Predicates
	Sigs      SignatureResolver
	Attrs     AttrResolver
	Types     TypeOracle
	Options   Options
	OnFinding Handler

	// Logger is used for debug tracing only; nil disables all output.
	Logger *config.LogGroup
}

func (a *Analysis) logDebugf(format string, args ...any) {
	if a.Logger != nil {
		a.Logger.Debugf(format, args...)
	}
}
