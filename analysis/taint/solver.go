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
	"github.com/awslabs/taintflow/internal/graphutil"
)

// solver holds the state of one fixpoint computation over one function's
// CFG. It is created per Run invocation and discarded with it; only derived
// facts (the function's signature) outlive it, through the summary cache.
type solver struct {
	a      *Analysis
	g      *ir.CFG
	caches *Caches

	// preds maps each node to its predecessors.
	preds map[ir.NodeID][]ir.NodeID

	// seed is the entry environment: caller assumptions about parameter
	// taint plus parameter-provenance labels.
	seed Env

	// in and out are the environments around each node, indexed by node ID.
	in  []Env
	out []Env

	// retTaint accumulates the taint of returned expressions, for summary
	// inference.
	retTaint Set

	// visits counts node visits, for diagnostics.
	visits int
}

// Run computes the taint fixpoint over the function's CFG and returns the
// per-node environment mapping. Findings are delivered through the analysis
// instance's handler while the fixpoint runs, in deterministic node order;
// the same finding may fire on several iterations (see Dedup).
//
// seed carries the caller's assumptions about parameter taint; pass the zero
// Env for the default (parameters untainted). caches may be nil, in which
// case a throwaway pair is used and inferred summaries are lost.
//
// Run is a pure function of its inputs apart from cache population and
// handler invocations; it has no internal step or time limit (bounding
// pathological inputs is the caller's watchdog responsibility).
func (a *Analysis) Run(g *ir.CFG, caches *Caches, seed Env) (Mapping, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cfg: %w", err)
	}
	if caches == nil {
		caches = NewCaches()
	}

	s := &solver{
		a:      a,
		g:      g,
		caches: caches,
		preds:  g.Preds(),
		in:     make([]Env, len(g.Nodes)),
		out:    make([]Env, len(g.Nodes)),
	}
	for i := range g.Nodes {
		s.in[i] = NewEnv()
		s.out[i] = NewEnv()
	}
	s.seedEntry(seed)

	if a.Logger != nil {
		fg := graphutil.NewCFGIterator(g)
		if headers := graphutil.LoopHeaders(fg); len(headers) > 0 {
			a.logDebugf("cfg %s: %d loop header(s) %v, fixpoint will need multiple passes",
				g.Name, len(headers), headers)
			// Enumerating cycles is exponential in the worst case, so
			// it only happens when trace output was asked for.
			if a.Logger.Level() >= config.TraceLevel {
				cycles := graphutil.FindAllElementaryCycles(fg)
				a.Logger.Tracef("cfg %s: %d elementary cycle(s)", g.Name, len(cycles))
				for _, cycle := range cycles {
					a.Logger.Tracef("cfg %s: cycle through nodes %v", g.Name, cycle)
				}
			}
		}
		if unreachable := g.Unreachable(); len(unreachable) > 0 {
			a.logDebugf("cfg %s: %d unreachable node(s) kept at bottom", g.Name, len(unreachable))
		}
	}

	s.iterate()
	s.recordSummary()

	a.logDebugf("cfg %s: fixpoint reached after %d node visits (%d nodes)",
		g.Name, s.visits, len(g.Nodes))

	m := make(Mapping, len(g.Nodes))
	for _, n := range g.Nodes {
		m[n.ID] = NodeEnvs{In: s.in[n.ID], Out: s.out[n.ID]}
	}
	return m, nil
}

// seedEntry builds the entry environment: the caller-supplied assumptions
// joined with one provenance label per formal parameter.
func (s *solver) seedEntry(seed Env) {
	entry := NewEnv()
	if seed.m != nil {
		entry = entry.Join(seed)
	}
	for i, p := range s.g.Params {
		lv := ir.LVal{Base: p}
		entry.Bind(lv, entry.LookupLVal(lv).Union(NewSet(NewParamLabel(i, ir.NoPos))))
	}
	s.seed = entry
}

// iterate runs the worklist to fixpoint. The worklist is initialized with
// every reachable node in reverse postorder so acyclic regions converge in a
// single pass; loop bodies are re-enqueued until stable.
func (s *solver) iterate() {
	rpo := s.g.ReversePostorder()
	worklist := make([]ir.NodeID, len(rpo))
	copy(worklist, rpo)
	queued := make([]bool, len(s.g.Nodes))
	for _, id := range worklist {
		queued[id] = true
	}

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		queued[id] = false
		s.visits++

		node := s.g.Node(id)
		in := s.computeIn(id)
		out := s.transfer(node, in)
		s.in[id] = in

		if !out.Equal(s.out[id]) {
			s.out[id] = out
			for _, succ := range node.Succs {
				if !queued[succ] {
					queued[succ] = true
					worklist = append(worklist, succ)
				}
			}
		}
	}
}

// computeIn recomputes the "before" environment of a node: the join of all
// predecessor "after" environments, plus the seed for the entry node.
func (s *solver) computeIn(id ir.NodeID) Env {
	env := NewEnv()
	if id == s.g.Entry {
		env = env.Join(s.seed)
	}
	for _, p := range s.preds[id] {
		env = env.Join(s.out[p])
	}
	return env
}

// transfer applies the node's transfer function to its "before" environment
// and returns the "after" environment. Sink checks fire here, during the
// fixpoint, not after it.
func (s *solver) transfer(node *ir.Node, in Env) Env {
	out := in.Copy()
	switch node.Kind {
	case ir.KindAssign:
		t := s.evalExpr(node, node.RHS, in)
		t = s.applyNodePredicates(node, t)
		if s.a.Options.PropagateControl {
			t = t.Union(in.ControlTaint())
		}
		t = Prune(t, s.a.exprType(node.RHS), s.a.Options)
		s.checkSink(node, in)
		s.applyCallEffects(node, node.RHS, in, out)
		// Strong update: the previous taint of the lvalue is replaced, not
		// joined.
		out.Bind(node.LHS, t.WithStep(node.Pos, "assigned to "+node.LHS.String()))

	case ir.KindExprStmt:
		s.checkSink(node, in)
		s.applyCallEffects(node, node.RHS, in, out)

	case ir.KindBranch:
		s.checkSink(node, in)
		if s.a.Options.PropagateControl {
			cond := s.evalExpr(node, node.RHS, in)
			if !cond.IsEmpty() {
				out.SetControlTaint(in.ControlTaint().Union(cond.AsControl()))
			}
		}

	case ir.KindReturn:
		if node.RHS != nil {
			s.retTaint = s.retTaint.Union(s.evalExpr(node, node.RHS, in))
		}
	}
	return out
}

// applyNodePredicates mints source labels and applies sanitizer subtraction
// on the node's resulting taint.
func (s *solver) applyNodePredicates(node *ir.Node, t Set) Set {
	if s.a.Preds.IsSource != nil && s.a.Preds.IsSource(node) {
		t = t.Union(NewSet(s.freshLabel(node)))
	}
	if s.a.Preds.Sanitizer != nil {
		if removed, ok := s.a.Preds.Sanitizer(node); ok {
			t = t.Subtract(removed)
		}
	}
	return t
}

// freshLabel mints the label for a source match on the node. The mint is
// stable: labels from the same node compare equal across iterations.
func (s *solver) freshLabel(node *ir.Node) *Label {
	if node.RHS != nil && node.RHS.Kind == ir.ExprCall {
		return NewCallLabel(node.Pos)
	}
	return NewSourceLabel(node.Pos)
}

// checkSink reports a finding when the node matches a sink predicate and
// tainted data reaches it. For call sinks the dangerous data is the
// arguments' taint, not the call result.
func (s *solver) checkSink(node *ir.Node, in Env) {
	if s.a.Preds.IsSink == nil || s.a.OnFinding == nil || !s.a.Preds.IsSink(node) {
		return
	}
	var t Set
	if node.RHS != nil && node.RHS.Kind == ir.ExprCall {
		for _, arg := range node.RHS.Args {
			t = t.Union(s.evalExpr(node, arg, in))
		}
	} else if node.RHS != nil {
		t = s.evalExpr(node, node.RHS, in)
	}
	if !t.IsTainted() {
		return
	}
	s.a.OnFinding(Finding{
		Taint: t.Filter(func(l *Label) bool { return l.Kind != ParamLabel }),
		Sink:  node,
		Pos:   node.Pos,
	})
}

// evalExpr computes the taint of an expression under the environment.
func (s *solver) evalExpr(node *ir.Node, e *ir.Expr, env Env) Set {
	if e == nil {
		return Bottom
	}
	switch e.Kind {
	case ir.ExprLit:
		return Bottom

	case ir.ExprVar:
		return env.Lookup(e.Var)

	case ir.ExprField:
		return env.LookupLVal(ir.LVal{Base: e.Var, Path: e.Path})

	case ir.ExprProp:
		resolved := s.caches.Properties.LookupOrResolve(e.Class, e.Prop, s.a.Attrs)
		if resolved.IsSome() {
			return env.LookupLVal(ir.LVal{Base: e.Var, Path: "." + resolved.Value().Name})
		}
		// Unresolved property: fall back to the receiver's taint.
		return env.Lookup(e.Var)

	case ir.ExprUnop:
		return Prune(s.evalExpr(node, e.Args[0], env), s.a.exprType(e), s.a.Options)

	case ir.ExprBinop:
		t := s.evalExpr(node, e.Args[0], env).Union(s.evalExpr(node, e.Args[1], env))
		return Prune(t, s.a.exprType(e), s.a.Options)

	case ir.ExprPhi:
		var t Set
		for _, arg := range e.Args {
			t = t.Union(s.evalExpr(node, arg, env))
		}
		return t

	case ir.ExprCall:
		return s.evalCall(node, e, env)
	}
	return Bottom
}

// evalCall computes the result taint of a call expression.
func (s *solver) evalCall(node *ir.Node, e *ir.Expr, env Env) Set {
	args := make([]Set, len(e.Args))
	for i, arg := range e.Args {
		args[i] = s.evalExpr(node, arg, env)
	}

	// A rule-defined propagator overrides any other policy.
	if s.a.Preds.Propagator != nil {
		if t, ok := s.a.Preds.Propagator(e, args); ok {
			return s.decorate(t, e)
		}
	}

	// Self-recursive calls short-circuit summary lookup and are treated as
	// taint-opaque on this pass; they are refined only through the summary
	// cache on a later whole-file pass driven by the caller.
	if !s.g.Name.IsZero() && e.Callee == s.g.Name {
		return Bottom
	}

	// Taint-opaque callees per the rule provider's configuration.
	if s.a.Preds.IsSafeCall != nil && s.a.Preds.IsSafeCall(e.Callee) {
		return Bottom
	}

	if sig, ok := s.lookupSignature(e.Callee); ok {
		var t Set
		for i, at := range args {
			if sig.ReturnIf&ParamBit(i) != 0 {
				t = t.Union(at)
			}
		}
		if sig.TaintsReturn {
			t = t.Union(NewSet(NewCallLabel(e.Pos)))
		}
		return s.decorate(t, e)
	}

	// Conservative policy: no summary means the result may carry any
	// argument's taint.
	var t Set
	for _, at := range args {
		t = t.Union(at)
	}
	return s.decorate(t, e)
}

// decorate applies call-path extension and trace recording to taint flowing
// through a call.
func (s *solver) decorate(t Set, call *ir.Expr) Set {
	if t.IsEmpty() {
		return t
	}
	if s.a.Options.CallPathSensitive {
		t = t.WithCallPath(call.Callee.String())
	}
	return t.WithStep(call.Pos, "through call to "+call.Callee.String())
}

// lookupSignature finds a taint signature for the callee: the session's
// summary cache first, then the external capability, if provided.
func (s *solver) lookupSignature(callee ir.FuncRef) (Signature, bool) {
	if callee.IsZero() {
		return Signature{}, false
	}
	if sig, ok := s.caches.Summaries.Lookup(callee); ok {
		return sig, true
	}
	if s.a.Sigs != nil {
		return s.a.Sigs.ResolveSignature(callee)
	}
	return Signature{}, false
}

// applyCallEffects applies a summary's output-parameter effects: arguments
// passed in mutated positions become tainted in the caller, either from the
// taint of the masked input arguments or unconditionally when the callee
// fills the position from its own source. Effects are a weak update (union),
// since the callee may or may not overwrite.
func (s *solver) applyCallEffects(node *ir.Node, e *ir.Expr, in Env, out Env) {
	if e == nil || e.Kind != ir.ExprCall {
		return
	}
	if !s.g.Name.IsZero() && e.Callee == s.g.Name {
		return
	}
	sig, ok := s.lookupSignature(e.Callee)
	if !ok || (len(sig.ParamOut) == 0 && sig.TaintsParam == 0) {
		return
	}
	for p := range e.Args {
		var flow Set
		if mask := sig.ParamOut[p]; mask != 0 {
			for i, arg := range e.Args {
				if mask&ParamBit(i) != 0 {
					flow = flow.Union(s.evalExpr(node, arg, in))
				}
			}
		}
		if sig.TaintsParam&ParamBit(p) != 0 {
			flow = flow.Union(NewSet(NewCallLabel(e.Pos)))
		}
		if flow.IsEmpty() {
			continue
		}
		target, ok := argLVal(e.Args[p])
		if !ok {
			continue
		}
		flow = s.decorate(flow, e)
		out.Bind(target, out.LookupLVal(target).Union(flow))
	}
}

// argLVal maps an argument expression back to an assignable location, when
// it has one.
func argLVal(e *ir.Expr) (ir.LVal, bool) {
	switch e.Kind {
	case ir.ExprVar:
		return ir.LVal{Base: e.Var}, true
	case ir.ExprField:
		return ir.LVal{Base: e.Var, Path: e.Path}, true
	}
	return ir.LVal{}, false
}

// recordSummary infers the function's taint signature from the fixpoint and
// records it in the summary cache: parameter-provenance labels observed in
// returned values give the return mask, source or call labels give an
// unconditionally tainted return, provenance labels migrated between
// parameters give output effects, and source or call labels observed on a
// parameter at exit mark it unconditionally tainted.
func (s *solver) recordSummary() {
	if s.g.Name.IsZero() {
		return
	}
	sig := Signature{ParamOut: map[int]uint64{}}
	for _, l := range s.retTaint.Labels() {
		if l.Kind == ParamLabel {
			sig.ReturnIf |= ParamBit(l.Param)
		} else {
			sig.TaintsReturn = true
		}
	}

	exit := s.exitEnv()
	for pi, p := range s.g.Params {
		var mask uint64
		for _, l := range exit.Lookup(p).Labels() {
			switch {
			case l.Kind == ParamLabel && l.Param != pi:
				mask |= ParamBit(l.Param)
			case l.Kind != ParamLabel:
				sig.TaintsParam |= ParamBit(pi)
			}
		}
		if mask != 0 {
			sig.ParamOut[pi] = mask
		}
	}
	if len(sig.ParamOut) == 0 {
		sig.ParamOut = nil
	}
	s.caches.Summaries.Record(s.g.Name, sig)
}

// exitEnv joins the "after" environments of every return and exit node.
func (s *solver) exitEnv() Env {
	env := NewEnv()
	for _, n := range s.g.Nodes {
		if n.Kind == ir.KindReturn || n.Kind == ir.KindExit {
			env = env.Join(s.out[n.ID])
		}
	}
	return env
}
