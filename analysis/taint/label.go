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
)

// A LabelKind identifies the different origins of taint that can be propagated during the analysis.
type LabelKind int

const (
	// SourceLabel is taint introduced by a source pattern match.
	SourceLabel LabelKind = iota
	// CallLabel is taint introduced by a tainted function-call result.
	CallLabel
	// ParamLabel is parameter provenance: it tracks which formal parameter a
	// value derives from, for summary inference and interprocedural mapping.
	// ParamLabels do not count as taint for sink reporting.
	ParamLabel
)

func (k LabelKind) String() string {
	switch k {
	case SourceLabel:
		return "source"
	case CallLabel:
		return "call"
	case ParamLabel:
		return "param"
	default:
		return "invalid"
	}
}

// A Class distinguishes data taint (the value itself carries attacker data)
// from control taint (the value's presence or branch outcome was influenced
// by tainted data).
type Class int

const (
	// DataTaint marks value-carrying taint.
	DataTaint Class = iota
	// ControlTaint marks control-dependency taint.
	ControlTaint
)

func (c Class) String() string {
	if c == ControlTaint {
		return "control"
	}
	return "data"
}

// labelKey is the structural identity of a label: origin kind, origin
// location and call path so far. The trace is deliberately excluded so that
// propagation history never affects lattice ordering.
type labelKey struct {
	Kind     LabelKind
	Class    Class
	Pos      ir.Pos
	CallPath string
	Param    int
}

// A TraceStep is one intermediate propagation step recorded for finding
// explanations.
type TraceStep struct {
	Pos  ir.Pos
	Desc string
}

func (t TraceStep) String() string {
	return fmt.Sprintf("%s (%s)", t.Desc, t.Pos)
}

// A Label identifies one origin of tainted data. Labels are compared by
// structural identity (kind, class, origin location, call path); the trace is
// explanatory payload only.
type Label struct {
	// Kind is the origin kind of the label.
	Kind LabelKind

	// Class is data or control taint.
	Class Class

	// Pos is the origin location of the taint.
	Pos ir.Pos

	// CallPath is the call path of the origin. It stays empty unless
	// call-path sensitivity is enabled, in which case two taints from the
	// same syntactic source through different call paths are distinguished.
	CallPath string

	// Param is the formal parameter position for ParamLabel origins, -1
	// otherwise.
	Param int

	// trace is the ordered sequence of propagation steps from the origin.
	trace []TraceStep
}

// NewSourceLabel mints a label for a source pattern match at pos.
func NewSourceLabel(pos ir.Pos) *Label {
	return &Label{Kind: SourceLabel, Class: DataTaint, Pos: pos, Param: -1}
}

// NewCallLabel mints a label for a tainted call result at pos.
func NewCallLabel(pos ir.Pos) *Label {
	return &Label{Kind: CallLabel, Class: DataTaint, Pos: pos, Param: -1}
}

// NewParamLabel mints a provenance label for the formal parameter at position i.
func NewParamLabel(i int, pos ir.Pos) *Label {
	return &Label{Kind: ParamLabel, Class: DataTaint, Pos: pos, Param: i}
}

func (l *Label) key() labelKey {
	return labelKey{Kind: l.Kind, Class: l.Class, Pos: l.Pos, CallPath: l.CallPath, Param: l.Param}
}

// Trace returns the recorded propagation steps, origin first.
func (l *Label) Trace() []TraceStep {
	return l.trace
}

// WithStep returns a copy of the label with one propagation step appended.
// Identity is unchanged. Consecutive duplicate steps are collapsed.
func (l *Label) WithStep(pos ir.Pos, desc string) *Label {
	if n := len(l.trace); n > 0 && l.trace[n-1].Pos == pos && l.trace[n-1].Desc == desc {
		return l
	}
	c := *l
	c.trace = make([]TraceStep, len(l.trace), len(l.trace)+1)
	copy(c.trace, l.trace)
	c.trace = append(c.trace, TraceStep{Pos: pos, Desc: desc})
	return &c
}

// maxCallPathDepth bounds the number of call-path segments a label can
// accumulate. Deeper flows stop extending the path instead of minting ever
// finer label identities, which keeps the label lattice finite under
// call-path sensitivity.
var maxCallPathDepth = 4

// SetMaxCallPathDepth overrides the call-path depth bound. Values below 1
// are ignored.
func SetMaxCallPathDepth(depth int) {
	if depth >= 1 {
		maxCallPathDepth = depth
	}
}

// WithCallPath returns a copy of the label with the call path extended by
// callee. Used only when call-path sensitivity is enabled. Labels at the
// depth bound are returned unchanged.
func (l *Label) WithCallPath(callee string) *Label {
	if l.CallPath != "" && strings.Count(l.CallPath, ">") >= maxCallPathDepth-1 {
		return l
	}
	c := *l
	if c.CallPath == "" {
		c.CallPath = callee
	} else {
		c.CallPath = c.CallPath + ">" + callee
	}
	return &c
}

// AsControl returns a copy of the label reclassified as control taint.
func (l *Label) AsControl() *Label {
	if l.Class == ControlTaint {
		return l
	}
	c := *l
	c.Class = ControlTaint
	return &c
}

func (l *Label) String() string {
	s := fmt.Sprintf("<%s %s @%s", l.Class, l.Kind, l.Pos)
	if l.Kind == ParamLabel {
		s = fmt.Sprintf("<%s param#%d @%s", l.Class, l.Param, l.Pos)
	}
	if l.CallPath != "" {
		s += " [" + l.CallPath + "]"
	}
	return s + ">"
}
