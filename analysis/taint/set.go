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
	"strings"

	"github.com/awslabs/taintflow/analysis/ir"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A Set is a finite set of taint labels attached to one value. The zero Set
// is the bottom element (untainted). Sets are immutable: all operations
// return new sets or one of their operands.
type Set struct {
	elems map[labelKey]*Label
}

// Bottom is the empty taint set.
var Bottom = Set{}

// NewSet builds a set from the given labels.
func NewSet(labels ...*Label) Set {
	if len(labels) == 0 {
		return Bottom
	}
	m := make(map[labelKey]*Label, len(labels))
	for _, l := range labels {
		m[l.key()] = l
	}
	return Set{elems: m}
}

// Size returns the number of labels in the set.
func (s Set) Size() int {
	return len(s.elems)
}

// IsEmpty returns true for the bottom element.
func (s Set) IsEmpty() bool {
	return len(s.elems) == 0
}

// IsTainted returns true when the set contains at least one source or call
// label. Parameter-provenance labels are bookkeeping, not taint.
func (s Set) IsTainted() bool {
	for k := range s.elems {
		if k.Kind != ParamLabel {
			return true
		}
	}
	return false
}

// Has returns true when the set contains a label with the same identity.
func (s Set) Has(l *Label) bool {
	_, ok := s.elems[l.key()]
	return ok
}

// Union is the lattice join: commutative, associative and idempotent on
// label identities. On identity conflicts the receiver's label instance is
// kept, so traces do not churn across fixpoint iterations.
func (s Set) Union(o Set) Set {
	if o.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return o
	}
	m := make(map[labelKey]*Label, len(s.elems)+len(o.elems))
	for k, l := range s.elems {
		m[k] = l
	}
	for k, l := range o.elems {
		if _, ok := m[k]; !ok {
			m[k] = l
		}
	}
	return Set{elems: m}
}

// Subtract removes exactly the labels of o present in s (sanitization).
// Labels of o absent from s are a no-op, never an error.
func (s Set) Subtract(o Set) Set {
	if s.IsEmpty() || o.IsEmpty() {
		return s
	}
	var m map[labelKey]*Label
	for k, l := range s.elems {
		if _, drop := o.elems[k]; !drop {
			if m == nil {
				m = make(map[labelKey]*Label, len(s.elems))
			}
			m[k] = l
		}
	}
	return Set{elems: m}
}

// Equal is set equality over label identities.
func (s Set) Equal(o Set) bool {
	if len(s.elems) != len(o.elems) {
		return false
	}
	for k := range s.elems {
		if _, ok := o.elems[k]; !ok {
			return false
		}
	}
	return true
}

// Filter returns the subset of labels satisfying keep.
func (s Set) Filter(keep func(*Label) bool) Set {
	if s.IsEmpty() {
		return s
	}
	var m map[labelKey]*Label
	for k, l := range s.elems {
		if keep(l) {
			if m == nil {
				m = make(map[labelKey]*Label, len(s.elems))
			}
			m[k] = l
		}
	}
	return Set{elems: m}
}

// WithStep appends one propagation step to every label in the set.
func (s Set) WithStep(pos ir.Pos, desc string) Set {
	if s.IsEmpty() {
		return s
	}
	m := make(map[labelKey]*Label, len(s.elems))
	for k, l := range s.elems {
		m[k] = l.WithStep(pos, desc)
	}
	return Set{elems: m}
}

// WithCallPath extends the call path of every label in the set; identities
// change, so taints through different call paths stay distinguishable.
func (s Set) WithCallPath(callee string) Set {
	if s.IsEmpty() {
		return s
	}
	m := make(map[labelKey]*Label, len(s.elems))
	for _, l := range s.elems {
		nl := l.WithCallPath(callee)
		m[nl.key()] = nl
	}
	return Set{elems: m}
}

// AsControl reclassifies every label in the set as control taint.
func (s Set) AsControl() Set {
	if s.IsEmpty() {
		return s
	}
	m := make(map[labelKey]*Label, len(s.elems))
	for _, l := range s.elems {
		nl := l.AsControl()
		m[nl.key()] = nl
	}
	return Set{elems: m}
}

// Labels returns the labels in a deterministic order.
func (s Set) Labels() []*Label {
	keys := maps.Keys(s.elems)
	slices.SortFunc(keys, func(a, b labelKey) bool {
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Pos != b.Pos {
			if a.Pos.File != b.Pos.File {
				return a.Pos.File < b.Pos.File
			}
			if a.Pos.Line != b.Pos.Line {
				return a.Pos.Line < b.Pos.Line
			}
			return a.Pos.Col < b.Pos.Col
		}
		if a.Param != b.Param {
			return a.Param < b.Param
		}
		return a.CallPath < b.CallPath
	})
	out := make([]*Label, len(keys))
	for i, k := range keys {
		out[i] = s.elems[k]
	}
	return out
}

func (s Set) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{")
	for i, l := range s.Labels() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(l.String())
	}
	b.WriteString("}")
	return b.String()
}
