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

	"github.com/awslabs/taintflow/analysis/ir"
)

// A Signature is a function's summarized taint-flow contract: which
// parameter positions, when tainted, taint the return value, and which
// parameters become tainted as an output effect. Parameter positions are
// encoded as bitmasks, with the least significant bit corresponding to the
// first parameter.
type Signature struct {
	// ReturnIf is the bitmask of parameter positions whose taint flows to
	// the return value.
	ReturnIf uint64

	// ParamOut maps an output-parameter position p to the bitmask of
	// positions whose taint flows into p when the call returns.
	ParamOut map[int]uint64

	// TaintsReturn marks a function whose return value is tainted
	// regardless of its arguments, such as a thin wrapper around a source.
	TaintsReturn bool

	// TaintsParam is the bitmask of parameter positions mutated to hold
	// taint regardless of the arguments, such as a function filling an
	// output parameter from a source.
	TaintsParam uint64
}

// IsEmpty returns true when the signature declares no taint flow at all.
func (s Signature) IsEmpty() bool {
	return s.ReturnIf == 0 && len(s.ParamOut) == 0 && !s.TaintsReturn && s.TaintsParam == 0
}

// ParamBit returns the bitmask for parameter position i. Positions beyond 63
// fold onto the last bit; functions with more parameters lose per-position
// precision but stay sound.
func ParamBit(i int) uint64 {
	if i > 63 {
		i = 63
	}
	return 1 << uint(i)
}

func (s Signature) String() string {
	ret := fmt.Sprintf("%b", s.ReturnIf)
	if s.TaintsReturn {
		ret = "always|" + ret
	}
	if s.TaintsParam != 0 {
		return fmt.Sprintf("sig{ret<-%s out:%v taints:%b}", ret, s.ParamOut, s.TaintsParam)
	}
	return fmt.Sprintf("sig{ret<-%s out:%v}", ret, s.ParamOut)
}

// A SummaryCache is a process-scoped table from function identity to its
// inferred taint signature, populated lazily as functions are analyzed.
// Entries are inserted once and never invalidated within a session: callers
// needing fresh summaries after a source change must discard the cache and
// build a new one. The cache is not correctness-critical; a missing entry
// only degrades precision to the conservative call policy.
//
// No internal locking: concurrent analyses must use per-worker caches or
// synchronize externally.
type SummaryCache struct {
	sigs map[string]Signature
}

// NewSummaryCache returns an empty summary cache.
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{sigs: map[string]Signature{}}
}

// Lookup returns the recorded signature of the function, if any.
func (c *SummaryCache) Lookup(f ir.FuncRef) (Signature, bool) {
	s, ok := c.sigs[f.String()]
	return s, ok
}

// Record inserts the signature for the function. The first record wins;
// later inserts for the same function are ignored.
func (c *SummaryCache) Record(f ir.FuncRef, s Signature) {
	key := f.String()
	if _, ok := c.sigs[key]; ok {
		return
	}
	c.sigs[key] = s
}

// Size returns the number of recorded signatures.
func (c *SummaryCache) Size() int {
	return len(c.sigs)
}
