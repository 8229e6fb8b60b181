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
	"testing"

	"github.com/awslabs/taintflow/analysis/ir"
)

func TestParamBitFoldsHighPositions(t *testing.T) {
	if ParamBit(0) != 1 || ParamBit(1) != 2 {
		t.Errorf("low positions should map to their own bits")
	}
	if ParamBit(63) != ParamBit(64) || ParamBit(63) != ParamBit(1000) {
		t.Errorf("positions beyond 63 should fold onto the last bit")
	}
}

func TestSummaryCacheFirstRecordWins(t *testing.T) {
	c := NewSummaryCache()
	f := ir.FuncRef{Package: "p", Name: "f"}

	if _, ok := c.Lookup(f); ok {
		t.Fatalf("empty cache should miss")
	}
	c.Record(f, Signature{ReturnIf: ParamBit(0)})
	c.Record(f, Signature{ReturnIf: ParamBit(1)})

	sig, ok := c.Lookup(f)
	if !ok || sig.ReturnIf != ParamBit(0) {
		t.Errorf("the first recorded signature must win, got %s", sig)
	}
	if c.Size() != 1 {
		t.Errorf("expected one entry, got %d", c.Size())
	}
}

func TestSummaryCacheKeyedByFullReference(t *testing.T) {
	c := NewSummaryCache()
	c.Record(ir.FuncRef{Package: "p", Name: "f"}, Signature{TaintsReturn: true})
	if _, ok := c.Lookup(ir.FuncRef{Package: "q", Name: "f"}); ok {
		t.Errorf("same name in another package should miss")
	}
	if _, ok := c.Lookup(ir.FuncRef{Package: "p", Receiver: "T", Name: "f"}); ok {
		t.Errorf("a method should not collide with the free function")
	}
}

func TestPropertyCacheMemoizesFailures(t *testing.T) {
	c := NewPropertyCache()
	cls := ir.ClassID{Package: "p", Name: "C"}
	calls := 0
	failing := resolverFunc(func(class ir.ClassID, prop string) (ir.Var, bool) {
		calls++
		return ir.Var{}, false
	})

	for i := 0; i < 3; i++ {
		if got := c.LookupOrResolve(cls, "missing", failing); got.IsSome() {
			t.Fatalf("resolution should fail")
		}
	}
	if calls != 1 {
		t.Errorf("failed resolution should be memoized, resolver ran %d times", calls)
	}

	calls = 0
	v := ir.Var{Name: "attr", ID: 7}
	succeeding := resolverFunc(func(class ir.ClassID, prop string) (ir.Var, bool) {
		calls++
		return v, true
	})
	for i := 0; i < 3; i++ {
		got := c.LookupOrResolve(cls, "attr", succeeding)
		if !got.IsSome() || got.Value() != v {
			t.Fatalf("resolution should succeed with %v", v)
		}
	}
	if calls != 1 {
		t.Errorf("successful resolution should be memoized, resolver ran %d times", calls)
	}
	if c.Size() != 2 {
		t.Errorf("expected two memoized outcomes, got %d", c.Size())
	}
}

// resolverFunc adapts a function to the AttrResolver interface.
type resolverFunc func(class ir.ClassID, prop string) (ir.Var, bool)

func (f resolverFunc) ResolveAttribute(class ir.ClassID, prop string) (ir.Var, bool) {
	return f(class, prop)
}
