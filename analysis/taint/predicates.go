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

	"github.com/awslabs/taintflow/analysis/config"
	"github.com/awslabs/taintflow/analysis/ir"
)

// PredicatesFromConfig builds the predicate set matching the code
// identifiers of the config's taint tracking problems. Sanitizer calls are
// wired through the Propagator hook: a call whose callee matches a sanitizer
// identifier returns clean data regardless of its arguments.
func PredicatesFromConfig(c *config.Config) Predicates {
	return Predicates{
		IsSource: func(node *ir.Node) bool {
			cid, ok := nodeIdentifier(node)
			return ok && c.IsSomeSource(cid)
		},
		IsSink: func(node *ir.Node) bool {
			cid, ok := nodeIdentifier(node)
			return ok && c.IsSomeSink(cid)
		},
		Propagator: func(call *ir.Expr, _ []Set) (Set, bool) {
			if c.IsSomeSanitizer(config.NewFuncIdentifier(call.Callee)) {
				return Bottom, true
			}
			return Bottom, false
		},
		IsSafeCall: func(f ir.FuncRef) bool {
			return c.IsSomeSafeCall(config.NewFuncIdentifier(f))
		},
	}
}

// nodeIdentifier extracts the code identifier a node's expression matches
// against: the callee of a call, or the field name of a field or property
// read. Other expressions match nothing.
func nodeIdentifier(node *ir.Node) (config.CodeIdentifier, bool) {
	e := node.RHS
	if e == nil {
		return config.CodeIdentifier{}, false
	}
	switch e.Kind {
	case ir.ExprCall:
		return config.NewFuncIdentifier(e.Callee), true
	case ir.ExprField:
		return config.NewFieldIdentifier(strings.TrimPrefix(e.Path, ".")), true
	case ir.ExprProp:
		return config.NewFieldIdentifier(e.Prop), true
	default:
		return config.CodeIdentifier{}, false
	}
}
