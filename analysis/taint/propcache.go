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
	"github.com/awslabs/taintflow/internal/funcutil"
)

type propKey struct {
	Class ir.ClassID
	Prop  string
}

// A PropertyCache memoizes the resolution of accessed properties to their
// underlying storage, for languages with implicit getters and setters.
// Success and failure are memoized alike, so a repeatedly failing external
// lookup is paid for only once. Pure cache semantics: no eviction, bounded
// by the number of distinct (class, property) pairs seen.
//
// Like the summary cache, it carries no internal locking.
type PropertyCache struct {
	resolved map[propKey]funcutil.Optional[ir.Var]
}

// NewPropertyCache returns an empty property-resolution cache.
func NewPropertyCache() *PropertyCache {
	return &PropertyCache{resolved: map[propKey]funcutil.Optional[ir.Var]{}}
}

// LookupOrResolve returns the underlying field variable of the property,
// consulting the resolver capability on the first miss. A nil resolver
// behaves as a resolver that always fails.
func (c *PropertyCache) LookupOrResolve(class ir.ClassID, prop string, resolver AttrResolver) funcutil.Optional[ir.Var] {
	k := propKey{Class: class, Prop: prop}
	if v, ok := c.resolved[k]; ok {
		return v
	}
	result := funcutil.None[ir.Var]()
	if resolver != nil {
		if v, ok := resolver.ResolveAttribute(class, prop); ok {
			result = funcutil.Some(v)
		}
	}
	c.resolved[k] = result
	return result
}

// Size returns the number of memoized resolutions, failed ones included.
func (c *PropertyCache) Size() int {
	return len(c.resolved)
}

// Caches bundles the two session-scoped tables passed into every solver
// invocation. The caller controls their lifetime: create one pair per
// analysis session, drop it when the compilation unit is done.
type Caches struct {
	Summaries  *SummaryCache
	Properties *PropertyCache
}

// NewCaches returns a fresh cache pair.
func NewCaches() *Caches {
	return &Caches{Summaries: NewSummaryCache(), Properties: NewPropertyCache()}
}
