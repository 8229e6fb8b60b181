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

package gofront

import (
	"fmt"
	"go/token"
	"sort"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// PkgLoadMode is the default loading mode. We load all possible information.
const PkgLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes |
	packages.NeedModule

// A Program is a loaded and SSA-built program ready for lowering.
type Program struct {
	// SSA is the SSA form of the program.
	SSA *ssa.Program

	// Packages are the initially loaded packages.
	Packages []*packages.Package

	ssaPkgs []*ssa.Package
}

// LoadProgram loads, type checks and SSA-builds the packages matched by
// args. A nil config gets the default load mode.
func LoadProgram(config *packages.Config, args []string) (*Program, error) {
	if config == nil {
		config = &packages.Config{
			Mode:  PkgLoadMode,
			Tests: false,
			Fset:  token.NewFileSet(),
		}
	}

	initial, err := packages.Load(config, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(initial) == 0 {
		return nil, fmt.Errorf("no packages matched %v", args)
	}
	if packages.PrintErrors(initial) > 0 {
		return nil, fmt.Errorf("packages contain errors")
	}

	program, ssaPkgs := ssautil.AllPackages(initial, ssa.BuilderMode(0))
	for i, p := range ssaPkgs {
		if p == nil {
			return nil, fmt.Errorf("cannot build SSA for package %s", initial[i])
		}
	}
	program.Build()

	return &Program{SSA: program, Packages: initial, ssaPkgs: ssaPkgs}, nil
}

// Fset returns the program's file set.
func (p *Program) Fset() *token.FileSet {
	return p.SSA.Fset
}

// SourceFunctions returns the functions with bodies declared in the
// initially loaded packages, in a deterministic order. Wrappers, bound
// methods and dependency code are excluded; they are covered by the
// conservative call policy at their call sites.
func (p *Program) SourceFunctions() []*ssa.Function {
	initial := make(map[*ssa.Package]bool, len(p.ssaPkgs))
	for _, sp := range p.ssaPkgs {
		initial[sp] = true
	}
	var out []*ssa.Function
	for fn := range ssautil.AllFunctions(p.SSA) {
		if len(fn.Blocks) == 0 || fn.Pkg == nil || !initial[fn.Pkg] {
			continue
		}
		if fn.Synthetic != "" {
			continue
		}
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool {
		return FuncRefOf(out[i]).String() < FuncRefOf(out[j]).String()
	})
	return out
}
