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

// Package render renders control flow graphs in GraphViz format for
// inspection and debugging.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/taintflow/analysis/ir"
	"github.com/awslabs/taintflow/internal/graphutil"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

// WriteDot writes the control flow graph of g to w in graphviz dot format.
// Nodes are labeled with their rendered instruction.
func WriteDot(w io.Writer, g *ir.CFG) error {
	fg := graphutil.NewCFGIterator(g)
	b, err := dot.Marshal(fg, dotName(g), "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode cfg of %s: %w", g.Name.String(), err)
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// WriteDotFile renders the control flow graph of g to the file at path,
// creating or truncating it.
func WriteDotFile(path string, g *ir.CFG) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDot(f, g)
}

func dotName(g *ir.CFG) string {
	name := g.Name.Name
	if name == "" {
		name = "cfg"
	}
	return name
}
