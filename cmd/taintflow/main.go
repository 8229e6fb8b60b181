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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awslabs/taintflow/analysis/config"
	"github.com/awslabs/taintflow/analysis/gofront"
	"github.com/awslabs/taintflow/analysis/ir"
	"github.com/awslabs/taintflow/analysis/render"
	"github.com/awslabs/taintflow/analysis/taint"
	"github.com/awslabs/taintflow/internal/formatutil"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	configPath = flag.String("config", "", "config file path for taint analysis")
	cfgoutDir  = flag.String("cfgout", "", "write per-function control flow graphs in dot format to this directory")
)

const usage = ` Perform taint analysis on your packages.
Usage:
    taintflow [options] <package path(s)>
Examples:
% taintflow -config config.yaml package...
`

// Lipgloss styles for findings output. Plain when stdout is not a terminal
// or NO_COLOR is set.
var (
	styleHeader lipgloss.Style
	styleSink   lipgloss.Style
	styleSource lipgloss.Style
	styleTrace  lipgloss.Style
	stylePos    lipgloss.Style
)

func initStyles() {
	plain := os.Getenv("NO_COLOR") != "" || !term.IsTerminal(1)
	if plain {
		reset := lipgloss.NewStyle()
		styleHeader = reset
		styleSink = reset
		styleSource = reset
		styleTrace = reset
		stylePos = reset
		return
	}
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#ad2d2d", Dark: "#ff8787"}).Bold(true)
	styleSink = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#3366cc", Dark: "#8fb3ff"})
	styleSource = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b58b00", Dark: "#ffd666"})
	styleTrace = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6b6f76", Dark: "#9aa0aa"})
	stylePos = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2b7a78", Dark: "#7ad1c4"})
}

func main() {
	flag.Parse()
	initStyles()

	if flag.NArg() == 0 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.NewDefault()
	if *configPath != "" {
		config.SetGlobalConfig(*configPath)
		loaded, err := config.LoadGlobal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not load config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logger := config.NewLogGroup(cfg)

	logger.Infof("Reading sources")
	program, err := gofront.LoadProgram(nil, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load program: %v\n", err)
		os.Exit(1)
	}

	if *cfgoutDir != "" {
		if err := os.MkdirAll(*cfgoutDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "could not create %s: %v\n", *cfgoutDir, err)
			os.Exit(1)
		}
	}

	numAlarms := 0
	analysis := &taint.Analysis{
		Preds:   taint.PredicatesFromConfig(cfg),
		Options: taint.OptionsFromConfig(cfg),
		Logger:  logger,
	}

	start := time.Now()
	var graphs []*ir.CFG
	for _, fn := range program.SourceFunctions() {
		g, err := gofront.Lower(fn, program.Fset())
		if err != nil {
			logger.Warnf("skipping %s: %v", fn.String(), err)
			continue
		}
		if *cfgoutDir != "" {
			path := filepath.Join(*cfgoutDir, dotFileName(g))
			if err := render.WriteDotFile(path, g); err != nil {
				logger.Warnf("could not render cfg of %s: %v", g.Name.String(), err)
			}
		}
		graphs = append(graphs, g)
	}

	// Callees run before callers so their summaries sharpen the
	// conservative call policy.
	caches := taint.NewCaches()
	for _, g := range taint.BottomUpOrder(graphs) {
		g := g
		analysis.OnFinding = taint.Dedup(func(f taint.Finding) {
			if cfg.ExceedsMaxAlarms(numAlarms) {
				return
			}
			numAlarms++
			reportFinding(g, f)
		})
		if _, err := analysis.Run(g, caches, taint.Env{}); err != nil {
			logger.Warnf("analysis of %s failed: %v", g.Name.String(), err)
		}
	}
	duration := time.Since(start)

	logger.Infof("Analyzed %d functions in %3.4f s", len(graphs), duration.Seconds())
	if numAlarms == 0 {
		logger.Infof("No taint flows detected")
		return
	}
	logger.Infof("%d taint flow(s) detected", numAlarms)
	if cfg.ExceedsMaxAlarms(numAlarms) {
		logger.Warnf("maximum alarms reached (%d), later findings were suppressed", cfg.MaxAlarms)
	}
	os.Exit(1)
}

// reportFinding prints one source-to-sink flow with the propagation trace of
// every taint label that reached the sink.
func reportFinding(g *ir.CFG, f taint.Finding) {
	fmt.Printf("%s in %s\n", styleHeader.Render("Tainted data reaches a sink"), g.Name.String())
	fmt.Printf("  Sink:   %s\n          %s\n",
		styleSink.Render(formatutil.SanitizeRepr(f.Sink)),
		stylePos.Render(f.Pos.String()))
	for _, l := range f.Taint.Labels() {
		fmt.Printf("  Source: %s %s\n",
			styleSource.Render(formatutil.Sanitize(l.Kind.String())),
			stylePos.Render(l.Pos.String()))
		for _, step := range l.Trace() {
			fmt.Printf("          %s\n", styleTrace.Render(formatutil.SanitizeRepr(step)))
		}
	}
}

// dotFileName derives a filesystem-safe dot file name from the function
// reference.
func dotFileName(g *ir.CFG) string {
	name := g.Name.String()
	if name == "" {
		name = "anonymous"
	}
	r := strings.NewReplacer("/", "_", "(", "", ")", "", "*", "", " ", "")
	return r.Replace(name) + ".dot"
}
