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

package config

import (
	"fmt"
	"os"

	"github.com/awslabs/taintflow/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config is the top-level configuration: the analysis options plus the list
// of taint tracking problems to check. Fields not present in the yaml file
// keep their zero value.
type Config struct {
	Options `yaml:",inline"`

	// TaintTrackingProblems lists the taint tracking specifications
	TaintTrackingProblems []TaintSpec `yaml:"taint-tracking-problems"`
}

// TaintSpec contains the code identifiers that define one taint tracking
// problem: where taint enters, where it must not reach, what removes it, and
// which calls never propagate it.
type TaintSpec struct {
	// Sources is the list of places where taint enters the program
	Sources []CodeIdentifier

	// Sinks is the list of places tainted data must not reach
	Sinks []CodeIdentifier

	// Sanitizers is the list of calls that remove taint from their result
	Sanitizers []CodeIdentifier

	// SafeCalls is the list of callees whose results never carry taint,
	// regardless of their arguments
	SafeCalls []CodeIdentifier `yaml:"safe-calls"`
}

// Options are the tool-wide analysis settings.
type Options struct {
	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// MaxAlarms caps the number of findings reported per problem. A value
	// <= 0 means no cap.
	MaxAlarms int `yaml:"max-alarms"`

	// SilenceWarn suppresses warnings
	SilenceWarn bool `yaml:"silence-warn"`

	// ControlTaint enables propagation of taint through branch conditions
	// into the assignments they govern
	ControlTaint bool `yaml:"control-taint"`

	// CallPathSensitive distinguishes taint from the same source reaching a
	// sink through different call paths
	CallPathSensitive bool `yaml:"call-path-sensitive"`

	// MaxCallPathDepth bounds the call-path length recorded per taint when
	// CallPathSensitive is set. Values <= 0 keep the built-in default.
	MaxCallPathDepth int `yaml:"max-call-path-depth"`

	// AssumeSafeNumbers drops taint on integer and float typed results
	AssumeSafeNumbers bool `yaml:"assume-safe-numbers"`

	// AssumeSafeBooleans drops taint on boolean typed results
	AssumeSafeBooleans bool `yaml:"assume-safe-booleans"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		TaintTrackingProblems: nil,
		Options: Options{
			LogLevel:    int(InfoLevel),
			MaxAlarms:   0,
			SilenceWarn: false,
		},
	}
}

// Load reads a configuration from a yaml file and compiles the code
// identifiers it contains.
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	// If the log level has not been specified (i.e. it is 0), default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	for i := range cfg.TaintTrackingProblems {
		tSpec := &cfg.TaintTrackingProblems[i]
		tSpec.Sources = funcutil.Map(tSpec.Sources, CompileRegexes)
		tSpec.Sinks = funcutil.Map(tSpec.Sinks, CompileRegexes)
		tSpec.Sanitizers = funcutil.Map(tSpec.Sanitizers, CompileRegexes)
		tSpec.SafeCalls = funcutil.Map(tSpec.SafeCalls, CompileRegexes)
	}

	return cfg, nil
}

// ExceedsMaxAlarms returns true when n findings have already been reported
// and the configuration caps reporting below that
func (c Config) ExceedsMaxAlarms(n int) bool {
	return c.MaxAlarms > 0 && n >= c.MaxAlarms
}

// Below are functions used to query the configuration on specific facts

func (c Config) isSomeTaintSpecCid(cid CodeIdentifier, f func(t TaintSpec, cid CodeIdentifier) bool) bool {
	for _, x := range c.TaintTrackingProblems {
		if f(x, cid) {
			return true
		}
	}
	return false
}

// IsSomeSource returns true if the code identifier matches any source in the config
func (c Config) IsSomeSource(cid CodeIdentifier) bool {
	return c.isSomeTaintSpecCid(cid, func(t TaintSpec, cid2 CodeIdentifier) bool { return t.IsSource(cid2) })
}

// IsSomeSink returns true if the code identifier matches any sink in the config
func (c Config) IsSomeSink(cid CodeIdentifier) bool {
	return c.isSomeTaintSpecCid(cid, func(t TaintSpec, cid2 CodeIdentifier) bool { return t.IsSink(cid2) })
}

// IsSomeSanitizer returns true if the code identifier matches any sanitizer in the config
func (c Config) IsSomeSanitizer(cid CodeIdentifier) bool {
	return c.isSomeTaintSpecCid(cid, func(t TaintSpec, cid2 CodeIdentifier) bool { return t.IsSanitizer(cid2) })
}

// IsSomeSafeCall returns true if the code identifier matches any safe call in the config
func (c Config) IsSomeSafeCall(cid CodeIdentifier) bool {
	return c.isSomeTaintSpecCid(cid, func(t TaintSpec, cid2 CodeIdentifier) bool { return t.IsSafeCall(cid2) })
}

// IsSource returns true if the code identifier matches a source specification in the config file
func (ts TaintSpec) IsSource(cid CodeIdentifier) bool {
	return ExistsCid(ts.Sources, cid.equalOnNonEmptyFields)
}

// IsSink returns true if the code identifier matches a sink specification in the config file
func (ts TaintSpec) IsSink(cid CodeIdentifier) bool {
	return ExistsCid(ts.Sinks, cid.equalOnNonEmptyFields)
}

// IsSanitizer returns true if the code identifier matches a sanitizer specification in the config file
func (ts TaintSpec) IsSanitizer(cid CodeIdentifier) bool {
	return ExistsCid(ts.Sanitizers, cid.equalOnNonEmptyFields)
}

// IsSafeCall returns true if the code identifier matches a safe-call specification in the config file
func (ts TaintSpec) IsSafeCall(cid CodeIdentifier) bool {
	return ExistsCid(ts.SafeCalls, cid.equalOnNonEmptyFields)
}
