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

// Taintflow reports flows of tainted data from configured sources to
// configured sinks in Go packages.
//
// Usage:
//
//	taintflow -config config.yaml [-cfgout dir] package...
//
// The config file declares the taint tracking problems: source, sink,
// sanitizer and safe-call code identifiers, plus the analysis options.
// With -cfgout, the control flow graph of every analyzed function is also
// written to the given directory in graphviz dot format.
package main
