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

// Package taint implements the taint-tracking dataflow analysis over the
// language-neutral CFG defined in the ir package.
//
// The analysis is a forward, flow-sensitive may-analysis: a worklist-driven
// fixpoint computation over environments mapping program variables to sets of
// taint labels. It is over-approximating by design, preferring false
// positives over false negatives, with configurable precision heuristics
// (scalar pruning, call-path sensitivity, control-taint propagation).
//
// The solver is a pure, single-threaded computation over one function's CFG.
// The two caches (function summaries, property resolution) carry no internal
// synchronization; callers analyzing functions in parallel must partition
// cache pairs per worker or synchronize externally.
package taint
