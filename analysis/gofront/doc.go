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

// Package gofront lowers Go functions, through the golang.org/x/tools SSA
// form, into the analysis IL consumed by the taint solver. The lowering is
// deliberately lossy: registers become IL variables, memory operations
// become variable and field assignments without alias tracking, and any SSA
// value instruction the IL has no shape for degrades to a taint-preserving
// merge of its operands.
package gofront
