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

// Package ir defines the language-neutral intermediate language the taint
// analysis consumes: variables with unique binding identifiers, a small
// expression language, and a control-flow graph of statement nodes.
//
// Frontends (see the gofront package for an example) are responsible for
// lowering source languages into this representation. The analysis only
// assumes the structure described here; it never inspects source syntax.
package ir
