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
	"regexp"

	"github.com/awslabs/taintflow/analysis/ir"
	"github.com/awslabs/taintflow/internal/funcutil"
)

// A CodeIdentifier identifies a code element that is a source, sink,
// sanitizer or safe call. An element can be identified by its package,
// method, receiver or field, or any combination of those. Specifications
// that compile as regexes match as regexes, otherwise as plain strings.
type CodeIdentifier struct {
	Package  string
	Method   string
	Receiver string
	Field    string
	// computedRegexs is not part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	packageRegex  *regexp.Regexp
	methodRegex   *regexp.Regexp
	receiverRegex *regexp.Regexp
	fieldRegex    *regexp.Regexp
}

// NewFuncIdentifier builds the code identifier of a function reference, for
// matching against the configured specifications.
func NewFuncIdentifier(f ir.FuncRef) CodeIdentifier {
	return CodeIdentifier{Package: f.Package, Method: f.Name, Receiver: f.Receiver}
}

// NewFieldIdentifier builds the code identifier of a field access on an
// object variable.
func NewFieldIdentifier(field string) CodeIdentifier {
	return CodeIdentifier{Field: field}
}

// CompileRegexes compiles the strings in the code identifier into regexes.
// It compiles all identifiers or none; on any compilation failure the
// identifier is returned unchanged and matches as plain strings.
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	packageRegex, err := regexp.Compile(cid.Package)
	if err != nil {
		return cid
	}
	methodRegex, err := regexp.Compile(cid.Method)
	if err != nil {
		return cid
	}
	receiverRegex, err := regexp.Compile(cid.Receiver)
	if err != nil {
		return cid
	}
	fieldRegex, err := regexp.Compile(cid.Field)
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{
		packageRegex,
		methodRegex,
		receiverRegex,
		fieldRegex,
	}
	return cid
}

// equalOnNonEmptyFields returns true if each of the receiver's fields are either equal to the corresponding
// argument's field, or the argument's field is empty
func (cid *CodeIdentifier) equalOnNonEmptyFields(cidRef CodeIdentifier) bool {
	if cidRef.computedRegexs != nil {
		return (cidRef.computedRegexs.packageRegex.MatchString(cid.Package) || cidRef.Package == "") &&
			(cidRef.computedRegexs.methodRegex.MatchString(cid.Method) || cidRef.Method == "") &&
			(cidRef.computedRegexs.receiverRegex.MatchString(cid.Receiver) || cidRef.Receiver == "") &&
			(cidRef.computedRegexs.fieldRegex.MatchString(cid.Field) || cidRef.Field == "")
	}
	return ((cid.Package == cidRef.Package) || (cidRef.Package == "")) &&
		((cid.Method == cidRef.Method) || (cidRef.Method == "")) &&
		((cid.Receiver == cidRef.Receiver) || (cidRef.Receiver == "")) &&
		((cid.Field == cidRef.Field) || (cidRef.Field == ""))
}

// ExistsCid is true if there is some x in a such that f(x) is true.
// O(len(a))
func ExistsCid(a []CodeIdentifier, f func(identifier CodeIdentifier) bool) bool {
	return funcutil.Exists(a, f)
}
