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

/*
Package config manages the tool's configuration files and leveled logging.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file is in yaml format. The top-level fields can be any of the fields defined in the [Config]
struct type; nested fields follow the types of those fields. For example, a valid config file is as follows:

	log-level: 4

	taint-tracking-problems:
	    - sources:
	        - method: Read
	      sinks:
	        - package: fmt
	          method: Printf

# Identifying code elements

The config uses [CodeIdentifier] to identify specific code entities, such as sources, sinks and sanitizers.
An identifier names a function by package, method and receiver, or a field access by field name.
String specifications are treated as regexes when they compile as regexes, and as plain strings otherwise.
*/
package config
