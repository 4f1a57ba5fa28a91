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

const (
	// CheckLevelNormal runs the analyses that are cheap enough for every run
	CheckLevelNormal = "normal"
	// CheckLevelExhaustive also runs the condition-expression analysis
	CheckLevelExhaustive = "exhaustive"
	// DefaultMaxForwardDepth is the default maximum nesting of branches followed by the forward analysis
	DefaultMaxForwardDepth = 32
	// DefaultMaxVisitedTokens is the default maximum number of tokens visited by one propagation
	DefaultMaxVisitedTokens = 100000
)
