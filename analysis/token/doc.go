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
Package token contains the token graph the value-flow engine works on: a [List] of tokens stored in an arena and
addressed by stable indices, the expression tree links between tokens, and a [SymbolDatabase] of scopes, variables
and functions.

The graph is produced by a front end through a [Builder]; the value-flow engine only reads it and attaches values to
tokens. Navigation between tokens (next, previous, matching bracket, expression parent and operands) goes through
indices, so the cyclic structure never involves owning pointers.
*/
package token
