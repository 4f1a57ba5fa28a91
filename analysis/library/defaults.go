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

package library

import "github.com/awslabs/ar-c-valueflow/analysis/config"

func fid(name string) config.FunctionIdentifier {
	return config.FunctionIdentifier{Name: name}
}

func stdFid(name string) config.FunctionIdentifier {
	return config.FunctionIdentifier{Name: name, Namespace: "std"}
}

var defaultSpecs = []config.FunctionSpec{
	{
		FunctionIdentifier: fid("exit|_exit|_Exit|quick_exit|abort|longjmp|siglongjmp|pthread_exit|thrd_exit|" +
			"__assert_fail|__assert_rtn|__builtin_unreachable|__builtin_trap|err|errx|verr|verrx"),
		NoReturn: true,
	},
	{
		FunctionIdentifier: stdFid("exit|_Exit|quick_exit|abort|terminate|rethrow_exception|throw_with_nested"),
		NoReturn:           true,
	},
	{
		FunctionIdentifier: fid("strlen|strnlen|strcmp|strncmp|strcasecmp|memcmp|strchr|strrchr|strstr|strspn|" +
			"strcspn|abs|labs|llabs|isalpha|isdigit|isalnum|isspace|isupper|islower|isxdigit|isprint|ispunct|" +
			"toupper|tolower|atoi|atol|atoll|sqrt|fabs|floor|ceil"),
		Pure: true,
	},
	{
		FunctionIdentifier: fid("printf|fprintf|dprintf|puts|fputs|putchar|fputc|putc|perror|fwrite|write|send|" +
			"free|assert"),
		ConstArgs: []int{0},
	},
	{
		FunctionIdentifier: fid("strcpy|strncpy|strcat|strncat|memcpy|memmove|strlcpy|strlcat"),
		ConstArgs:          []int{2},
	},
	{
		FunctionIdentifier: fid("sprintf|snprintf"),
		ConstArgs:          []int{2, 3, 4, 5, 6, 7, 8, 9},
	},
}

// Default returns the annotations of the C and C++ standard libraries
func Default() *Library {
	return New(defaultSpecs...)
}
