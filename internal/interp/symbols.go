// Copyright 2026 The guardgen Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interp

import (
	"reflect"

	"guardgen.dev/go/guard"
)

// Symbols exports the guard package to interpreted programs, in the form
// produced by yaegi extract.
var Symbols = map[string]map[string]reflect.Value{
	"guardgen.dev/go/guard/guard": {
		// function, constant and variable definitions
		"Check": reflect.ValueOf(guard.Check),

		// type definitions
		"Validatable": reflect.ValueOf((*guard.Validatable)(nil)),

		// interface wrapper definitions
		"_Validatable": reflect.ValueOf((*_guardgen_dev_go_guard_Validatable)(nil)),
	},
}

// _guardgen_dev_go_guard_Validatable is an interface wrapper for Validatable type
type _guardgen_dev_go_guard_Validatable struct {
	IValue    interface{}
	WValidate func() error
}

func (W _guardgen_dev_go_guard_Validatable) Validate() error {
	return W.WValidate()
}
