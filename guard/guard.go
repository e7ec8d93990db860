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

// Package guard defines the contract for values that can check their own
// validity, and documents the directive that makes guardgen insert those
// checks into functions.
//
// A function declaration opts in with a directive in its doc comment:
//
//	//guard:validate req, opts
//	func Handle(req Request, opts Options) (Response, error) {
//		...
//	}
//
// guardgen rewrites the body so that each listed parameter is validated
// before the original statements run. A guard is inserted at the front of
// the body for each name in turn, so the last name listed is checked
// first. A failing check returns the zero value for every result except
// the last, which receives the error:
//
//	func Handle(req Request, opts Options) (Response, error) {
//		if guardErr := opts.Validate(); guardErr != nil {
//			return *new(Response), guardErr
//		}
//		if guardErr := req.Validate(); guardErr != nil {
//			return *new(Response), guardErr
//		}
//		...
//	}
//
// Names are not checked against the parameter list and types are not
// checked against Validatable; mistakes show up when the rewritten code
// is compiled.
package guard

// Validatable is implemented by values that can report whether they are
// valid. Validate returns nil for a valid value.
type Validatable interface {
	Validate() error
}

// Check calls Validate on each value in order and returns the first
// non-nil error.
func Check(vs ...Validatable) error {
	for _, v := range vs {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
