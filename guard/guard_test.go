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

package guard_test

import (
	"errors"
	"testing"

	"github.com/go-quicktest/qt"

	"guardgen.dev/go/guard"
)

type limit int

func (l limit) Validate() error {
	if l < 0 {
		return errors.New("negative")
	}
	return nil
}

func TestCheck(t *testing.T) {
	qt.Assert(t, qt.IsNil(guard.Check()))
	qt.Assert(t, qt.IsNil(guard.Check(limit(1), limit(2))))
	qt.Assert(t, qt.ErrorMatches(guard.Check(limit(1), limit(-1)), "negative"))
}
