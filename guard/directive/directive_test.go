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

package directive_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/go-quicktest/qt"

	"guardgen.dev/go/guard/directive"
	"guardgen.dev/go/guard/errors"
)

func TestIsDirective(t *testing.T) {
	qt.Assert(t, qt.IsTrue(directive.IsDirective("//guard:validate")))
	qt.Assert(t, qt.IsTrue(directive.IsDirective("//guard:validate a")))
	qt.Assert(t, qt.IsTrue(directive.IsDirective("//guard:validate\ta")))
	qt.Assert(t, qt.IsFalse(directive.IsDirective("//guard:validated a")))
	qt.Assert(t, qt.IsFalse(directive.IsDirective("// guard:validate a")))
	qt.Assert(t, qt.IsFalse(directive.IsDirective("/*guard:validate a*/")))
}

func TestParse(t *testing.T) {
	tests := []struct {
		text    string
		want    []string
		wantErr string
		wantCol int
	}{{
		text: "//guard:validate x, y",
		want: []string{"x", "y"},
	}, {
		text: "//guard:validate",
	}, {
		text: "//guard:validate   ",
	}, {
		text: "//guard:validate x,",
		want: []string{"x"},
	}, {
		text: "//guard:validate\tx",
		want: []string{"x"},
	}, {
		text: "//guard:validate b,a,b",
		want: []string{"b", "a", "b"},
	}, {
		text: "//guard:validate x // checked first",
		want: []string{"x"},
	}, {
		text:    "//guard:validate x,,y",
		wantErr: "guard:validate: expected identifier, found ','",
		wantCol: 20,
	}, {
		text:    "//guard:validate ,x",
		wantErr: "guard:validate: expected identifier, found ','",
		wantCol: 18,
	}, {
		text:    "//guard:validate x.y",
		wantErr: "guard:validate: expected comma, found '.'",
		wantCol: 19,
	}, {
		text:    "//guard:validate 1x",
		wantErr: "guard:validate: expected identifier, found 1",
		wantCol: 18,
	}, {
		text:    "//guard:validate x y",
		wantErr: "guard:validate: expected comma, found y",
		wantCol: 20,
	}, {
		text:    "//guard:validate func",
		wantErr: "guard:validate: expected identifier, found 'func'",
		wantCol: 18,
	}, {
		text:    "//guard:validate x, \"y\"",
		wantErr: `guard:validate: expected identifier, found "y"`,
		wantCol: 21,
	}}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			fset := token.NewFileSet()
			src := "package p\n\n" + tt.text + "\nfunc f() {}\n"
			f, err := parser.ParseFile(fset, "x.go", src, parser.ParseComments)
			qt.Assert(t, qt.IsNil(err))
			c := f.Comments[0].List[0]

			idents, err := directive.Parse(fset, c)
			if tt.wantErr != "" {
				qt.Assert(t, qt.ErrorMatches(err, tt.wantErr))
				pos := errors.Positions(err)
				qt.Assert(t, qt.HasLen(pos, 1))
				qt.Assert(t, qt.Equals(pos[0].Line, 3))
				qt.Assert(t, qt.Equals(pos[0].Column, tt.wantCol))
				return
			}
			qt.Assert(t, qt.IsNil(err))
			var got []string
			for _, id := range idents {
				got = append(got, id.Name)
				// Identifiers point into the comment.
				p := fset.Position(id.Pos())
				qt.Assert(t, qt.Equals(p.Line, 3))
				qt.Assert(t, qt.Equals(tt.text[p.Column-1:p.Column-1+len(id.Name)], id.Name))
			}
			qt.Assert(t, qt.DeepEquals(got, tt.want))
		})
	}
}

func TestFind(t *testing.T) {
	const src = `package p

// A does a.
//
//guard:validate x
//guard:validate y, z
func A(x, y, z T) error { return nil }

//guard:validate v
func (r R) B(v T) error { return nil }

// C has no directive.
func C() {}

//guard:validate
func D(v T) error { return nil }
`
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "x.go", src, parser.ParseComments)
	qt.Assert(t, qt.IsNil(err))

	dirs, err := directive.Find(fset, f)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(dirs, 3))

	names := func(ids []*ast.Ident) []string {
		var a []string
		for _, id := range ids {
			a = append(a, id.Name)
		}
		return a
	}
	qt.Assert(t, qt.Equals(dirs[0].Func.Name.Name, "A"))
	qt.Assert(t, qt.HasLen(dirs[0].Comments, 2))
	qt.Assert(t, qt.DeepEquals(names(dirs[0].Idents), []string{"x", "y", "z"}))

	qt.Assert(t, qt.Equals(dirs[1].Func.Name.Name, "B"))
	qt.Assert(t, qt.DeepEquals(names(dirs[1].Idents), []string{"v"}))

	qt.Assert(t, qt.Equals(dirs[2].Func.Name.Name, "D"))
	qt.Assert(t, qt.HasLen(dirs[2].Idents, 0))
}

func TestFindErrors(t *testing.T) {
	const src = `package p

//guard:validate x
var v int

func F() {
	//guard:validate y
}

//guard:validate z
func Ext(z T) error

//guard:validate ,
func G(a T) error { return nil }

//guard:validate a
func H(a T) error { return nil }
`
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "x.go", src, parser.ParseComments)
	qt.Assert(t, qt.IsNil(err))

	dirs, err := directive.Find(fset, f)
	qt.Assert(t, qt.IsNil(dirs))
	qt.Assert(t, qt.IsNotNil(err))

	var lines []int
	var msgs []string
	for _, e := range errors.Errors(err) {
		lines = append(lines, e.Position().Line)
		msgs = append(msgs, e.Error())
	}
	qt.Assert(t, qt.DeepEquals(lines, []int{3, 7, 10, 13}))
	qt.Assert(t, qt.DeepEquals(msgs, []string{
		"guard:validate directive must be in the doc comment of a function declaration",
		"guard:validate directive must be in the doc comment of a function declaration",
		"guard:validate directive on function Ext without body",
		"guard:validate: expected identifier, found ','",
	}))
}
