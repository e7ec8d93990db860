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

// Package directive locates and parses guard:validate directives.
//
// A directive is a line comment of the form
//
//	//guard:validate a, b, c
//
// in the doc comment of a function or method declaration. The argument is a
// comma-separated list of identifiers; it may be empty and may end in a
// comma.
package directive

import (
	"go/ast"
	"go/scanner"
	"go/token"
	"strings"

	"guardgen.dev/go/guard/errors"
)

// Prefix starts every directive comment.
const Prefix = "//guard:validate"

// IsDirective reports whether the text of a comment is a guard:validate
// directive.
func IsDirective(text string) bool {
	rest, ok := strings.CutPrefix(text, Prefix)
	if !ok {
		return false
	}
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// A Directive holds the directives attached to one function declaration.
type Directive struct {
	Func *ast.FuncDecl

	// Comments are the directive comments in source order. They are part of
	// Func.Doc.
	Comments []*ast.Comment

	// Idents holds the arguments of all Comments, concatenated in source
	// order.
	Idents []*ast.Ident
}

// Parse returns the identifiers listed in the directive comment c, in the
// order given. The identifiers are positioned inside the comment.
// It returns an error if c is not a directive or its argument is not a
// comma-separated list of identifiers.
func Parse(fset *token.FileSet, c *ast.Comment) ([]*ast.Ident, error) {
	if !IsDirective(c.Text) {
		return nil, errors.Newf(fset.Position(c.Slash), "not a guard:validate directive")
	}
	src := []byte(c.Text[len(Prefix):])
	base := c.Slash + token.Pos(len(Prefix))

	var errs errors.Error
	file := token.NewFileSet().AddFile("", -1, len(src))
	var s scanner.Scanner
	s.Init(file, src, func(p token.Position, msg string) {
		errs = errors.Append(errs, errors.Newf(fset.Position(base+token.Pos(p.Offset)), "guard:validate: %s", msg))
	}, 0)

	var idents []*ast.Ident
	needIdent := true
	for {
		pos, tok, lit := s.Scan()
		at := base + token.Pos(file.Offset(pos))
		if tok == token.EOF || tok == token.SEMICOLON && lit == "\n" {
			break
		}
		switch {
		case tok == token.IDENT && needIdent:
			idents = append(idents, &ast.Ident{NamePos: at, Name: lit})
			needIdent = false
			continue
		case tok == token.COMMA && !needIdent:
			needIdent = true
			continue
		case tok == token.ILLEGAL:
			// Already reported by the scanner.
		case needIdent:
			errs = errors.Append(errs, errors.Newf(fset.Position(at),
				"guard:validate: expected identifier, found %s", describe(tok, lit)))
		default:
			errs = errors.Append(errs, errors.Newf(fset.Position(at),
				"guard:validate: expected comma, found %s", describe(tok, lit)))
		}
		break
	}
	if errs != nil {
		return nil, errors.Sanitize(errs)
	}
	return idents, nil
}

func describe(tok token.Token, lit string) string {
	if tok.IsLiteral() {
		return lit
	}
	return "'" + tok.String() + "'"
}

// Find returns the directives of all function declarations in f, in
// declaration order. It reports malformed directives, directives outside
// a function's doc comment and directives on functions without a body.
// If any error is reported, no directives are returned.
func Find(fset *token.FileSet, f *ast.File) ([]Directive, error) {
	docs := map[*ast.CommentGroup]*ast.FuncDecl{}
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Doc != nil {
			docs[fn.Doc] = fn
		}
	}

	var errs errors.Error
	byFunc := map[*ast.FuncDecl]*Directive{}
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !IsDirective(c.Text) {
				continue
			}
			fn := docs[cg]
			if fn == nil {
				errs = errors.Append(errs, errors.Newf(fset.Position(c.Slash),
					"guard:validate directive must be in the doc comment of a function declaration"))
				continue
			}
			if fn.Body == nil {
				errs = errors.Append(errs, errors.Newf(fset.Position(c.Slash),
					"guard:validate directive on function %s without body", fn.Name.Name))
				continue
			}
			idents, err := Parse(fset, c)
			if err != nil {
				errs = errors.Append(errs, errors.Promote(err, ""))
				continue
			}
			d := byFunc[fn]
			if d == nil {
				d = &Directive{Func: fn}
				byFunc[fn] = d
			}
			d.Comments = append(d.Comments, c)
			d.Idents = append(d.Idents, idents...)
		}
	}
	if errs != nil {
		return nil, errors.Sanitize(errs)
	}

	var dirs []Directive
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && byFunc[fn] != nil {
			dirs = append(dirs, *byFunc[fn])
		}
	}
	return dirs, nil
}
