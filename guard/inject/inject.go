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

// Package inject applies guard:validate directives to Go source files.
package inject

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/scanner"
	"go/token"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/tools/go/ast/astutil"

	"guardgen.dev/go/guard/directive"
	"guardgen.dev/go/guard/errors"
	"guardgen.dev/go/guard/rewrite"
)

// Config configures the injector. The zero value is ready to use.
type Config struct {
	// Logger receives a debug entry per rewritten function.
	// A nil Logger discards all output.
	Logger *zap.Logger
}

func (c *Config) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// File rewrites every function in f that carries a directive, using the
// zero Config. See [Config.File].
func File(fset *token.FileSet, f *ast.File) (n int, err error) {
	return (*Config)(nil).File(fset, f)
}

// Source rewrites the Go source src, using the zero Config. See
// [Config.Source].
func Source(filename string, src []byte) ([]byte, error) {
	return (*Config)(nil).Source(filename, src)
}

// File rewrites every function in f that carries a directive and reports
// how many functions were rewritten.
//
// f is modified in place: each annotated declaration is replaced by its
// rewritten copy, and the directive comments are removed from the
// declaration's doc comment and from f.Comments. If any directive is
// invalid, f is left unchanged and the errors are returned.
func (c *Config) File(fset *token.FileSet, f *ast.File) (n int, err error) {
	dirs, err := directive.Find(fset, f)
	if err != nil {
		return 0, err
	}
	if len(dirs) == 0 {
		return 0, nil
	}
	log := c.logger()

	repl := make(map[*ast.FuncDecl]*ast.FuncDecl, len(dirs))
	docs := make(map[*ast.CommentGroup]*ast.CommentGroup, len(dirs))
	for _, d := range dirs {
		out := rewrite.Func(d.Idents, d.Func)
		out.Doc = dropComments(d.Func.Doc, d.Comments)
		repl[d.Func] = out
		docs[d.Func.Doc] = out.Doc

		log.Debug("rewrote function",
			zap.String("func", funcName(d.Func)),
			zap.Stringer("pos", fset.Position(d.Func.Pos())),
			zap.Int("guards", len(d.Idents)),
		)
	}

	astutil.Apply(f, func(cur *astutil.Cursor) bool {
		switch x := cur.Node().(type) {
		case *ast.File:
			return true
		case *ast.FuncDecl:
			if out, ok := repl[x]; ok {
				cur.Replace(out)
			}
		}
		return false
	}, nil)

	var comments []*ast.CommentGroup
	for _, cg := range f.Comments {
		if doc, ok := docs[cg]; ok {
			if doc == nil {
				continue
			}
			cg = doc
		}
		comments = append(comments, cg)
	}
	f.Comments = comments
	return len(dirs), nil
}

// dropComments returns doc without the comments in drop, or nil if
// nothing remains. The remaining comments take the positions of the last
// comments of doc so that the group stays directly above the declaration.
func dropComments(doc *ast.CommentGroup, drop []*ast.Comment) *ast.CommentGroup {
	var keep []*ast.Comment
	for _, c := range doc.List {
		if !slices.Contains(drop, c) {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	shift := len(doc.List) - len(keep)
	g := &ast.CommentGroup{List: make([]*ast.Comment, len(keep))}
	for i, c := range keep {
		g.List[i] = &ast.Comment{Slash: doc.List[shift+i].Slash, Text: c.Text}
	}
	return g
}

func funcName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	typ := fn.Recv.List[0].Type
	for {
		switch x := typ.(type) {
		case *ast.StarExpr:
			typ = x.X
			continue
		case *ast.IndexExpr:
			typ = x.X
			continue
		case *ast.IndexListExpr:
			typ = x.X
			continue
		case *ast.Ident:
			return x.Name + "." + fn.Name.Name
		}
		return fn.Name.Name
	}
}

// Source parses src as the Go file filename, rewrites it with c.File and
// returns the formatted result. If src has no directives it is returned
// unchanged. If the rewritten file cannot be formatted, the unformatted
// output is returned along with the error.
func (c *Config) Source(filename string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, parseError(err)
	}
	n, err := c.File(fset, f)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return src, nil
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return nil, errors.Wrapf(err, token.Position{Filename: filename}, "cannot print rewritten file")
	}
	b, err := format.Source(buf.Bytes())
	if err != nil {
		// Return bytes as well to allow analysis of the failed Go code.
		return buf.Bytes(), errors.Wrapf(err, token.Position{Filename: filename}, "cannot format rewritten file")
	}
	return b, nil
}

// parseError converts the errors reported by go/parser to positioned
// errors.
func parseError(err error) error {
	var list scanner.ErrorList
	if !errors.As(err, &list) {
		return errors.Promote(err, "")
	}
	var errs errors.Error
	for _, e := range list {
		errs = errors.Append(errs, errors.Newf(e.Pos, "%s", e.Msg))
	}
	return errors.Sanitize(errs)
}
