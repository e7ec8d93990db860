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

package rewrite

import (
	"go/ast"
	"go/token"
)

// cloneExpr returns a deep copy of the type expression x with every
// position set to at. Comments attached to fields are dropped.
func cloneExpr(x ast.Expr, at token.Pos) ast.Expr {
	switch x := x.(type) {
	case nil:
		return nil
	case *ast.Ident:
		return ident(x.Name, at)
	case *ast.BasicLit:
		return &ast.BasicLit{ValuePos: at, Kind: x.Kind, Value: x.Value}
	case *ast.ParenExpr:
		return &ast.ParenExpr{Lparen: at, X: cloneExpr(x.X, at), Rparen: at}
	case *ast.SelectorExpr:
		return &ast.SelectorExpr{X: cloneExpr(x.X, at), Sel: ident(x.Sel.Name, at)}
	case *ast.StarExpr:
		return &ast.StarExpr{Star: at, X: cloneExpr(x.X, at)}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{OpPos: at, Op: x.Op, X: cloneExpr(x.X, at)}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{X: cloneExpr(x.X, at), OpPos: at, Op: x.Op, Y: cloneExpr(x.Y, at)}
	case *ast.CallExpr:
		c := &ast.CallExpr{Fun: cloneExpr(x.Fun, at), Lparen: at, Rparen: at}
		c.Args = cloneExprs(x.Args, at)
		if x.Ellipsis.IsValid() {
			c.Ellipsis = at
		}
		return c
	case *ast.Ellipsis:
		return &ast.Ellipsis{Ellipsis: at, Elt: cloneExpr(x.Elt, at)}
	case *ast.ArrayType:
		return &ast.ArrayType{Lbrack: at, Len: cloneExpr(x.Len, at), Elt: cloneExpr(x.Elt, at)}
	case *ast.MapType:
		return &ast.MapType{Map: at, Key: cloneExpr(x.Key, at), Value: cloneExpr(x.Value, at)}
	case *ast.ChanType:
		c := &ast.ChanType{Begin: at, Dir: x.Dir, Value: cloneExpr(x.Value, at)}
		if x.Arrow.IsValid() {
			c.Arrow = at
		}
		return c
	case *ast.FuncType:
		return &ast.FuncType{
			Func:       at,
			TypeParams: cloneFields(x.TypeParams, at),
			Params:     cloneFields(x.Params, at),
			Results:    cloneFields(x.Results, at),
		}
	case *ast.StructType:
		return &ast.StructType{Struct: at, Fields: cloneFields(x.Fields, at)}
	case *ast.InterfaceType:
		return &ast.InterfaceType{Interface: at, Methods: cloneFields(x.Methods, at)}
	case *ast.IndexExpr:
		return &ast.IndexExpr{X: cloneExpr(x.X, at), Lbrack: at, Index: cloneExpr(x.Index, at), Rbrack: at}
	case *ast.IndexListExpr:
		return &ast.IndexListExpr{X: cloneExpr(x.X, at), Lbrack: at, Indices: cloneExprs(x.Indices, at), Rbrack: at}
	}
	// Not a type expression; share it.
	return x
}

func cloneExprs(list []ast.Expr, at token.Pos) []ast.Expr {
	if list == nil {
		return nil
	}
	out := make([]ast.Expr, len(list))
	for i, x := range list {
		out[i] = cloneExpr(x, at)
	}
	return out
}

func cloneFields(fl *ast.FieldList, at token.Pos) *ast.FieldList {
	if fl == nil {
		return nil
	}
	out := &ast.FieldList{List: make([]*ast.Field, len(fl.List))}
	if fl.Opening.IsValid() {
		out.Opening = at
	}
	if fl.Closing.IsValid() {
		out.Closing = at
	}
	for i, f := range fl.List {
		g := &ast.Field{Type: cloneExpr(f.Type, at)}
		for _, n := range f.Names {
			g.Names = append(g.Names, ident(n.Name, at))
		}
		if f.Tag != nil {
			g.Tag = &ast.BasicLit{ValuePos: at, Kind: f.Tag.Kind, Value: f.Tag.Value}
		}
		out.List[i] = g
	}
	return out
}
