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

// Package rewrite inserts validation guards at the start of function bodies.
//
// The rewrite is purely syntactic. Names are not resolved and types are not
// checked; a guard for a name that is not a parameter, or for a function
// whose last result cannot hold the error, fails when the output is
// compiled.
package rewrite

import (
	"go/ast"
	"go/token"
	"slices"
)

// ErrName is the name bound to the validation outcome inside each guard.
// The binding is scoped to the guard's if statement.
const ErrName = "guardErr"

// Func returns a copy of fn whose body starts with one guard per element of
// idents. Guards are inserted one at a time at the front of the body, so
// the guard for the last identifier comes first.
//
// fn is not modified. The returned declaration has its own body and
// statement list; the original statements are shared with fn and appear
// unchanged, in order, after the guards. A nil body is treated as empty.
func Func(idents []*ast.Ident, fn *ast.FuncDecl) *ast.FuncDecl {
	out := *fn
	body := &ast.BlockStmt{}
	if fn.Body != nil {
		*body = *fn.Body
	}
	list := make([]ast.Stmt, 0, len(idents)+len(body.List))
	list = append(list, body.List...)

	// Synthesized nodes are placed at the func keyword. Every comment
	// not yet printed when the body starts lies after the signature, so
	// the printer keeps comments with the original statements instead of
	// moving them into a guard.
	at := fn.Pos()
	for _, v := range idents {
		list = slices.Insert(list, 0, Guard(v, fn.Type.Results, at))
	}
	body.List = list
	out.Body = body
	return &out
}

// Guard returns the statement
//
//	if guardErr := v.Validate(); guardErr != nil {
//		return <zero values>, guardErr
//	}
//
// for a function with the given results. Every result but the last gets
// its zero value; the last one receives the error. A function without
// results gets a bare "return guardErr", which does not compile. All
// synthesized nodes are positioned at at.
func Guard(v *ast.Ident, results *ast.FieldList, at token.Pos) ast.Stmt {
	call := &ast.CallExpr{
		Fun: &ast.SelectorExpr{
			X:   ident(v.Name, at),
			Sel: ident("Validate", at),
		},
		Lparen: at,
		Rparen: at,
	}
	types := resultTypes(results)
	ret := &ast.ReturnStmt{Return: at}
	if len(types) > 0 {
		for _, typ := range types[:len(types)-1] {
			ret.Results = append(ret.Results, ZeroValue(typ, at))
		}
	}
	ret.Results = append(ret.Results, ident(ErrName, at))

	return &ast.IfStmt{
		If: at,
		Init: &ast.AssignStmt{
			Lhs:    []ast.Expr{ident(ErrName, at)},
			TokPos: at,
			Tok:    token.DEFINE,
			Rhs:    []ast.Expr{call},
		},
		Cond: &ast.BinaryExpr{
			X:     ident(ErrName, at),
			OpPos: at,
			Op:    token.NEQ,
			Y:     ident("nil", at),
		},
		Body: &ast.BlockStmt{
			Lbrace: at,
			List:   []ast.Stmt{ret},
			Rbrace: at,
		},
	}
}

// resultTypes returns one type expression per result slot. A field with
// several names contributes one slot per name.
func resultTypes(results *ast.FieldList) []ast.Expr {
	if results == nil {
		return nil
	}
	var types []ast.Expr
	for _, f := range results.List {
		n := max(len(f.Names), 1)
		for range n {
			types = append(types, f.Type)
		}
	}
	return types
}

var numeric = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "float32": true, "float64": true,
	"complex64": true, "complex128": true, "byte": true, "rune": true,
}

// ZeroValue returns an expression for the zero value of typ.
//
// Predeclared basic types map to their literal zero, nilable type literals
// and the error and any types map to nil, and everything else becomes
// *new(T). The decision is made on the syntax alone, so a local type that
// shadows a predeclared name is treated as the predeclared one.
func ZeroValue(typ ast.Expr, at token.Pos) ast.Expr {
	switch t := typ.(type) {
	case *ast.ParenExpr:
		return ZeroValue(t.X, at)

	case *ast.Ident:
		switch {
		case t.Name == "bool":
			return ident("false", at)
		case t.Name == "string":
			return &ast.BasicLit{ValuePos: at, Kind: token.STRING, Value: `""`}
		case numeric[t.Name]:
			return &ast.BasicLit{ValuePos: at, Kind: token.INT, Value: "0"}
		case t.Name == "error", t.Name == "any":
			return ident("nil", at)
		}

	case *ast.StarExpr, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType:
		return ident("nil", at)

	case *ast.ArrayType:
		if t.Len == nil {
			return ident("nil", at)
		}
	}

	return &ast.StarExpr{
		Star: at,
		X: &ast.CallExpr{
			Fun:    ident("new", at),
			Lparen: at,
			Args:   []ast.Expr{cloneExpr(typ, at)},
			Rparen: at,
		},
	}
}

func ident(name string, at token.Pos) *ast.Ident {
	return &ast.Ident{NamePos: at, Name: name}
}
