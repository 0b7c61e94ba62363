package main

import (
	"context"
	"errors"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/inspector"
)

// goExtractor reads Go source files. The method receiver counts as the
// first declared parameter.
type goExtractor struct{}

func (goExtractor) extract(ctx context.Context, path string, src []byte, prefix string) ([]CommandEntry, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, goParseError(path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []CommandEntry
	insp := inspector.New([]*ast.File{file})
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		decl := n.(*ast.FuncDecl)
		if decl.Name == nil || !strings.HasPrefix(decl.Name.Name, prefix) {
			return
		}
		var params []string
		params = appendFieldNames(params, decl.Recv)
		params = appendFieldNames(params, decl.Type.Params)
		entries = append(entries, CommandEntry{
			Name:        strings.TrimPrefix(decl.Name.Name, prefix),
			Parameters:  dropFirst(params),
			Description: strings.TrimSuffix(decl.Doc.Text(), "\n"),
		})
	})
	return entries, nil
}

func appendFieldNames(names []string, fields *ast.FieldList) []string {
	if fields == nil {
		return names
	}
	for _, field := range fields.List {
		if len(field.Names) == 0 {
			names = append(names, "_")
			continue
		}
		for _, name := range field.Names {
			names = append(names, name.Name)
		}
	}
	return names
}

func goParseError(path string, err error) error {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return &ParseError{
			Path:   path,
			Line:   first.Pos.Line,
			Column: first.Pos.Column,
			Msg:    first.Msg,
		}
	}
	return &ParseError{Path: path, Msg: err.Error()}
}
