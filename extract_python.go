package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"golang.org/x/text/unicode/runenames"
)

// pythonExtractor reads Python modules with the tree-sitter grammar.
type pythonExtractor struct{}

// Syntax nodes with no counterpart in Python's own AST. The walk looks
// through them so that breadth-first order matches ast.walk.
var transparentPythonNodes = map[string]bool{
	"block":                true,
	"decorated_definition": true,
	"else_clause":          true,
	"finally_clause":       true,
}

func (pythonExtractor) extract(ctx context.Context, path string, src []byte, prefix string) ([]CommandEntry, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, pythonSyntaxError(path, root)
	}

	var entries []CommandEntry
	queue := pythonChildren(root)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if err := checkPythonNode(path, node); err != nil {
			return nil, err
		}
		if node.Type() == "function_definition" {
			if entry, ok := pythonCommand(node, src, prefix); ok {
				entries = append(entries, entry)
			}
		}
		queue = append(queue, pythonChildren(node)...)
	}
	return entries, nil
}

// pythonChildren returns the children of node as Python's AST would
// list them. An if statement owns its first elif (or its else body) and
// each elif owns the next one, so a chain nests one level per clause.
func pythonChildren(node *sitter.Node) []*sitter.Node {
	count := int(node.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	conditional := node.Type() == "if_statement" || node.Type() == "elif_clause"
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if conditional && (child.Type() == "elif_clause" || child.Type() == "else_clause") {
			continue
		}
		if transparentPythonNodes[child.Type()] {
			children = append(children, pythonChildren(child)...)
			continue
		}
		children = append(children, child)
	}
	if conditional {
		switch next := nextPythonClause(node); {
		case next == nil:
		case next.Type() == "elif_clause":
			children = append(children, next)
		default:
			children = append(children, pythonChildren(next)...)
		}
	}
	return children
}

func nextPythonClause(node *sitter.Node) *sitter.Node {
	var next *sitter.Node
	if node.Type() == "if_statement" {
		next = node.ChildByFieldName("alternative")
	} else {
		next = node.NextNamedSibling()
	}
	for next != nil && next.Type() == "comment" {
		next = next.NextNamedSibling()
	}
	if next == nil || (next.Type() != "elif_clause" && next.Type() != "else_clause") {
		return nil
	}
	return next
}

// checkPythonNode rejects constructs the grammar accepts but Python 3
// does not.
func checkPythonNode(path string, node *sitter.Node) error {
	switch node.Type() {
	case "print_statement":
		return pythonNodeError(path, node, "print is a function in Python 3")
	case "exec_statement":
		return pythonNodeError(path, node, "exec is a function in Python 3")
	case "parameters", "lambda_parameters":
		if bad := defaultOrderViolation(node); bad != nil {
			return pythonNodeError(path, bad, "parameter without a default follows parameter with a default")
		}
	}
	return nil
}

// defaultOrderViolation returns the first positional parameter lacking a
// default after one that has it. The rule spans the "/" separator and
// ends at the first star.
func defaultOrderViolation(params *sitter.Node) *sitter.Node {
	sawDefault := false
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		if param == nil {
			continue
		}
		switch param.Type() {
		case "default_parameter", "typed_default_parameter":
			sawDefault = true
		case "identifier":
			if sawDefault {
				return param
			}
		case "typed_parameter":
			if first := param.NamedChild(0); first == nil || first.Type() != "identifier" {
				return nil
			}
			if sawDefault {
				return param
			}
		case "keyword_separator", "list_splat_pattern", "dictionary_splat_pattern":
			return nil
		}
	}
	return nil
}

func pythonNodeError(path string, node *sitter.Node, msg string) error {
	point := node.StartPoint()
	return &ParseError{
		Path:   path,
		Line:   int(point.Row) + 1,
		Column: int(point.Column) + 1,
		Msg:    msg,
	}
}

func pythonSyntaxError(path string, root *sitter.Node) error {
	bad := firstErrorNode(root)
	if bad == nil {
		return &ParseError{Path: path, Msg: "invalid syntax"}
	}
	msg := "invalid syntax"
	if bad.IsMissing() {
		msg = fmt.Sprintf("expected %q", bad.Type())
	}
	return pythonNodeError(path, bad, msg)
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

func pythonCommand(node *sitter.Node, src []byte, prefix string) (CommandEntry, bool) {
	// async def is a separate node kind in Python's AST.
	if first := node.Child(0); first != nil && first.Type() == "async" {
		return CommandEntry{}, false
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return CommandEntry{}, false
	}
	name := nameNode.Content(src)
	if !strings.HasPrefix(name, prefix) {
		return CommandEntry{}, false
	}
	var params []string
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		params = pythonPositionalParams(paramsNode, src)
	}
	return CommandEntry{
		Name:        strings.TrimPrefix(name, prefix),
		Parameters:  dropFirst(params),
		Description: pythonDocstring(node.ChildByFieldName("body"), src),
	}, true
}

// pythonPositionalParams returns the names Python stores in
// arguments.args: positional-only parameters and everything from the
// first star onwards are left out.
func pythonPositionalParams(params *sitter.Node, src []byte) []string {
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		if param == nil {
			continue
		}
		switch param.Type() {
		case "identifier":
			names = append(names, param.Content(src))
		case "default_parameter", "typed_default_parameter":
			if name := param.ChildByFieldName("name"); name != nil {
				names = append(names, name.Content(src))
			}
		case "typed_parameter":
			first := param.NamedChild(0)
			if first == nil || first.Type() != "identifier" {
				return names
			}
			names = append(names, first.Content(src))
		case "positional_separator":
			names = names[:0]
		case "keyword_separator", "list_splat_pattern", "dictionary_splat_pattern":
			return names
		}
	}
	return names
}

func pythonDocstring(body *sitter.Node, src []byte) string {
	if body == nil {
		return ""
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil || stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return ""
		}
		// A trailing comma makes a one-element tuple.
		if last := stmt.Child(int(stmt.ChildCount()) - 1); last != nil && last.Type() == "," {
			return ""
		}
		text, ok := pythonStringValue(stmt.NamedChild(0), src)
		if !ok {
			return ""
		}
		return cleanDocstring(text)
	}
	return ""
}

func pythonStringValue(node *sitter.Node, src []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Type() {
	case "string":
		return decodePythonLiteral(node.Content(src))
	case "concatenated_string":
		var b strings.Builder
		for i := 0; i < int(node.NamedChildCount()); i++ {
			part := node.NamedChild(i)
			if part == nil || part.Type() == "comment" {
				continue
			}
			text, ok := pythonStringValue(part, src)
			if !ok {
				return "", false
			}
			b.WriteString(text)
		}
		return b.String(), true
	case "parenthesized_expression":
		if node.NamedChildCount() != 1 {
			return "", false
		}
		return pythonStringValue(node.NamedChild(0), src)
	default:
		return "", false
	}
}

// decodePythonLiteral evaluates a str literal. Bytes, f-strings and
// template strings are rejected.
func decodePythonLiteral(lit string) (string, bool) {
	idx := strings.IndexAny(lit, `"'`)
	if idx < 0 {
		return "", false
	}
	prefix := strings.ToLower(lit[:idx])
	if strings.ContainsAny(prefix, "bft") {
		return "", false
	}
	body := lit[idx:]
	quote := body[:1]
	if strings.HasPrefix(body, strings.Repeat(quote, 3)) && len(body) >= 6 {
		quote = strings.Repeat(quote, 3)
	}
	if len(body) < 2*len(quote) {
		return "", false
	}
	inner := body[len(quote) : len(body)-len(quote)]
	inner = strings.ReplaceAll(inner, "\r\n", "\n")
	inner = strings.ReplaceAll(inner, "\r", "\n")
	if strings.Contains(prefix, "r") {
		return inner, true
	}
	return unescapePython(inner), true
}

func unescapePython(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			end := i + 1
			for end < len(s) && end < i+3 && s[end] >= '0' && s[end] <= '7' {
				end++
			}
			v, _ := strconv.ParseUint(s[i:end], 8, 32)
			b.WriteRune(rune(v))
			i = end - 1
		case 'x', 'u', 'U':
			width := hexEscapeWidth(e)
			if i+width < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32); err == nil && v <= unicode.MaxRune {
					b.WriteRune(rune(v))
					i += width
					continue
				}
			}
			b.WriteByte('\\')
			b.WriteByte(e)
		case 'N':
			if name, ok := strings.CutPrefix(s[i+1:], "{"); ok {
				if end := strings.IndexByte(name, '}'); end > 0 {
					if r, found := runeByName(name[:end]); found {
						b.WriteRune(r)
						i += end + 2
						continue
					}
				}
			}
			b.WriteByte('\\')
			b.WriteByte(e)
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String()
}

var (
	runeNamesOnce sync.Once
	runeNames     map[string]rune
)

// runeByName resolves the NAME of a \N{NAME} escape. Names match
// case-insensitively; aliases are not known.
func runeByName(name string) (rune, bool) {
	runeNamesOnce.Do(func() {
		runeNames = make(map[string]rune, 1<<15)
		for r := rune(0); r <= unicode.MaxRune; r++ {
			if n := runenames.Name(r); n != "" && !strings.HasPrefix(n, "<") {
				runeNames[n] = r
			}
		}
	})
	r, ok := runeNames[strings.ToUpper(name)]
	return r, ok
}

func hexEscapeWidth(e byte) int {
	switch e {
	case 'x':
		return 2
	case 'u':
		return 4
	default:
		return 8
	}
}

// cleanDocstring normalizes docstring indentation the way Python's
// inspect.cleandoc does.
func cleanDocstring(doc string) string {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		lines[i] = expandTabs(line, 8)
	}
	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeftFunc(line, unicode.IsSpace)
		if content == "" {
			continue
		}
		indent := utf8.RuneCountInString(line[:len(line)-len(content)])
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	lines[0] = strings.TrimLeftFunc(lines[0], unicode.IsSpace)
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			lines[i] = dropRunes(lines[i], margin)
		}
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func expandTabs(line string, size int) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := size - col%size
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

func dropRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}
