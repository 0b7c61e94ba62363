package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CommandEntry describes one command function found in the source module.
type CommandEntry struct {
	// Name is the function name with the command prefix removed.
	Name string `json:"name" yaml:"name"`
	// Parameters lists the declared parameter names, first one excluded.
	Parameters []string `json:"parameters" yaml:"parameters"`
	// Description is the cleaned docstring, empty when there is none.
	Description string `json:"description" yaml:"description"`
}

// sourceExtractor finds command functions in a single source file.
type sourceExtractor interface {
	extract(ctx context.Context, path string, src []byte, prefix string) ([]CommandEntry, error)
}

const (
	langAuto   = "auto"
	langPython = "python"
	langGo     = "go"
)

var extensionLanguages = map[string]string{
	".py":  langPython,
	".pyi": langPython,
	".go":  langGo,
}

func resolveLanguage(lang, path string) (string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == langAuto {
		ext := strings.ToLower(filepath.Ext(path))
		detected, ok := extensionLanguages[ext]
		if !ok {
			return "", fmt.Errorf("cannot detect source language of %s; use --lang", path)
		}
		return detected, nil
	}
	switch lang {
	case langPython, langGo:
		return lang, nil
	default:
		return "", fmt.Errorf("unsupported source language %q", lang)
	}
}

func newSourceExtractor(lang string) sourceExtractor {
	switch lang {
	case langGo:
		return goExtractor{}
	default:
		return pythonExtractor{}
	}
}

// extractCommands reads the source file at path and returns its command
// functions in tree-walk order.
func extractCommands(ctx context.Context, path, lang, prefix string) ([]CommandEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resolved, err := resolveLanguage(lang, path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &MissingFileError{Path: path, Err: err}
	}
	entries, err := newSourceExtractor(resolved).extract(ctx, path, src, prefix)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []CommandEntry{}
	}
	return entries, nil
}

// dropFirst removes the implicit receiver from a parameter list.
func dropFirst(params []string) []string {
	if len(params) <= 1 {
		return []string{}
	}
	return append([]string{}, params[1:]...)
}
