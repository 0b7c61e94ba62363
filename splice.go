package main

import (
	"os"
	"strings"
)

const posPlaceholder = "{pos}"

// markers holds the literal start and end delimiters of the generated region.
type markers struct {
	start string
	end   string
}

// expandMarkers fills the {pos} placeholder of a marker template with
// "start" and "end".
func expandMarkers(template string) markers {
	return markers{
		start: strings.ReplaceAll(template, posPlaceholder, "start"),
		end:   strings.ReplaceAll(template, posPlaceholder, "end"),
	}
}

// region is a document split around its markers. The text between the
// markers is dropped.
type region struct {
	before string
	after  string
}

// splitRegion locates the start and end markers in text. Each must appear
// exactly once, start before end.
func splitRegion(path, text string, m markers) (region, error) {
	if n := strings.Count(text, m.start); n != 1 {
		return region{}, &MarkerNotFoundError{Path: path, Marker: m.start, Count: n}
	}
	if n := strings.Count(text, m.end); n != 1 {
		return region{}, &MarkerNotFoundError{Path: path, Marker: m.end, Count: n}
	}
	before, rest, _ := strings.Cut(text, m.start)
	_, after, found := strings.Cut(rest, m.end)
	if !found {
		return region{}, &MarkerNotFoundError{Path: path, Marker: m.end, Count: 1}
	}
	return region{before: before, after: after}, nil
}

func (r region) join(m markers, body string) string {
	var b strings.Builder
	b.Grow(len(r.before) + len(m.start) + len(body) + len(m.end) + len(r.after))
	b.WriteString(r.before)
	b.WriteString(m.start)
	b.WriteString(body)
	b.WriteString(m.end)
	b.WriteString(r.after)
	return b.String()
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &MissingFileError{Path: path, Err: err}
	}
	return string(data), nil
}

// overwriteFile replaces the content of an existing file, keeping its
// permission bits.
func overwriteFile(path, content string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(content), perm)
}
