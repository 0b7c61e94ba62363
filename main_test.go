package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"
)

const (
	fixturePrefix = "# Plasma\n\nIntro text.\n\n## Commands\n\n<!--commands-start-->\n"
	fixtureSuffix = "<!--commands-end-->\n\nFooter.\n"
)

// copyFixture copies a testdata file into a fresh temp dir so tests never
// modify the checked-in fixtures.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	target := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return target
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestSyncWritesTable(t *testing.T) {
	readme := copyFixture(t, "README.md")
	var buf bytes.Buffer
	if err := run([]string{"--readme", readme, "--source", "testdata/layout.py"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	assertContains(t, buf.String(), `Commands written to "`+readme+`".`)

	out := readString(t, readme)
	if !strings.HasPrefix(out, fixturePrefix) {
		t.Fatalf("content before the start marker changed:\n\n%s", out)
	}
	if !strings.HasSuffix(out, fixtureSuffix) {
		t.Fatalf("content after the end marker changed:\n\n%s", out)
	}
	if strings.Contains(out, "stale content") {
		t.Fatalf("old region body was kept:\n\n%s", out)
	}
	assertContains(t, out, "<!--commands-start-->\n<table>\n  <tr>\n")
	assertContains(t, out, "</table>\n<!--commands-end-->\n")
	assertContains(t, out, "    <td><code>resize(width, height)</code></td>\n    <td>Resize the node.</td>\n")
	assertContains(t, out, "<td>Toggle the split direction.<br>\nUse <code>mode</code> to pick the orientation.</td>")
	assertContains(t, out, "<td><code>info()</code></td>\n    <td></td>")
	assertContains(t, out, "<td><code>nested(value)</code></td>")
}

func TestSyncIsIdempotent(t *testing.T) {
	readme := copyFixture(t, "README.md")
	args := []string{"-r", readme, "-s", "testdata/layout.py"}
	if err := run(args, io.Discard); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := readString(t, readme)
	if err := run(args, io.Discard); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second := readString(t, readme); second != first {
		t.Fatalf("second run changed the file:\n\n%s\n\nvs\n\n%s", first, second)
	}
}

func TestSyncEmptySource(t *testing.T) {
	readme := copyFixture(t, "README.md")
	source := filepath.Join(t.TempDir(), "empty.py")
	if err := os.WriteFile(source, []byte("def helper(self):\n    pass\n"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := run([]string{"--readme", readme, "--source", source}, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := fixturePrefix + "<table>\n</table>\n" + fixtureSuffix
	if got := readString(t, readme); got != want {
		t.Fatalf("unexpected content:\n\n%q\n\nwant\n\n%q", got, want)
	}
}

func TestSyncGoSource(t *testing.T) {
	readme := copyFixture(t, "README.md")
	if err := run([]string{"--readme", readme, "--source", "testdata/layout.go"}, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := readString(t, readme)
	assertContains(t, out, "<td><code>swap(a, b)</code></td>")
	assertContains(t, out, "<td>cmd_swap swaps two nodes.<br>\nSee <code>swap</code> for details.</td>")
}

func TestMissingEndMarkerLeavesFileUnchanged(t *testing.T) {
	readme := filepath.Join(t.TempDir(), "README.md")
	original := "# Title\n\n<!--commands-start-->\nold\n"
	if err := os.WriteFile(readme, []byte(original), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := run([]string{"--readme", readme, "--source", "testdata/layout.py"}, io.Discard)
	var markerErr *MarkerNotFoundError
	if !errors.As(err, &markerErr) {
		t.Fatalf("expected MarkerNotFoundError, got %v", err)
	}
	if markerErr.Marker != "<!--commands-end-->\n" {
		t.Fatalf("unexpected marker %q", markerErr.Marker)
	}
	if got := readString(t, readme); got != original {
		t.Fatalf("file was modified:\n\n%s", got)
	}
}

func TestParseErrorLeavesFileUnchanged(t *testing.T) {
	readme := copyFixture(t, "README.md")
	source := filepath.Join(t.TempDir(), "broken.py")
	if err := os.WriteFile(source, []byte("def cmd_x(self:\n"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	err := run([]string{"--readme", readme, "--source", source}, io.Discard)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	assertContains(t, readString(t, readme), "stale content")
}

func TestMissingFiles(t *testing.T) {
	dir := t.TempDir()
	err := run([]string{"--readme", filepath.Join(dir, "README.md"), "--source", "testdata/layout.py"}, io.Discard)
	var missing *MissingFileError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFileError for readme, got %v", err)
	}

	readme := copyFixture(t, "README.md")
	err = run([]string{"--readme", readme, "--source", filepath.Join(dir, "layout.py")}, io.Discard)
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFileError for source, got %v", err)
	}
	assertContains(t, readString(t, readme), "stale content")
}

func TestCheckMode(t *testing.T) {
	readme := copyFixture(t, "README.md")
	err := run([]string{"--check", "--readme", readme, "--source", "testdata/layout.py"}, io.Discard)
	if !errors.Is(err, errOutOfDate) {
		t.Fatalf("expected errOutOfDate, got %v", err)
	}
	assertContains(t, readString(t, readme), "stale content")

	if err := run([]string{"--readme", readme, "--source", "testdata/layout.py"}, io.Discard); err != nil {
		t.Fatalf("sync: %v", err)
	}
	var buf bytes.Buffer
	if err := run([]string{"-check", "-readme=" + readme, "-source=testdata/layout.py"}, &buf); err != nil {
		t.Fatalf("check after sync: %v", err)
	}
	assertContains(t, buf.String(), "up to date")
}

func TestPrintMode(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"--print", "--source", "testdata/layout.py", "--readme", "does-not-exist.md"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<table>\n") || !strings.HasSuffix(out, "</table>\n") {
		t.Fatalf("expected a bare table:\n\n%s", out)
	}
	assertContains(t, out, "<code>add(node, index)</code>")
	assertContains(t, out, `<td>Add a \n node.</td>`)
}

func TestCheckAndPrintExclusive(t *testing.T) {
	if err := run([]string{"--check", "--print"}, io.Discard); err == nil {
		t.Fatalf("expected an error when combining --check and --print")
	}
}

func TestCustomMarker(t *testing.T) {
	readme := filepath.Join(t.TempDir(), "DOCS.md")
	content := "top\n[[cmds:start]]\nold\n[[cmds:end]]\nbottom\n"
	if err := os.WriteFile(readme, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	args := []string{"--readme", readme, "--source", "testdata/layout.go", "--marker", `[[cmds:{pos}]]\n`}
	if err := run(args, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := readString(t, readme)
	assertContains(t, out, "top\n[[cmds:start]]\n<table>\n")
	assertContains(t, out, "</table>\n[[cmds:end]]\nbottom\n")
}

func TestMarkerTemplateRequiresPlaceholder(t *testing.T) {
	err := run([]string{"--print", "--source", "testdata/layout.py", "--marker", "<!--commands-->"}, io.Discard)
	if err == nil {
		t.Fatalf("expected an error for a marker without {pos}")
	}
	assertContains(t, err.Error(), "{pos}")
}

func TestConfigFile(t *testing.T) {
	readme := copyFixture(t, "README.md")
	source, err := filepath.Abs(filepath.Join("testdata", "layout.go"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	cfg := filepath.Join(t.TempDir(), "cmdtable.yaml")
	body := "readme: " + readme + "\nsource: " + source + "\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := run([]string{"--config", cfg}, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	assertContains(t, readString(t, readme), "<code>swap(a, b)</code>")

	// flags win over the file
	if err := run([]string{"--config", cfg, "--source", "testdata/layout.py"}, io.Discard); err != nil {
		t.Fatalf("run with override: %v", err)
	}
	assertContains(t, readString(t, readme), "<code>resize(width, height)</code>")
	if strings.Contains(readString(t, readme), "swap(a, b)") {
		t.Fatalf("expected --source to override the config file")
	}
}

func TestMissingConfigFile(t *testing.T) {
	err := run([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "--print"}, io.Discard)
	if err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestListYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"list", "--source", "testdata/layout.py"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	var entries []CommandEntry
	if err := yaml.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("decode yaml: %v\n\n%s", err, buf.String())
	}
	if len(entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(entries))
	}
	if entries[1].Name != "resize" || strings.Join(entries[1].Parameters, ",") != "width,height" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestListJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"list", "-f", "json", "-s", "testdata/layout.go"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	var entries []CommandEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("decode json: %v\n\n%s", err, buf.String())
	}
	if len(entries) != 3 || entries[2].Name != "swap" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestListUnknownFormat(t *testing.T) {
	if err := run([]string{"list", "--format", "toml", "-s", "testdata/layout.go"}, io.Discard); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestNormalizeLegacyArgs(t *testing.T) {
	got := normalizeLegacyArgs([]string{"-check", "-source=a.py", "-v", "--readme", "b.md", "-x", "--", "-print"})
	want := []string{"--check", "--source=a.py", "-v", "--readme", "b.md", "-x", "--", "-print"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n\n%s", needle, haystack)
	}
}

func TestHelpFlag(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"--help"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	assertContains(t, out, "cmdtable [flags]")
	assertContains(t, out, "--readme")
	assertContains(t, out, "--check")
	assertContains(t, out, "list        Print the command functions found in the source")
	assertContains(t, out, "gen-docs    Generate the Markdown CLI reference")
}

func TestCompletionCommand(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"completion", "bash"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	assertContains(t, buf.String(), "__start_cmdtable")

	if err := run([]string{"completion", "tcsh"}, io.Discard); err == nil {
		t.Fatalf("expected an error for an unsupported shell")
	}
}

func TestFlagValueCompletion(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"__complete", "--lang", ""}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"auto\n", "python\n", "go\n", ":4\n"} {
		assertContains(t, out, want)
	}

	buf.Reset()
	if err := run([]string{"__complete", "list", "--format", ""}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	assertContains(t, buf.String(), "json\n")
}

func TestGenDocsCommand(t *testing.T) {
	tmp := t.TempDir()
	if err := run([]string{"gen-docs", tmp}, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	root := readString(t, filepath.Join(tmp, "cmdtable.md"))
	assertContains(t, root, generatedDocHeader)
	assertContains(t, root, "--check")
	assertContains(t, root, "(cmdtable_list.md)")

	list := readString(t, filepath.Join(tmp, "cmdtable_list.md"))
	assertContains(t, list, "--format")
}
