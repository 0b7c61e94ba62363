// # cmdtable
//
// `cmdtable` keeps the command reference of a README in sync with the
// docstrings of the command functions that implement it. It parses the
// source module, collects every function whose name starts with `cmd_`, and
// regenerates the README region between two marker lines as an HTML table.
//
// Key capabilities:
//
//   - parse Python modules with tree-sitter and Go files with `go/parser`,
//     walking the syntax tree for function definitions with the command
//     prefix, nested ones included.
//   - render one row per command: the signature without its receiver, and
//     the docstring with blank lines turned into `<br>` and backtick spans
//     turned into `<code>`.
//   - rewrite only the marked region; every byte outside it is preserved.
//   - `--check` mode for CI, `--print` to preview the table, and a `list`
//     subcommand that dumps the extracted commands as YAML or JSON.
//
// ## Usage
//
//	go run . [flags]
//
// With no flags the tool reads `flex_tree/layout.py` and rewrites
// `README.md`, both relative to the working directory.
//
// The README must contain the markers, each on its own line:
//
//	<!--commands-start-->
//	<!--commands-end-->
//
// A source function such as
//
//	def cmd_resize(self, width, height):
//	    """Resize the node."""
//
// becomes the row
//
//	<tr>
//	  <td><code>resize(width, height)</code></td>
//	  <td>Resize the node.</td>
//	</tr>
//
// ## Supported Flags
//
//   - `-r, --readme FILE`: documentation file to update (default `README.md`).
//   - `-s, --source FILE`: source module (default `flex_tree/layout.py`).
//   - `--prefix STR`: command name prefix (default `cmd_`).
//   - `--marker TMPL`: marker template, `{pos}` becomes `start` or `end`
//     (default `<!--commands-{pos}-->\n`).
//   - `--lang auto|python|go`: source language, detected from the file
//     extension by default.
//   - `--check`: exit non-zero when the README is out of date, write nothing.
//   - `--print`: print the table instead of writing the README.
//   - `--config FILE`: YAML file with `readme`, `source`, `prefix`, `marker`
//     and `lang` keys (default `./.cmdtable.yaml` when present).
//   - `-v, --verbose`: log progress to stderr.
//
// Single-dash spellings (`-check`, `-source=path`) are accepted as well.
//
// ## Failure Modes
//
// A missing input file, a source file with syntax errors, or a README whose
// markers are missing, repeated or out of order all stop the run with a
// non-zero exit status. The README is only written after every step
// succeeded, so a failed run leaves it untouched.
//
// ## Shell Completion and CLI Docs
//
//	go run . completion bash
//	go run . gen-docs ./docs/cli
package main
