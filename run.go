package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

type cliApp struct {
	stdout io.Writer
	stderr io.Writer
	opts   options
	logger *slog.Logger
}

func run(argv []string, stdout io.Writer) error {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(normalizeLegacyArgs(argv))
	return cmd.Execute()
}

func (app *cliApp) log() *slog.Logger {
	if app.logger == nil {
		w := app.stderr
		if w == nil {
			w = os.Stderr
		}
		app.logger = newLogger(w, app.opts.verbose)
	}
	return app.logger
}

// execute regenerates the command table. Nothing is written unless every
// stage succeeded.
func (app *cliApp) execute(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := app.opts
	if opts.printOnly {
		table, err := app.generate(ctx)
		if err != nil {
			return err
		}
		_, err = io.WriteString(app.stdout, table)
		return err
	}

	m := expandMarkers(opts.marker)
	text, err := readTextFile(opts.readmePath)
	if err != nil {
		return err
	}
	reg, err := splitRegion(opts.readmePath, text, m)
	if err != nil {
		return err
	}
	app.log().Debug("located command region",
		"path", opts.readmePath,
		"prefix_bytes", len(reg.before),
		"suffix_bytes", len(reg.after))

	table, err := app.generate(ctx)
	if err != nil {
		return err
	}
	updated := reg.join(m, table)

	if opts.check {
		if updated != text {
			return fmt.Errorf("%s: %w", opts.readmePath, errOutOfDate)
		}
		fmt.Fprintf(app.stdout, "Commands in \"%s\" are up to date.\n", opts.readmePath)
		return nil
	}
	if err := overwriteFile(opts.readmePath, updated); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "Commands written to \"%s\".\n", opts.readmePath)
	return nil
}

func (app *cliApp) generate(ctx context.Context) (string, error) {
	entries, err := extractCommands(ctx, app.opts.sourcePath, app.opts.lang, app.opts.prefix)
	if err != nil {
		return "", err
	}
	app.log().Debug("extracted commands", "source", app.opts.sourcePath, "count", len(entries))
	return renderTable(entries), nil
}

// list writes the extracted entries in a machine readable format.
func (app *cliApp) list(ctx context.Context, format string) error {
	entries, err := extractCommands(ctx, app.opts.sourcePath, app.opts.lang, app.opts.prefix)
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(app.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return fmt.Errorf("unsupported format %q (want yaml or json)", format)
	}
}

var legacyLongFlagSet = map[string]struct{}{
	"readme":  {},
	"source":  {},
	"prefix":  {},
	"marker":  {},
	"lang":    {},
	"config":  {},
	"check":   {},
	"print":   {},
	"verbose": {},
	"format":  {},
}

// normalizeLegacyArgs accepts Go flag package spellings such as -check or
// -source=path by rewriting them to their double-dash form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	modified := false
	converted := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			converted = append(converted, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") || len(arg) <= 2 {
			converted = append(converted, arg)
			continue
		}
		name, value, hasValue := strings.Cut(arg[1:], "=")
		if _, ok := legacyLongFlagSet[name]; ok {
			if hasValue {
				converted = append(converted, "--"+name+"="+value)
			} else {
				converted = append(converted, "--"+name)
			}
			modified = true
			continue
		}
		converted = append(converted, arg)
	}
	if !modified {
		return args
	}
	return converted
}
