package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultReadmePath = "README.md"
	defaultSourcePath = "flex_tree/layout.py"
	defaultPrefix     = "cmd_"
	defaultMarker     = `<!--commands-{pos}-->\n`
	configName        = ".cmdtable"
	defaultDocsDir    = "docs/cli"
)

// options are the named configuration values handed to the extractor and
// the splicer.
type options struct {
	readmePath string
	sourcePath string
	prefix     string
	marker     string
	lang       string
	configFile string
	check      bool
	printOnly  bool
	verbose    bool
}

// configKeys maps config file keys to the flags that override them.
var configKeys = map[string]string{
	"readme": "readme",
	"source": "source",
	"prefix": "prefix",
	"marker": "marker",
	"lang":   "lang",
}

// loadConfig merges the optional YAML config file with the command line.
// Flags set explicitly win over the file, the file wins over flag defaults.
func loadConfig(flags *pflag.FlagSet, opts *options) error {
	v := viper.New()
	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	for key, flagName := range configKeys {
		if flag := flags.Lookup(flagName); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	opts.readmePath = v.GetString("readme")
	opts.sourcePath = v.GetString("source")
	opts.prefix = v.GetString("prefix")
	opts.marker = decodeMarker(v.GetString("marker"))
	opts.lang = v.GetString("lang")
	return validateOptions(*opts)
}

// decodeMarker turns the escaped newline accepted on the command line into
// a real one.
func decodeMarker(marker string) string {
	return strings.ReplaceAll(marker, `\n`, "\n")
}

func validateOptions(opts options) error {
	switch {
	case opts.readmePath == "":
		return errors.New("readme path must not be empty")
	case opts.sourcePath == "":
		return errors.New("source path must not be empty")
	case opts.prefix == "":
		return errors.New("command prefix must not be empty")
	case !strings.Contains(opts.marker, posPlaceholder):
		return fmt.Errorf("marker template %q must contain %s", opts.marker, posPlaceholder)
	}
	if opts.check && opts.printOnly {
		return errors.New("--check cannot be combined with --print")
	}
	return nil
}
