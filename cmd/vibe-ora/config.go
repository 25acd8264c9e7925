package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-ora/internal/ora"
	"github.com/inodb/vibe-ora/internal/output"
)

// configKeys lists the keys accepted by "config set" with the kind of value
// each one holds.
var configKeys = map[string]string{
	keyInput:      "string",
	keyOrganism:   "string",
	keySources:    "list",
	keyFDR:        "float",
	keyTop:        "int",
	keyOutDir:     "string",
	keyNoPlot:     "bool",
	keyNoIEA:      "bool",
	keyServiceURL: "string",
	keyTimeout:    "duration",
	keyRetries:    "int",
	keyArchive:    "string",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-ora configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-ora.yaml.",
		Example: `  vibe-ora config                                   # show all config
  vibe-ora config set enrich.organism mmusculus     # change the default organism
  vibe-ora config set enrich.sources GO:BP,REAC     # change the default sources
  vibe-ora config set archive.path ~/.vibe-ora/archive.duckdb
  vibe-ora config get enrich.fdr                    # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := defaultConfigPath()
			if err != nil {
				return err
			}
			if err := runConfigSet(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.vibe-ora.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

// runConfigSet stores key in the YAML file at path, leaving other keys as
// they are.
func runConfigSet(path, key, value string) error {
	v, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return &ora.ConfigError{Field: "config", Msg: "parse " + path, Err: err}
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("reading config: %w", err)
	}

	setNested(doc, strings.Split(key, "."), v)

	if err := output.WriteFile(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	viper.Set(key, v)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	if list, ok := val.([]string); ok {
		val = strings.Join(list, ",")
	}
	fmt.Fprintln(w, val)
	return nil
}

// parseConfigValue converts value to the type expected for key.
func parseConfigValue(key, value string) (any, error) {
	kind, ok := configKeys[key]
	if !ok {
		known := make([]string, 0, len(configKeys))
		for k := range configKeys {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, &ora.ConfigError{Field: key, Msg: "unknown key (known keys: " + strings.Join(known, ", ") + ")"}
	}

	bad := func(err error) error {
		return &ora.ConfigError{Field: key, Msg: fmt.Sprintf("invalid %s value %q", kind, value), Err: err}
	}

	switch kind {
	case "bool":
		switch strings.ToLower(value) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, bad(nil)
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, bad(err)
		}
		return n, nil
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, bad(err)
		}
		return f, nil
	case "duration":
		if _, err := time.ParseDuration(value); err != nil {
			return nil, bad(err)
		}
		return value, nil
	case "list":
		items, err := stringList(value)
		if err != nil {
			return nil, bad(err)
		}
		if key == keySources {
			if _, err := ora.ParseSources(items); err != nil {
				return nil, err
			}
		}
		return items, nil
	default:
		if key == keyOrganism {
			if _, err := ora.ValidateOrganism(value); err != nil {
				return nil, err
			}
		}
		return value, nil
	}
}

// setNested sets doc[a][b]... = v for path a.b..., replacing any
// non-map value found on the way.
func setNested(doc map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		next, ok := doc[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[p] = next
		}
		doc = next
	}
	doc[path[len(path)-1]] = v
}
