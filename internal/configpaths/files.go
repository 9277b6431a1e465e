// Package configpaths locates the optional config files read at startup and
// registers them with kong.
package configpaths

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// CandidatePaths lists config files from lowest to highest priority: the user
// config dir, then the working directory, then an explicit userPath. Missing
// files are skipped by kong.
func CandidatePaths(userPath string) []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		dir = filepath.Join(dir, "protoprober")
		for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
			paths = append(paths, filepath.Join(dir, "config"+ext))
		}
	}

	wd, _ := os.Getwd()
	for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
		paths = append(paths, filepath.Join(wd, ".protoprober"+ext))
	}

	if userPath != "" {
		paths = append(paths, userPath)
	}
	return paths
}

// Options registers one configuration resolver per candidate. kong keeps the
// last value any resolver yields, so later candidates win.
func Options(userPath string) []kong.Option {
	var opts []kong.Option
	for _, path := range CandidatePaths(userPath) {
		opts = append(opts, kong.Configuration(Loader(path), path))
	}
	return opts
}

// Loader picks the loader for path by extension, defaulting to JSON.
func Loader(path string) kong.ConfigurationLoader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	default:
		return kong.JSON
	}
}

// YAML resolves flags from a YAML document using the same keys as kong.JSON:
// flag names with dashes as underscores, dotted names as nested maps.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml config: %w", err)
	}
	return fromMap(values)
}

// TOML resolves flags from a TOML document using the same keys as kong.JSON.
func TOML(r io.Reader) (kong.Resolver, error) {
	tree, err := toml.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	return fromMap(tree.ToMap())
}

func fromMap(values map[string]any) (kong.Resolver, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return kong.JSON(bytes.NewReader(data))
}

// FindUserConfig returns the --config flag value from raw arguments, falling
// back to $PROTOPROBER_CONFIG. It runs before flag parsing because the file
// feeds the parser its defaults.
func FindUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("PROTOPROBER_CONFIG")
}
