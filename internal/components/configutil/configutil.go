package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

func splitExt(f string) (string, string) {
	ext := filepath.Ext(f)
	return strings.TrimSuffix(f, ext), strings.TrimPrefix(ext, ".")
}

func unmarshal(ext string, contents []byte, out any) error {
	switch strings.ToLower(ext) {
	case "json", "json5":
		return json5.Unmarshal(contents, out)
	case "yaml", "yml":
		return yaml.Unmarshal(contents, out)
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}
}

// readLayer reads a single file, found is false when it does not exist or is empty.
func readLayer[T any](path, ext string) (layer T, found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return layer, false, nil
	}
	if err != nil {
		return layer, false, err
	}
	if len(contents) == 0 {
		return layer, false, nil
	}
	err = unmarshal(ext, contents, &layer)
	if err != nil {
		return layer, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return layer, true, nil
}

// Load reads a configuration file on top of `defaults`, `path` must come with a
// file extension (.json5, .json, .yaml, .yml) which decides the parser.
// The following layers are merged, where a higher number is more prioritized:
// 0. defaults
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// When neither file exists the defaults are returned together with an error
// satisfying os.IsNotExist. Zero values in a file never override a default,
// that is how mergo.WithOverride treats them.
func Load[T any](path string, defaults T) (T, error) {
	out := defaults
	prefix, ext := splitExt(path)

	layers := []string{
		path,
		fmt.Sprintf("%s.local.%s", prefix, ext),
	}

	anyFound := false
	for i, layerPath := range layers {
		layer, found, err := readLayer[T](layerPath, ext)
		if err != nil {
			return defaults, err
		}
		if !found {
			continue
		}
		err = mergo.Merge(&out, layer, mergo.WithOverride)
		if err != nil {
			return defaults, fmt.Errorf("merge %s: %w", layerPath, err)
		}
		if i > 0 {
			slog.Info("merging config with local overrides", "local", layerPath)
		}
		anyFound = true
	}

	if !anyFound {
		return out, fmt.Errorf("config %s: %w", path, os.ErrNotExist)
	}
	return out, nil
}

// FindUp walks up the filesystem from the cwd until the root to find a file
// called `name`, returning its absolute path.
func FindUp(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}

	current, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(current, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}
