package effect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Definition is a named preset: it launches a registered effect with a fixed
// argument set. Definitions are JSON files dropped into a directory.
type Definition struct {
	Name   string `json:"name"`
	Effect string `json:"effect"`
	Args   Args   `json:"args,omitempty"`
}

// ReadDefinition parses a single definition file.
func ReadDefinition(path string) (Definition, error) {
	var d Definition
	b, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read definition: %w", err)
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("parse definition %s: %w", filepath.Base(path), err)
	}
	if d.Name == "" || d.Effect == "" {
		return d, fmt.Errorf("definition %s: name and effect are required", filepath.Base(path))
	}
	return d, nil
}

// ReadDefinitionDir loads every .json definition in dir. Files that fail to
// parse or reference an effect missing from reg are logged and skipped.
func ReadDefinitionDir(dir string, reg *Registry) ([]Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read definition dir: %w", err)
	}
	var defs []Definition
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		d, err := ReadDefinition(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("skipping effect definition")
			continue
		}
		if _, ok := reg.Get(d.Effect); !ok {
			log.Warn().Str("file", e.Name()).Str("effect", d.Effect).Msg("definition references unknown effect")
			continue
		}
		defs = append(defs, d)
	}
	return defs, nil
}
