// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sram

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// markerFile is the on-disk layout of a user marker file, shared by the YAML
// and TOML decoders.
type markerFile struct {
	Markers []markerEntry `yaml:"markers" toml:"markers"`
}

// markerEntry describes one marker. Exactly one of Text or Hex is set.
type markerEntry struct {
	Label string `yaml:"label" toml:"label"`
	Text  string `yaml:"text,omitempty" toml:"text,omitempty"`
	Hex   string `yaml:"hex,omitempty" toml:"hex,omitempty"`
}

// LoadMarkerFile reads extra markers from a .yaml, .yml or .toml file. The
// markers keep their file order.
func LoadMarkerFile(path string) (MarkerTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading marker file %s: %w", path, err)
	}

	var mf markerFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &mf)
	case ".toml":
		err = toml.Unmarshal(data, &mf)
	default:
		return nil, fmt.Errorf("unsupported marker file format %q: use .yaml, .yml or .toml", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing marker file %s: %w", path, err)
	}

	table := make(MarkerTable, 0, len(mf.Markers))
	for i, e := range mf.Markers {
		m, err := e.marker()
		if err != nil {
			return nil, fmt.Errorf("marker file %s: entry %d: %w", path, i+1, err)
		}
		table = append(table, m)
	}
	return table, nil
}

func (e markerEntry) marker() (GameMarker, error) {
	label := strings.TrimSpace(e.Label)
	if label == "" {
		return GameMarker{}, fmt.Errorf("missing label")
	}

	var pattern []byte
	switch {
	case e.Text != "" && e.Hex != "":
		return GameMarker{}, fmt.Errorf("%s: set text or hex, not both", label)
	case e.Text != "":
		pattern = []byte(e.Text)
	case e.Hex != "":
		p, err := parseHex(e.Hex)
		if err != nil {
			return GameMarker{}, fmt.Errorf("%s: %w", label, err)
		}
		pattern = p
	default:
		return GameMarker{}, fmt.Errorf("%s: missing pattern", label)
	}

	if len(pattern) > MarkerWindow {
		return GameMarker{}, fmt.Errorf("%s: pattern is %d bytes, longer than the %d byte search window",
			label, len(pattern), MarkerWindow)
	}
	return GameMarker{Pattern: pattern, Label: label}, nil
}

// parseHex decodes hex digits, ignoring whitespace and a leading 0x.
func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex pattern: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("empty hex pattern")
	}
	return b, nil
}
