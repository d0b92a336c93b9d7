package loader

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"mu-asset-cache/internal/asset"
)

// Data is a decoded YAML, TOML or JSON document.
type Data struct {
	Format string
	Values map[string]any
}

func (*Data) Kind() asset.Kind { return asset.KindData }
func (d *Data) Release()       { d.Values = nil }

// Lookup follows a dotted path through nested tables.
func (d *Data) Lookup(path string) (any, bool) {
	var cur any = d.Values
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// LoadData decodes a data table by extension.
func LoadData(ctx asset.LoadContext) (asset.Asset, error) {
	raw, err := ctx.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", ctx.Path, err)
	}

	d := &Data{Values: make(map[string]any)}
	switch strings.ToLower(filepath.Ext(ctx.Path)) {
	case ".yaml", ".yml":
		d.Format = "yaml"
		err = yaml.Unmarshal(raw, &d.Values)
	case ".toml":
		d.Format = "toml"
		err = toml.Unmarshal(raw, &d.Values)
	default:
		d.Format = "json"
		err = json.Unmarshal(raw, &d.Values)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", ctx.Path, err)
	}
	if d.Values == nil {
		d.Values = make(map[string]any)
	}
	return d, nil
}
