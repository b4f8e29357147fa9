// Package persistence owns the concrete encoding of mapping records. The
// core (internal/mapping) only defines the wire shape; this package is the
// one place that knows it happens to be YAML today, so a different codec
// can be swapped in without touching the facade (spec §6 "on-disk
// serialization format... treated as opaque").
package persistence

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/leonard/keyremap/internal/mapping"
)

// Codec encodes and decodes a mapping table's wire records. The facade
// depends on this interface, not on YAML directly.
type Codec interface {
	Encode(records []mapping.MappingRecord) ([]byte, error)
	Decode(data []byte) ([]mapping.MappingRecord, error)
}

// document is the top-level shape of a mapping file on disk.
type document struct {
	Mappings []mapping.MappingRecord `yaml:"mappings"`
}

// YAMLCodec is the default Codec, matching the config/layout files this
// corpus already reads and writes with gopkg.in/yaml.v3.
type YAMLCodec struct{}

func (YAMLCodec) Encode(records []mapping.MappingRecord) ([]byte, error) {
	data, err := yaml.Marshal(document{Mappings: records})
	if err != nil {
		return nil, fmt.Errorf("marshaling mapping file: %w", err)
	}
	return data, nil
}

func (YAMLCodec) Decode(data []byte) ([]mapping.MappingRecord, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}
	return doc.Mappings, nil
}
