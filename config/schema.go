package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for the autoread configuration.
// It reflects the Config struct from types.go but excludes the 'Extensions'
// field; extension sections (e.g. "logging") validate their own shape.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Extension sections are arbitrary keys, so unknown properties
		// must remain legal at the top level.
		AllowAdditionalProperties: true,
		// Expand struct references instead of using $ref for cleaner base schema.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	// A temporary struct that omits the Extensions field so it is not
	// included in the base schema.
	type BaseConfig struct {
		Interval       int      `yaml:"interval,omitempty" jsonschema:"description=Poll interval in milliseconds,minimum=1"`
		NotifyOnChange *bool    `yaml:"notify_on_change,omitempty" jsonschema:"description=Show a notification when a file changes on disk"`
		CursorBehavior string   `yaml:"cursor_behavior,omitempty" jsonschema:"description=Cursor policy after a reload,enum=preserve,enum=scroll_down,enum=none"`
		AutoEnable     *bool    `yaml:"auto_enable,omitempty" jsonschema:"description=Automatically monitor buffers on read"`
		Exclude        []string `yaml:"exclude,omitempty" jsonschema:"description=Patterns for files excluded from auto monitoring"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "Autoread Configuration"
	schema.Description = "Schema for autoread.yml properties."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
