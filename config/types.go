package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Cursor behavior values recognized by the reconciler.
const (
	BehaviorPreserve   = "preserve"
	BehaviorScrollDown = "scroll_down"
	BehaviorNone       = "none"
)

// ValidBehaviors lists every recognized cursor_behavior value.
var ValidBehaviors = []string{BehaviorPreserve, BehaviorScrollDown, BehaviorNone}

// Default values applied by SetDefaults.
const (
	DefaultInterval       = 1000 // milliseconds
	DefaultCursorBehavior = BehaviorPreserve
)

// Config is the autoread configuration. It is immutable once validated:
// reconfiguration replaces the installed config wholesale, and an invalid
// candidate never displaces the last valid one.
type Config struct {
	// Interval is the poll interval in milliseconds. Must be strictly positive.
	Interval int `yaml:"interval,omitempty" json:"interval,omitempty" toml:"interval,omitempty" jsonschema:"description=Poll interval in milliseconds"`

	// NotifyOnChange controls whether a user-visible notification is shown
	// when an external change is detected.
	NotifyOnChange *bool `yaml:"notify_on_change,omitempty" json:"notify_on_change,omitempty" toml:"notify_on_change,omitempty" jsonschema:"description=Show a notification when a file changes on disk"`

	// CursorBehavior is the default cursor policy applied to newly monitored
	// buffers: "preserve", "scroll_down" or "none".
	CursorBehavior string `yaml:"cursor_behavior,omitempty" json:"cursor_behavior,omitempty" toml:"cursor_behavior,omitempty" jsonschema:"description=Cursor policy after a reload,enum=preserve,enum=scroll_down,enum=none"`

	// AutoEnable monitors every buffer as it is read, subject to Exclude.
	AutoEnable *bool `yaml:"auto_enable,omitempty" json:"auto_enable,omitempty" toml:"auto_enable,omitempty" jsonschema:"description=Automatically monitor buffers on read"`

	// Exclude holds dockerignore-style patterns; buffers whose file names
	// match are never auto-monitored.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty" toml:"exclude,omitempty" jsonschema:"description=Patterns for files excluded from auto monitoring"`

	// Extensions captures tool-specific sections (e.g. "logging") that are
	// decoded on demand via UnmarshalExtension.
	Extensions map[string]interface{} `yaml:",inline" json:"-"`
}

// SetDefaults fills in unset fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.NotifyOnChange == nil {
		v := true
		c.NotifyOnChange = &v
	}
	if c.CursorBehavior == "" {
		c.CursorBehavior = DefaultCursorBehavior
	}
	if c.AutoEnable == nil {
		v := false
		c.AutoEnable = &v
	}
}

// Notify reports the effective notify_on_change value.
func (c *Config) Notify() bool {
	return c.NotifyOnChange != nil && *c.NotifyOnChange
}

// Auto reports the effective auto_enable value.
func (c *Config) Auto() bool {
	return c.AutoEnable != nil && *c.AutoEnable
}

// UnmarshalExtension decodes a named extension section into target. A missing
// key is not an error; target simply stays zero-valued.
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{} into the
	// strongly-typed target struct, keyed by `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

// fromMap builds a Config from a generic map, routing unknown keys into
// Extensions. Used by the TOML loader, which has no inline-map support.
func fromMap(m map[string]interface{}) (*Config, error) {
	var cfg Config
	var md mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &cfg,
		TagName:  "yaml",
		Metadata: &md,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(m); err != nil {
		return nil, err
	}

	for _, key := range md.Unused {
		if cfg.Extensions == nil {
			cfg.Extensions = make(map[string]interface{})
		}
		cfg.Extensions[key] = m[key]
	}

	return &cfg, nil
}
