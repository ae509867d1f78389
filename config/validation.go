package config

import (
	"fmt"

	"github.com/grovetools/autoread/errors"
	"github.com/moby/patternmatcher"
)

// Validate checks if the configuration is valid. Validation failures are
// raised before the config is installed anywhere, so the previous valid
// configuration always stays in effect.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return errors.InvalidInterval(c.Interval)
	}

	if err := ValidateBehavior(c.CursorBehavior); err != nil {
		return err
	}

	// Exclude patterns must compile; a bad pattern would otherwise only
	// surface on the first auto-registration attempt.
	if len(c.Exclude) > 0 {
		if _, err := patternmatcher.New(c.Exclude); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation,
				fmt.Sprintf("invalid exclude patterns: %v", c.Exclude)).
				WithDetail("exclude", c.Exclude)
		}
	}

	return nil
}

// ValidateBehavior checks that a cursor behavior is one of the recognized values.
func ValidateBehavior(behavior string) error {
	for _, valid := range ValidBehaviors {
		if behavior == valid {
			return nil
		}
	}
	return errors.InvalidCursorBehavior(behavior)
}

// ExcludeMatcher compiles the exclude patterns into a matcher. A nil matcher
// is returned when no patterns are configured.
func (c *Config) ExcludeMatcher() (*patternmatcher.PatternMatcher, error) {
	if len(c.Exclude) == 0 {
		return nil, nil
	}
	m, err := patternmatcher.New(c.Exclude)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid exclude patterns")
	}
	return m, nil
}
