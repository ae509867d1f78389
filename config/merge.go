package config

// mergeConfigs merges override configuration into base. Scalars from the
// override win when set; extension sections with the same key are merged
// shallowly, override keys winning.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Interval != 0 {
		result.Interval = override.Interval
	}
	if override.NotifyOnChange != nil {
		result.NotifyOnChange = override.NotifyOnChange
	}
	if override.CursorBehavior != "" {
		result.CursorBehavior = override.CursorBehavior
	}
	if override.AutoEnable != nil {
		result.AutoEnable = override.AutoEnable
	}
	if len(override.Exclude) > 0 {
		result.Exclude = override.Exclude
	}

	if override.Extensions != nil {
		if result.Extensions == nil {
			result.Extensions = make(map[string]interface{})
		}
		for key, value := range override.Extensions {
			if baseValue, exists := result.Extensions[key]; exists {
				if baseMap, baseOk := baseValue.(map[string]interface{}); baseOk {
					if overrideMap, overrideOk := value.(map[string]interface{}); overrideOk {
						merged := make(map[string]interface{})
						for k, v := range baseMap {
							merged[k] = v
						}
						for k, v := range overrideMap {
							merged[k] = v
						}
						result.Extensions[key] = merged
						continue
					}
				}
			}
			result.Extensions[key] = value
		}
	}

	return &result
}
