package config

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/batrachia/libfetch/pkg/errors"
)

// field binds a dotted configuration key to its getter and setter.
type field struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

func stringField(ptr func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error { *ptr(c) = v; return nil },
	}
}

func boolField(ptr func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", errors.ErrInvalidConfigValue, v)
			}
			*ptr(c) = b
			return nil
		},
	}
}

// listField stores a comma-separated value as a string slice.
func listField(ptr func(c *Config) *[]string) field {
	return field{
		get: func(c *Config) string { return strings.Join(*ptr(c), ",") },
		set: func(c *Config, v string) error {
			var out []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					out = append(out, item)
				}
			}
			*ptr(c) = out
			return nil
		},
	}
}

var fields = map[string]field{
	"settings.cache_dir":     stringField(func(c *Config) *string { return &c.Settings.CacheDir }),
	"settings.output_format": stringField(func(c *Config) *string { return &c.Settings.OutputFormat }),
	"settings.log_level":     stringField(func(c *Config) *string { return &c.Settings.LogLevel }),
	"settings.platform.os":   stringField(func(c *Config) *string { return &c.Settings.Platform.OS }),
	"settings.platform.arch": stringField(func(c *Config) *string { return &c.Settings.Platform.Arch }),
	"settings.http_timeout": {
		get: func(c *Config) string { return c.Settings.HTTPTimeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a duration", errors.ErrInvalidConfigValue, v)
			}
			c.Settings.HTTPTimeout = d
			return nil
		},
	},
	"settings.max_concurrent": {
		get: func(c *Config) string { return strconv.Itoa(c.Settings.MaxConcurrent) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", errors.ErrInvalidConfigValue, v)
			}
			c.Settings.MaxConcurrent = n
			return nil
		},
	},

	"release.base_url":       stringField(func(c *Config) *string { return &c.Release.BaseURL }),
	"release.version":        stringField(func(c *Config) *string { return &c.Release.Version }),
	"release.asset_template": stringField(func(c *Config) *string { return &c.Release.AssetTemplate }),
	"release.archived":       boolField(func(c *Config) *bool { return &c.Release.Archived }),
	"release.checksums":      boolField(func(c *Config) *bool { return &c.Release.Checksums }),
	"release.offline":        boolField(func(c *Config) *bool { return &c.Release.Offline }),

	"auth.type":      stringField(func(c *Config) *string { return &c.Auth.Type }),
	"auth.token_env": stringField(func(c *Config) *string { return &c.Auth.TokenEnv }),
	"auth.username":  stringField(func(c *Config) *string { return &c.Auth.Username }),
	"auth.host":      stringField(func(c *Config) *string { return &c.Auth.Host }),

	"link.system_libs": listField(func(c *Config) *[]string { return &c.Link.SystemLibs }),
	"link.frameworks":  listField(func(c *Config) *[]string { return &c.Link.Frameworks }),
	"link.extra_libs":  listField(func(c *Config) *[]string { return &c.Link.ExtraLibs }),
	"link.go_package":  stringField(func(c *Config) *string { return &c.Link.GoPackage }),

	"hooks.pre_resolve":  stringField(func(c *Config) *string { return &c.Hooks.PreResolve }),
	"hooks.post_resolve": stringField(func(c *Config) *string { return &c.Hooks.PostResolve }),
	"hooks.dir":          stringField(func(c *Config) *string { return &c.Hooks.Dir }),
}

// Keys returns every key accepted by GetValue and SetValue, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lookupField resolves key, accepting bare settings keys such as "log_level".
func lookupField(key string) (field, string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if f, ok := fields[key]; ok {
		return f, key, nil
	}
	if !strings.Contains(key, ".") {
		if f, ok := fields["settings."+key]; ok {
			return f, "settings." + key, nil
		}
	}
	return field{}, key, fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
}

// SetValue sets a configuration value by key and validates the result.
// auth.password is not exposed; edit the file instead.
func (c *Config) SetValue(key, value string) error {
	f, name, err := lookupField(key)
	if err != nil {
		return err
	}

	previous := *c
	previous.Link.SystemLibs = slices.Clone(c.Link.SystemLibs)
	previous.Link.Frameworks = slices.Clone(c.Link.Frameworks)
	previous.Link.ExtraLibs = slices.Clone(c.Link.ExtraLibs)

	if err := f.set(c, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		*c = previous
		return fmt.Errorf("%w: %s: %w", errors.ErrInvalidConfigValue, name, err)
	}
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	f, _, err := lookupField(key)
	if err != nil {
		return "", err
	}
	return f.get(c), nil
}

// ToMap returns every key with its current value. This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(fields))
	for k, f := range fields {
		result[k] = f.get(c)
	}
	return result
}
