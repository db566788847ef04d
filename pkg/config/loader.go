package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"oohsheets/pkg/records"

	"github.com/pelletier/go-toml/v2"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load builds the configuration from defaults, the TOML file at path (skipped
// when path is empty or the file does not exist) and the environment, then
// validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	root := reflect.ValueOf(cfg).Elem()

	err := eachField(root, func(_ string, f reflect.StructField, v reflect.Value) error {
		if def := f.Tag.Get("default"); def != "" {
			return setField(v, def)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(root, path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	err = eachField(root, func(_ string, f reflect.StructField, v reflect.Value) error {
		name := f.Tag.Get("env")
		if name == "" {
			return nil
		}
		value, ok := os.LookupEnv(name)
		if !ok || value == "" {
			return nil
		}
		if err := setField(v, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// eachField calls fn for every leaf field of every section struct.
func eachField(root reflect.Value, fn func(section string, f reflect.StructField, v reflect.Value) error) error {
	t := root.Type()
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		sv := root.Field(i)
		st := section.Type
		for j := 0; j < st.NumField(); j++ {
			if err := fn(section.Tag.Get("toml"), st.Field(j), sv.Field(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadFile(root reflect.Value, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	var doc map[string]map[string]any
	if err := toml.Unmarshal(b, &doc); err != nil {
		return err
	}

	known := make(map[string]bool)
	err = eachField(root, func(section string, f reflect.StructField, v reflect.Value) error {
		key := f.Tag.Get("toml")
		known[section+"."+key] = true
		raw, ok := doc[section][key]
		if !ok {
			return nil
		}
		if err := setField(v, tomlText(raw)); err != nil {
			return fmt.Errorf("invalid value for %s.%s: %w", section, key, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var unknown []string
	for section, values := range doc {
		for key := range values {
			if !known[section+"."+key] {
				unknown = append(unknown, section+"."+key)
			}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// tomlText flattens a decoded TOML value to the string form setField accepts.
func tomlText(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(x)
	}
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// WriteFile saves the configuration as TOML. Durations are written in
// time.Duration string form so the file loads back unchanged.
func (c *Config) WriteFile(path string) error {
	doc := make(map[string]map[string]any)
	err := eachField(reflect.ValueOf(c).Elem(), func(section string, f reflect.StructField, v reflect.Value) error {
		if doc[section] == nil {
			doc[section] = make(map[string]any)
		}
		if v.Type() == durationType {
			doc[section][f.Tag.Get("toml")] = time.Duration(v.Int()).String()
			return nil
		}
		doc[section][f.Tag.Get("toml")] = v.Interface()
		return nil
	})
	if err != nil {
		return err
	}
	b, err := toml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks that the configuration is usable and reports every
// problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "SERVER_MAX_BODY_BYTES must be positive")
	}

	if strings.TrimSpace(c.Sheet.Name) == "" {
		errs = append(errs, "GOOGLE_SHEET_NAME must not be empty")
	}
	if _, err := records.ParseDeletePolicy(c.Sheet.DeletePolicy); err != nil {
		errs = append(errs, fmt.Sprintf("DELETE_POLICY: %v", err))
	}

	switch strings.ToLower(c.Store.Backend) {
	case "sheets":
		if c.Sheet.SpreadsheetID == "" {
			errs = append(errs, "GOOGLE_SHEETS_ID is required for the sheets backend")
		}
	case "xlsx":
		if c.Store.XLSXPath == "" {
			errs = append(errs, "XLSX_PATH is required for the xlsx backend")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND (%q) must be one of: sheets, xlsx, memory", c.Store.Backend))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, "STORE_TIMEOUT must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
