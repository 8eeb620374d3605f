package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the optional YAML config path.
const PathEnv = "CONFIG_FILE"

var durationType = reflect.TypeOf(time.Duration(0))

// Validator is implemented by config structs that check themselves after loading.
type Validator interface {
	Validate() error
}

// Load hydrates target from the YAML file named by CONFIG_FILE (if set) and then
// overrides fields from environment variables. Nested structs get PARENT_CHILD keys
// unless an explicit `env:"KEY"` tag is present; `env:"-"` skips a field.
func Load(target interface{}) error {
	return LoadFile(os.Getenv(PathEnv), target)
}

// LoadFile behaves like Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string, target interface{}) error {
	if target == nil {
		return errors.New("config: target is nil")
	}

	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return errors.New("config: target must be pointer to struct")
	}

	if path != "" {
		if err := decodeFile(path, target); err != nil {
			return err
		}
	}

	if err := populateFromEnv(val.Elem(), ""); err != nil {
		return err
	}

	if v, ok := target.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func decodeFile(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

func populateFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fieldVal := v.Field(i)
		fieldType := t.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if fieldType.Anonymous {
			if err := populateFromEnv(fieldVal, prefix); err != nil {
				return err
			}
			continue
		}

		rawKey := fieldType.Tag.Get("env")
		if rawKey == "-" {
			continue
		}

		envKey := envKeyFor(prefix, fieldType.Name)
		if rawKey != "" {
			envKey = envKeyFor("", rawKey)
		}

		if fieldVal.Kind() == reflect.Struct {
			if err := populateFromEnv(fieldVal, envKey); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(envKey)
		if !ok {
			continue
		}
		if err := assign(fieldVal, strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("config: parse %s: %w", envKey, err)
		}
	}
	return nil
}

func envKeyFor(prefix, key string) string {
	key = strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

func assign(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(parsed)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(parsed)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(parsed)
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(parsed)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type().String())
	}
	return nil
}
