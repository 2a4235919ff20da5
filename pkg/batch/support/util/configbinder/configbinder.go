// Package configbinder binds loosely typed property maps (decoded YAML, JSON payloads)
// to typed structs.
package configbinder

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// BindProperties binds a map of properties to a target struct using mapstructure.
// It uses the "yaml" tag for binding and allows weakly typed input (e.g., string to int conversion).
func BindProperties(properties map[string]interface{}, target interface{}) error {
	return bind(properties, target, "yaml", false)
}

// BindStrict binds properties like BindProperties but uses the "json" tag and
// rejects keys that have no matching field.
func BindStrict(properties map[string]interface{}, target interface{}) error {
	return bind(properties, target, "json", true)
}

func bind(properties map[string]interface{}, target interface{}, tagName string, errorUnused bool) error {
	decoderConfig := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
		ErrorUnused:      errorUnused,
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(properties); err != nil {
		targetType := reflect.TypeOf(target)
		if targetType.Kind() == reflect.Ptr {
			targetType = targetType.Elem()
		}
		return fmt.Errorf("failed to bind properties to struct %s: %w", targetType.Name(), err)
	}
	return nil
}
