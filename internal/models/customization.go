package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CustomizationBag maps a customization axis (patty, extras, sauce, ...) to a
// chosen value or list of values.
type CustomizationBag map[string]interface{}

// MalformedCustomizationError reports an unparseable customization payload.
// Callers recover by treating the bag as empty; it is never fatal.
type MalformedCustomizationError struct {
	Raw string
	Err error
}

func (e *MalformedCustomizationError) Error() string {
	return fmt.Sprintf("malformed customization payload: %v", e.Err)
}

func (e *MalformedCustomizationError) Unwrap() error {
	return e.Err
}

// EncodeCustomizations serializes a bag for storage. A list-valued "extras"
// axis is stored comma-joined, matching the historical column format.
// An empty bag encodes to the empty string.
func EncodeCustomizations(bag CustomizationBag) (string, error) {
	if len(bag) == 0 {
		return "", nil
	}
	stored := make(CustomizationBag, len(bag))
	for k, v := range bag {
		stored[k] = v
	}
	if extras, ok := stored["extras"]; ok {
		switch list := extras.(type) {
		case []string:
			stored["extras"] = strings.Join(list, ",")
		case []interface{}:
			parts := make([]string, 0, len(list))
			for _, e := range list {
				parts = append(parts, fmt.Sprint(e))
			}
			stored["extras"] = strings.Join(parts, ",")
		}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeCustomizations parses a stored customization payload, splitting the
// comma-joined "extras" axis back into a list. A malformed payload yields an
// empty bag and a *MalformedCustomizationError.
func DecodeCustomizations(raw string) (CustomizationBag, error) {
	bag := CustomizationBag{}
	if raw == "" {
		return bag, nil
	}
	if err := json.Unmarshal([]byte(raw), &bag); err != nil {
		return CustomizationBag{}, &MalformedCustomizationError{Raw: raw, Err: err}
	}
	if extras, ok := bag["extras"].(string); ok {
		if extras == "" {
			bag["extras"] = []string{}
		} else {
			bag["extras"] = strings.Split(extras, ",")
		}
	}
	return bag, nil
}
