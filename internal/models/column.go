package models

import (
	"encoding/json"
	"errors"
)

// jsonScan converts a TEXT database value back into dst. Empty and NULL
// columns leave dst untouched so callers start from their zero map.
func jsonScan(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported column type for JSON scan")
	}
}
