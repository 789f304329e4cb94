package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonbValue marshals an embedded document for storage in a JSONB column.
func jsonbValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// jsonbScan unmarshals a JSONB column into dst, accepting both []byte and
// string representations depending on the driver.
func jsonbScan(dst interface{}, value interface{}) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan %T: unsupported column type %T", dst, value)
	}

	return json.Unmarshal(data, dst)
}
