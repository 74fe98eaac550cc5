package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON stores free-form key/value data, such as the values an agent typed
// into an operation's dynamic form.
type JSON map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported JSON column type")
	}
	return json.Unmarshal(bytes, j)
}
