package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ImportErrorList stores a job's error/skip strings as a JSONB column while
// staying an ordered []string in memory.
type ImportErrorList []string

func (l ImportErrorList) Value() (driver.Value, error) {
	if l == nil {
		l = ImportErrorList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (l *ImportErrorList) Scan(value any) error {
	if value == nil {
		*l = ImportErrorList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("import error list must be []byte")
	}
	return json.Unmarshal(bytes, l)
}
