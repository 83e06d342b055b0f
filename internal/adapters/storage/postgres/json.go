package postgres

import "encoding/json"

// Las listas y mapas van como JSONB: se escriben como []byte y se leen igual.

func toJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func fromJSON[T any](raw []byte, dst *T) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
