package model

import (
	"bytes"
	"encoding/json"
)

// ExternalID 外部系统的 id，JSON 中可能是字符串也可能是数字
type ExternalID string

func (e *ExternalID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*e = ExternalID(n.String())
	return nil
}

func (e ExternalID) String() string { return string(e) }
