package ceepos

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value JSONの文字列または数値をテキスト表現のまま保持する
type Value string

// UnmarshalJSON 文字列と数値の両方を受け付ける
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("ceepos: null is not a valid value")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ceepos: value must be a string or a number: %w", err)
	}
	*v = Value(n.String())
	return nil
}

// String 文字列表現を返す
func (v Value) String() string {
	return string(v)
}

// text nilを空文字列として扱う
func text(v *Value) string {
	if v == nil {
		return ""
	}
	return string(*v)
}
