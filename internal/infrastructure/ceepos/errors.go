package ceepos

import (
	"encoding/json"
	"fmt"
)

// Error 決済サービスとの通信で発生したエラー
type Error struct {
	Message string
	Code    int
	Data    interface{}
}

// Error エラーメッセージを返す
func (e *Error) Error() string {
	return fmt.Sprintf("%s caused by request data %s.", e.Message, formatData(e.Data))
}

func formatData(data interface{}) string {
	switch v := data.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case []byte:
		return string(v)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(b)
}
