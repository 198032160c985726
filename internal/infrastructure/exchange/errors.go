package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteRead ストリーミング応答が途中で切断された
	ErrIncompleteRead = errors.New("exchange: incomplete read from stream")
	// ErrInvalidResponse 応答がSOAPエンベロープとして解析できない
	ErrInvalidResponse = errors.New("exchange: invalid soap response")
)

// SoapFault SOAPフォールト
type SoapFault struct {
	Code   string
	Text   string
	Detail string
}

func (f *SoapFault) Error() string {
	return fmt.Sprintf("%s (%s)", f.Text, f.Code)
}

// StatusError 2xx以外のHTTPステータス
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("exchange: unexpected HTTP status %d", e.StatusCode)
}
