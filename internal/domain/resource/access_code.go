package resource

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// AccessCodeType アクセスコードの種類を表す値オブジェクト
type AccessCodeType string

const (
	AccessCodeTypeNone AccessCodeType = "none"
	AccessCodeTypePIN4 AccessCodeType = "pin4"
	AccessCodeTypePIN6 AccessCodeType = "pin6"
)

// NewAccessCodeType 新しいAccessCodeTypeを作成
func NewAccessCodeType(s string) (AccessCodeType, error) {
	switch s {
	case "", "none":
		return AccessCodeTypeNone, nil
	case "pin4", "pin6":
		return AccessCodeType(s), nil
	default:
		return "", fmt.Errorf("invalid access code type: %s", s)
	}
}

// String 文字列表現を返す
func (t AccessCodeType) String() string {
	return string(t)
}

// Enabled アクセスコードが有効かどうかを返す
func (t AccessCodeType) Enabled() bool {
	return t == AccessCodeTypePIN4 || t == AccessCodeTypePIN6
}

// length PINの桁数を返す
func (t AccessCodeType) length() int {
	switch t {
	case AccessCodeTypePIN4:
		return 4
	case AccessCodeTypePIN6:
		return 6
	default:
		return 0
	}
}

// GenerateAccessCode アクセスコードの種類に応じたPINを生成
func GenerateAccessCode(t AccessCodeType) (string, error) {
	n := t.length()
	if n == 0 {
		return "", fmt.Errorf("%w: access codes are not enabled", ErrInvalidAccessCode)
	}

	code := make([]byte, n)
	for i := range code {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate access code: %w", err)
		}
		code[i] = byte('0' + d.Int64())
	}
	return string(code), nil
}

// ValidateAccessCode アクセスコードが種類に合っているか検証
func ValidateAccessCode(code string, t AccessCodeType) error {
	n := t.length()
	if n == 0 {
		return nil
	}
	if len(code) != n {
		return fmt.Errorf("%w: expected %d digits", ErrInvalidAccessCode, n)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: only digits are allowed", ErrInvalidAccessCode)
		}
	}
	return nil
}
