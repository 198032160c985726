package resource

import "errors"

var (
	// ErrResourceNotFound リソースが見つからないエラー
	ErrResourceNotFound = errors.New("resource not found")
	// ErrInvalidResource 無効なリソースエラー
	ErrInvalidResource = errors.New("invalid resource")
	// ErrInvalidAccessCode 無効なアクセスコードエラー
	ErrInvalidAccessCode = errors.New("invalid access code")
)
