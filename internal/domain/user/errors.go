package user

import "errors"

var (
	// ErrUserNotFound ユーザーが見つからないエラー
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidUser 無効なユーザーエラー
	ErrInvalidUser = errors.New("invalid user")
)
