package user

import (
	"fmt"
	"strings"
)

// User ユーザーエンティティ
type User struct {
	userID            string
	email             string
	firstName         string
	lastName          string
	preferredLanguage string
	isStaff           bool
}

// NewUser 新しいUserエンティティを作成
func NewUser(userID, email, firstName, lastName, preferredLanguage string, isStaff bool) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidUser)
	}
	return &User{
		userID:            userID,
		email:             email,
		firstName:         firstName,
		lastName:          lastName,
		preferredLanguage: preferredLanguage,
		isStaff:           isStaff,
	}, nil
}

// MustNewUser テスト用のUser作成
func MustNewUser(userID, email, firstName, lastName, preferredLanguage string, isStaff bool) *User {
	u, err := NewUser(userID, email, firstName, lastName, preferredLanguage, isStaff)
	if err != nil {
		panic(err)
	}
	return u
}

// UserID ユーザーIDを返す
func (u *User) UserID() string {
	return u.userID
}

// Email メールアドレスを返す
func (u *User) Email() string {
	return u.email
}

// FirstName 名を返す
func (u *User) FirstName() string {
	return u.firstName
}

// LastName 姓を返す
func (u *User) LastName() string {
	return u.lastName
}

// PreferredLanguage 優先言語を返す
func (u *User) PreferredLanguage() string {
	return u.preferredLanguage
}

// IsStaff スタッフかどうかを返す
func (u *User) IsStaff() bool {
	return u.isStaff
}

// DisplayName 表示名を返す。氏名がなければメールアドレスを使う
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.firstName + " " + u.lastName)
	if name != "" {
		return name
	}
	return u.email
}

// Is 同一ユーザーかどうかを返す
func (u *User) Is(userID *string) bool {
	if u == nil || userID == nil {
		return false
	}
	return u.userID == *userID
}
