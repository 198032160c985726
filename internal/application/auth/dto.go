package auth

// GenerateTokenRequest トークン生成リクエスト
type GenerateTokenRequest struct {
	UserID  string
	IsStaff bool
}

// GenerateTokenResponse トークン生成レスポンス
type GenerateTokenResponse struct {
	Token     string
	ExpiresIn int64  // 秒単位
	TokenType string // "Bearer"
}

// Claims 検証済みトークンの内容
type Claims struct {
	UserID  string
	IsStaff bool
}
