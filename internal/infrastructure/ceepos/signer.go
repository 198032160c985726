package ceepos

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
)

// Signer 決済メッセージのチェックサムを計算する
type Signer struct {
	apiVersion string
	merchantID string
	accessMode int
	secret     string
}

// NewSigner 新しいSignerを作成
func NewSigner(apiVersion, merchantID string, accessMode int, secret string) *Signer {
	return &Signer{
		apiVersion: apiVersion,
		merchantID: merchantID,
		accessMode: accessMode,
		secret:     secret,
	}
}

// Checksum フィールドを&で連結し、末尾にシークレットを付けたSHA-256を返す
func (s *Signer) Checksum(fields ...string) string {
	input := strings.Join(append(fields, s.secret), "&")
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// PaymentRequest 決済開始要求のチェックサムを計算
func (s *Signer) PaymentRequest(req *PaymentRequest, returnAddress string) string {
	fields := []string{s.apiVersion, s.merchantID, req.OrderID, strconv.Itoa(s.accessMode), req.Action}
	if req.Description != "" {
		fields = append(fields, req.Description)
	}
	for _, p := range req.Products {
		fields = append(fields, p.Code, strconv.FormatInt(p.Price, 10))
	}
	for _, optional := range []string{req.Email, req.FirstName, req.LastName, req.Language} {
		if optional != "" {
			fields = append(fields, optional)
		}
	}
	fields = append(fields, returnAddress, req.NotificationAddress)
	return s.Checksum(fields...)
}

// Cancellation 決済取消要求のチェックサムを計算
func (s *Signer) Cancellation(c *PaymentCancellation) string {
	return s.Checksum(s.apiVersion, s.merchantID, c.OrderID, strconv.Itoa(s.accessMode), c.Action)
}

// Notification 支払い通知と支払い確認のチェックサムを計算
func (s *Signer) Notification(id, status, reference string) string {
	return s.Checksum(id, status, reference)
}

// Verify チェックサムを定数時間で比較
func (s *Signer) Verify(expected, actual string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}

// VerifyNotification 支払い通知のチェックサムを検証
func (s *Signer) VerifyNotification(id, status, reference, hash string) bool {
	return s.Verify(s.Notification(id, status, reference), hash)
}
