package sweeper

// SweepResult 期限切れ購入の掃除結果
type SweepResult struct {
	// Locked 他のインスタンスが実行中のため何もしなかった場合はtrue
	Locked   bool `json:"locked"`
	Checked  int  `json:"checked"`
	Expired  int  `json:"expired"`
	Skipped  int  `json:"skipped"`
	Orphaned int  `json:"orphaned"`
}
