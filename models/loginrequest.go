package models

// LoginRequest はクライアントからのログインリクエストを表します。
// トークンが提供されている場合、それを使用してユーザーを認証します。
// トークンがない場合、ニックネームと課金ステータスから新しいユーザーとトークンが生成されます。
type LoginRequest struct {
	Token              string `json:"token,omitempty"`              // 既存のトークン
	Nickname           string `json:"nickname,omitempty"`           // 新規ユーザーのニックネーム
	SubscriptionStatus string `json:"subscriptionStatus,omitempty"` // 課金ステータス
}
