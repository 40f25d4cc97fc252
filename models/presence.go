package models

import "time"

// Presence は参加者が「今使っているアプリ」を表すRedis上の一時データです。
// (challenge, user) ごとに1件、後勝ちで上書きされ履歴は持ちません。
type Presence struct {
	AppPackage   string    `json:"appPackage"`   // アプリのパッケージ名
	AppName      string    `json:"appName"`      // 表示名
	UsageMinutes int       `json:"usageMinutes"` // そのアプリの連続利用時間（分）
	UpdatedAt    time.Time `json:"updatedAt"`
}
