package models

import (
	"gorm.io/gorm"
)

// User モデルの定義
type User struct {
	gorm.Model
	Nickname           string `gorm:"not null"`             // ランキング表示用ニックネーム
	SubscriptionStatus string `gorm:"not null"`             // 課金ステータス (無課金、スタンダード、プレミアムなど)
	Coins              int    `gorm:"not null;default:500"` // 所持コイン。賭け時に減算される
}
