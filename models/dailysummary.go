package models

import (
	"time"

	"gorm.io/gorm"
)

// DailySummary は (challenge, user, date) ごとのスクリーンタイム集計行です。
// デバイスから報告される累積カウンターを差分に変換して積み上げます。
// 1キーにつき必ず1行（upsert）。
type DailySummary struct {
	gorm.Model
	ChallengeID uint      `gorm:"index;not null;uniqueIndex:uk_daily_summaries_key"`
	UserID      uint      `gorm:"not null;uniqueIndex:uk_daily_summaries_key"`
	SummaryDate time.Time `gorm:"type:date;not null;uniqueIndex:uk_daily_summaries_key"`

	// 差分を積み上げた当日分の利用時間
	TotalMinutes   int `gorm:"not null;default:0"` // 全アプリ合計
	TrackedMinutes int `gorm:"not null;default:0"` // 対象アプリのみ（ランキングの採点対象）

	// 差分計算用の記録値
	InitialTotalMinutes   int `gorm:"not null;default:0"` // 当日最初に報告された値
	InitialTrackedMinutes int `gorm:"not null;default:0"`
	LastTotalMinutes      int `gorm:"not null;default:0"` // 直近に報告された生の値
	LastTrackedMinutes    int `gorm:"not null;default:0"`
}

func (DailySummary) TableName() string { return "daily_summaries" }
