package models

import (
	"time"
)

// SnapshotRetention はスナップショットの保持期間です。
// 期限切れの行はCronジョブが物理削除します。
const SnapshotRetention = 30 * 24 * time.Hour

// Snapshot は報告1回ごとに追記される生データの監査レコードです。
// 作成後は一切更新しません。サマリーの積算が壊れた場合の復元元になります。
type Snapshot struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	ChallengeID    uint      `gorm:"index;not null"`
	UserID         uint      `gorm:"index;not null"`
	SnapshotDate   time.Time `gorm:"type:date;not null"` // 報告対象の日付
	TotalMinutes   int       `gorm:"not null"`           // デバイスが報告した生の累積値
	TrackedMinutes int       `gorm:"not null"`
	CreatedAt      time.Time
	ExpiresAt      time.Time `gorm:"index;not null"` // 作成から30日後
}
