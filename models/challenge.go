package models

import (
	"time"

	"gorm.io/gorm"
)

// チャレンジのステータス定義
const (
	ChallengeStatusPending    = "pending"     // 開始前（参加受付中）
	ChallengeStatusInProgress = "in_progress" // 開催中
	ChallengeStatusCompleted  = "completed"   // 終了
	ChallengeStatusCancelled  = "cancelled"   // 中止（現状は未使用）
)

// Challenge モデルの定義
type Challenge struct {
	gorm.Model
	Name              string        `gorm:"not null"`                    // チャレンジ名
	InviteCode        string        `gorm:"size:4;uniqueIndex;not null"` // 4文字の招待コード
	PeriodDays        int           `gorm:"not null"`                    // 開催期間（日数）
	StartDate         *time.Time    `gorm:"type:date"`                   // 開始日（開始操作まではnull）
	EndDate           *time.Time    `gorm:"type:date"`                   // 終了日（開始操作まではnull）
	Goal              string        // 目標テキスト
	Penalty           string        // 罰ゲームテキスト
	Status            string        `gorm:"index;not null;default:'pending'"`
	TotalPledgedCoins int           `gorm:"not null;default:0"` // 参加者全員の賭けコイン合計
	CreatorID         uint          `gorm:"not null"`           // 作成者（ホスト）のユーザーID
	Participants      []Participant `gorm:"foreignKey:ChallengeID"`
}
