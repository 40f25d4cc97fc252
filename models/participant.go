package models

import (
	"time"

	"gorm.io/gorm"
)

// 参加者のロール定義
const (
	ParticipantRoleHost  = "host"  // チャレンジ作成者
	ParticipantRoleGuest = "guest" // 招待コードで参加したユーザー
)

// MaxParticipants は1チャレンジあたりの参加人数上限です。
const MaxParticipants = 6

// Participant は1ユーザーの1チャレンジへの参加情報を表します。
// (challenge, user) の組み合わせで一意です。
type Participant struct {
	gorm.Model
	ChallengeID  uint      `gorm:"index;not null;uniqueIndex:uk_participants_challenge_user"`
	UserID       uint      `gorm:"index;not null;uniqueIndex:uk_participants_challenge_user"`
	Role         string    `gorm:"not null;default:'guest'"`
	Nickname     string    // 参加時のニックネーム
	PledgedCoins int       `gorm:"not null;default:0"` // 賭けコイン数
	JoinedAt     time.Time `gorm:"not null"`           // 参加日時（同点時の順位決定にも使用）
}
