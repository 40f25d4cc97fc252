package utils

import (
	"time"

	"detoxserver/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SweepCutoff はライフサイクル掃引の締切（明日の0時）を返します。
// 終了日がこの時刻より前のチャレンジが終了対象になります。
func SweepCutoff(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, 1)
}

// CronSweeper は定期ジョブを起動します。
// 複数プロセスで同時に起動しない前提です（ロックは取っていません）。
func CronSweeper(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 終了日を過ぎた開催中チャレンジをcompletedに更新するジョブ（毎日実行）。
	// 対象の絞り込み条件だけで冪等になっており、同じ日に二度実行しても
	// completed済みの行が再度更新されることはない
	c.AddFunc("@daily", func() {
		logger.Info("チャレンジのライフサイクル掃引を開始")
		result := db.Model(&models.Challenge{}).
			Where("status = ? AND end_date < ?", models.ChallengeStatusInProgress, SweepCutoff(time.Now())).
			Update("status", models.ChallengeStatusCompleted)
		if result.Error != nil {
			logger.Error("チャレンジの終了処理に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("チャレンジのライフサイクル掃引完了", zap.Int("challenges_completed", int(result.RowsAffected)))
		}
	})

	// 保持期限を過ぎたスナップショットを削除するジョブ（"分 時 日 月 曜日"）。
	// 期限はDBのTTL機能ではなく明示的な削除で管理する
	c.AddFunc("0 3 * * *", func() {
		logger.Info("期限切れスナップショットの削除処理を開始")
		result := db.Where("expires_at <= ?", time.Now()).Delete(&models.Snapshot{})
		if result.Error != nil {
			logger.Error("スナップショットの削除に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("スナップショットの削除完了", zap.Int("snapshots_deleted", int(result.RowsAffected)))
		}
	})

	c.Start()
}
