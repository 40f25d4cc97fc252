package handlers

import (
	"net/http"
	"time"

	"detoxserver/internal/tracking"
	"detoxserver/middlewares"
	"detoxserver/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScreenTimeRequest はデバイスからの定期レポートのボディを表す構造体です。
// totalMinutes/trackedMinutesは「その日の累積値」であり、差分ではありません。
type ScreenTimeRequest struct {
	ChallengeID    uint   `json:"challengeId" binding:"required"`
	Date           string `json:"date" binding:"required"` // "2006-01-02" 形式
	TotalMinutes   int    `json:"totalMinutes"`
	TrackedMinutes int    `json:"trackedMinutes"`
}

// ScreenTimeUpdate はスクリーンタイムの取り込みを処理するハンドラです。
// (challenge, user, date) ごとのサマリー行をupsertし、
// 監査用のスナップショット行を毎回追記します。
func ScreenTimeUpdate(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	// JWTトークンからユーザーIDを取得
	userID, err := middlewares.GetUserIDFromToken(c, logger)
	if err != nil {
		logger.Error("Failed to get user ID from token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": "token_validation_error",
			"error":  "認証に失敗しました",
		})
		return
	}

	var request ScreenTimeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Screen time request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "request_binding_error",
			"error":  err.Error(),
		})
		return
	}
	if request.TotalMinutes < 0 || request.TrackedMinutes < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "validation_error",
			"error":  "利用時間は0以上を指定してください",
		})
		return
	}
	date, err := time.ParseInLocation("2006-01-02", request.Date, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "validation_error",
			"error":  "日付は YYYY-MM-DD 形式で指定してください",
		})
		return
	}

	// チャレンジの存在確認。存在しない場合はどちらの書き込みも行わない
	var challenge models.Challenge
	if err := db.First(&challenge, request.ChallengeID).Error; err != nil {
		logger.Error("Challenge not found", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{
			"status": "challenge_not_found",
			"error":  "チャレンジが見つかりません",
		})
		return
	}

	// レスポンス用にサマリー行の有無を先に確認する。
	// upsert自体は下の1文で完結するため、同時レポートでも積算は失われない
	var existing int64
	db.Model(&models.DailySummary{}).
		Where("challenge_id = ? AND user_id = ? AND summary_date = ?", request.ChallengeID, userID, date).
		Count(&existing)
	status := tracking.ReportStatusCreated
	if existing > 0 {
		status = tracking.ReportStatusUpdated
	}

	// (challenge, user, date) の一意制約に対する単一文のinsert-or-update。
	// 初回は積算0で基準値のみを記録し、2回目以降は前回報告値との差分を
	// 積算に加える（差分の意味はtracking.Deltaと同一。報告値が前回を
	// 下回った場合はカウンターリセットとみなし報告値をそのまま加算）
	summary := models.DailySummary{
		ChallengeID:           request.ChallengeID,
		UserID:                userID,
		SummaryDate:           date,
		TotalMinutes:          0,
		TrackedMinutes:        0,
		InitialTotalMinutes:   request.TotalMinutes,
		InitialTrackedMinutes: request.TrackedMinutes,
		LastTotalMinutes:      request.TotalMinutes,
		LastTrackedMinutes:    request.TrackedMinutes,
	}
	upsertErr := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "challenge_id"}, {Name: "user_id"}, {Name: "summary_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_minutes": gorm.Expr(
				"daily_summaries.total_minutes + CASE WHEN EXCLUDED.last_total_minutes < daily_summaries.last_total_minutes" +
					" THEN EXCLUDED.last_total_minutes" +
					" ELSE EXCLUDED.last_total_minutes - daily_summaries.last_total_minutes END"),
			"tracked_minutes": gorm.Expr(
				"daily_summaries.tracked_minutes + CASE WHEN EXCLUDED.last_tracked_minutes < daily_summaries.last_tracked_minutes" +
					" THEN EXCLUDED.last_tracked_minutes" +
					" ELSE EXCLUDED.last_tracked_minutes - daily_summaries.last_tracked_minutes END"),
			"last_total_minutes":   gorm.Expr("EXCLUDED.last_total_minutes"),
			"last_tracked_minutes": gorm.Expr("EXCLUDED.last_tracked_minutes"),
			"updated_at":           time.Now(),
		}),
	}).Create(&summary).Error
	if upsertErr != nil {
		logger.Error("Failed to upsert daily summary", zap.Error(upsertErr))
	}

	// サマリーの成否に関わらずスナップショットを追記する（監査証跡）。
	// サマリーの積算が壊れた場合はこのログから再構築できる
	snapshot := models.Snapshot{
		ID:             uuid.New().String(),
		ChallengeID:    request.ChallengeID,
		UserID:         userID,
		SnapshotDate:   date,
		TotalMinutes:   request.TotalMinutes,
		TrackedMinutes: request.TrackedMinutes,
		ExpiresAt:      time.Now().Add(models.SnapshotRetention),
	}
	if err := db.Create(&snapshot).Error; err != nil {
		logger.Error("Failed to append snapshot", zap.Error(err))
	}

	if upsertErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "スクリーンタイムの記録に失敗しました"})
		return
	}

	// 現在の積算値を読み直してレスポンスに含める
	var stored models.DailySummary
	if err := db.Where("challenge_id = ? AND user_id = ? AND summary_date = ?", request.ChallengeID, userID, date).
		First(&stored).Error; err != nil {
		logger.Error("Failed to reload daily summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "スクリーンタイムの記録に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         string(status),
		"challengeId":    request.ChallengeID,
		"userId":         userID,
		"date":           request.Date,
		"totalMinutes":   stored.TotalMinutes,
		"trackedMinutes": stored.TrackedMinutes,
	})
}
