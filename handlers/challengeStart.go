package handlers

import (
	"net/http"
	"time"

	"detoxserver/middlewares"
	"detoxserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeStart はホストによるチャレンジ開始を処理するハンドラです。
// 開始日と終了日はここで一度だけ確定し、以後変更されません。
func ChallengeStart(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
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

	challengeID := c.Param("id")
	var challenge models.Challenge
	if err := db.First(&challenge, challengeID).Error; err != nil {
		logger.Error("Challenge not found", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{
			"status": "challenge_not_found",
			"error":  "チャレンジが見つかりません",
		})
		return
	}

	// ホストのみ開始できる
	if challenge.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"status": "unauthorized_start",
			"error":  "ホストのみチャレンジを開始できます",
		})
		return
	}

	// すでに開始済みの場合はエラー
	if challenge.Status != models.ChallengeStatusPending || challenge.StartDate != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "challenge_already_started",
			"error":  "チャレンジはすでに開始されています",
		})
		return
	}

	// 開始日は今日、終了日は今日から期間-1日後（両端を含む期間日数）
	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 0, challenge.PeriodDays-1)

	if err := db.Model(&challenge).Updates(map[string]interface{}{
		"status":     models.ChallengeStatusInProgress,
		"start_date": startDate,
		"end_date":   endDate,
	}).Error; err != nil {
		logger.Error("Failed to start challenge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "チャレンジの開始に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "success",
		"challengeStatus":   models.ChallengeStatusInProgress,
		"startDate":         startDate.Format("2006-01-02"),
		"endDate":           endDate.Format("2006-01-02"),
		"totalPledgedCoins": challenge.TotalPledgedCoins,
	})
}
