package handlers

import (
	"net/http"

	"detoxserver/middlewares"
	"detoxserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HomeHandler はホーム画面の情報を提供するハンドラです。
// ユーザーが参加中のチャレンジ一覧を返します。
func HomeHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
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

	// 参加しているチャレンジを参加情報と合わせて取得
	var memberships []models.Participant
	if err := db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		logger.Error("Failed to find participations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "参加情報の取得に失敗しました"})
		return
	}

	challengesData := []map[string]interface{}{}
	hasActiveChallenge := false
	for _, m := range memberships {
		var challenge models.Challenge
		if err := db.First(&challenge, m.ChallengeID).Error; err != nil {
			logger.Error("Failed to fetch challenge", zap.Error(err))
			continue
		}
		if challenge.Status == models.ChallengeStatusInProgress {
			hasActiveChallenge = true
		}

		data := map[string]interface{}{
			"challengeId":       challenge.ID,
			"name":              challenge.Name,
			"inviteCode":        challenge.InviteCode,
			"challengeStatus":   challenge.Status,
			"role":              m.Role,
			"pledgedCoins":      m.PledgedCoins,
			"totalPledgedCoins": challenge.TotalPledgedCoins,
		}
		if challenge.StartDate != nil && challenge.EndDate != nil {
			data["startDate"] = challenge.StartDate.Format("2006-01-02")
			data["endDate"] = challenge.EndDate.Format("2006-01-02")
		}
		challengesData = append(challengesData, data)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "success",
		"hasActiveChallenge": hasActiveChallenge,
		"challenges":         challengesData,
	})
}
