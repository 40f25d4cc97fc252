package handlers

import (
	"errors"
	"net/http"
	"time"

	"detoxserver/middlewares"
	"detoxserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeJoinRequest は招待コードによる参加リクエストのボディを表す構造体です。
type ChallengeJoinRequest struct {
	InviteCode   string `json:"inviteCode" binding:"required"` // 4文字の招待コード
	PledgedCoins int    `json:"pledgedCoins"`                  // 賭けコイン数
}

// ChallengeJoin は招待コードを使ったチャレンジ参加を処理するハンドラです。
func ChallengeJoin(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
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

	var request ChallengeJoinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Challenge join request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "request_binding_error",
			"error":  err.Error(),
		})
		return
	}
	if request.PledgedCoins < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "validation_error",
			"error":  "賭けコインは0以上を指定してください",
		})
		return
	}

	// 招待コードから開始前のチャレンジを検索。
	// 開始済み・終了済みのコードは無効扱いにする
	var challenge models.Challenge
	if err := db.Where("invite_code = ? AND status = ?", request.InviteCode, models.ChallengeStatusPending).
		First(&challenge).Error; err != nil {
		logger.Error("Challenge not found with invite code", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{
			"status": "invalid_invite_code",
			"error":  "招待コードが無効です",
		})
		return
	}

	// すでに参加済みかどうかを確認
	var existing models.Participant
	err = db.Where("challenge_id = ? AND user_id = ?", challenge.ID, userID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"status": "already_joined",
			"error":  "すでにこのチャレンジに参加しています",
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing participant", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "参加状況の確認に失敗しました"})
		return
	}

	// 参加人数の上限を確認
	var count int64
	if err := db.Model(&models.Participant{}).Where("challenge_id = ?", challenge.ID).Count(&count).Error; err != nil {
		logger.Error("Failed to count participants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "参加状況の確認に失敗しました"})
		return
	}
	if count >= models.MaxParticipants {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "challenge_full",
			"error":  "参加人数が上限に達しています",
		})
		return
	}

	// ユーザーを取得し、所持コインを確認
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		logger.Error("Failed to fetch user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User fetch failed"})
		return
	}
	if user.Coins < request.PledgedCoins {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "insufficient_coins",
			"error":  "所持コインが不足しています",
		})
		return
	}

	// 参加者登録・賭けコイン合計の加算・コイン減算をまとめて実行
	newParticipant := models.Participant{
		ChallengeID:  challenge.ID,
		UserID:       userID,
		Role:         models.ParticipantRoleGuest,
		Nickname:     user.Nickname,
		PledgedCoins: request.PledgedCoins,
		JoinedAt:     time.Now(),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newParticipant).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Challenge{}).Where("id = ?", challenge.ID).
			Update("total_pledged_coins", gorm.Expr("total_pledged_coins + ?", request.PledgedCoins)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("coins", gorm.Expr("coins - ?", request.PledgedCoins)).Error
	})
	if err != nil {
		logger.Error("Failed to join challenge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "チャレンジへの参加に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":            "success",
		"challengeId":       challenge.ID,
		"name":              challenge.Name,
		"period":            challenge.PeriodDays,
		"goal":              challenge.Goal,
		"penalty":           challenge.Penalty,
		"totalPledgedCoins": challenge.TotalPledgedCoins + request.PledgedCoins,
	})
}
