package handlers

import (
	"net/http"
	"time"

	"detoxserver/middlewares"
	"detoxserver/models"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChallengeCreateRequest はチャレンジ作成リクエストのボディを表す構造体です。
type ChallengeCreateRequest struct {
	Name         string `json:"name" binding:"required"`   // チャレンジ名
	Goal         string `json:"goal"`                      // 目標テキスト
	Penalty      string `json:"penalty"`                   // 罰ゲームテキスト
	PeriodDays   int    `json:"period" binding:"required"` // 開催期間（日数）
	PledgedCoins int    `json:"pledgedCoins"`              // ホストの賭けコイン数
}

// ChallengeCreate はチャレンジ作成を処理するハンドラです。
// 作成者はホストとして参加者に登録され、賭けコインが合計に計上されます。
func ChallengeCreate(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
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

	var request ChallengeCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Challenge create request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "request_binding_error",
			"error":  err.Error(),
		})
		return
	}
	if request.PeriodDays < 1 || request.PledgedCoins < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "validation_error",
			"error":  "期間は1日以上、賭けコインは0以上を指定してください",
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

	// 一意の招待コードを確保。上限回数まで重複が解消しない場合は失敗させる
	inviteCode, err := allocateInviteCode(func(code string) (bool, error) {
		return inviteCodeExists(db, code)
	})
	if err != nil {
		logger.Error("Failed to allocate invite code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "招待コードの生成に失敗しました"})
		return
	}

	// チャレンジ本体・ホスト参加者・コイン減算をひとつのトランザクションで作成
	newChallenge := models.Challenge{
		Name:              request.Name,
		InviteCode:        inviteCode,
		PeriodDays:        request.PeriodDays,
		Goal:              request.Goal,
		Penalty:           request.Penalty,
		Status:            models.ChallengeStatusPending,
		TotalPledgedCoins: request.PledgedCoins,
		CreatorID:         userID,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newChallenge).Error; err != nil {
			return err
		}
		host := models.Participant{
			ChallengeID:  newChallenge.ID,
			UserID:       userID,
			Role:         models.ParticipantRoleHost,
			Nickname:     user.Nickname,
			PledgedCoins: request.PledgedCoins,
			JoinedAt:     time.Now(),
		}
		if err := tx.Create(&host).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("coins", gorm.Expr("coins - ?", request.PledgedCoins)).Error
	})
	if err != nil {
		logger.Error("Failed to create a new challenge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "チャレンジ作成に失敗しました"})
		return
	}

	// 成功レスポンスを返す
	c.JSON(http.StatusCreated, gin.H{
		"status":            "success",
		"challengeId":       newChallenge.ID,
		"name":              newChallenge.Name,
		"inviteCode":        newChallenge.InviteCode,
		"period":            newChallenge.PeriodDays,
		"goal":              newChallenge.Goal,
		"penalty":           newChallenge.Penalty,
		"challengeStatus":   newChallenge.Status,
		"totalPledgedCoins": newChallenge.TotalPledgedCoins,
	})
}
