package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"detoxserver/middlewares"
	"detoxserver/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// presenceTTL を超えて更新がないプレゼンスは「現在のアプリ」として
// 意味を持たないため、Redis側で自動的に消えるようにしています。
const presenceTTL = time.Hour

// presenceKey は (challenge, user) ごとのRedisキーを返します。
func presenceKey(challengeID, userID uint) string {
	return fmt.Sprintf("presence:%d:%d", challengeID, userID)
}

// PresenceHeartbeatRequest はプレゼンス更新リクエストのボディを表す構造体です。
type PresenceHeartbeatRequest struct {
	ChallengeID  uint   `json:"challengeId" binding:"required"`
	AppPackage   string `json:"appPackage"` // 使用中アプリのパッケージ名
	AppName      string `json:"appName"`    // 表示名
	UsageMinutes int    `json:"usageMinutes"`
	Timestamp    int64  `json:"timestamp"` // UNIX秒。省略時はサーバー時刻
}

// PresenceHeartbeat は「今使っているアプリ」の更新を処理するハンドラです。
// 無条件の上書き（後勝ち）で、履歴は保持しません。採点には一切関与しません。
func PresenceHeartbeat(c *gin.Context, rdb *redis.Client, logger *zap.Logger) {
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

	var request PresenceHeartbeatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Presence heartbeat bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "request_binding_error",
			"error":  err.Error(),
		})
		return
	}

	updatedAt := time.Now()
	if request.Timestamp > 0 {
		updatedAt = time.Unix(request.Timestamp, 0)
	}

	// プレゼンス情報をJSON形式でエンコードしてRedisに保存
	presence := models.Presence{
		AppPackage:   request.AppPackage,
		AppName:      request.AppName,
		UsageMinutes: request.UsageMinutes,
		UpdatedAt:    updatedAt,
	}
	presenceJSON, err := json.Marshal(presence)
	if err != nil {
		logger.Error("Error encoding presence info", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "プレゼンスの保存に失敗しました"})
		return
	}

	key := presenceKey(request.ChallengeID, userID)
	if err := rdb.Set(c.Request.Context(), key, presenceJSON, presenceTTL).Err(); err != nil {
		logger.Error("Error storing presence info in Redis", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "プレゼンスの保存に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
