package handlers

import (
	"net/http"

	"detoxserver/middlewares"
	"detoxserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoginHandler は認証用のハンドラです。トークンが有効ならそのまま、
// 無効・未提供なら新規ユーザーを作成してトークンを発行します。
// 本サーバーの認証はこのエンドポイントが供給するユーザーIDのみに依存します。
func LoginHandler(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Login request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "request_binding_error",
			"error":  err.Error(),
		})
		return
	}

	// TokenAuthentication関数でJWTの有効性を確認、無効であれば更新されたトークンを送付する
	userID, newToken, tokenValid, err := middlewares.TokenAuthentication(c, db, logger, request.Nickname, request.SubscriptionStatus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token processing failed"})
		return
	}

	if !tokenValid || newToken != "" {
		// 新規発行または更新されたトークンを返す
		c.JSON(http.StatusOK, gin.H{
			"status": "token_issued",
			"token":  newToken,
			"userId": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
		"userId": userID,
	})
}
