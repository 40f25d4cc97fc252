package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"detoxserver/internal/ranking"
	"detoxserver/middlewares"
	"detoxserver/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeRanking はチャレンジのランキング取得を処理するハンドラです。
// 利用時間が少ない参加者ほど上位になります。
func ChallengeRanking(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
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

	challengeInfo := gin.H{
		"challengeId":       challenge.ID,
		"name":              challenge.Name,
		"challengeStatus":   challenge.Status,
		"totalPledgedCoins": challenge.TotalPledgedCoins,
		"daysElapsed":       0,
		"daysTotal":         0,
	}

	// 開始前のチャレンジは空のランキングを返す
	if challenge.StartDate == nil || challenge.EndDate == nil {
		c.JSON(http.StatusOK, gin.H{
			"challengeInfo": challengeInfo,
			"rankings":      []ranking.Entry{},
		})
		return
	}

	// 参加者一覧を取得
	var rows []models.Participant
	if err := db.Where("challenge_id = ?", challenge.ID).Find(&rows).Error; err != nil {
		logger.Error("Failed to find participants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "参加者の取得に失敗しました"})
		return
	}
	participants := make([]ranking.Participant, 0, len(rows))
	for _, p := range rows {
		participants = append(participants, ranking.Participant{
			UserID:       p.UserID,
			Nickname:     p.Nickname,
			PledgedCoins: p.PledgedCoins,
			JoinedAt:     p.JoinedAt,
		})
	}

	// 開催期間内のサマリーをユーザーごとに合算。
	// サマリー行が無い参加者は0分として扱う（エラーではない）
	var sums []struct {
		UserID  uint
		Minutes int
	}
	if err := db.Model(&models.DailySummary{}).
		Select("user_id, COALESCE(SUM(tracked_minutes), 0) as minutes").
		Where("challenge_id = ? AND summary_date BETWEEN ? AND ?", challenge.ID, *challenge.StartDate, *challenge.EndDate).
		Group("user_id").
		Scan(&sums).Error; err != nil {
		logger.Error("Failed to sum daily summaries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "集計の取得に失敗しました"})
		return
	}
	totals := make(map[uint]int, len(sums))
	for _, s := range sums {
		totals[s.UserID] = s.Minutes
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daysTotal := ranking.DaysTotal(*challenge.StartDate, *challenge.EndDate)
	daysElapsed := ranking.DaysElapsed(*challenge.StartDate, today, daysTotal)

	entries := ranking.Compute(participants, totals, challenge.TotalPledgedCoins, daysElapsed, userID)

	// 各参加者の「今使っているアプリ」をRedisから取得して添付（無い場合は省略）
	ctx := c.Request.Context()
	for i := range entries {
		presenceJSON, err := rdb.Get(ctx, presenceKey(challenge.ID, entries[i].UserID)).Result()
		if err != nil {
			continue // 未報告または期限切れ
		}
		var presence models.Presence
		if err := json.Unmarshal([]byte(presenceJSON), &presence); err != nil {
			logger.Error("Failed to decode presence info", zap.Error(err))
			continue
		}
		entries[i].CurrentApp = &ranking.CurrentApp{
			AppPackage:   presence.AppPackage,
			AppName:      presence.AppName,
			UsageMinutes: presence.UsageMinutes,
		}
	}

	challengeInfo["daysElapsed"] = daysElapsed
	challengeInfo["daysTotal"] = daysTotal
	challengeInfo["startDate"] = challenge.StartDate.Format("2006-01-02")
	challengeInfo["endDate"] = challenge.EndDate.Format("2006-01-02")

	c.JSON(http.StatusOK, gin.H{
		"challengeInfo": challengeInfo,
		"rankings":      entries,
	})
}
