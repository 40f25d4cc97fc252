package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"detoxserver/internal/tracking"
	"detoxserver/middlewares"
	"detoxserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// 取り込みのupsertはSQL側のCASE式が差分計算の本体なので、
// インメモリのSQLiteで実際にON CONFLICT文を実行して検証します。
// SQLiteのupsertはPostgreSQLと同じくexcluded参照とテーブル名修飾を受け付けます。

func setupScreenTimeTest(t *testing.T) (*gorm.DB, *gin.Engine, string, uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	// テストごとに独立したインメモリDBを使う
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Challenge{}, &models.Participant{},
		&models.DailySummary{}, &models.Snapshot{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	user := models.User{Nickname: "テスト", SubscriptionStatus: "free", Coins: 500}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	challenge := models.Challenge{
		Name:       "デトックス",
		InviteCode: "AB12",
		PeriodDays: 7,
		Status:     models.ChallengeStatusInProgress,
		CreatorID:  user.ID,
	}
	if err := db.Create(&challenge).Error; err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}

	token, _, err := middlewares.GenerateToken(db, logger, user.Nickname, user.SubscriptionStatus, user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	router := gin.New()
	router.POST("/screen-time/update", func(c *gin.Context) {
		ScreenTimeUpdate(c, db, logger)
	})
	return db, router, token, challenge.ID
}

func postReport(t *testing.T, router *gin.Engine, token string, challengeID uint, date string, total, tracked int) (int, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(ScreenTimeRequest{
		ChallengeID:    challengeID,
		Date:           date,
		TotalMinutes:   total,
		TrackedMinutes: tracked,
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/screen-time/update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	response := map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return w.Code, response
}

func TestScreenTimeUpsertIdempotence(t *testing.T) {
	db, router, token, challengeID := setupScreenTimeTest(t)
	const date = "2025-08-20"

	// 初回報告30分: 行が作成され、積算は0のまま
	code, response := postReport(t, router, token, challengeID, date, 30, 30)
	if code != http.StatusOK {
		t.Fatalf("初回報告のstatus code = %d, want %d", code, http.StatusOK)
	}
	if response["status"] != string(tracking.ReportStatusCreated) {
		t.Errorf("初回報告のstatus = %v, want %q", response["status"], tracking.ReportStatusCreated)
	}
	if got := response["totalMinutes"].(float64); got != 0 {
		t.Errorf("初回報告後のtotalMinutes = %v, want 0", got)
	}

	// 2回目報告45分: 同じ行に差分15分が積算される
	code, response = postReport(t, router, token, challengeID, date, 45, 45)
	if code != http.StatusOK {
		t.Fatalf("2回目報告のstatus code = %d, want %d", code, http.StatusOK)
	}
	if response["status"] != string(tracking.ReportStatusUpdated) {
		t.Errorf("2回目報告のstatus = %v, want %q", response["status"], tracking.ReportStatusUpdated)
	}

	// 同一キーのサマリー行はちょうど1行、スナップショットはちょうど2行
	var summaryCount, snapshotCount int64
	db.Model(&models.DailySummary{}).Where("challenge_id = ?", challengeID).Count(&summaryCount)
	if summaryCount != 1 {
		t.Errorf("サマリー行数 = %d, want 1", summaryCount)
	}
	db.Model(&models.Snapshot{}).Where("challenge_id = ?", challengeID).Count(&snapshotCount)
	if snapshotCount != 2 {
		t.Errorf("スナップショット行数 = %d, want 2", snapshotCount)
	}

	// SQL側の積算がtracking.Accumulateと同じ結果になること
	var stored models.DailySummary
	if err := db.Where("challenge_id = ?", challengeID).First(&stored).Error; err != nil {
		t.Fatalf("failed to reload summary: %v", err)
	}
	if want := tracking.Accumulate(0, 45, 30); stored.TrackedMinutes != want {
		t.Errorf("tracked_minutes = %d, want %d", stored.TrackedMinutes, want)
	}
	if stored.TrackedMinutes != 15 || stored.TotalMinutes != 15 {
		t.Errorf("積算 = (%d, %d), want (15, 15)", stored.TotalMinutes, stored.TrackedMinutes)
	}
	if stored.LastTrackedMinutes != 45 || stored.InitialTrackedMinutes != 30 {
		t.Errorf("基準値 = (initial %d, last %d), want (30, 45)", stored.InitialTrackedMinutes, stored.LastTrackedMinutes)
	}
}

func TestScreenTimeCounterReset(t *testing.T) {
	db, router, token, challengeID := setupScreenTimeTest(t)
	const date = "2025-08-20"

	// 30 → 45 と報告した後、端末再起動でカウンターが10分にリセットされた場合、
	// 10分がそのまま積算に加わる（15 + 10 = 25）
	postReport(t, router, token, challengeID, date, 30, 30)
	postReport(t, router, token, challengeID, date, 45, 45)
	code, _ := postReport(t, router, token, challengeID, date, 10, 10)
	if code != http.StatusOK {
		t.Fatalf("リセット後報告のstatus code = %d, want %d", code, http.StatusOK)
	}

	var stored models.DailySummary
	if err := db.Where("challenge_id = ?", challengeID).First(&stored).Error; err != nil {
		t.Fatalf("failed to reload summary: %v", err)
	}
	want := tracking.Accumulate(tracking.Accumulate(0, 45, 30), 10, 45)
	if stored.TrackedMinutes != want {
		t.Errorf("リセット後のtracked_minutes = %d, want %d", stored.TrackedMinutes, want)
	}
	if stored.TrackedMinutes != 25 {
		t.Errorf("リセット後のtracked_minutes = %d, want 25", stored.TrackedMinutes)
	}
	if stored.LastTrackedMinutes != 10 {
		t.Errorf("リセット後のlast_tracked_minutes = %d, want 10", stored.LastTrackedMinutes)
	}

	var snapshotCount int64
	db.Model(&models.Snapshot{}).Where("challenge_id = ?", challengeID).Count(&snapshotCount)
	if snapshotCount != 3 {
		t.Errorf("スナップショット行数 = %d, want 3", snapshotCount)
	}
}

func TestScreenTimeUnknownChallenge(t *testing.T) {
	db, router, token, challengeID := setupScreenTimeTest(t)

	// 存在しないチャレンジへの報告はどちらの書き込みも行わず404
	code, response := postReport(t, router, token, challengeID+999, "2025-08-20", 30, 30)
	if code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", code, http.StatusNotFound)
	}
	if response["status"] != "challenge_not_found" {
		t.Errorf("status = %v, want challenge_not_found", response["status"])
	}

	var summaryCount, snapshotCount int64
	db.Model(&models.DailySummary{}).Count(&summaryCount)
	db.Model(&models.Snapshot{}).Count(&snapshotCount)
	if summaryCount != 0 || snapshotCount != 0 {
		t.Errorf("書き込み件数 = (%d, %d), want (0, 0)", summaryCount, snapshotCount)
	}
}
