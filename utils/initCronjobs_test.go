package utils

import (
	"testing"
	"time"
)

func TestSweepCutoff(t *testing.T) {
	now := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)
	cutoff := SweepCutoff(now)

	want := time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC)
	if !cutoff.Equal(want) {
		t.Fatalf("SweepCutoff = %v, want %v", cutoff, want)
	}

	today := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	// 掃引の条件は end_date < cutoff
	if !yesterday.Before(cutoff) {
		t.Error("終了日が昨日のチャレンジは掃引対象になるべきです")
	}
	if !today.Before(cutoff) {
		t.Error("終了日が今日のチャレンジは当日の掃引対象になるべきです")
	}
	if tomorrow.Before(cutoff) {
		t.Error("終了日が明日のチャレンジは掃引対象になってはいけません")
	}
}

func TestSweepCutoffIdempotentWithinDay(t *testing.T) {
	// 同じ日のうちに複数回実行しても締切は変わらない
	morning := time.Date(2025, 8, 20, 0, 1, 0, 0, time.UTC)
	night := time.Date(2025, 8, 20, 23, 59, 0, 0, time.UTC)
	if !SweepCutoff(morning).Equal(SweepCutoff(night)) {
		t.Error("同一日内でSweepCutoffの結果が変わっています")
	}
}
