package ranking

import (
	"testing"
	"time"
)

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{5, "5m"},
		{59, "59m"},
		{60, "1h"},
		{65, "1h 5m"},
		{120, "2h"},
		{125, "2h 5m"},
	}
	for _, tc := range cases {
		if got := FormatMinutes(tc.minutes); got != tc.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestDaysTotal(t *testing.T) {
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6) // 7日間チャレンジ
	if got := DaysTotal(start, end); got != 7 {
		t.Errorf("DaysTotal = %d, want 7", got)
	}
	if got := DaysTotal(start, start); got != 1 {
		t.Errorf("DaysTotal(同日) = %d, want 1", got)
	}
}

func TestDaysElapsedClamp(t *testing.T) {
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	daysTotal := 7
	cases := []struct {
		today time.Time
		want  int
	}{
		{start.AddDate(0, 0, -3), 0}, // 開始前
		{start, 0},                   // 開始日当日
		{start.AddDate(0, 0, 3), 3},  // 開催中
		{start.AddDate(0, 0, 30), 7}, // 終了後
	}
	for _, tc := range cases {
		if got := DaysElapsed(start, tc.today, daysTotal); got != tc.want {
			t.Errorf("DaysElapsed(today=%v) = %d, want %d", tc.today, got, tc.want)
		}
	}
}

func testParticipants() []Participant {
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	return []Participant{
		{UserID: 1, Nickname: "ホスト", PledgedCoins: 100, JoinedAt: base},
		{UserID: 2, Nickname: "ゲストA", PledgedCoins: 50, JoinedAt: base.Add(time.Hour)},
		{UserID: 3, Nickname: "ゲストB", PledgedCoins: 30, JoinedAt: base.Add(2 * time.Hour)},
	}
}

func TestComputeOrderAscending(t *testing.T) {
	totals := map[uint]int{1: 40, 2: 200, 3: 90}
	entries := Compute(testParticipants(), totals, 180, 3, 2)

	// 利用時間が少ないほど上位
	wantOrder := []uint{1, 3, 2}
	for i, want := range wantOrder {
		if entries[i].UserID != want {
			t.Fatalf("rank %d: userID = %d, want %d", i+1, entries[i].UserID, want)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("entries[%d].Rank = %d, want %d", i, entries[i].Rank, i+1)
		}
	}

	// 順位の不変条件: 合計が小さいほうが必ず上位
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].TotalMinutes > entries[j].TotalMinutes {
				t.Errorf("順位 %d (%d分) が順位 %d (%d分) より上位になっています",
					entries[i].Rank, entries[i].TotalMinutes, entries[j].Rank, entries[j].TotalMinutes)
			}
		}
	}
}

func TestComputeNoSummariesMeansZero(t *testing.T) {
	// サマリー行が1つも無い参加者は合計0分・平均0分
	entries := Compute(testParticipants(), map[uint]int{}, 180, 3, 1)
	for _, e := range entries {
		if e.TotalMinutes != 0 || e.AverageDailyMinutes != 0 {
			t.Errorf("user %d: total=%d average=%d, want 0/0", e.UserID, e.TotalMinutes, e.AverageDailyMinutes)
		}
	}
}

func TestComputeWinnerTakeAll(t *testing.T) {
	totals := map[uint]int{1: 40, 2: 200, 3: 90}
	totalPledge := 180
	entries := Compute(testParticipants(), totals, totalPledge, 3, 1)

	prizeSum := 0
	for _, e := range entries {
		if e.Rank == 1 && e.PrizeCoins != totalPledge {
			t.Errorf("1位の賞金 = %d, want %d", e.PrizeCoins, totalPledge)
		}
		if e.Rank != 1 && e.PrizeCoins != 0 {
			t.Errorf("%d位の賞金 = %d, want 0", e.Rank, e.PrizeCoins)
		}
		prizeSum += e.PrizeCoins
	}
	if prizeSum != totalPledge {
		t.Errorf("賞金の合計 = %d, want %d", prizeSum, totalPledge)
	}
}

func TestComputeTieBreakByJoinTime(t *testing.T) {
	// 同点の場合は参加日時が早いほうが上位
	totals := map[uint]int{1: 50, 2: 50, 3: 50}
	entries := Compute(testParticipants(), totals, 180, 3, 1)
	wantOrder := []uint{1, 2, 3}
	for i, want := range wantOrder {
		if entries[i].UserID != want {
			t.Errorf("rank %d: userID = %d, want %d", i+1, entries[i].UserID, want)
		}
	}
}

func TestComputeAverageAndFlags(t *testing.T) {
	totals := map[uint]int{1: 90}
	entries := Compute(testParticipants(), totals, 180, 3, 1)
	if entries[0].UserID != 1 {
		t.Fatalf("先頭のuserID = %d, want 1", entries[0].UserID)
	}
	if entries[0].AverageDailyMinutes != 30 {
		t.Errorf("平均 = %d, want 30", entries[0].AverageDailyMinutes)
	}
	if entries[0].FormattedTotal != "1h 30m" {
		t.Errorf("FormattedTotal = %q, want \"1h 30m\"", entries[0].FormattedTotal)
	}
	if !entries[0].IsMe {
		t.Error("リクエストユーザーのIsMeがfalseになっています")
	}
	for _, e := range entries[1:] {
		if e.IsMe {
			t.Errorf("user %d のIsMeがtrueになっています", e.UserID)
		}
	}

	// 経過0日なら平均も0
	zeroDay := Compute(testParticipants(), totals, 180, 0, 1)
	if zeroDay[0].AverageDailyMinutes != 0 {
		t.Errorf("経過0日の平均 = %d, want 0", zeroDay[0].AverageDailyMinutes)
	}
}
