package tracking

import "testing"

func TestDelta(t *testing.T) {
	cases := []struct {
		name         string
		reported     int
		lastReported int
		want         int
	}{
		{"増加分が差分になる", 45, 30, 15},
		{"変化なしは0", 30, 30, 0},
		{"カウンターリセットは報告値をそのまま採用", 10, 120, 10},
		{"リセット直後の0報告", 0, 300, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Delta(tc.reported, tc.lastReported); got != tc.want {
				t.Errorf("Delta(%d, %d) = %d, want %d", tc.reported, tc.lastReported, got, tc.want)
			}
		})
	}
}

func TestAccumulateScenario(t *testing.T) {
	// 初回報告30分: 基準値の記録のみで積算は0のまま
	accumulated := 0
	lastReported := 30

	// 30分後に45分を報告 → 差分15分が積算される
	accumulated = Accumulate(accumulated, 45, lastReported)
	if accumulated != 15 {
		t.Fatalf("accumulated = %d, want 15", accumulated)
	}
	lastReported = 45

	// さらに60分を報告 → 合計30分
	accumulated = Accumulate(accumulated, 60, lastReported)
	if accumulated != 30 {
		t.Fatalf("accumulated = %d, want 30", accumulated)
	}
	lastReported = 60

	// 端末再起動でカウンターが5分にリセット → 5分がそのまま加算される
	accumulated = Accumulate(accumulated, 5, lastReported)
	if accumulated != 35 {
		t.Fatalf("リセット後のaccumulated = %d, want 35", accumulated)
	}
}
