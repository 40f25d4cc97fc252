package ranking

import (
	"fmt"
	"sort"
	"time"
)

// 「スクリーンタイムが少ないほうが勝ち」のランキング計算を行うパッケージです。
// DBから読み出した値を受け取って計算するだけで、永続化層には依存しません。

// Participant はランキング計算に必要な参加者情報です。
type Participant struct {
	UserID       uint
	Nickname     string
	PledgedCoins int
	JoinedAt     time.Time
}

// CurrentApp は参加者が今使用中のアプリ情報です（Presenceから取得、無い場合もあります）。
type CurrentApp struct {
	AppPackage   string `json:"appPackage"`
	AppName      string `json:"appName"`
	UsageMinutes int    `json:"usageMinutes"`
}

// Entry はランキングの1行です。
type Entry struct {
	Rank                int         `json:"rank"`
	UserID              uint        `json:"userId"`
	Nickname            string      `json:"nickname"`
	TotalMinutes        int         `json:"totalMinutes"`
	FormattedTotal      string      `json:"formattedTotal"`
	AverageDailyMinutes int         `json:"averageDailyMinutes"`
	FormattedAverage    string      `json:"formattedAverage"`
	PledgedCoins        int         `json:"pledgedCoins"`
	PrizeCoins          int         `json:"prizeCoins"`
	IsMe                bool        `json:"isMe"`
	CurrentApp          *CurrentApp `json:"currentApp,omitempty"`
}

// DaysTotal は開始日から終了日までの日数（両端を含む）を返します。
func DaysTotal(start, end time.Time) int {
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// DaysElapsed は開始日から今日までの経過日数を [0, daysTotal] の範囲に
// クランプして返します。開始前は0、終了後はdaysTotalです。
func DaysElapsed(start, today time.Time, daysTotal int) int {
	elapsed := int(today.Sub(start).Hours() / 24)
	if elapsed < 0 {
		return 0
	}
	if elapsed > daysTotal {
		return daysTotal
	}
	return elapsed
}

// FormatMinutes は分を "2h 5m" 形式に整形します。
// 時間のみ・分のみの場合は片方だけを表示し、0分は "0m" になります。
func FormatMinutes(m int) string {
	h := m / 60
	r := m % 60
	switch {
	case h > 0 && r > 0:
		return fmt.Sprintf("%dh %dm", h, r)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", r)
	}
}

// Compute は利用時間の昇順でランキングを作成します。
//   - totals: ユーザーIDごとの対象アプリ利用時間の合計（行が無い参加者は0扱い）
//   - 同点の場合は参加日時が早いほうを上位とします
//   - 賞金は1位の総取りで、チャレンジの賭けコイン合計がそのまま入ります
func Compute(participants []Participant, totals map[uint]int, totalPledge, daysElapsed int, requestingUserID uint) []Entry {
	sorted := make([]Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := totals[sorted[i].UserID], totals[sorted[j].UserID]
		if ti != tj {
			return ti < tj
		}
		return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
	})

	entries := make([]Entry, 0, len(sorted))
	for i, p := range sorted {
		total := totals[p.UserID]
		average := 0
		if daysElapsed > 0 {
			average = total / daysElapsed
		}
		prize := 0
		if i == 0 {
			prize = totalPledge
		}
		entries = append(entries, Entry{
			Rank:                i + 1,
			UserID:              p.UserID,
			Nickname:            p.Nickname,
			TotalMinutes:        total,
			FormattedTotal:      FormatMinutes(total),
			AverageDailyMinutes: average,
			FormattedAverage:    FormatMinutes(average),
			PledgedCoins:        p.PledgedCoins,
			PrizeCoins:          prize,
			IsMe:                p.UserID == requestingUserID,
		})
	}
	return entries
}
