package tracking

// デバイスは「その日の累積利用時間」を定期的に報告してきます。
// ここでは累積カウンターの報告値を差分に変換するロジックを定義します。
// DBアクセスを伴わない純粋な計算のみを置き、upsert本体はハンドラ側で行います。

// ReportStatus は報告処理の結果種別です。
type ReportStatus string

const (
	ReportStatusCreated ReportStatus = "created" // 当日の初回報告（基準値の記録のみ）
	ReportStatusUpdated ReportStatus = "updated" // 2回目以降の報告（差分を積算）
)

// Delta は前回報告値との差分を返します。
// カウンターは単調増加が前提ですが、端末再起動などでリセットされ
// 報告値が前回を下回ることがあります。その場合はリセットとみなし、
// 再起動後に積み上がった報告値をそのまま差分として扱います。
//
// 同じ計算がhandlers/screenTime.goのupsert文のCASE式としてSQLでも
// 書かれています。両者が乖離していないことは、実際にupsertを実行して
// この関数の結果と突き合わせるhandlersパッケージのテストで検証します。
func Delta(reported, lastReported int) int {
	if reported < lastReported {
		return reported
	}
	return reported - lastReported
}

// Accumulate は現在の積算値に報告値の差分を加えた新しい積算値を返します。
func Accumulate(accumulated, reported, lastReported int) int {
	return accumulated + Delta(reported, lastReported)
}
