package handlers

import (
	"crypto/rand"
	"fmt"

	"detoxserver/models"

	"gorm.io/gorm"
)

// 招待コードに使用する文字種と長さ
const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 4
	inviteCodeAttempts = 10 // 衝突時の再生成回数の上限
)

// generateInviteCode は暗号論的乱数から4文字の招待コードを1つ生成します。
func generateInviteCode() (string, error) {
	code := make([]byte, 0, inviteCodeLength)
	for len(code) < inviteCodeLength {
		buf := make([]byte, inviteCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		code = mapCodeBytes(code, buf)
	}
	return string(code), nil
}

// mapCodeBytes は乱数バイト列をコード文字に変換してdstに追記します。
// 256はアルファベット長で割り切れないため、剰余をそのまま使うと先頭の
// 文字が出やすくなります。割り切れる範囲を超えるバイトは棄却します。
func mapCodeBytes(dst []byte, buf []byte) []byte {
	const limit = 256 - 256%len(inviteCodeAlphabet)
	for _, b := range buf {
		if len(dst) == inviteCodeLength {
			break
		}
		if int(b) >= limit {
			continue
		}
		dst = append(dst, inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)])
	}
	return dst
}

// allocateInviteCode は未使用の招待コードを確保します。
// existsは既存コードとの重複チェックで、上限回数まで再試行しても
// 確保できない場合は黙って流用せずエラーを返します。
func allocateInviteCode(exists func(code string) (bool, error)) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := generateInviteCode()
		if err != nil {
			return "", err
		}
		used, err := exists(code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
		// 重複があればループを続け、新しいコードを生成
	}
	return "", fmt.Errorf("招待コードを%d回生成しても重複が解消できませんでした", inviteCodeAttempts)
}

// inviteCodeExists はDB内で招待コードが使用済みかどうかを返します。
func inviteCodeExists(db *gorm.DB, code string) (bool, error) {
	var exists bool
	err := db.Model(&models.Challenge{}).Select("count(*) > 0").
		Where("invite_code = ?", code).Find(&exists).Error
	return exists, err
}
