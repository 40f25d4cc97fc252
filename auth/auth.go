package auth

import (
	"os"

	"detoxserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtKey はトークン署名用のシークレットキーです。
// 本番環境では必ず環境変数 JWT_SECRET_KEY を設定してください。
var JwtKey = loadJwtKey()

func loadJwtKey() []byte {
	if key := os.Getenv("JWT_SECRET_KEY"); key != "" {
		return []byte(key)
	}
	return []byte("dev_secret_key") // 開発用のデフォルト値
}

func IsValidToken(tokenString string) (bool, error) {
	claims := &models.MyClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})

	if err != nil {
		return false, err
	}

	return token.Valid, nil
}
