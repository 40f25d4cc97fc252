package main

import (
	"time"

	"go.uber.org/zap"

	"detoxserver/database" //PostgreSQLとRedisの初期化
	"detoxserver/handlers" //チャレンジ・スクリーンタイム関連のHTTPリクエストの処理
	"detoxserver/utils"    //ロガーの初期化とCronジョブ(ライフサイクル掃引と監査ログの整理)

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		config, err := database.LoadConfig("config.json")
		if err != nil {
			logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
		}
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronSweeper(db, logger)

	router := gin.Default()
	//リクエストロガーを起動
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://192.168.1.1:8080"}, //ここにデプロイサーバーのIPアドレスを設定
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	//各HTTPリクエストのルーティング
	router.POST("/login", func(c *gin.Context) {
		handlers.LoginHandler(c, db, logger)
	})
	router.GET("/home", func(c *gin.Context) {
		handlers.HomeHandler(c, db, logger)
	})
	router.POST("/challenge", func(c *gin.Context) {
		handlers.ChallengeCreate(c, db, logger)
	})
	router.POST("/challenge/join", func(c *gin.Context) {
		handlers.ChallengeJoin(c, db, logger)
	})
	router.POST("/challenge/:id/start", func(c *gin.Context) {
		handlers.ChallengeStart(c, db, logger)
	})
	router.GET("/challenge/:id/ranking", func(c *gin.Context) {
		handlers.ChallengeRanking(c, db, rdb, logger)
	})
	router.POST("/screen-time/update", func(c *gin.Context) {
		handlers.ScreenTimeUpdate(c, db, logger)
	})
	router.POST("/presence/heartbeat", func(c *gin.Context) {
		handlers.PresenceHeartbeat(c, rdb, logger)
	})

	// テスト時はHTTPサーバーとして運用。デフォルトポートは ":8080"
	router.Run()

	// // 本番環境ではコメントアウトを解除し、HTTPSサーバーとして運用
	// err = router.RunTLS(":443", "path/to/cert.pem", "path/to/key.pem")
	// if err != nil {
	// 	logger.Fatal("Failed to run HTTPS server: ", zap.Error(err))
	// }
}
