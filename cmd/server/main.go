package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taitaima2ma2-pixel/lesson-app/config"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/api/handler"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/api/router"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/repository"
	"github.com/taitaima2ma2-pixel/lesson-app/internal/service"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/database"
	applogger "github.com/taitaima2ma2-pixel/lesson-app/pkg/logger"
	"github.com/taitaima2ma2-pixel/lesson-app/pkg/redis"
)

func main() {
	// 1. 設定読み込み
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗: %v\n", err)
		os.Exit(1)
	}

	// 2. ロガー初期化
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ロガーの初期化に失敗: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("アプリケーション起動中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Int("reference_year", cfg.Scheduling.ReferenceYear),
	)

	// 3. データベース接続
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	logger.Info("データベース接続成功")

	// 3.1 マイグレーション実行
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("sql.DB の取得に失敗", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// 4. Redis 接続（任意。失敗時はキャッシュ・レート制限なしで動作）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 接続に失敗。キャッシュなしで起動します", zap.Error(err))
		rdb = nil
	}

	// 5. 依存注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, rdb, logger)
	h := handler.NewHandler(svc)

	// 6. ルータ初期化
	engine := router.Setup(cfg, h, rdb, logger)

	// 7. HTTP サーバ起動（グレースフルシャットダウン）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP サーバ起動", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP サーバ異常終了", zap.Error(err))
		}
	}()

	// 8. シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("終了シグナル受信。シャットダウン開始...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("サーバ終了時に異常", zap.Error(err))
	}

	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("サーバ停止完了")
}
