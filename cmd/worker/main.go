// Command worker 消费评论、投票、收藏的变更事件
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/xiebiao/bookhub/internal/application/interaction"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/pkg/logger"
	"github.com/xiebiao/bookhub/pkg/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Service:    "bookhub-worker",
		WithCaller: cfg.Log.EnableCaller,
	})
	mainLog := logger.Named("worker")

	if !cfg.MQ.Enabled() {
		mainLog.Fatal().Msg("未配置mq.url，worker无事可做")
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, cfg.MQ.Queue, cfg.MQ.RoutingKeys)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("创建消费者失败")
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journal := interaction.NewJournal(cfg.MQ.Queue, nil)
	mainLog.Info().Str("queue", cfg.MQ.Queue).Msg("worker启动")
	if err := consumer.Consume(ctx, journal.Handle); err != nil {
		mainLog.Error().Err(err).Msg("消费中断")
		return
	}
	mainLog.Info().Msg("worker已退出")
}
