package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snakearena/game"
	"snakearena/server"
	"snakearena/store"
	"snakearena/term"
)

// snakearena 入口：-mode server 启动 HTTP + WebSocket 服务；-mode term 在终端本地游玩
func main() {
	def := game.DefaultConfig()
	var (
		mode      string
		addr      string
		logFile   string
		logLevel  string
		scoreFile string
		cfg       = def
		tail      string
	)
	flag.StringVar(&mode, "mode", "server", "run mode: server or term")
	flag.StringVar(&addr, "addr", ":8080", "server listen address, e.g. :8080")
	flag.StringVar(&logFile, "log", "snake.log", "log file path (rotated)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.StringVar(&scoreFile, "highscore", "data/highscore.json", "high score file")
	flag.IntVar(&cfg.CanvasWidth, "width", def.CanvasWidth, "canvas width in pixels")
	flag.IntVar(&cfg.CanvasHeight, "height", def.CanvasHeight, "canvas height in pixels")
	flag.IntVar(&cfg.CellSize, "cell", def.CellSize, "cell size in pixels")
	flag.IntVar(&cfg.Margin, "margin", def.Margin, "cells along the border where food never spawns")
	flag.IntVar(&cfg.StartLives, "lives", def.StartLives, "lives at game start")
	flag.IntVar(&cfg.MaxLives, "max-lives", def.MaxLives, "lives cap for extra-life food")
	flag.DurationVar(&cfg.BaseInterval, "tick", def.BaseInterval, "base tick interval")
	flag.DurationVar(&cfg.SlowDuration, "slow-duration", def.SlowDuration, "slow-down effect duration")
	flag.Float64Var(&cfg.SpecialChance, "special-chance", def.SpecialChance, "per-tick probability of special food")
	flag.StringVar(&tail, "tail", "vacated", "self-collision tail policy: vacated or blocked")
	flag.Parse()

	if tail == "blocked" {
		cfg.TailPolicy = game.TailBlocked
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		os.Exit(2)
	}
	// 使用 zap 日志库写入日志文件（带滚动）；终端模式下屏幕被 tcell 占用，同样只写文件
	if err := server.InitLogger(logFile, logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer server.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hs := store.NewFile(scoreFile)
	switch mode {
	case "term":
		runTerm(ctx, cfg, hs)
	case "server":
		runServer(ctx, addr, cfg, hs)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		os.Exit(2)
	}
}

func runTerm(ctx context.Context, cfg game.Config, hs game.HighScoreStore) {
	eng, err := game.NewEngine(cfg, game.WithStore(hs), game.WithLogger(server.Log))
	if err != nil {
		server.Log.Fatalf("engine: %v", err)
	}
	if err := term.Run(ctx, eng, server.Log); err != nil {
		server.Log.Errorf("terminal: %v", err)
		fmt.Fprintln(os.Stderr, err)
	}
}

func runServer(ctx context.Context, addr string, cfg game.Config, hs game.HighScoreStore) {
	rm := server.NewRoomManager(ctx, cfg, hs, server.Log)
	// 先预创建一个默认房间，第一个玩家加入后才开始推进
	if _, err := rm.GetOrCreateRoom("room-1"); err != nil {
		server.Log.Fatalf("default room: %v", err)
	}

	srv := &http.Server{Addr: addr, Handler: rm.Routes()}

	go func() {
		server.Log.Infof("snakearena listening on %s; open http://localhost%v/", addr, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	server.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnf("shutdown: %v", err)
	}
	rm.CloseAll()
}
