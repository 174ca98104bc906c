package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fachebot/study-room-client/internal/config"
	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/roomapp"
	"github.com/fachebot/study-room-client/internal/svc"
)

var configFile = flag.String("f", "etc/config.yaml", "the config file")

func main() {
	flag.Parse()

	// 读取配置文件
	c, err := config.LoadFromFile(*configFile)
	if err != nil {
		logger.Fatalf("读取配置文件失败, %s", err)
	}
	logger.SetVerbose(c.Verbose)

	// 创建服务上下文
	svcCtx, err := svc.NewServiceContext(c)
	if err != nil {
		logger.Fatalf("创建服务上下文失败, %s", err)
	}

	// 创建房间
	app, err := roomapp.NewApp(svcCtx, os.Stdout, time.Local)
	if err != nil {
		svcCtx.Close()
		logger.Fatalf("[RoomApp] 创建房间失败, %s", err)
	}
	sess := app.Session()
	logger.Infof("[RoomApp] 房间 %s 开始于 %s，用户: %s", sess.RoomID, sess.StartAt.Format(time.DateTime), sess.Username)

	// 收到退出信号或用户输入 /quit 时离开房间
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("[RoomApp] 运行失败, %v", err)
	}

	// 优雅关闭
	logger.Infof("正在离开房间...")
	app.Close()
	svcCtx.Close()
	logger.Infof("已离开房间")
}
