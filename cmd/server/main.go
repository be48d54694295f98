package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/app"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	printStartupBanner(cfg)

	release := cfg.Server.Mode == "release"
	if isWeakSecret(cfg.JWT.SecretKey) {
		if release {
			stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
		stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, !release); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 仅当不存在任何超级用户时创建
	if release && cfg.Bootstrap.SuperuserPassword == "" {
		stdLog.Printf("警告: 未设置 bootstrap.superuser_password，已跳过初始超级用户创建")
	} else if _, err := models.InitDefaultSuperuser(cfg.Bootstrap.SuperuserUsername, cfg.Bootstrap.SuperuserPassword); err != nil {
		stdLog.Printf("警告: 初始化超级用户失败: %v", err)
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner(cfg *config.Config) {
	fmt.Println(ansiCyan + ansiBold + "PROJETO-AVARIAS :: gestão de avarias" + ansiReset)
	fmt.Println(ansiGreen + "• Empresa:  " + cfg.Company.Label() + ansiReset)
	fmt.Println(ansiGreen + "• Banco:    " + cfg.Database.Driver + ansiReset)
	fmt.Println(ansiGreen + "• Storage:  " + cfg.Storage.Driver + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
