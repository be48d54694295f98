package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 进程级连接，InitDB 之后可用
var DB *gorm.DB

// DBPoolConfig 连接池参数，非正数表示沿用驱动默认值（MaxIdleConns 为 0 时不保留空闲连接）
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// dialectorFor 支持 sqlite（默认，纯 Go）与 postgres
func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", driver)
}

// OpenDB 打开连接并应用连接池参数
func OpenDB(driver, dsn string, pool DBPoolConfig, debug bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
	return db, nil
}

// InitDB 打开连接并设置全局 DB
func InitDB(driver, dsn string, pool DBPoolConfig, debug bool) error {
	db, err := OpenDB(driver, dsn, pool, debug)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// AllModels 需要迁移的全部表，顺序即依赖顺序
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Client{},
		&Driver{},
		&Vehicle{},
		&Product{},
		&DistributionCenter{},
		&Claim{},
		&ClaimItem{},
		&ClaimPhoto{},
		&ClaimLogEntry{},
		&UserLoginLog{},
		&AuthzAuditLog{},
	}
}

// AutoMigrate 迁移全局 DB
func AutoMigrate() error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.AutoMigrate(AllModels()...)
}
