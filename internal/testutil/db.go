// Package testutil 测试共用的数据库初始化
package testutil

import (
	"os"
	"testing"

	"OutreachSync/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 设置 TEST_POSTGRES_DSN 时连接 PostgreSQL，否则使用内存 SQLite。
// PostgreSQL 下各测试共用同一个库，测试数据应使用随机 ID 隔离。
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	var (
		db  *gorm.DB
		err error
	)
	if dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		db, err = gorm.Open(sqlite.Open("file::memory:"), cfg)
	}
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	if dsn == "" {
		// 内存库只存在于单个连接上
		sqlDB.SetMaxOpenConns(1)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}
