// Package repository 提供数据持久化层实现
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimyag/adshelf/internal/adshelf/repository/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	msqlite "modernc.org/sqlite" // 纯 Go SQLite 驱动，不需要 CGO
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	// DriverSQLite 本地 SQLite 文件
	DriverSQLite = "sqlite"
	// DriverPostgres PostgreSQL
	DriverPostgres = "postgres"
)

// sqliteLowerFunc 按 Unicode 规则转小写的 SQLite 函数
const sqliteLowerFunc = "adshelf_lower"

func init() {
	if err := msqlite.RegisterDeterministicScalarFunction(sqliteLowerFunc, 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("register sqlite function %s: %v", sqliteLowerFunc, err))
	}
}

// unicodeLower 与查询参数一样使用 strings.ToLower，NULL 保持 NULL
func unicodeLower(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Repository 数据库仓库
type Repository struct {
	db *gorm.DB
}

// New 打开 SQLite 数据库
func New(dbPath string) (*Repository, error) {
	return Open(DriverSQLite, dbPath)
}

// Open 按驱动打开数据库并完成迁移
func Open(driver, dsn string) (*Repository, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(dsn), gormConfig())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	repo := &Repository{db: db}
	if err := migrate(db); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

func openSQLite(dbPath string) (*gorm.DB, error) {
	// 确保数据库目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// 直接使用 database/sql + modernc.org/sqlite 创建连接，然后传递给 GORM
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dbPath,
		Conn:       sqlDB,
	}, gormConfig())
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// postgres 的唯一约束错误转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}
}

// isUniqueViolation 判断是否违反唯一约束
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	// modernc 返回扩展错误码，主键冲突是 SQLITE_CONSTRAINT_PRIMARYKEY
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Ad{},
		&model.Tag{},
		&model.AdTag{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// DB 返回 GORM 数据库实例（用于 Repository 实现）
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// WithContext 返回带上下文的数据库实例
func (r *Repository) WithContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Close 关闭数据库连接
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// createIndexes 创建 AutoMigrate 不会生成的索引
func createIndexes(db *gorm.DB) error {
	// 列表按 captured_at DESC, id DESC 分页
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_facebook_ads_feed_order
		ON facebook_ads(captured_at DESC, id DESC)
	`).Error; err != nil {
		return fmt.Errorf("create feed order index on facebook_ads: %w", err)
	}
	return nil
}
