// internal/pkg/database/mysql.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ecommerce/internal/pkg/config"
	"ecommerce/internal/pkg/logger"
)

// DSN 生成 go-sql-driver 连接串。
// ClientFoundRows 让 UPDATE 返回匹配行数而不是变更行数，字段未变化的更新也能被识别为“存在”。
func DSN(cfg config.MySQLConfig) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c.DBName = cfg.Database
	c.ParseTime = true
	c.Loc = time.UTC
	c.ClientFoundRows = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// Open 建立 gorm 连接，gorm 的日志输出到 zerolog。
func Open(ctx context.Context, cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(DSN(cfg)), gormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping mysql")
	}
	logger.Ctx(ctx).Info().Str("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)).Msg("✅ MySQL connected")
	return db, nil
}

// FromConn 在已有的连接池上构建 gorm，不再探测服务端版本。
func FromConn(sqlDB *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), gormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "wrap sql.DB")
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: &gormLogger{level: gormlogger.Warn, slow: 200 * time.Millisecond},
	}
}

// gormLogger 把 gorm 的日志接到 zerolog 上。
type gormLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{level: level, slow: l.slow}
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		logger.Ctx(ctx).Info().Msgf(msg, args...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		logger.Ctx(ctx).Warn().Msgf(msg, args...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		logger.Ctx(ctx).Error().Msgf(msg, args...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var ev *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		ev = logger.Ctx(ctx).Error().Err(err)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		ev = logger.Ctx(ctx).Warn().Bool("slow", true)
	case l.level >= gormlogger.Info:
		ev = logger.Ctx(ctx).Debug()
	default:
		return
	}
	sql, rows := fc()
	ev.Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("gorm query")
}

// Closer 返回关闭底层连接池的函数，用于注册到服务关停流程。
func Closer(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}
