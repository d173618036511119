// Package data 录像目录数据库的连接管理
// 根据 dsn 选择驱动：postgres:// 与 mysql:// 前缀使用对应驱动，其余视为 sqlite 文件
package data

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/wire"
	"github.com/gowvp/owlview/internal/conf"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/system"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(SetupDB)

const memoryDSN = ":memory:"

// SetupDB 打开目录数据库，返回的 cleanup 关闭连接池
func SetupDB(c *conf.Bootstrap) (*gorm.DB, func(), error) {
	cfg := c.Data.Database
	dial, isSQLite := getDialector(cfg.Dsn)
	if isSQLite {
		// sqlite 单连接，避免 database is locked
		cfg.MaxIdleConns = 1
		cfg.MaxOpenConns = 1
		if err := ensureDir(sqlitePath(cfg.Dsn)); err != nil {
			return nil, nil, err
		}
	}
	slog.Info("open catalog database", "driver", dial.Name(), "dsn", redactDSN(cfg.Dsn))

	db, err := orm.New(dial, orm.Config{
		MaxIdleConns:    int(cfg.MaxIdleConns),
		MaxOpenConns:    int(cfg.MaxOpenConns),
		ConnMaxLifetime: cfg.ConnMaxLifetime.Duration(),
		SlowThreshold:   cfg.SlowThreshold.Duration(),
	})
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

// getDialector 返回 dial 和 是否 sqlite
func getDialector(dsn string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(dsn, "postgres"):
		return postgres.New(postgres.Config{
			DriverName: "pgx",
			DSN:        dsn,
		}), false
	case strings.HasPrefix(dsn, "mysql://"):
		// go-sql-driver 不识别 scheme
		return mysql.Open(strings.TrimPrefix(dsn, "mysql://")), false
	case strings.HasPrefix(dsn, "mysql"):
		return mysql.Open(dsn), false
	default:
		return sqlite.Open(sqlitePath(dsn)), true
	}
}

// sqlitePath 相对路径基于工作目录
func sqlitePath(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	if dsn == memoryDSN || filepath.IsAbs(dsn) {
		return dsn
	}
	return filepath.Join(system.Getwd(), dsn)
}

func ensureDir(path string) error {
	if path == memoryDSN {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// redactDSN 隐藏连接串中的密码
func redactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		return u.Redacted()
	}
	if i := strings.LastIndex(dsn, "@"); i > 0 {
		start := 0
		if k := strings.Index(dsn[:i], "://"); k >= 0 {
			start = k + 3
		}
		if j := strings.Index(dsn[start:i], ":"); j >= 0 {
			return dsn[:start+j+1] + "xxxxx" + dsn[i:]
		}
	}
	return dsn
}
