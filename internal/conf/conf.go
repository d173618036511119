// Package conf 配置加载，文件为 toml 或 yaml，环境变量优先
package conf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfig 默认配置
func DefaultConfig() Bootstrap {
	return Bootstrap{
		Server: Server{
			HTTP: ServerHTTP{
				Port:      15124,
				Timeout:   Duration(60 * time.Second),
				StaticDir: "www",
			},
		},
		Data: Data{
			Database: Database{
				Dsn:             "configs/data.db",
				MaxIdleConns:    10,
				MaxOpenConns:    50,
				ConnMaxLifetime: Duration(6 * time.Hour),
				SlowThreshold:   Duration(200 * time.Millisecond),
			},
		},
		Log: Log{
			Dir:          "logs",
			Level:        "info",
			MaxAge:       Duration(7 * 24 * time.Hour),
			RotationTime: Duration(12 * time.Hour),
			RotationSize: 50,
		},
		NVR: NVR{
			Kind:           "catalog",
			Timeout:        Duration(10 * time.Second),
			HealthInterval: Duration(30 * time.Second),
			EventLimit:     100,
		},
		ObjectStore: ObjectStore{
			PresignExpiry: Duration(time.Hour),
		},
		Catalog: Catalog{
			StorageDir: "recordings",
			RetainDays: 30,
		},
		Viewer: Viewer{
			AssumedSegment: Duration(15 * time.Minute),
			NearestCutoff:  Duration(30 * time.Minute),
			IdleTTL:        Duration(30 * time.Minute),
		},
	}
}

// SetupConfig 读取配置文件，文件不存在时写入默认配置
// 文件中的值覆盖默认值，环境变量覆盖文件
func SetupConfig(path string) (Bootstrap, error) {
	bc := DefaultConfig()
	bc.ConfigPath = path

	b, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := WriteConfig(&bc, path); err != nil {
			return bc, err
		}
	case err != nil:
		return bc, err
	default:
		if err := decode(path, b, &bc); err != nil {
			return bc, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := env.Parse(&bc); err != nil {
		return bc, fmt.Errorf("parse env: %w", err)
	}
	return bc, nil
}

func decode(path string, b []byte, bc *Bootstrap) error {
	if isYAML(path) {
		return yaml.Unmarshal(b, bc)
	}
	return toml.Unmarshal(b, bc)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// WriteConfig 将配置写回文件
func WriteConfig(bc *Bootstrap, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if isYAML(path) {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(bc); err != nil {
			return err
		}
	} else {
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(bc); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
