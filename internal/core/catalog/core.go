// Package catalog 本地录像目录库，保存通道、录像、事件描述
// 开发环境或由外部系统推送录像信息的部署使用它作为录像后端
package catalog

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/gowvp/owlview/internal/conf"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/system"
	"gorm.io/gorm"
)

// StaticPrefix 本地录像文件的访问前缀
const StaticPrefix = "/static/recordings"

// Table 单表持久化
type Table[T any] interface {
	Find(context.Context, *[]*T, orm.Pager, ...orm.QueryOption) (int64, error)
	Get(context.Context, *T, ...orm.QueryOption) error
	Add(context.Context, *T) error
	Edit(context.Context, *T, func(*T), ...orm.QueryOption) error
	Del(context.Context, *T, ...orm.QueryOption) error
	Session(context.Context, ...func(*gorm.DB) error) error
}

type (
	CameraStorer    = Table[Camera]
	RecordingStorer = Table[Recording]
	EventStorer     = Table[Event]
)

// Storer data persistence
type Storer interface {
	Camera() CameraStorer
	Recording() RecordingStorer
	Event() EventStorer
}

// Core business domain
type Core struct {
	store Storer
	conf  *conf.Catalog
}

type Option func(*Core)

// WithConfig 注入存储目录与保留策略
func WithConfig(c *conf.Catalog) Option {
	return func(core *Core) {
		core.conf = c
	}
}

// NewCore create business domain
func NewCore(store Storer, opts ...Option) Core {
	c := Core{store: store, conf: &conf.Catalog{}}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// StorageRoot 存储目录的绝对路径，相对路径基于程序工作目录，未配置时为空
func (c Core) StorageRoot() string {
	if c.conf.StorageDir == "" {
		return ""
	}
	if filepath.IsAbs(c.conf.StorageDir) {
		return c.conf.StorageDir
	}
	return filepath.Join(system.Getwd(), c.conf.StorageDir)
}

// GetFullPath 获取录像文件的完整路径
// relativePath 可能是相对于 StorageDir 的路径，也可能是完整路径
func (c Core) GetFullPath(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return relativePath
	}
	dir := c.conf.StorageDir
	if dir != "" && !filepath.IsAbs(dir) && strings.HasPrefix(relativePath, dir) {
		return filepath.Join(system.Getwd(), relativePath)
	}
	return filepath.Join(c.StorageRoot(), relativePath)
}

// PlayURL 录像播放地址，未指定 URL 的本地文件走静态文件服务
func (c Core) PlayURL(r *Recording) string {
	if r.URL != "" {
		return r.URL
	}
	if r.Path == "" {
		return ""
	}
	return path.Join(StaticPrefix, filepath.ToSlash(r.Path))
}
