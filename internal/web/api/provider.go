package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/gowvp/owlview/internal/adapter/objstore"
	"github.com/gowvp/owlview/internal/adapter/shinobi"
	"github.com/gowvp/owlview/internal/conf"
	"github.com/gowvp/owlview/internal/core/catalog"
	"github.com/gowvp/owlview/internal/core/correlate"
	"github.com/gowvp/owlview/internal/core/health"
	"github.com/gowvp/owlview/internal/core/nvr"
	"github.com/gowvp/owlview/internal/core/viewer"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(Usecase), "*"),
	NewHTTPHandler,
	NewCatalogStore, NewCatalogCore, NewCatalogAPI,
	NewBackend, NewHealthMonitor, NewPolicy,
	NewViewerManager, NewSessionAPI,
	NewCameraAPI,
)

type Usecase struct {
	Conf       *conf.Bootstrap
	DB         *gorm.DB
	Health     *health.Monitor
	CatalogAPI CatalogAPI
	CameraAPI  CameraAPI
	SessionAPI SessionAPI
}

// NewHTTPHandler 生成Gin框架路由内容
func NewHTTPHandler(uc *Usecase) http.Handler {
	if !uc.Conf.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	g := gin.New()
	setupRouter(g, uc)
	return g
}

func newWorkerContext() (context.Context, func()) {
	return context.WithCancel(context.Background())
}

// NewBackend 按配置选择录像后端，配置了对象存储时录像列表改由对象存储提供
func NewBackend(bc *conf.Bootstrap, catalogCore catalog.Core) (nvr.Backend, error) {
	cfg := bc.NVR
	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	var base nvr.Backend
	switch cfg.Kind {
	case "shinobi":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("nvr.base_url is required for shinobi")
		}
		base = shinobi.NewClient(shinobi.Config{
			BaseURL:  cfg.BaseURL,
			APIKey:   cfg.APIKey,
			GroupKey: cfg.GroupKey,
			Timeout:  cfg.Timeout.Duration(),
			Location: loc,
		})
	case "", "catalog":
		base = catalog.NewBackend(catalogCore)
	default:
		return nil, fmt.Errorf("unknown nvr kind %q", cfg.Kind)
	}
	slog.Info("nvr backend", "kind", cfg.Kind, "object_store", bc.ObjectStore.Enabled)

	if !bc.ObjectStore.Enabled {
		return base, nil
	}
	s3 := bc.ObjectStore
	lister, err := objstore.NewLister(objstore.Config{
		Endpoint:      s3.Endpoint,
		AccessKey:     s3.AccessKey,
		SecretKey:     s3.SecretKey,
		Bucket:        s3.Bucket,
		UseSSL:        s3.UseSSL,
		PresignExpiry: s3.PresignExpiry.Duration(),
		Location:      loc,
	})
	if err != nil {
		return nil, err
	}
	return nvr.NewOverlay(base, lister), nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("nvr.timezone: %w", err)
	}
	return loc, nil
}

// NewHealthMonitor 启动后端健康检查
func NewHealthMonitor(bc *conf.Bootstrap, backend nvr.Backend) (*health.Monitor, func()) {
	m := health.NewMonitor(backend,
		health.WithInterval(bc.NVR.HealthInterval.Duration()),
		health.WithTimeout(bc.NVR.Timeout.Duration()),
	)
	ctx, cancel := newWorkerContext()
	m.Start(ctx)
	return m, cancel
}

func NewPolicy(bc *conf.Bootstrap) correlate.Policy {
	return correlate.Policy{
		AssumedSegment: bc.Viewer.AssumedSegment.Duration(),
		NearestCutoff:  bc.Viewer.NearestCutoff.Duration(),
	}
}

// NewViewerManager 会话管理，定期清理空闲会话
func NewViewerManager(bc *conf.Bootstrap, backend nvr.Backend, monitor *health.Monitor, policy correlate.Policy) (*viewer.Manager, func()) {
	m := viewer.NewManager(backend,
		viewer.WithHealth(monitor),
		viewer.WithPolicy(policy),
		viewer.WithEventLimit(bc.NVR.EventLimit),
		viewer.WithIdleTTL(bc.Viewer.IdleTTL.Duration()),
	)
	ctx, cancel := newWorkerContext()
	m.Start(ctx)
	return m, cancel
}
