package api

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/owlview/internal/conf"
	"github.com/gowvp/owlview/internal/core/catalog"
	"github.com/gowvp/owlview/internal/core/catalog/store/catalogdb"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
	"gorm.io/gorm"
)

// CatalogAPI 本地目录库的维护接口，外部系统通过它推送通道、录像与事件
type CatalogAPI struct {
	catalogCore catalog.Core
}

// NewCatalogStore 创建目录库存储层
func NewCatalogStore(db *gorm.DB) catalog.Storer {
	return catalogdb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate())
}

// NewCatalogCore 创建目录库，并启动清理协程
func NewCatalogCore(store catalog.Storer, bc *conf.Bootstrap) (catalog.Core, func()) {
	core := catalog.NewCore(store, catalog.WithConfig(&bc.Catalog))
	ctx, cancel := newWorkerContext()
	go core.StartCleanupWorker(ctx)
	return core, cancel
}

func NewCatalogAPI(core catalog.Core) CatalogAPI {
	return CatalogAPI{catalogCore: core}
}

func RegisterCatalog(g gin.IRouter, api CatalogAPI, handler ...gin.HandlerFunc) {
	{
		group := g.Group("/catalog/cameras", handler...)
		group.GET("", web.WrapH(api.findCameras))
		group.POST("", web.WrapH(api.addCamera))
		group.PUT("/:id", web.WrapH(api.editCamera))
	}
	{
		group := g.Group("/catalog/recordings", handler...)
		group.GET("", web.WrapH(api.findRecordings))
		group.POST("", web.WrapH(api.addRecording))
		group.GET("/monthly", web.WrapH(api.getMonthlyStats))
		group.GET("/:id", web.WrapH(api.getRecording))
		group.DELETE("/:id", web.WrapH(api.delRecording))
	}
	{
		group := g.Group("/catalog/events", handler...)
		group.GET("", web.WrapH(api.findEvents))
		group.POST("", web.WrapH(api.addEvent))
	}

	// 本地录像文件，gin Static 支持 Range 请求
	if dir := api.catalogCore.StorageRoot(); dir != "" {
		slog.Info("register recording static files", "path", catalog.StaticPrefix, "dir", dir)
		g.Static(catalog.StaticPrefix, dir)
	}
}

func (a CatalogAPI) findCameras(c *gin.Context, in *catalog.FindCameraInput) (any, error) {
	items, total, err := a.catalogCore.FindCameras(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

func (a CatalogAPI) addCamera(c *gin.Context, in *catalog.AddCameraInput) (*catalog.Camera, error) {
	return a.catalogCore.AddCamera(c.Request.Context(), in)
}

func (a CatalogAPI) editCamera(c *gin.Context, in *catalog.EditCameraInput) (*catalog.Camera, error) {
	return a.catalogCore.EditCamera(c.Request.Context(), in, c.Param("id"))
}

// findRecordings 分页查询录像列表
func (a CatalogAPI) findRecordings(c *gin.Context, in *catalog.FindRecordingInput) (any, error) {
	items, total, err := a.catalogCore.FindRecordings(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

func (a CatalogAPI) addRecording(c *gin.Context, in *catalog.AddRecordingInput) (*catalog.Recording, error) {
	return a.catalogCore.AddRecording(c.Request.Context(), in)
}

func (a CatalogAPI) getRecording(c *gin.Context, _ *struct{}) (*catalog.Recording, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, reason.ErrBadRequest.SetMsg("invalid recording id")
	}
	return a.catalogCore.GetRecording(c.Request.Context(), id)
}

func (a CatalogAPI) delRecording(c *gin.Context, _ *struct{}) (*catalog.Recording, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, reason.ErrBadRequest.SetMsg("invalid recording id")
	}
	return a.catalogCore.DelRecording(c.Request.Context(), id)
}

// getMonthlyStats 获取月度录像统计
func (a CatalogAPI) getMonthlyStats(c *gin.Context, in *catalog.MonthlyStatsInput) (*catalog.MonthlyStatsOutput, error) {
	return a.catalogCore.GetMonthlyStats(c.Request.Context(), in)
}

func (a CatalogAPI) findEvents(c *gin.Context, in *catalog.FindEventInput) (any, error) {
	items, total, err := a.catalogCore.FindEvents(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

func (a CatalogAPI) addEvent(c *gin.Context, in *catalog.AddEventInput) (*catalog.Event, error) {
	return a.catalogCore.AddEvent(c.Request.Context(), in)
}
