package api

import (
	"expvar"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gowvp/owlview/internal/core/catalog"
	"github.com/gowvp/owlview/internal/core/timex"
	"github.com/ixugo/goddd/pkg/system"
	"github.com/ixugo/goddd/pkg/web"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

var startRuntime = time.Now()

func setupRouter(r *gin.Engine, uc *Usecase) {
	const staticPrefix = "/web"

	r.Use(
		// 格式化输出到控制台，然后记录到日志
		// 此处不做 recover，底层 http.server 也会 recover，但不会输出方便查看的格式
		gin.CustomRecovery(func(c *gin.Context, err any) {
			slog.ErrorContext(c.Request.Context(), "panic", "err", err, "stack", string(debug.Stack()))
			c.AbortWithStatus(http.StatusInternalServerError)
		}),
		web.Metrics(),
		web.Logger(web.IgnorePrefix(staticPrefix),
			web.IgnoreMethod(http.MethodOptions),
			web.IgnorePrefix(catalog.StaticPrefix), // 录像文件
			web.IgnorePrefix("/cameras/"),          // m3u8 播放列表
		),
	)

	r.Use(cors.New(cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Accept", "Content-Length", "Content-Type", "Range", "Accept-Language",
			"Origin", "Authorization", "Referer", "User-Agent",
			"Accept-Encoding", "Cache-Control", "Pragma", "X-Requested-With",
			"X-Forwarded-For", "X-Real-IP", "X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc: func(_ string) bool {
			return true
		},
	}))

	staticDir := uc.Conf.Server.HTTP.StaticDir
	if staticDir != "" {
		if !filepath.IsAbs(staticDir) {
			staticDir = filepath.Join(system.Getwd(), staticDir)
		}
		admin := r.Group(staticPrefix, gzip.Gzip(gzip.DefaultCompression))
		admin.Static("/", staticDir)
		// 访问根路径时重定向到前端资源
		r.GET("/", func(ctx *gin.Context) {
			ctx.Redirect(http.StatusPermanentRedirect, staticPrefix+"/"+"index.html")
		})
	}
	r.NoRoute(func(c *gin.Context) {
		// 前端路由指向 index.html
		if staticDir != "" && strings.HasPrefix(c.Request.URL.Path, staticPrefix) {
			c.File(filepath.Join(staticDir, "index.html"))
			return
		}
		c.JSON(404, gin.H{"msg": "来到了无人的荒漠"})
	})

	r.GET("/health", web.WrapH(uc.getHealth))
	r.GET("/app/metrics/api", web.WrapH(uc.getMetricsAPI))

	RegisterCamera(r, uc.CameraAPI)
	RegisterSession(r, uc.SessionAPI)
	RegisterCatalog(r, uc.CatalogAPI)
}

type getHealthOutput struct {
	Version   string    `json:"version"`
	StartAt   time.Time `json:"start_at"`
	GitBranch string    `json:"git_branch"`
	GitHash   string    `json:"git_hash"`
	Connected bool      `json:"connected"`  // 录像后端是否可用
	CheckedAt string    `json:"checked_at"` // 最近一次探测时间
}

func (uc *Usecase) getHealth(_ *gin.Context, _ *struct{}) (getHealthOutput, error) {
	out := getHealthOutput{
		Version:   uc.Conf.BuildVersion,
		GitBranch: expvarString("git_branch"),
		GitHash:   expvarString("git_hash"),
		StartAt:   startRuntime,
	}
	if uc.Health != nil {
		out.Connected = uc.Health.Connected()
		out.CheckedAt = timex.Format(uc.Health.CheckedAt())
	}
	return out, nil
}

func expvarString(key string) string {
	v := expvar.Get(key)
	if v == nil {
		return ""
	}
	return strings.Trim(v.String(), `"`)
}

type getMetricsAPIOutput struct {
	RealTimeRequests int64   `json:"real_time_requests"` // 实时请求数
	TotalRequests    int64   `json:"total_requests"`     // 总请求数
	TotalResponses   int64   `json:"total_responses"`    // 总响应数
	RequestTop10     []KV    `json:"request_top10"`      // 请求TOP10
	StatusCodeTop10  []KV    `json:"status_code_top10"`  // 状态码TOP10
	Goroutines       int     `json:"goroutines"`         // 协程数量
	NumGC            uint32  `json:"num_gc"`             // gc 次数
	SysAlloc         uint64  `json:"sys_alloc"`          // 内存占用
	HostMemPercent   float64 `json:"host_mem_percent"`   // 主机内存使用率
	HostCPUPercent   float64 `json:"host_cpu_percent"`   // 主机 CPU 使用率
	StartAt          string  `json:"start_at"`           // 运行时间
}

func (uc *Usecase) getMetricsAPI(c *gin.Context, _ *struct{}) (*getMetricsAPIOutput, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	out := getMetricsAPIOutput{
		RealTimeRequests: expvarInt("request"),
		TotalRequests:    expvarInt("requests"),
		TotalResponses:   expvarInt("responses"),
		RequestTop10:     sortExpvarMap("requestURLs", 10),
		StatusCodeTop10:  sortExpvarMap("statusCodes", 10),
		Goroutines:       runtime.NumGoroutine(),
		NumGC:            stats.NumGC,
		SysAlloc:         stats.Sys,
		StartAt:          startRuntime.Format(time.DateTime),
	}
	ctx := c.Request.Context()
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.HostMemPercent = vm.UsedPercent
	}
	if p, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(p) > 0 {
		out.HostCPUPercent = p[0]
	}
	return &out, nil
}

func expvarInt(key string) int64 {
	if v, ok := expvar.Get(key).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}

type KV struct {
	Key   string
	Value int64
}

func sortExpvarMap(key string, top int) []KV {
	data, ok := expvar.Get(key).(*expvar.Map)
	if !ok {
		return []KV{}
	}
	kvs := make([]KV, 0, 8)
	data.Do(func(kv expvar.KeyValue) {
		if v, ok := kv.Value.(*expvar.Int); ok {
			kvs = append(kvs, KV{Key: kv.Key, Value: v.Value()})
		}
	})

	sort.Slice(kvs, func(i, j int) bool {
		return kvs[i].Value > kvs[j].Value
	})
	return kvs[:min(top, len(kvs))]
}
