package conf

// Bootstrap 配置文件根节点
type Bootstrap struct {
	ConfigPath   string      `toml:"-" yaml:"-"`
	BuildVersion string      `toml:"-" yaml:"-"`
	Debug        bool        `toml:"debug" yaml:"debug" env:"OWLVIEW_DEBUG" comment:"调试模式，输出 debug 日志"`
	Server       Server      `toml:"server" yaml:"server"`
	Data         Data        `toml:"data" yaml:"data"`
	Log          Log         `toml:"log" yaml:"log"`
	NVR          NVR         `toml:"nvr" yaml:"nvr"`
	ObjectStore  ObjectStore `toml:"object_store" yaml:"object_store"`
	Catalog      Catalog     `toml:"catalog" yaml:"catalog"`
	Viewer       Viewer      `toml:"viewer" yaml:"viewer"`
}

type Server struct {
	HTTP ServerHTTP `toml:"http" yaml:"http"`
}

type ServerHTTP struct {
	Port      int      `toml:"port" yaml:"port" env:"OWLVIEW_HTTP_PORT" comment:"http 端口"`
	Timeout   Duration `toml:"timeout" yaml:"timeout" comment:"请求读写超时"`
	StaticDir string   `toml:"static_dir" yaml:"static_dir" comment:"前端资源目录"`
}

type Data struct {
	Database Database `toml:"database" yaml:"database"`
}

type Database struct {
	Dsn             string   `toml:"dsn" yaml:"dsn" env:"OWLVIEW_DATABASE_DSN" comment:"sqlite 文件路径，或 postgres:// mysql 开头的连接串"`
	MaxIdleConns    int32    `toml:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int32    `toml:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	SlowThreshold   Duration `toml:"slow_threshold" yaml:"slow_threshold"`
}

type Log struct {
	Dir          string   `toml:"dir" yaml:"dir" env:"OWLVIEW_LOG_DIR" comment:"日志目录"`
	Level        string   `toml:"level" yaml:"level" env:"OWLVIEW_LOG_LEVEL" comment:"debug/info/warn/error"`
	MaxAge       Duration `toml:"max_age" yaml:"max_age" comment:"日志保留时长"`
	RotationTime Duration `toml:"rotation_time" yaml:"rotation_time" comment:"日志切割间隔"`
	RotationSize int64    `toml:"rotation_size" yaml:"rotation_size" comment:"单个日志文件大小上限（MB）"`
}

// NVR 录像后端
type NVR struct {
	Kind           string   `toml:"kind" yaml:"kind" env:"OWLVIEW_NVR_KIND" comment:"shinobi 或 catalog（本地目录库）"`
	BaseURL        string   `toml:"base_url" yaml:"base_url" env:"OWLVIEW_NVR_URL"`
	APIKey         string   `toml:"api_key" yaml:"api_key" env:"OWLVIEW_NVR_API_KEY"`
	GroupKey       string   `toml:"group_key" yaml:"group_key" env:"OWLVIEW_NVR_GROUP"`
	Timeout        Duration `toml:"timeout" yaml:"timeout" comment:"单次请求超时"`
	HealthInterval Duration `toml:"health_interval" yaml:"health_interval" comment:"健康检查间隔"`
	EventLimit     int      `toml:"event_limit" yaml:"event_limit" comment:"单次拉取事件数量"`
	Timezone       string   `toml:"timezone" yaml:"timezone" comment:"不带时区的时间按此时区解析，默认本地时区"`
}

// ObjectStore 录像存放在 S3 兼容存储时，从桶中列出录像
type ObjectStore struct {
	Enabled       bool     `toml:"enabled" yaml:"enabled" env:"OWLVIEW_S3_ENABLED"`
	Endpoint      string   `toml:"endpoint" yaml:"endpoint" env:"OWLVIEW_S3_ENDPOINT"`
	AccessKey     string   `toml:"access_key" yaml:"access_key" env:"OWLVIEW_S3_ACCESS_KEY"`
	SecretKey     string   `toml:"secret_key" yaml:"secret_key" env:"OWLVIEW_S3_SECRET_KEY"`
	Bucket        string   `toml:"bucket" yaml:"bucket" env:"OWLVIEW_S3_BUCKET"`
	UseSSL        bool     `toml:"use_ssl" yaml:"use_ssl"`
	PresignExpiry Duration `toml:"presign_expiry" yaml:"presign_expiry" comment:"播放地址有效期"`
}

// Catalog 本地目录库
type Catalog struct {
	StorageDir         string  `toml:"storage_dir" yaml:"storage_dir" comment:"本地录像文件目录，通过 /static/recordings 访问"`
	RetainDays         int     `toml:"retain_days" yaml:"retain_days" comment:"保留天数，0 表示不清理"`
	DiskUsageThreshold float64 `toml:"disk_usage_threshold" yaml:"disk_usage_threshold" comment:"磁盘使用率超过该百分比时删除最旧的录像，0 表示不检查"`
}

// Viewer 事件关联策略与会话
type Viewer struct {
	AssumedSegment Duration `toml:"assumed_segment" yaml:"assumed_segment" comment:"录像缺少结束时间时假定的时长"`
	NearestCutoff  Duration `toml:"nearest_cutoff" yaml:"nearest_cutoff" comment:"近似匹配允许的最大距离"`
	IdleTTL        Duration `toml:"idle_ttl" yaml:"idle_ttl" comment:"会话空闲回收时间"`
}
