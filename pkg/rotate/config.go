package rotate

// Config 日志轮转配置
type Config struct {
	// Filename 日志文件路径模板（必填），实际文件为 {basename}-{date}{ext}
	// 例如 logs/application.log -> logs/application-2026-10-18.log
	Filename string `yaml:"filename" json:"filename" toml:"filename"`

	// MaxSize 单个文件的最大大小（MB），超过后在当天内再次轮转，默认 20
	MaxSize int `yaml:"max_size" json:"max_size" toml:"max_size"`

	// MaxAge 保留旧日志文件的最大天数，0 表示不删除
	MaxAge int `yaml:"max_age" json:"max_age" toml:"max_age"`

	// Compress 换天后是否使用 gzip 压缩前一天的文件（含当天按大小轮转出的备份）
	Compress bool `yaml:"compress" json:"compress" toml:"compress"`

	// LocalTime 按本地时区切换日期，默认按 UTC
	LocalTime bool `yaml:"local_time" json:"local_time" toml:"local_time"`
}

// DefaultMaxSize 默认单文件大小上限（MB）
const DefaultMaxSize = 20
