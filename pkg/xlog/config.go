package xlog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HorseArcher567/corelog/pkg/rotate"
	"github.com/HorseArcher567/corelog/pkg/root"
)

// DefaultNamespace is used when Options.UseDefaultNamespace is set and no
// namespace is given.
const DefaultNamespace = "core-registry"

// ErrMissingOption is matched by every *OptionError.
var ErrMissingOption = errors.New("missing required option")

// OptionError reports a required option that was left empty.
type OptionError struct {
	Field string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("options.%s is required", e.Field)
}

func (e *OptionError) Is(target error) bool {
	return target == ErrMissingOption
}

// Options 日志配置
type Options struct {
	// Namespace 日志目录的第一段：<root>/<namespace>/logs/<projectName>
	Namespace string `yaml:"namespace" json:"namespace" toml:"namespace"`

	// ProjectName 项目名称，日志目录的第二段，同时显示在启动横幅中
	ProjectName string `yaml:"projectName" json:"projectName" toml:"projectName"`

	// LogLevel 最低输出级别：fatal/error/warn/info/task/debug/trace
	LogLevel string `yaml:"logLevel" json:"logLevel" toml:"logLevel"`

	// PackageVersion 包版本，写入每一行日志
	PackageVersion string `yaml:"packageVersion" json:"packageVersion" toml:"packageVersion"`

	// UseDefaultNamespace 未设置 Namespace 时使用 DefaultNamespace
	UseDefaultNamespace bool `yaml:"useDefaultNamespace" json:"useDefaultNamespace" toml:"useDefaultNamespace"`

	// Root 覆盖根目录解析结果
	Root string `yaml:"root" json:"root" toml:"root"`

	// MaxSize 按天轮转文件的单文件大小上限（MB），默认 20
	MaxSize int `yaml:"maxSize" json:"maxSize" toml:"maxSize"`

	// MaxAge 按天轮转文件的保留天数，0 表示不删除
	MaxAge int `yaml:"maxAge" json:"maxAge" toml:"maxAge"`

	// LocalTime 按本地时区切换日期，默认 UTC
	LocalTime bool `yaml:"localTime" json:"localTime" toml:"localTime"`

	// DisableConsole 关闭控制台输出
	DisableConsole bool `yaml:"disableConsole" json:"disableConsole" toml:"disableConsole"`

	// Quiet 不打印启动横幅
	Quiet bool `yaml:"quiet" json:"quiet" toml:"quiet"`
}

// Normalize fills defaults. It never invents required values except the
// namespace when UseDefaultNamespace asks for it.
func (o Options) Normalize() Options {
	o.Namespace = strings.TrimSpace(o.Namespace)
	o.ProjectName = strings.TrimSpace(o.ProjectName)
	o.LogLevel = strings.TrimSpace(o.LogLevel)
	o.PackageVersion = strings.TrimSpace(o.PackageVersion)

	if o.Namespace == "" && o.UseDefaultNamespace {
		o.Namespace = DefaultNamespace
	}
	if level, err := ParseLevel(o.LogLevel); err == nil {
		o.LogLevel = level.String()
	}
	if o.MaxSize <= 0 {
		o.MaxSize = rotate.DefaultMaxSize
	}
	return o
}

// Validate checks required fields in a fixed order and the level name.
func (o Options) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"namespace", o.Namespace},
		{"projectName", o.ProjectName},
		{"logLevel", o.LogLevel},
		{"packageVersion", o.PackageVersion},
	}
	for _, r := range required {
		if r.value == "" {
			return &OptionError{Field: r.field}
		}
	}

	if _, err := ParseLevel(o.LogLevel); err != nil {
		return fmt.Errorf("options.logLevel: %w", err)
	}
	if o.MaxAge < 0 {
		return fmt.Errorf("options.maxAge must not be negative: %d", o.MaxAge)
	}
	return nil
}

// LogDir returns <root>/<namespace>/logs/<projectName>. Options.Root, when
// set, takes precedence over r.
func (o Options) LogDir(r root.Resolver) (string, error) {
	if o.Root != "" {
		r = root.Static(o.Root)
	}
	if r == nil {
		r = root.Default()
	}

	base, err := r.Resolve()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, o.Namespace, "logs", o.ProjectName), nil
}
