package xlog

import (
	"io"
	"os"

	"github.com/HorseArcher567/corelog/pkg/root"
)

// Option 用于自定义 Logger 的初始化行为。
type Option func(s *settings)

type settings struct {
	resolver    root.Resolver
	console     io.Writer
	banner      io.Writer
	errorOutput io.Writer
	scale       Scale
	color       *bool
}

func defaultSettings() settings {
	return settings{
		resolver:    root.Default(),
		console:     os.Stdout,
		banner:      os.Stdout,
		errorOutput: os.Stderr,
		scale:       DefaultScale(),
	}
}

// WithResolver 指定根目录解析器（默认 $CHIA_ROOT 或 ~/.chia/mainnet）。
func WithResolver(r root.Resolver) Option {
	return func(s *settings) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithConsole 指定控制台输出目标（默认 stdout）。
func WithConsole(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.console = w
		}
	}
}

// WithBanner 指定启动横幅输出目标（默认 stdout）。
func WithBanner(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.banner = w
		}
	}
}

// WithErrorOutput 指定写入失败时的错误输出（默认 stderr），写入失败不会中断进程。
func WithErrorOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.errorOutput = w
		}
	}
}

// WithScale 替换级别颜色表。
func WithScale(scale Scale) Option {
	return func(s *settings) {
		s.scale = scale
	}
}

// WithColor 强制开启或关闭控制台颜色，默认根据终端与 NO_COLOR 自动判断。
func WithColor(enabled bool) Option {
	return func(s *settings) {
		s.color = &enabled
	}
}
