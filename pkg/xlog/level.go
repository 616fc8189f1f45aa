package xlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap/zapcore"
)

// Level is a severity on the seven-step scale. Lower values are more severe.
type Level int8

const (
	LevelFatal Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelTask
	LevelDebug
	LevelTrace
)

// ErrInvalidLevel is returned for level names outside the scale.
var ErrInvalidLevel = errors.New("invalid log level")

var levelNames = [...]string{
	LevelFatal: "fatal",
	LevelError: "error",
	LevelWarn:  "warn",
	LevelInfo:  "info",
	LevelTask:  "task",
	LevelDebug: "debug",
	LevelTrace: "trace",
}

// Levels returns every level, most severe first.
func Levels() []Level {
	return []Level{LevelFatal, LevelError, LevelWarn, LevelInfo, LevelTask, LevelDebug, LevelTrace}
}

// LevelNames returns the level names, most severe first.
func LevelNames() []string {
	names := make([]string, len(levelNames))
	copy(names, levelNames[:])
	return names
}

// ParseLevel 解析日志级别名称（不区分大小写）
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int8(l))
	}
	return levelNames[l]
}

// Valid reports whether l is on the scale.
func (l Level) Valid() bool {
	return l >= LevelFatal && l <= LevelTrace
}

// zapLevel maps the scale onto zap so that info, warn and error keep zap's own
// values. fatal lands on DPanicLevel, which only panics in development mode,
// and the loggers built here never enable it.
func (l Level) zapLevel() zapcore.Level {
	return zapcore.Level(int8(LevelInfo) - int8(l))
}

func levelFromZap(z zapcore.Level) Level {
	return Level(int8(LevelInfo) - int8(z))
}

// Scale pairs every level with its display color. Each Logger owns its own
// Scale, so loggers with different colors do not affect each other.
type Scale struct {
	colors map[Level]color.Attribute
}

// DefaultScale returns the standard colors.
func DefaultScale() Scale {
	return Scale{colors: map[Level]color.Attribute{
		LevelFatal: color.FgRed,
		LevelError: color.FgRed,
		LevelWarn:  color.FgYellow,
		LevelInfo:  color.FgGreen,
		LevelTask:  color.FgCyan,
		LevelDebug: color.FgBlue,
		LevelTrace: color.FgMagenta,
	}}
}

// WithColor returns a copy of s with the color of level replaced.
func (s Scale) WithColor(level Level, attr color.Attribute) Scale {
	colors := make(map[Level]color.Attribute, len(s.colors)+1)
	for l, a := range s.colors {
		colors[l] = a
	}
	colors[level] = attr
	return Scale{colors: colors}
}

// Color returns the color attribute of level.
func (s Scale) Color(level Level) (color.Attribute, bool) {
	attr, ok := s.colors[level]
	return attr, ok
}

// Validate checks that every level has a color.
func (s Scale) Validate() error {
	for _, l := range Levels() {
		if _, ok := s.colors[l]; !ok {
			return fmt.Errorf("xlog: no color for level %s", l)
		}
	}
	return nil
}

// Paint renders the level name in its color.
func (s Scale) Paint(level Level) string {
	attr, ok := s.colors[level]
	if !ok {
		return level.String()
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(level.String())
}
