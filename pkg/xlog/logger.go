package xlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HorseArcher567/corelog/pkg/rotate"
)

// 日志目录下的文件名
const (
	ErrorFile    = "error.log"
	CombinedFile = "combined.log"
	DailyFile    = "application.log" // 实际为 application-<YYYY-MM-DD>.log
)

// Fields is the metadata attached to a record.
type Fields map[string]any

func (f Fields) keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LevelLogger has one method per level on the scale.
type LevelLogger interface {
	Fatal(msg string, meta ...Fields)
	Error(msg string, meta ...Fields)
	Warn(msg string, meta ...Fields)
	Info(msg string, meta ...Fields)
	Task(msg string, meta ...Fields)
	Debug(msg string, meta ...Fields)
	Trace(msg string, meta ...Fields)
}

var _ LevelLogger = (*Logger)(nil)

type sink struct {
	ws    zapcore.WriteSyncer
	close func() error
}

// Logger writes each record to error.log, combined.log, a daily rotating file
// and the console. A nil *Logger discards everything.
type Logger struct {
	opts  Options
	level Level
	scale Scale
	dir   string

	zap   *zap.Logger
	sinks []sink

	closeOnce sync.Once
	closeErr  error
}

// New 校验配置、创建日志目录并打开所有输出
// 返回的 Logger 使用完毕后应调用 Close() 关闭文件
func New(opts Options, options ...Option) (*Logger, error) {
	s := defaultSettings()
	for _, o := range options {
		o(&s)
	}

	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := s.scale.Validate(); err != nil {
		return nil, err
	}
	level, _ := ParseLevel(opts.LogLevel)

	dir, err := opts.LogDir(s.resolver)
	if err != nil {
		return nil, fmt.Errorf("xlog: resolve log directory: %w", err)
	}

	l, err := open(opts, level, dir, s)
	if err != nil {
		return nil, err
	}

	if !opts.Quiet {
		l.printBanner(s.banner)
	}
	return l, nil
}

// MustNew 同 New，失败时 panic
func MustNew(opts Options, options ...Option) *Logger {
	l, err := New(opts, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	return l
}

func open(opts Options, level Level, dir string, s settings) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("xlog: create log directory %s: %w", dir, err)
	}

	l := &Logger{
		opts:  opts,
		level: level,
		scale: s.scale,
		dir:   dir,
	}
	errorOutput := zapcore.Lock(zapcore.AddSync(s.errorOutput))
	core, err := l.openSinks(s, errorOutput)
	if err != nil {
		l.closeSinks()
		return nil, err
	}

	l.zap = zap.New(core, zap.ErrorOutput(errorOutput))
	return l, nil
}

// openSinks 按顺序打开 error.log、combined.log、按天轮转文件和控制台
func (l *Logger) openSinks(s settings, errorOutput zapcore.WriteSyncer) (zapcore.Core, error) {
	errorSink, err := openFile(filepath.Join(l.dir, ErrorFile))
	if err != nil {
		return nil, err
	}
	l.sinks = append(l.sinks, errorSink)

	combinedSink, err := openFile(filepath.Join(l.dir, CombinedFile))
	if err != nil {
		return nil, err
	}
	l.sinks = append(l.sinks, combinedSink)

	daily, err := rotate.New(rotate.Config{
		Filename:  filepath.Join(l.dir, DailyFile),
		MaxSize:   l.opts.MaxSize,
		MaxAge:    l.opts.MaxAge,
		Compress:  true,
		LocalTime: l.opts.LocalTime,
	}, rotate.WithErrorHandler(func(err error) {
		// 与 zap 写入失败的格式保持一致
		fmt.Fprintf(errorOutput, "%v daily log error: %v\n", time.Now(), err)
		errorOutput.Sync()
	}))
	if err != nil {
		return nil, fmt.Errorf("xlog: open daily log: %w", err)
	}
	l.sinks = append(l.sinks, sink{ws: daily, close: daily.Close})

	format := lineFormat{version: l.opts.PackageVersion, scale: l.scale}
	minLevel := l.level.zapLevel()
	errLevel := LevelError.zapLevel()

	enabled := zap.LevelEnablerFunc(func(z zapcore.Level) bool {
		return z >= minLevel
	})
	errorsOnly := zap.LevelEnablerFunc(func(z zapcore.Level) bool {
		return z >= minLevel && z >= errLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(newFileEncoder(format), errorSink.ws, errorsOnly),
		zapcore.NewCore(newFileEncoder(format), combinedSink.ws, enabled),
		zapcore.NewCore(newFileEncoder(format), daily, enabled),
	}
	if !l.opts.DisableConsole {
		colored := !color.NoColor
		if s.color != nil {
			colored = *s.color
		}
		cores = append(cores, zapcore.NewCore(
			newConsoleEncoder(format, colored),
			zapcore.Lock(zapcore.AddSync(s.console)),
			enabled,
		))
	}

	return zapcore.NewTee(cores...), nil
}

func openFile(path string) (sink, error) {
	ws, closeFn, err := zap.Open(path)
	if err != nil {
		return sink{}, fmt.Errorf("xlog: open %s: %w", path, err)
	}
	return sink{ws: ws, close: func() error {
		closeFn()
		return nil
	}}, nil
}

func (l *Logger) printBanner(w io.Writer) {
	fmt.Fprintf(w, "\n\n")
	fmt.Fprintf(w, "Application name: %s\n", l.opts.ProjectName)
	fmt.Fprintf(w, "Application version: %s\n", l.opts.PackageVersion)
	fmt.Fprintf(w, "Log level set to %s\n", l.opts.LogLevel)
	fmt.Fprintf(w, "Available log levels: %s\n", strings.Join(LevelNames(), ", "))
	fmt.Fprintf(w, "\n\n")
}

// Log writes a record at level. Records below the configured level are dropped.
func (l *Logger) Log(level Level, msg string, meta ...Fields) {
	if l == nil || l.zap == nil || !level.Valid() {
		return
	}
	if ce := l.zap.Check(level.zapLevel(), msg); ce != nil {
		ce.Write(metadataFields(meta)...)
	}
}

// Fatal logs at fatal level. It does not exit the process.
func (l *Logger) Fatal(msg string, meta ...Fields) { l.Log(LevelFatal, msg, meta...) }

func (l *Logger) Error(msg string, meta ...Fields) { l.Log(LevelError, msg, meta...) }

func (l *Logger) Warn(msg string, meta ...Fields) { l.Log(LevelWarn, msg, meta...) }

func (l *Logger) Info(msg string, meta ...Fields) { l.Log(LevelInfo, msg, meta...) }

func (l *Logger) Task(msg string, meta ...Fields) { l.Log(LevelTask, msg, meta...) }

func (l *Logger) Debug(msg string, meta ...Fields) { l.Log(LevelDebug, msg, meta...) }

func (l *Logger) Trace(msg string, meta ...Fields) { l.Log(LevelTrace, msg, meta...) }

// Enabled reports whether records at level reach the sinks.
func (l *Logger) Enabled(level Level) bool {
	if l == nil || l.zap == nil {
		return false
	}
	return l.zap.Core().Enabled(level.zapLevel())
}

// Dir returns the log directory, "" for a nil Logger.
func (l *Logger) Dir() string {
	if l == nil {
		return ""
	}
	return l.dir
}

// Level returns the minimum level. A nil Logger reports LevelFatal, the
// most restrictive level, since it writes nothing.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelFatal
	}
	return l.level
}

// Options returns the normalized options.
func (l *Logger) Options() Options {
	if l == nil {
		return Options{}
	}
	return l.opts
}

// Scale returns the logger's level colors.
func (l *Logger) Scale() Scale {
	if l == nil {
		return DefaultScale()
	}
	return l.scale
}

// Sync flushes the file sinks.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	var err error
	for _, s := range l.sinks {
		err = multierr.Append(err, s.ws.Sync())
	}
	return err
}

// Close flushes and closes the file sinks. Later calls return the first result.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.closeOnce.Do(func() {
		l.closeErr = multierr.Append(l.Sync(), l.closeSinks())
	})
	return l.closeErr
}

func (l *Logger) closeSinks() error {
	var err error
	for _, s := range l.sinks {
		err = multierr.Append(err, s.close())
	}
	return err
}
