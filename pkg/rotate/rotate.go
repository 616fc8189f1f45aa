package rotate

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 日期格式（固定）
const dateFormat = "2006-01-02"
const defaultExt = ".log"
const compressSuffix = ".gz"

// Writer 按天切换日志文件，当天内按大小轮转由 lumberjack 负责。
// 实现了 io.WriteCloser 和 zapcore.WriteSyncer。
type Writer struct {
	config Config
	mu     sync.Mutex

	// lumberjack 实例在整个生命周期内复用，换天时只切换 Filename。
	// 它的 mill goroutine 每个实例启动一次且不会退出，因此不能每天新建。
	cur     *lumberjack.Logger
	curDate string

	// 文件名的基础部分和扩展名
	basename string // 不含扩展名的文件名（包含路径）
	ext      string // 扩展名（包含点号，默认值为".log"）

	now     func() time.Time
	onError func(error)

	// 后台压缩与清理任务
	wg sync.WaitGroup
}

// Option 自定义 Writer
type Option func(w *Writer)

// WithErrorHandler 接收后台压缩、清理中的错误（默认写到 stderr），可能被并发调用
func WithErrorHandler(fn func(error)) Option {
	return func(w *Writer) {
		if fn != nil {
			w.onError = fn
		}
	}
}

// New 创建一个新的按天轮转写入器
func New(config Config, options ...Option) (*Writer, error) {
	if config.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if config.MaxSize <= 0 {
		config.MaxSize = DefaultMaxSize
	}

	// 标准化文件名（确保有扩展名）
	config.Filename = normalizeFilename(config.Filename)

	w := &Writer{
		config: config,
		now:    time.Now,
		onError: func(err error) {
			fmt.Fprintf(os.Stderr, "rotate: %v\n", err)
		},
	}
	for _, o := range options {
		o(w)
	}
	w.basename, w.ext = splitFilename(w.config.Filename)

	// Compress、MaxAge、MaxBackups 保持零值：lumberjack 的 mill 什么都不做，
	// 也就不会在后台读取 Filename。压缩与清理由 Writer 自己按日期完成。
	w.cur = &lumberjack.Logger{
		MaxSize:   w.config.MaxSize,
		LocalTime: w.config.LocalTime,
	}

	if err := os.MkdirAll(filepath.Dir(w.config.Filename), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return w, nil
}

// MustNew 创建一个新的按天轮转写入器（失败时 panic）
func MustNew(config Config, options ...Option) *Writer {
	w, err := New(config, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize rotate writer: %v", err))
	}
	return w
}

// Write 实现 io.Writer 接口
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 检查是否跨天，需要切换文件
	if date := w.date(); date != w.curDate {
		if err := w.rotate(date); err != nil {
			return 0, err
		}
	}

	return w.cur.Write(p)
}

// Sync 实现 zapcore.WriteSyncer，lumberjack 每次写入直接落盘
func (w *Writer) Sync() error {
	return nil
}

// Close 关闭当前文件并等待后台压缩、清理完成
func (w *Writer) Close() error {
	w.mu.Lock()
	err := w.cur.Close()
	w.curDate = ""
	w.mu.Unlock()

	w.wg.Wait()
	return err
}

// Current 返回当前日期对应的日志文件路径
func (w *Writer) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.datedName(w.date())
}

// rotate 切换到新日期的文件
func (w *Writer) rotate(date string) error {
	if prev := w.curDate; prev != "" {
		if err := w.cur.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		if w.config.Compress {
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.compressDay(prev)
			}()
		}
	}

	w.cur.Filename = w.datedName(date)
	w.curDate = date

	// 异步清理过期文件
	if w.config.MaxAge > 0 {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.cleanup()
		}()
	}

	return nil
}

func (w *Writer) location() *time.Location {
	if w.config.LocalTime {
		return time.Local
	}
	return time.UTC
}

func (w *Writer) date() string {
	return w.now().In(w.location()).Format(dateFormat)
}

// datedName 生成文件名：{basename}-{date}{ext}
// 例如：logs/application.log -> logs/application-2026-10-18.log
func (w *Writer) datedName(date string) string {
	return fmt.Sprintf("%s-%s%s", w.basename, date, w.ext)
}

func (w *Writer) report(err error) {
	w.onError(err)
}

// compressDay 压缩某一天的日志文件，包括当天按大小轮转出的备份
func (w *Writer) compressDay(date string) {
	dir := filepath.Dir(w.config.Filename)
	files, err := os.ReadDir(dir)
	if err != nil {
		w.report(fmt.Errorf("compress %s: %w", date, err))
		return
	}

	baseNameOnly := filepath.Base(w.basename)
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || strings.HasSuffix(name, compressSuffix) {
			continue
		}
		fileDate, ok := w.parseDate(name, baseNameOnly)
		if !ok || fileDate.Format(dateFormat) != date {
			continue
		}
		if err := compressFile(filepath.Join(dir, name)); err != nil {
			w.report(fmt.Errorf("compress %s: %w", name, err))
		}
	}
}

// cleanup 清理过期文件
func (w *Writer) cleanup() {
	dir := filepath.Dir(w.config.Filename)
	files, err := os.ReadDir(dir)
	if err != nil {
		w.report(fmt.Errorf("cleanup: %w", err))
		return
	}

	// 计算截止日期（只比较日期，忽略时分秒）
	now := w.now().In(w.location())
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, w.location()).AddDate(0, 0, -w.config.MaxAge)
	baseNameOnly := filepath.Base(w.basename)

	for _, f := range files {
		if f.IsDir() {
			continue
		}

		name := f.Name()
		fileDate, ok := w.parseDate(name, baseNameOnly)
		if !ok {
			continue
		}

		// 检查是否过期（严格小于 cutoff 才删除）
		if fileDate.Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
				w.report(fmt.Errorf("cleanup: %w", err))
			}
		}
	}
}

// parseDate 从文件名中解析日期
// 匹配 {basename}-{date}{ext}[.gz] 以及 lumberjack 产生的 {basename}-{date}-{timestamp}{ext}[.gz]
func (w *Writer) parseDate(filename, baseName string) (time.Time, bool) {
	prefix := baseName + "-"
	if !strings.HasPrefix(filename, prefix) {
		return time.Time{}, false
	}

	rest := filename[len(prefix):]
	if len(rest) < len(dateFormat) {
		return time.Time{}, false
	}

	suffix := strings.TrimSuffix(rest[len(dateFormat):], compressSuffix)
	if !strings.HasSuffix(suffix, w.ext) {
		return time.Time{}, false
	}
	if suffix != w.ext && !strings.HasPrefix(suffix, "-") {
		return time.Time{}, false
	}

	date, err := time.ParseInLocation(dateFormat, rest[:len(dateFormat)], w.location())
	if err != nil {
		return time.Time{}, false
	}

	return date, true
}

// compressFile 将 src 压缩为 src.gz 并删除原文件
func compressFile(src string) error {
	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	dst := src + compressSuffix
	gzf, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode())
	if err != nil {
		return fmt.Errorf("failed to open compressed log file: %w", err)
	}

	gz := gzip.NewWriter(gzf)
	if _, err := io.Copy(gz, f); err != nil {
		gzf.Close()
		os.Remove(dst)
		return err
	}
	if err := gz.Close(); err != nil {
		gzf.Close()
		os.Remove(dst)
		return err
	}
	if err := gzf.Close(); err != nil {
		return err
	}

	f.Close()
	return os.Remove(src)
}

// normalizeFilename 标准化文件名，确保有扩展名
func normalizeFilename(filename string) string {
	if filepath.Ext(filename) == "" {
		return filename + defaultExt
	}
	return filename
}

// splitFilename 将文件名分割为基础部分和扩展名
// 例如："logs/app.log" -> ("logs/app", ".log")
func splitFilename(filename string) (basename, ext string) {
	ext = filepath.Ext(filename)
	basename = filename[:len(filename)-len(ext)]
	return basename, ext
}
