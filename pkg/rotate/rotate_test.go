package rotate

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestWriter(t *testing.T, cfg Config, now *time.Time, options ...Option) *Writer {
	t.Helper()

	w, err := New(cfg, options...)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	w.now = func() time.Time { return *now }
	t.Cleanup(func() { w.Close() })
	return w
}

func TestNew(t *testing.T) {
	tempDir := t.TempDir()

	w, err := New(Config{
		Filename: filepath.Join(tempDir, "nested", "application"),
	})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if w.ext != ".log" {
		t.Errorf("Expected default extension .log, got %q", w.ext)
	}
	if w.config.MaxSize != DefaultMaxSize {
		t.Errorf("Expected default MaxSize %d, got %d", DefaultMaxSize, w.config.MaxSize)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "nested")); err != nil {
		t.Errorf("Log directory was not created: %v", err)
	}
}

func TestWriteDatedFile(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	w := newTestWriter(t, Config{Filename: filepath.Join(tempDir, "application.log")}, &now)

	message := "test log message\n"
	n, err := w.Write([]byte(message))
	if err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if n != len(message) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(message), n)
	}

	want := filepath.Join(tempDir, "application-2026-10-18.log")
	if got := w.Current(); got != want {
		t.Errorf("Current() = %q, want %q", got, want)
	}

	content, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if string(content) != message {
		t.Errorf("Expected content %q, got %q", message, string(content))
	}
}

func TestDateUsesUTC(t *testing.T) {
	tempDir := t.TempDir()
	// 2026-10-19 02:00 UTC+8 is still 2026-10-18 in UTC
	now := time.Date(2026, 10, 19, 2, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))
	w := newTestWriter(t, Config{Filename: filepath.Join(tempDir, "application.log")}, &now)

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "application-2026-10-18.log")); err != nil {
		t.Errorf("Expected UTC dated file: %v", err)
	}
}

func TestDailyRotation(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	w := newTestWriter(t, Config{
		Filename: filepath.Join(tempDir, "application.log"),
		Compress: true,
	}, &now)

	if _, err := w.Write([]byte("day one\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	first := w.cur

	now = now.Add(2 * time.Minute)
	if _, err := w.Write([]byte("day two\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if w.cur != first {
		t.Error("Day change should reuse the lumberjack logger")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tempDir, "application-2026-10-19.log"))
	if err != nil {
		t.Fatalf("Failed to read new day file: %v", err)
	}
	if string(content) != "day two\n" {
		t.Errorf("Expected new day content %q, got %q", "day two\n", string(content))
	}

	prev := filepath.Join(tempDir, "application-2026-10-18.log")
	if _, err := os.Stat(prev); !os.IsNotExist(err) {
		t.Error("Previous day file should have been compressed")
	}

	f, err := os.Open(prev + ".gz")
	if err != nil {
		t.Fatalf("Failed to open compressed file: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("Failed to read gzip header: %v", err)
	}
	data, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}
	if string(data) != "day one\n" {
		t.Errorf("Expected compressed content %q, got %q", "day one\n", string(data))
	}
}

func TestSizeRotation(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	w := newTestWriter(t, Config{
		Filename: filepath.Join(tempDir, "application.log"),
		MaxSize:  1,
	}, &now)

	chunk := bytes.Repeat([]byte("a"), 700*1024)
	for i := 0; i < 2; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("Failed to write chunk %d: %v", i, err)
		}
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "application-2026-10-18") {
			count++
		}
	}
	if count < 2 {
		t.Errorf("Expected size rollover to produce at least 2 files, got %d", count)
	}
}

func TestCompressSizeBackupsOnDayChange(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	w := newTestWriter(t, Config{
		Filename: filepath.Join(tempDir, "application.log"),
		MaxSize:  1,
		Compress: true,
	}, &now)

	chunk := bytes.Repeat([]byte("a"), 700*1024)
	for i := 0; i < 2; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("Failed to write chunk %d: %v", i, err)
		}
	}

	now = now.Add(24 * time.Hour)
	if _, err := w.Write([]byte("next day\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	w.Close()

	files, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	compressed := 0
	for _, f := range files {
		name := f.Name()
		if !strings.HasPrefix(name, "application-2026-10-18") {
			continue
		}
		if !strings.HasSuffix(name, ".gz") {
			t.Errorf("%s should have been compressed", name)
			continue
		}
		compressed++
	}
	if compressed < 2 {
		t.Errorf("Expected at least 2 compressed files for the previous day, got %d", compressed)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "application-2026-10-19.log")); err != nil {
		t.Errorf("Current day file should stay uncompressed: %v", err)
	}
}

func TestCompressErrorReported(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)

	var mu sync.Mutex
	var errs []error
	w := newTestWriter(t, Config{
		Filename: filepath.Join(tempDir, "application.log"),
		Compress: true,
	}, &now, WithErrorHandler(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}))

	if _, err := w.Write([]byte("day one\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	// 目标 .gz 路径被目录占用，压缩必然失败
	prev := filepath.Join(tempDir, "application-2026-10-18.log")
	if err := os.Mkdir(prev+".gz", 0o755); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := w.Write([]byte("day two\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	w.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 reported error, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "application-2026-10-18.log") {
		t.Errorf("Error should name the file, got %v", errs[0])
	}
	if content := readString(t, prev); content != "day one\n" {
		t.Errorf("Uncompressed file should be kept, got %q", content)
	}
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestConcurrentWrite(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	w := newTestWriter(t, Config{Filename: filepath.Join(tempDir, "test.log")}, &now)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			message := fmt.Sprintf("test message %d\n", n)
			for j := 0; j < 100; j++ {
				w.Write([]byte(message))
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	content, err := os.ReadFile(filepath.Join(tempDir, "test-2026-10-18.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if lines := strings.Count(string(content), "\n"); lines != 1000 {
		t.Errorf("Expected 1000 lines, got %d", lines)
	}
}

func TestCleanup(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	// 1. 过期文件（含压缩文件与 lumberjack 备份）
	old := []string{
		"test-2026-10-15.log",
		"test-2026-10-15.log.gz",
		"test-2026-10-15-2026-10-15T10-00-00.000.log.gz",
	}
	for _, name := range old {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte("old"), 0o666); err != nil {
			t.Fatalf("Failed to create old file: %v", err)
		}
	}

	// 2. 最近文件与无关文件（不应被删除）
	keep := []string{"test-2026-10-17.log", "other-2026-10-01.log", "test-notadate.log"}
	for _, name := range keep {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte("keep"), 0o666); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}

	w := newTestWriter(t, Config{
		Filename: filepath.Join(tempDir, "test.log"),
		MaxAge:   1,
	}, &now)
	w.Write([]byte("trigger"))
	// Close 会等待后台清理完成
	w.Close()

	for _, name := range old {
		if _, err := os.Stat(filepath.Join(tempDir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should have been deleted", name)
		}
	}
	for _, name := range keep {
		if _, err := os.Stat(filepath.Join(tempDir, name)); err != nil {
			t.Errorf("%s should NOT have been deleted", name)
		}
	}
}

func TestMustNew(t *testing.T) {
	w := MustNew(Config{
		Filename: filepath.Join(t.TempDir(), "test.log"),
	})
	defer w.Close()

	if w == nil {
		t.Error("MustNew() returned nil writer")
	}
}

func TestMustNewPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustNew() should panic with empty filename")
		}
	}()

	MustNew(Config{})
}
