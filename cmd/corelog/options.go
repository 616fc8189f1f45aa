package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/HorseArcher567/corelog/pkg/config"
	"github.com/HorseArcher567/corelog/pkg/xlog"
)

// loadOptions 读取 --config 指定的文件，再用显式传入的标志覆盖
func loadOptions(cmd *cobra.Command) (xlog.Options, error) {
	var opts xlog.Options

	flags := cmd.Flags()
	if path, _ := flags.GetString("config"); path != "" {
		if err := config.Unmarshal(path, &opts); err != nil {
			return opts, err
		}
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"namespace", &opts.Namespace},
		{"project", &opts.ProjectName},
		{"level", &opts.LogLevel},
		{"package-version", &opts.PackageVersion},
		{"root", &opts.Root},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			*o.target, _ = flags.GetString(o.flag)
		}
	}
	if flags.Changed("default-namespace") {
		opts.UseDefaultNamespace, _ = flags.GetBool("default-namespace")
	}

	return opts, nil
}

// parseMeta 将 key=value 解析为元数据，数字与布尔值保留类型
func parseMeta(pairs []string) (xlog.Fields, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	meta := make(xlog.Fields, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q, expected key=value", pair)
		}
		meta[key] = parseValue(value)
	}
	return meta, nil
}

func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}
