// Package config loads logger options from JSON, YAML or TOML files.
//
// Values may reference environment variables as ${ENV_VAR} or
// ${ENV_VAR:default_value}; they are expanded before decoding.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Unmarshal 加载配置文件（根据扩展名识别格式），替换环境变量后解码到 target
func Unmarshal(path string, target any) error {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return fmt.Errorf("cannot detect format from file extension: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config from file %s: %w", path, err)
	}

	if err := UnmarshalBytes(data, format, target); err != nil {
		return fmt.Errorf("failed to load config from file %s: %w", path, err)
	}
	return nil
}

// UnmarshalBytes 从字节流解码配置，同样支持环境变量替换
func UnmarshalBytes(data []byte, format Format, target any) error {
	expanded := expandEnvVar(string(data))
	return decode([]byte(expanded), format, target)
}

// MustUnmarshal 同 Unmarshal，失败时 panic
// 适用于程序启动阶段，配置加载失败时程序无法继续运行
func MustUnmarshal(path string, target any) {
	if err := Unmarshal(path, target); err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
}

// expandEnvVar 展开环境变量
// 支持格式: ${ENV_VAR} 或 ${ENV_VAR:default_value}
func expandEnvVar(value string) string {
	if !strings.Contains(value, "${") {
		return value
	}

	result := value
	start := 0
	for {
		startIdx := strings.Index(result[start:], "${")
		if startIdx == -1 {
			break
		}
		startIdx += start

		endIdx := strings.Index(result[startIdx:], "}")
		if endIdx == -1 {
			break
		}
		endIdx += startIdx

		// 提取环境变量名和默认值
		envExpr := result[startIdx+2 : endIdx]
		envName := envExpr
		defaultValue := ""

		if colonIdx := strings.Index(envExpr, ":"); colonIdx != -1 {
			envName = envExpr[:colonIdx]
			defaultValue = envExpr[colonIdx+1:]
		}

		envValue := os.Getenv(envName)
		if envValue == "" {
			envValue = defaultValue
		}

		result = result[:startIdx] + envValue + result[endIdx+1:]
		start = startIdx + len(envValue)
	}

	return result
}
