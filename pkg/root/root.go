// Package root resolves the base directory that service logs are written under.
package root

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultEnv is the environment variable that overrides the default root.
const DefaultEnv = "CHIA_ROOT"

// DefaultFallback is used when DefaultEnv is unset.
const DefaultFallback = "~/.chia/mainnet"

// Resolver returns the root directory logs are nested under.
type Resolver interface {
	Resolve() (string, error)
}

// Env resolves the root from an environment variable, falling back to a fixed path.
type Env struct {
	// Var 环境变量名
	Var string
	// Fallback 环境变量未设置时使用的路径，支持 ~ 前缀
	Fallback string
}

// Default returns the resolver used when none is configured: $CHIA_ROOT or ~/.chia/mainnet.
func Default() Env {
	return Env{Var: DefaultEnv, Fallback: DefaultFallback}
}

// Resolve implements Resolver.
func (e Env) Resolve() (string, error) {
	path := e.Fallback
	if e.Var != "" {
		if v := strings.TrimSpace(os.Getenv(e.Var)); v != "" {
			path = v
		}
	}
	if path == "" {
		return "", fmt.Errorf("root: no path from $%s and no fallback", e.Var)
	}
	return absolute(path)
}

// Static always resolves to the same path.
type Static string

// Resolve implements Resolver.
func (s Static) Resolve() (string, error) {
	if s == "" {
		return "", fmt.Errorf("root: empty static path")
	}
	return absolute(string(s))
}

// absolute 展开 ~ 并转换为绝对路径
func absolute(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("root: resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("root: resolve %s: %w", path, err)
	}
	return abs, nil
}
