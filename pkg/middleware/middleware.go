// Package middleware 提供 Gin 中间件：认证、日志、监控、追踪、限流和熔断.
package middleware

import (
	"strings"
)

// isSkippedPath 判断路径是否匹配任一跳过前缀.
func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
