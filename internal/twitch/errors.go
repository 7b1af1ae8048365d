package twitch

import (
	"fmt"
	"strings"
)

const bodySnippetMax = 200

// HTTPStatusError 表示 Helix 返回了非 2xx 的 HTTP 状态码。
// Body 已截断，用于生成可定位的 error_msg（限流/权限/参数错误的原文通常就在响应体里）。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	b := strings.TrimSpace(e.Body)
	if b == "" {
		return fmt.Sprintf("HTTP %d（%s）", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP %d（%s）：%s", e.StatusCode, e.URL, b)
}

// AuthError 表示 client-credentials 换取 token 失败（凭据无效或被拒绝）。
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("认证失败：%v；请检查 vodsync.toml 中的 client_id/client_secret", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError 表示频道名查询返回了零结果。
type NotFoundError struct {
	Login string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("频道不存在：%q（users 查询返回空结果）", e.Login)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > bodySnippetMax {
		return s[:bodySnippetMax] + "…"
	}
	return s
}
