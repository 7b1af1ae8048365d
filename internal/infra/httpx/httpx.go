package httpx

import (
	"net/http"
	"time"
)

const (
	apiTimeout   = 20 * time.Second
	imageTimeout = 60 * time.Second
)

// NewAPIClient 构造访问 Helix API 的 HTTP client。
//
// 规则：固定总超时；不做重试（单次运行的工具，失败由操作者重跑，
// 幂等的下游写入保证重跑安全）。
func NewAPIClient() *http.Client {
	return &http.Client{
		Transport: baseTransport(),
		Timeout:   apiTimeout,
	}
}

// NewImageClient 构造下载缩略图的 HTTP client。
// 图片体积大于 API 响应，超时单独放宽。
func NewImageClient() *http.Client {
	return &http.Client{
		Transport: baseTransport(),
		Timeout:   imageTimeout,
	}
}

func baseTransport() *http.Transport {
	return &http.Transport{
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
}
