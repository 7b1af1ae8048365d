package httpx

import "testing"

func TestClients_TimeoutsConfigured(t *testing.T) {
	api := NewAPIClient()
	img := NewImageClient()

	if api.Timeout <= 0 {
		t.Fatalf("期望 API client 有总超时，实际 %v", api.Timeout)
	}
	if img.Timeout <= api.Timeout {
		t.Fatalf("期望图片下载超时大于 API 超时：api=%v img=%v", api.Timeout, img.Timeout)
	}
}
