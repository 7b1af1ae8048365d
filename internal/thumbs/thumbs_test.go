package thumbs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/vodsync/internal/domain"
)

func sampleEpisode(thumbURL string) domain.Episode {
	return domain.Episode{
		VideoID:      "111",
		Date:         "2026-01-26",
		URL:          "https://www.twitch.tv/videos/111",
		ThumbnailURL: thumbURL,
	}
}

func TestEnsure_SkipIfExists(t *testing.T) {
	dir := t.TempDir()
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "image/jpeg")
		fmt.Fprint(w, "jpeg-bytes")
	}))
	defer srv.Close()

	ep := sampleEpisode(srv.URL + "/thumb0-320x180.jpg")
	down, err := Ensure(context.Background(), srv.Client(), &ep, dir, false)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !down || requests != 1 {
		t.Fatalf("首次期望下载一次：downloaded=%v requests=%d", down, requests)
	}
	if ep.ThumbPath != filepath.Join(dir, "2026-01-26.jpg") {
		t.Fatalf("ThumbPath 不符合预期：%q", ep.ThumbPath)
	}

	// 第二次：零网络成本命中。
	ep2 := sampleEpisode(srv.URL + "/thumb0-320x180.jpg")
	down, err = Ensure(context.Background(), srv.Client(), &ep2, dir, false)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if down || requests != 1 {
		t.Fatalf("已存在时不得再发请求：downloaded=%v requests=%d", down, requests)
	}
	if ep2.ThumbPath == "" {
		t.Fatalf("命中已有文件也必须回填 ThumbPath")
	}
}

func TestEnsure_ForceRedownloads(t *testing.T) {
	dir := t.TempDir()
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, "jpeg-bytes")
	}))
	defer srv.Close()

	for i := 0; i < 2; i++ {
		ep := sampleEpisode(srv.URL + "/thumb0-320x180.jpg")
		if _, err := Ensure(context.Background(), srv.Client(), &ep, dir, true); err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
	}
	if requests != 2 {
		t.Fatalf("force 时每次都应重新下载：requests=%d", requests)
	}
}

func TestEnsure_UpgradesResolution(t *testing.T) {
	dir := t.TempDir()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, "jpeg-bytes")
	}))
	defer srv.Close()

	// 自定义命名 + 低分辨率：下载前升级为目标分辨率。
	ep := sampleEpisode(srv.URL + "/custom-abc123-320x180.jpeg")
	if _, err := Ensure(context.Background(), srv.Client(), &ep, dir, false); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if gotPath != "/custom-abc123-1280x720.jpeg" {
		t.Fatalf("期望升级为 1280x720，实际请求 %q", gotPath)
	}
	if filepath.Ext(ep.ThumbPath) != ".jpeg" {
		t.Fatalf("扩展名应跟随下载地址：%q", ep.ThumbPath)
	}
}

func TestEnsure_OGImageFallback(t *testing.T) {
	dir := t.TempDir()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/videos/111":
			fmt.Fprintf(w, `<html><head><meta property="og:image" content="%s/preview-480x270.jpg"/></head><body/></html>`, srv.URL)
		case "/preview-1280x720.jpg":
			fmt.Fprint(w, "jpeg-bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	// API 未提供缩略图模板（进行中的 VOD）：回退视频页 og:image。
	ep := sampleEpisode("")
	ep.URL = srv.URL + "/videos/111"

	down, err := Ensure(context.Background(), srv.Client(), &ep, dir, false)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !down {
		t.Fatalf("期望发生下载")
	}
	b, err := os.ReadFile(filepath.Join(dir, "2026-01-26.jpg"))
	if err != nil || string(b) != "jpeg-bytes" {
		t.Fatalf("期望落盘 og:image 指向的图片：%v %q", err, b)
	}
}

func TestEnsure_DownloadError(t *testing.T) {
	dir := t.TempDir()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ep := sampleEpisode(srv.URL + "/gone-320x180.jpg")
	_, err := Ensure(context.Background(), srv.Client(), &ep, dir, false)

	var de *DownloadError
	if !errors.As(err, &de) {
		t.Fatalf("期望 *DownloadError，实际 %v", err)
	}
	if de.StatusCode != http.StatusNotFound {
		t.Fatalf("期望 404，实际 %d", de.StatusCode)
	}
	// 失败不得留下文件。
	if _, err := os.Stat(filepath.Join(dir, "2026-01-26.jpg")); !os.IsNotExist(err) {
		t.Fatalf("失败时不应写盘：%v", err)
	}
}

func TestUpgradeResolution(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://cdn.test/thumb/thumb0-320x180.jpg", "https://cdn.test/thumb/thumb0-1280x720.jpg"},
		{"https://cdn.test/custom-9f3-320x180.jpeg", "https://cdn.test/custom-9f3-1280x720.jpeg"},
		{"https://cdn.test/no-dims.jpg", "https://cdn.test/no-dims.jpg"},
	}
	for _, c := range cases {
		if got := upgradeResolution(c.in); got != c.want {
			t.Fatalf("upgradeResolution(%q) 期望 %q，实际 %q", c.in, c.want, got)
		}
	}
}

func TestThumbExt(t *testing.T) {
	if got := thumbExt("https://cdn.test/a-320x180.jpeg"); got != ".jpeg" {
		t.Fatalf("期望 .jpeg，实际 %q", got)
	}
	if got := thumbExt(""); got != ".jpg" {
		t.Fatalf("无地址时期望默认 .jpg，实际 %q", got)
	}
	if got := thumbExt("https://cdn.test/weird.webp"); got != ".jpg" {
		t.Fatalf("未知扩展名回退 .jpg，实际 %q", got)
	}
}

func TestOGImageURL_Missing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>no og tags</title></head></html>`)
	}))
	defer srv.Close()

	_, err := ogImageURL(context.Background(), srv.Client(), srv.URL+"/videos/1")
	if err == nil || !strings.Contains(err.Error(), "og:image") {
		t.Fatalf("期望 og:image 缺失错误，实际 %v", err)
	}
}
