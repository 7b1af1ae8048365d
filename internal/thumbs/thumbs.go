package thumbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/vodsync/internal/domain"
	"github.com/John-Robertt/vodsync/internal/episode"
	"github.com/John-Robertt/vodsync/internal/infra/fsx"
)

// DownloadError 表示缩略图请求返回了非 2xx 状态。
// 资产缺失是下游构建的致命条件，该错误必须中断整个 run，不允许静默跳过。
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("下载缩略图失败：HTTP %d（%s）", e.StatusCode, e.URL)
}

// dimRE 匹配 URL 中的标准 WxH 分辨率段。
// 默认命名（thumb0-320x180.jpg）与自定义命名（custom-…-320x180.jpeg）都适用。
var dimRE = regexp.MustCompile(`\d{1,4}x\d{1,4}`)

// Ensure 确保 assetsDir 下存在该记录的缩略图，并回填 ep.ThumbPath。
//
// 语义：
// - 文件已存在且未 force：零成本返回（不发任何网络请求），downloaded=false
// - 否则解析下载地址（API 未给缩略图时回退 og:image）、升级为目标分辨率、
//   流式写盘（原子替换）
//
// 文件名固定为 {civil date}.{ext}，与内容文件以 civil date 互为连接键。
func Ensure(ctx context.Context, c *http.Client, ep *domain.Episode, assetsDir string, force bool) (downloaded bool, err error) {
	name := ep.Date + thumbExt(ep.ThumbnailURL)
	dst := filepath.Join(assetsDir, name)

	if !force {
		if _, serr := os.Stat(dst); serr == nil {
			ep.ThumbPath = dst
			return false, nil
		} else if !os.IsNotExist(serr) {
			return false, serr
		}
	}

	u := strings.TrimSpace(ep.ThumbnailURL)
	if u == "" {
		// 进行中/刚结束的 VOD：API 的 thumbnail_url 为空，
		// 视频页的 OpenGraph 图片是唯一可恢复的来源。
		u, err = ogImageURL(ctx, c, ep.URL)
		if err != nil {
			return false, err
		}
	}
	u = upgradeResolution(u)

	b, err := fetch(ctx, c, u)
	if err != nil {
		return false, err
	}
	if err := fsx.WriteFileAtomicReplace(assetsDir, name, b); err != nil {
		return false, err
	}
	ep.ThumbPath = dst
	return true, nil
}

// upgradeResolution 把 URL 中内嵌的分辨率段升级为固定目标分辨率（一次性变换）。
func upgradeResolution(u string) string {
	return dimRE.ReplaceAllString(u, episode.TargetResolution)
}

// thumbExt 从下载地址推导扩展名；无法识别时固定 .jpg。
// 必须在发网络请求之前可判定（跳过检查不允许有网络成本）。
func thumbExt(rawURL string) string {
	p, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ".jpg"
	}
	switch ext := strings.ToLower(path.Ext(p.Path)); ext {
	case ".jpg", ".jpeg", ".png":
		return ext
	default:
		return ".jpg"
	}
}

// ogImageURL 抓取视频页并取 <meta property="og:image"> 的地址。
func ogImageURL(ctx context.Context, c *http.Client, pageURL string) (string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return "", errors.New("记录缺少视频页地址，无法回退 og:image")
	}

	b, err := fetch(ctx, c, pageURL)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return "", err
	}

	u, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if !ok || strings.TrimSpace(u) == "" {
		return "", fmt.Errorf("视频页 %s 未提供 og:image，无法获取缩略图", pageURL)
	}
	return strings.TrimSpace(u), nil
}

func fetch(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &DownloadError{URL: u, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
