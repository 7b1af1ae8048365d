package episode

import (
	"fmt"
	"strings"
	"time"

	"github.com/John-Robertt/vodsync/internal/domain"
	"github.com/John-Robertt/vodsync/internal/localdate"
)

const (
	// TargetResolution 是缩略图的固定目标分辨率（下载与模板替换共用同一口径）。
	TargetResolution = "1280x720"

	// templateToken 是 Helix thumbnail_url 中的宽高占位符。
	templateToken = "%{width}x%{height}"
)

// Transform 把远端 VOD 记录归一化为 Episode（纯函数，无 I/O）。
//
// 同一输入恒得同一输出；ThumbPath/ThumbRef 留空，由缩略图环节回填。
func Transform(v domain.RemoteVideo, loc *time.Location) (domain.Episode, error) {
	if loc == nil {
		return domain.Episode{}, fmt.Errorf("目标时区不能为空")
	}
	if strings.TrimSpace(v.ID) == "" {
		return domain.Episode{}, fmt.Errorf("远端记录缺少 id")
	}

	dur, err := localdate.FormatDuration(v.Duration)
	if err != nil {
		return domain.Episode{}, fmt.Errorf("记录 %s：%w", v.ID, err)
	}

	return domain.Episode{
		VideoID:      v.ID,
		Title:        strings.TrimSpace(v.Title),
		URL:          v.URL,
		ThumbnailURL: strings.ReplaceAll(v.ThumbnailURL, templateToken, TargetResolution),
		Duration:     dur,
		ViewCount:    v.ViewCount,
		Date:         localdate.CivilDate(v.CreatedAt, loc),
		DateTime:     localdate.OffsetDateTime(v.CreatedAt, loc),
	}, nil
}
