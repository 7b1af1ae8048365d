package twitch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/John-Robertt/vodsync/internal/domain"
	"github.com/John-Robertt/vodsync/internal/localdate"
)

const (
	// DefaultTokenURL / DefaultAPIBase 是 Twitch 的生产端点；测试用 httptest 注入替身。
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"
	DefaultAPIBase  = "https://api.twitch.tv/helix"

	// pageSize 取 Helix 允许的上限，减少分页往返。
	pageSize = 100
)

// Client 封装 Helix 访问：token 交换、频道解析、VOD 分页。
//
// 约束：
// - 无本地状态，只发网络请求；调用方负责把 token 串起来
// - 不做重试/限速/缓存（单次运行的工具，由上层语义保证重跑安全）
type Client struct {
	HTTP     *http.Client
	TokenURL string
	APIBase  string
	ClientID string
}

// ListOptions 控制 ListVideos 的取数范围。
type ListOptions struct {
	// AfterDate 非空（"YYYY-MM-DD"）时启用分页短路：
	// 一旦某页最旧记录的 civil date ≤ AfterDate，只取该页中严格更新的记录并停止翻页。
	// 该优化的前提是 API 保证降序返回。
	AfterDate string

	// Location 是 civil date 投影所用的目标时区（短路判定必须与下游口径一致）。
	Location *time.Location
}

// Authenticate 用 client-credentials 交换 bearer token。
// 非 2xx 包装为 *AuthError（凭据问题对操作者是一类独立的可修复错误）。
func (c *Client) Authenticate(ctx context.Context, clientID, clientSecret string) (string, error) {
	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	b, err := c.do(req)
	if err != nil {
		var hs *HTTPStatusError
		if errors.As(err, &hs) {
			return "", &AuthError{Err: hs}
		}
		return "", &AuthError{Err: err}
	}

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(b, &tr); err != nil {
		return "", &AuthError{Err: fmt.Errorf("token 响应无法解析：%w", err)}
	}
	if strings.TrimSpace(tr.AccessToken) == "" {
		return "", &AuthError{Err: fmt.Errorf("token 响应缺少 access_token")}
	}
	return tr.AccessToken, nil
}

// ResolveChannelID 把人类可读的频道名解析为内部 user id。
// 零结果返回 *NotFoundError。
func (c *Client) ResolveChannelID(ctx context.Context, login, token string) (string, error) {
	u := c.apiBase() + "/users?login=" + url.QueryEscape(login)
	b, err := c.get(ctx, u, token)
	if err != nil {
		return "", err
	}

	var ur struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &ur); err != nil {
		return "", fmt.Errorf("users 响应无法解析：%w", err)
	}
	if len(ur.Data) == 0 {
		return "", &NotFoundError{Login: login}
	}
	return ur.Data[0].ID, nil
}

// ListVideos 逐页拉取频道的 VOD 历史（archive 类型，新 → 旧）。
//
// 游标循环：每页带回 pagination.cursor，空游标表示最后一页。
// AfterDate 的短路判定见 ListOptions。
func (c *Client) ListVideos(ctx context.Context, channelID, token string, opts ListOptions) ([]domain.RemoteVideo, error) {
	loc := opts.Location
	if opts.AfterDate != "" && loc == nil {
		return nil, fmt.Errorf("启用 after 短路时必须提供目标时区")
	}

	var out []domain.RemoteVideo
	cursor := ""
	for {
		page, next, err := c.videosPage(ctx, channelID, token, cursor)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		if opts.AfterDate != "" {
			oldest := localdate.CivilDate(page[len(page)-1].CreatedAt, loc)
			if oldest <= opts.AfterDate {
				// 此页已触底：只收严格更新的记录，且不再请求下一页。
				for _, v := range page {
					if localdate.CivilDate(v.CreatedAt, loc) > opts.AfterDate {
						out = append(out, v)
					}
				}
				break
			}
		}

		out = append(out, page...)
		if next == "" {
			break
		}
		cursor = next
	}
	return out, nil
}

func (c *Client) videosPage(ctx context.Context, channelID, token, cursor string) ([]domain.RemoteVideo, string, error) {
	q := url.Values{}
	q.Set("user_id", channelID)
	q.Set("type", "archive")
	q.Set("first", fmt.Sprint(pageSize))
	if cursor != "" {
		q.Set("after", cursor)
	}

	b, err := c.get(ctx, c.apiBase()+"/videos?"+q.Encode(), token)
	if err != nil {
		return nil, "", err
	}

	var vr struct {
		Data []struct {
			ID           string    `json:"id"`
			Title        string    `json:"title"`
			CreatedAt    time.Time `json:"created_at"`
			URL          string    `json:"url"`
			ThumbnailURL string    `json:"thumbnail_url"`
			ViewCount    int       `json:"view_count"`
			Duration     string    `json:"duration"`
		} `json:"data"`
		Pagination struct {
			Cursor string `json:"cursor"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(b, &vr); err != nil {
		return nil, "", fmt.Errorf("videos 响应无法解析：%w", err)
	}

	page := make([]domain.RemoteVideo, 0, len(vr.Data))
	for _, d := range vr.Data {
		page = append(page, domain.RemoteVideo{
			ID:           d.ID,
			Title:        d.Title,
			CreatedAt:    d.CreatedAt.UTC(),
			Duration:     d.Duration,
			ViewCount:    d.ViewCount,
			ThumbnailURL: d.ThumbnailURL,
			URL:          d.URL,
		})
	}
	return page, vr.Pagination.Cursor, nil
}

func (c *Client) get(ctx context.Context, u, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-Id", c.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	hc := c.HTTP
	if hc == nil {
		return nil, errors.New("http client 不能为空")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       snippet(b),
		}
	}
	return b, nil
}

func (c *Client) tokenURL() string {
	if strings.TrimSpace(c.TokenURL) == "" {
		return DefaultTokenURL
	}
	return strings.TrimRight(c.TokenURL, "/")
}

func (c *Client) apiBase() string {
	if strings.TrimSpace(c.APIBase) == "" {
		return DefaultAPIBase
	}
	return strings.TrimRight(c.APIBase, "/")
}
