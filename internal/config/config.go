package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/vodsync/internal/localdate"
)

const (
	// ErrCodeNotFound 表示 cwd 下没有 vodsync.toml。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingCredentials 表示缺少 client_id / client_secret。
	ErrCodeMissingCredentials = "config_missing_credentials"
)

const (
	// ConfigFileName 固定在 cwd 下查找（单操作者工具，不做多级发现）。
	ConfigFileName = "vodsync.toml"

	DefaultTimezone        = "America/New_York"
	DefaultContentDir      = "content/episodes"
	DefaultAssetsDir       = "assets/thumbs"
	DefaultThumbnailPrefix = "/assets/thumbs"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息，
// 保证覆盖优先级可实现（CLI > 配置文件 > 默认值）。
type CLIArgs struct {
	After  string // "YYYY-MM-DD"，已在 CLI 层校验
	Before string
	Force  bool

	Channel    string
	ChannelSet bool

	Timezone    string
	TimezoneSet bool
}

// FileConfig 对应 vodsync.toml 的解析结构。
//
// client_id/client_secret 从文件读入本地结构体并沿调用链显式传递，
// 不写入进程环境变量（避免全局可变状态泄漏给子进程/其他组件）。
type FileConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	Channel         string `toml:"channel"`
	Timezone        string `toml:"timezone"`
	ContentDir      string `toml:"content_dir"`
	AssetsDir       string `toml:"assets_dir"`
	ThumbnailPrefix string `toml:"thumbnail_prefix"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置
// （实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	ClientID     string
	ClientSecret string
	Channel      string

	TimezoneName string
	Location     *time.Location

	ContentDir      string // 绝对路径
	AssetsDir       string // 绝对路径
	ThumbnailPrefix string // 写入内容文件的站内引用前缀

	After  string // 为空表示不限
	Before string // 为空表示不限（独占上界，客户端过滤）
	Force  bool
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q；请在站点根目录创建它并填入 Twitch 应用凭据", e.Code, e.Path)
	case ErrCodeMissingCredentials:
		return fmt.Sprintf("%s：配置文件 %q 缺少 client_id/client_secret；请在 https://dev.twitch.tv/console/apps 注册应用后填入", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取 <cwd>/vodsync.toml 并与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// - channel/timezone：CLI > config > 默认（channel 无默认，缺失即无效）
// - after/before/force：仅 CLI 暴露
// - 目录与引用前缀：仅 config 控制
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, ConfigFileName)
	b, err := os.ReadFile(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	var fc FileConfig
	if err := toml.Unmarshal(b, &fc); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	if strings.TrimSpace(fc.ClientID) == "" || strings.TrimSpace(fc.ClientSecret) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingCredentials, Path: cfgPath}
	}

	channel := strings.TrimSpace(fc.Channel)
	if cli.ChannelSet {
		channel = strings.TrimSpace(cli.Channel)
	}
	if channel == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("缺少 channel：请在配置文件或 --channel 指定频道名")}
	}

	tzName := DefaultTimezone
	if cli.TimezoneSet {
		tzName = strings.TrimSpace(cli.Timezone)
	} else if strings.TrimSpace(fc.Timezone) != "" {
		tzName = strings.TrimSpace(fc.Timezone)
	}
	loc, err := localdate.Load(tzName)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	contentDir := strings.TrimSpace(fc.ContentDir)
	if contentDir == "" {
		contentDir = DefaultContentDir
	}
	assetsDir := strings.TrimSpace(fc.AssetsDir)
	if assetsDir == "" {
		assetsDir = DefaultAssetsDir
	}
	prefix := strings.TrimSpace(fc.ThumbnailPrefix)
	if prefix == "" {
		prefix = DefaultThumbnailPrefix
	}
	if !strings.HasPrefix(prefix, "/") {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("thumbnail_prefix 必须以 / 开头：%q", prefix)}
	}

	return EffectiveConfig{
		ClientID:        strings.TrimSpace(fc.ClientID),
		ClientSecret:    strings.TrimSpace(fc.ClientSecret),
		Channel:         channel,
		TimezoneName:    tzName,
		Location:        loc,
		ContentDir:      absCleanFrom(cwdAbs, contentDir),
		AssetsDir:       absCleanFrom(cwdAbs, assetsDir),
		ThumbnailPrefix: strings.TrimRight(prefix, "/"),
		After:           cli.After,
		Before:          cli.Before,
		Force:           cli.Force,
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
