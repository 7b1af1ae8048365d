package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0o644); err != nil {
		t.Fatalf("写入配置失败：%v", err)
	}
}

const minimal = `
client_id = "cid"
client_secret = "secret"
channel = "theshow"
`

func TestLoadEffective_NotFound(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_MissingCredentials(t *testing.T) {
	cwd := t.TempDir()
	writeConfig(t, cwd, `channel = "theshow"`)

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeMissingCredentials {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeMissingCredentials, err, Code(err))
	}
}

func TestLoadEffective_Defaults(t *testing.T) {
	cwd := t.TempDir()
	writeConfig(t, cwd, minimal)

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Channel != "theshow" {
		t.Fatalf("期望 channel=theshow，实际 %q", eff.Channel)
	}
	if eff.TimezoneName != DefaultTimezone || eff.Location == nil {
		t.Fatalf("期望默认时区 %q，实际 %q", DefaultTimezone, eff.TimezoneName)
	}
	if eff.ContentDir != filepath.Join(cwd, DefaultContentDir) {
		t.Fatalf("期望默认内容目录，实际 %q", eff.ContentDir)
	}
	if eff.AssetsDir != filepath.Join(cwd, DefaultAssetsDir) {
		t.Fatalf("期望默认资产目录，实际 %q", eff.AssetsDir)
	}
	if eff.ThumbnailPrefix != DefaultThumbnailPrefix {
		t.Fatalf("期望默认引用前缀，实际 %q", eff.ThumbnailPrefix)
	}
}

func TestLoadEffective_CLIOverrides(t *testing.T) {
	cwd := t.TempDir()
	writeConfig(t, cwd, minimal+"timezone = \"UTC\"\n")

	eff, err := LoadEffective(cwd, CLIArgs{
		Channel: "other", ChannelSet: true,
		Timezone: "America/Chicago", TimezoneSet: true,
		After: "2026-01-01", Before: "2026-02-01", Force: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Channel != "other" {
		t.Fatalf("CLI 应覆盖 channel：%q", eff.Channel)
	}
	if eff.TimezoneName != "America/Chicago" {
		t.Fatalf("CLI 应覆盖 timezone：%q", eff.TimezoneName)
	}
	if eff.After != "2026-01-01" || eff.Before != "2026-02-01" || !eff.Force {
		t.Fatalf("CLI 过滤参数未生效：%+v", eff)
	}
}

func TestLoadEffective_ConfigTimezoneUsed(t *testing.T) {
	cwd := t.TempDir()
	writeConfig(t, cwd, minimal+"timezone = \"Europe/Berlin\"\n")

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.TimezoneName != "Europe/Berlin" {
		t.Fatalf("期望配置时区生效，实际 %q", eff.TimezoneName)
	}
}

func TestLoadEffective_MissingChannel(t *testing.T) {
	cwd := t.TempDir()
	writeConfig(t, cwd, "client_id = \"cid\"\nclient_secret = \"s\"\n")

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_BadTimezone(t *testing.T) {
	cwd := t.TempDir()
	writeConfig(t, cwd, minimal+"timezone = \"Mars/Olympus\"\n")

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_BadTOML(t *testing.T) {
	cwd := t.TempDir()
	writeConfig(t, cwd, "client_id = [broken")

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_BadThumbnailPrefix(t *testing.T) {
	cwd := t.TempDir()
	writeConfig(t, cwd, minimal+"thumbnail_prefix = \"assets/thumbs\"\n")

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}
