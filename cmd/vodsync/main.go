package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/John-Robertt/vodsync/internal/app/run"
	"github.com/John-Robertt/vodsync/internal/config"
	"github.com/John-Robertt/vodsync/internal/domain"
	"github.com/John-Robertt/vodsync/internal/infra/httpx"
	"github.com/John-Robertt/vodsync/internal/localdate"
	"github.com/John-Robertt/vodsync/internal/twitch"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		After:       ra.After,
		Before:      ra.Before,
		Force:       ra.Force,
		Channel:     ra.Channel,
		ChannelSet:  ra.ChannelSet,
		Timezone:    ra.Timezone,
		TimezoneSet: ra.TimezoneSet,
	})
	if err != nil {
		rr := reportForStartupError(ra.Channel, config.Code(err), err)
		emitReport(rr)
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	tc := &twitch.Client{
		HTTP:     httpx.NewAPIClient(),
		ClientID: eff.ClientID,
	}

	rr, runErr := run.Execute(context.Background(), eff, tc, httpx.NewImageClient(), obs)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "运行失败：%v\n", runErr)
	}

	emitReport(rr)
	if runErr != nil || rr.Summary.Skipped > 0 {
		return 1
	}
	return 0
}

type runArgs struct {
	After  string
	Before string
	Force  bool

	Channel    string
	ChannelSet bool

	Timezone    string
	TimezoneSet bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	take := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s 需要一个值", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--after":
			v, err := take(&i, "--after")
			if err != nil {
				return runArgs{}, err
			}
			ra.After = v
		case strings.HasPrefix(a, "--after="):
			ra.After = strings.TrimPrefix(a, "--after=")
		case a == "--before":
			v, err := take(&i, "--before")
			if err != nil {
				return runArgs{}, err
			}
			ra.Before = v
		case strings.HasPrefix(a, "--before="):
			ra.Before = strings.TrimPrefix(a, "--before=")
		case a == "--channel":
			v, err := take(&i, "--channel")
			if err != nil {
				return runArgs{}, err
			}
			ra.Channel = v
			ra.ChannelSet = true
		case strings.HasPrefix(a, "--channel="):
			ra.Channel = strings.TrimPrefix(a, "--channel=")
			ra.ChannelSet = true
		case a == "--timezone":
			v, err := take(&i, "--timezone")
			if err != nil {
				return runArgs{}, err
			}
			ra.Timezone = v
			ra.TimezoneSet = true
		case strings.HasPrefix(a, "--timezone="):
			ra.Timezone = strings.TrimPrefix(a, "--timezone=")
			ra.TimezoneSet = true
		case a == "--force":
			ra.Force = true
		case strings.HasPrefix(a, "--force="):
			v := strings.TrimPrefix(a, "--force=")
			switch v {
			case "true":
				ra.Force = true
			case "false":
				ra.Force = false
			default:
				return runArgs{}, fmt.Errorf("--force 只能是 true 或 false，实际是 %q", v)
			}
		default:
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		}
	}

	// 日期在 CLI 层就拒绝：格式错误属于用法错误（退出码 2），不进入 run。
	if ra.After != "" {
		d, err := localdate.ParseCivil(ra.After)
		if err != nil {
			return runArgs{}, fmt.Errorf("--after 必须是 YYYY-MM-DD，实际是 %q", ra.After)
		}
		ra.After = d
	}
	if ra.Before != "" {
		d, err := localdate.ParseCivil(ra.Before)
		if err != nil {
			return runArgs{}, fmt.Errorf("--before 必须是 YYYY-MM-DD，实际是 %q", ra.Before)
		}
		ra.Before = d
	}
	if ra.ChannelSet && strings.TrimSpace(ra.Channel) == "" {
		return runArgs{}, fmt.Errorf("--channel 不能为空")
	}
	if ra.TimezoneSet && strings.TrimSpace(ra.Timezone) == "" {
		return runArgs{}, fmt.Errorf("--timezone 不能为空")
	}

	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  vodsync run [--after YYYY-MM-DD] [--before YYYY-MM-DD] [--force] [--channel NAME] [--timezone ZONE]

命令：
  run    拉取频道 VOD 并同步内容文件与缩略图

使用 "vodsync run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  vodsync run [--after YYYY-MM-DD] [--before YYYY-MM-DD] [--force] [--channel NAME] [--timezone ZONE]

参数：
  --after     只处理晚于该本地日期的 VOD（不含当天；并提前终止远端分页）
  --before    只处理早于该本地日期的 VOD（不含当天；客户端过滤）
  --force     重新下载已存在的缩略图
  --channel   覆盖配置文件中的 channel
  --timezone  覆盖配置文件中的时区（IANA 名称，例如 America/New_York）
  -h, --help  显示帮助

配置读取当前目录下的 vodsync.toml（client_id / client_secret 必填）。
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：fetched=%d created=%d updated=%d unchanged=%d skipped=%d thumbnails=%d\n",
			rr.Summary.Fetched, rr.Summary.Created, rr.Summary.Updated,
			rr.Summary.Unchanged, rr.Summary.Skipped, rr.Summary.Thumbnails,
		)
		for _, it := range rr.Items {
			if it.ErrorCode == "" {
				continue
			}
			key := it.Date
			if key == "" {
				key = "<unknown>"
			}
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：fetched=%d created=%d updated=%d unchanged=%d skipped=%d thumbnails=%d\n",
		rr.Summary.Fetched, rr.Summary.Created, rr.Summary.Updated,
		rr.Summary.Unchanged, rr.Summary.Skipped, rr.Summary.Thumbnails,
	)
}

func reportForStartupError(channel, code string, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Channel:    channel,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Action:    domain.ActionSkipped,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
