package episode

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/John-Robertt/vodsync/internal/domain"
	"github.com/John-Robertt/vodsync/internal/infra/fsx"
)

// placeholderBody 是新建文件的固定占位正文；之后由编辑接管，合并绝不触碰。
const placeholderBody = "Episode notes coming soon.\n"

// defaultTags 只在创建时写入；tags 不是受管字段，更新时原样保留。
const defaultTags = `["episode"]`

// 受管字段（管线拥有，更新时就地改写）：title / date / vod / thumbnail。
// 其余属性行与整个 body 归编辑所有——这条所有权分界是合并算法的核心不变量。

// FileName 返回该记录的内容文件名；civil date 是跨目录的连接键。
func FileName(ep domain.Episode) string {
	return ep.Date + ".md"
}

// Create 写入新内容文件；目标已存在返回 os.ErrExist（创建只发生一次）。
func Create(dir string, ep domain.Episode) error {
	var b strings.Builder
	b.WriteString(delim + "\n")
	fmt.Fprintf(&b, "title: %s\n", quoteTitle(ep.Title))
	fmt.Fprintf(&b, "date: %s\n", ep.DateTime)
	fmt.Fprintf(&b, "tags: %s\n", defaultTags)
	fmt.Fprintf(&b, "vod: %s\n", ep.URL)
	fmt.Fprintf(&b, "thumbnail: %s\n", ep.ThumbRef)
	if ep.Duration != "" {
		fmt.Fprintf(&b, "duration: %q\n", ep.Duration)
	}
	if ep.ViewCount > 0 {
		fmt.Fprintf(&b, "views: %d\n", ep.ViewCount)
	}
	b.WriteString(delim + "\n\n")
	b.WriteString(placeholderBody)

	return fsx.WriteFileAtomicNoOverwrite(dir, FileName(ep), []byte(b.String()))
}

// Update 把四个受管字段合并进已有文件：已有的行就地改写，缺失的追加；
// 其余属性行、属性顺序、整个 body 字节不变。
//
// 合并后与原文件一致则不写盘（避免无谓的修改时间变化），返回 changed=false。
// 属性块定位失败返回 ErrNoFrontMatter（包装文件路径），由调用方降级处理。
func Update(dir string, ep domain.Episode) (changed bool, err error) {
	name := FileName(ep)
	path := filepath.Join(dir, name)

	old, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	doc, err := ParseDocument(old)
	if err != nil {
		return false, fmt.Errorf("%s：%w", path, err)
	}

	doc.Set("title", quoteTitle(ep.Title))
	doc.Set("date", ep.DateTime)
	doc.Set("vod", ep.URL)
	doc.Set("thumbnail", ep.ThumbRef)

	next := doc.Encode()
	if bytes.Equal(next, old) {
		return false, nil
	}
	// 整读 → 整算 → 整写：不做增量原地编辑，崩溃重跑不会留下半截文件。
	return true, fsx.WriteFileAtomicReplace(dir, name, next)
}

// Sync 执行 create-or-merge：文件不存在则创建，存在则合并受管字段。
func Sync(dir string, ep domain.Episode) (action string, err error) {
	path := filepath.Join(dir, FileName(ep))

	if _, serr := os.Stat(path); serr != nil {
		if !os.IsNotExist(serr) {
			return "", serr
		}
		if cerr := Create(dir, ep); cerr != nil {
			return "", cerr
		}
		return domain.ActionCreated, nil
	}

	changed, err := Update(dir, ep)
	if err != nil {
		return "", err
	}
	if changed {
		return domain.ActionUpdated, nil
	}
	return domain.ActionUnchanged, nil
}

// quoteTitle 输出双引号包裹、必要字符转义后的标题（标题可能含引号/冒号）。
func quoteTitle(title string) string {
	return strconv.Quote(title)
}
