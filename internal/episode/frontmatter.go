package episode

import (
	"errors"
	"regexp"
	"strings"
)

const delim = "---"

// ErrNoFrontMatter 表示无法定位文件开头的属性块（缺失或未闭合）。
// 这是唯一可局部恢复的错误类：调用方记警告、跳过该文件、继续处理其余记录。
var ErrNoFrontMatter = errors.New("未找到 front matter 属性块")

// Document 把内容文件表示为「有序属性行 + 原样 body」。
//
// 合并的关键设计：字段级改写，绝不整块替换。属性块解析成带 key 标签的
// 行列表，只改写管线拥有的键，其余行（包括无法识别为 key: value 的行）
// 与 body 按字节原样保留——这让“保留编辑的一切”成为机械可验证的性质。
type Document struct {
	Lines []AttrLine
	Body  string // 闭合分隔行之后的全部内容，字节原样
}

// AttrLine 是属性块内的一行。Key 为空表示该行不是 key: value 形式
//（注释、续行、列表项等），重序列化时按 Raw 原样输出。
type AttrLine struct {
	Key string
	Raw string
}

var keyRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParseDocument 定位并解析文件开头由 "---" 包围的属性块。
// 文件不以分隔行开头、或属性块未闭合，都返回 ErrNoFrontMatter。
func ParseDocument(b []byte) (*Document, error) {
	s := string(b)
	if !strings.HasPrefix(s, delim+"\n") {
		return nil, ErrNoFrontMatter
	}

	var lines []AttrLine
	i := len(delim) + 1
	for {
		if i >= len(s) {
			return nil, ErrNoFrontMatter
		}
		j := strings.IndexByte(s[i:], '\n')
		var line string
		var next int
		if j < 0 {
			line, next = s[i:], len(s)
		} else {
			line, next = s[i:i+j], i+j+1
		}
		if line == delim {
			return &Document{Lines: lines, Body: s[next:]}, nil
		}
		lines = append(lines, parseAttrLine(line))
		i = next
	}
}

func parseAttrLine(line string) AttrLine {
	idx := strings.IndexByte(line, ':')
	if idx > 0 && keyRE.MatchString(line[:idx]) {
		return AttrLine{Key: line[:idx], Raw: line}
	}
	return AttrLine{Raw: line}
}

// Set 就地改写 key 对应的行；不存在则追加到属性块尾部。
// 只影响第一处匹配（重复键的后续行归编辑所有，不触碰）。
func (d *Document) Set(key, value string) {
	raw := key + ": " + value
	for i := range d.Lines {
		if d.Lines[i].Key == key {
			d.Lines[i].Raw = raw
			return
		}
	}
	d.Lines = append(d.Lines, AttrLine{Key: key, Raw: raw})
}

// Encode 重新序列化：属性行保持原有顺序，body 字节原样。
// 未经 Set 的文档 Encode 后与原文件逐字节一致（round-trip 性质）。
func (d *Document) Encode() []byte {
	var b strings.Builder
	b.WriteString(delim + "\n")
	for _, l := range d.Lines {
		b.WriteString(l.Raw)
		b.WriteByte('\n')
	}
	b.WriteString(delim + "\n")
	b.WriteString(d.Body)
	return []byte(b.String())
}
