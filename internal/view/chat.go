package view

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Ownership 聊天消息归属，对应消息的样式类
type Ownership string

const (
	OwnershipAI    Ownership = "ai-message"
	OwnershipMine  Ownership = "mine"
	OwnershipOther Ownership = "other"
)

// Classify AI 回复优先，其次按用户名判断是否为自己发送
func Classify(isAIResponse bool, username, sessionUser string) Ownership {
	if isAIResponse {
		return OwnershipAI
	}
	if username == sessionUser {
		return OwnershipMine
	}
	return OwnershipOther
}

// EscapeHTML 对文本进行 HTML 转义，防止注入及破坏标签
// 转义：& < > "
func EscapeHTML(text string) string {
	result := strings.ReplaceAll(text, "&", "&amp;")
	result = strings.ReplaceAll(result, "<", "&lt;")
	result = strings.ReplaceAll(result, ">", "&gt;")
	result = strings.ReplaceAll(result, "\"", "&quot;")
	return result
}

// HighlightMentions 转义消息正文，并把每个 @name 包裹为 mention 标记
// @name 之后不能紧跟字母、数字或下划线，@alice 不会匹配 @alicetown，@张三 也不会匹配 @张三丰
func HighlightMentions(body string, mentions []string) string {
	escaped := EscapeHTML(body)
	names := make([]string, 0, len(mentions))
	seen := make(map[string]bool, len(mentions))
	for _, name := range mentions {
		name = EscapeHTML(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return escaped
	}

	// 长名字优先，避免前缀名字抢先匹配
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	var b strings.Builder
	b.Grow(len(escaped))
	for i := 0; i < len(escaped); {
		if escaped[i] == '@' {
			if name := mentionAt(escaped[i+1:], names); name != "" {
				b.WriteString(`<span class="mention">@`)
				b.WriteString(name)
				b.WriteString(`</span>`)
				i += 1 + len(name)
				continue
			}
		}
		b.WriteByte(escaped[i])
		i++
	}
	return b.String()
}

// mentionAt 返回 rest 开头的第一个完整名字
func mentionAt(rest string, names []string) string {
	for _, name := range names {
		if !strings.HasPrefix(rest, name) {
			continue
		}
		if len(rest) == len(name) {
			return name
		}
		if r, _ := utf8.DecodeRuneInString(rest[len(name):]); !isWordRune(r) {
			return name
		}
	}
	return ""
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

// FormatTimestamp 把服务端时间戳转换为本地时分秒，无法解析时原样返回
func FormatTimestamp(ts string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, ts, loc)
		if err == nil {
			return t.In(loc).Format("15:04:05")
		}
	}
	return ts
}

// ChatEntry 已渲染的聊天消息，渲染后不再修改
type ChatEntry struct {
	Username string
	Time     string
	Text     string
	HTML     string
	Class    Ownership
}

// ChatLog 只追加的聊天记录，按到达顺序排列
type ChatLog struct {
	entries   []ChatEntry
	scrollTop int
}

func (l *ChatLog) append(entry ChatEntry) {
	l.entries = append(l.entries, entry)
	l.scrollTop = len(l.entries) - 1
}

func (l *ChatLog) Len() int {
	return len(l.entries)
}

// Entries 聊天记录副本
func (l *ChatLog) Entries() []ChatEntry {
	entries := make([]ChatEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// ScrollTop 当前滚动到的消息下标，-1 表示没有消息
func (l *ChatLog) ScrollTop() int {
	if len(l.entries) == 0 {
		return -1
	}
	return l.scrollTop
}

// Last 最后一条消息
func (l *ChatLog) Last() (ChatEntry, bool) {
	if len(l.entries) == 0 {
		return ChatEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}
