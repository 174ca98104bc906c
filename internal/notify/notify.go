package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fachebot/study-room-client/internal/logger"
)

const (
	MaxLineLength = 72 // 提示框每行最大字符数
)

// Alerter 阻塞式提示，用户必须看到
type Alerter interface {
	Alert(message string)
}

type Notifier struct {
	out io.Writer
	mu  sync.Mutex
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

// Alert 以提示框形式输出消息
func (n *Notifier) Alert(message string) {
	if message == "" {
		return
	}

	lines := splitMessage(message)
	width := 0
	for _, line := range lines {
		if w := utf8.RuneCountInString(line); w > width {
			width = w
		}
	}

	var sb strings.Builder
	border := "+" + strings.Repeat("-", width+2) + "+\n"
	sb.WriteString(border)
	for _, line := range lines {
		pad := width - utf8.RuneCountInString(line)
		sb.WriteString(fmt.Sprintf("| %s%s |\n", line, strings.Repeat(" ", pad)))
	}
	sb.WriteString(border)

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := io.WriteString(n.out, sb.String()); err != nil {
		logger.Errorf("[Notify] 输出提示失败: %v", err)
	}
}

// splitMessage 将提示按行宽拆分为多行，先按换行再按单词
func splitMessage(content string) []string {
	lines := make([]string, 0)
	for _, para := range strings.Split(content, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= MaxLineLength {
			lines = append(lines, para)
			continue
		}

		current := ""
		for _, word := range strings.Fields(para) {
			for utf8.RuneCountInString(word) > MaxLineLength {
				// 单个词超长时硬切
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				runes := []rune(word)
				lines = append(lines, string(runes[:MaxLineLength]))
				word = string(runes[MaxLineLength:])
			}
			if word == "" {
				continue
			}
			if current == "" {
				current = word
			} else if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= MaxLineLength {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}
