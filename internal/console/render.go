package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fachebot/study-room-client/internal/view"
	"github.com/fachebot/study-room-client/internal/wire"

	"golang.org/x/net/html"
)

const (
	ansiMention = "\x1b[1;33m"
	ansiReset   = "\x1b[0m"
)

// Renderer 把页面区域的变化输出到终端，只在事件循环上调用
type Renderer struct {
	out            io.Writer
	page           *view.Page
	color          bool
	chatSeen       int
	summarySeen    int
	noticeSeen     int
	progressShown  bool
	chatWasEnabled bool
}

func NewRenderer(out io.Writer, color bool) *Renderer {
	return &Renderer{out: out, color: color, chatWasEnabled: true}
}

// Attach 绑定页面，必须在页面产生变化之前调用
func (r *Renderer) Attach(page *view.Page) {
	r.page = page
}

func (r *Renderer) Changed(region view.Region) {
	if r.page == nil {
		return
	}

	switch region {
	case view.RegionChat:
		r.renderChat()
	case view.RegionInput:
		r.renderInput()
	case view.RegionProgress:
		r.renderProgress()
	case view.RegionSummary:
		r.renderSummary()
	case view.RegionQuiz:
		r.renderQuiz()
	case view.RegionNotice:
		r.renderNotices()
	}
}

func (r *Renderer) renderChat() {
	entries := r.page.Chat.Entries()
	for _, entry := range entries[r.chatSeen:] {
		fmt.Fprintf(r.out, "[%s] %s%s: %s\n", entry.Time, entry.Username, ownerTag(entry.Class), r.terminalText(entry.HTML))
	}
	r.chatSeen = len(entries)
}

func ownerTag(class view.Ownership) string {
	switch class {
	case view.OwnershipAI:
		return " (AI)"
	case view.OwnershipMine:
		return " (me)"
	default:
		return ""
	}
}

func (r *Renderer) renderInput() {
	enabled := r.page.State.ChatEnabled
	if enabled == r.chatWasEnabled {
		return
	}
	r.chatWasEnabled = enabled
	if enabled {
		fmt.Fprintln(r.out, "-- chat input enabled --")
	} else {
		fmt.Fprintln(r.out, "-- chat input disabled while a document is summarized --")
	}
}

func (r *Renderer) renderProgress() {
	progress := r.page.Progress
	switch {
	case progress.Visible && progress.Chunk > 0:
		fmt.Fprintf(r.out, "... summarizing, chunk %d done\n", progress.Chunk)
	case progress.Visible && !r.progressShown:
		message := progress.Message
		if message == "" {
			message = "Summarizing document"
		}
		fmt.Fprintf(r.out, "... %s\n", message)
	case !progress.Visible && r.progressShown:
		fmt.Fprintln(r.out, "... summarizing finished")
	}
	r.progressShown = progress.Visible
}

func (r *Renderer) renderSummary() {
	panel := r.page.Summary
	if !panel.Visible {
		return
	}

	fresh := len(panel.Items) - r.summarySeen
	for _, item := range panel.Items[:max(fresh, 0)] {
		fmt.Fprintf(r.out, "== Summary of %s (uploaded by %s) ==\n%s\n", item.PDFName, item.Username, item.Summary)
	}
	r.summarySeen = len(panel.Items)
}

func (r *Renderer) renderQuiz() {
	panel := r.page.Quiz
	switch panel.Mode {
	case view.QuizModeQuestions:
		fmt.Fprintln(r.out, "== Quiz ==")
		for _, item := range panel.Items {
			fmt.Fprintf(r.out, "[%d] %s\n", item.Quiz.ID, item.Quiz.Question)
			for _, option := range item.Quiz.Options {
				marker := " "
				if option.Key == item.Selected {
					marker = "*"
				}
				fmt.Fprintf(r.out, "  %s %s) %s\n", marker, option.Key, option.Label)
			}
		}
	case view.QuizModeRanking:
		fmt.Fprintln(r.out, "== Ranking ==")
		for i, entry := range panel.Rankings {
			fmt.Fprintf(r.out, "%d. %s %s/%d\n", i+1, entry.Name, entry.ScoreText(), wire.RankingMaxScore)
		}
	}
}

func (r *Renderer) renderNotices() {
	notices := r.page.Notices
	for _, notice := range notices[r.noticeSeen:] {
		if notice.Username != "" {
			fmt.Fprintf(r.out, "* %s: %s\n", notice.Username, notice.Text)
		} else {
			fmt.Fprintf(r.out, "* %s\n", notice.Text)
		}
	}
	r.noticeSeen = len(notices)
}

// terminalText 把带提及高亮的消息 HTML 转成终端文本
func (r *Renderer) terminalText(fragment string) string {
	var b strings.Builder
	depth := 0
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken:
			if isMentionSpan(z) {
				depth++
				if r.color {
					b.WriteString(ansiMention)
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "span" && depth > 0 {
				depth--
				if r.color {
					b.WriteString(ansiReset)
				}
			}
		}
	}
}

func isMentionSpan(z *html.Tokenizer) bool {
	name, hasAttr := z.TagName()
	if string(name) != "span" {
		return false
	}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) == "class" && string(val) == "mention" {
			return true
		}
	}
	return false
}
