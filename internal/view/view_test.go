package view

import (
	"testing"
	"time"

	"github.com/fachebot/study-room-client/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		isAI     bool
		username string
		want     Ownership
	}{
		{"AI 回复", true, "AI", OwnershipAI},
		{"AI 回复优先于自己", true, "alice", OwnershipAI},
		{"自己发送", false, "alice", OwnershipMine},
		{"他人发送", false, "bob", OwnershipOther},
		{"大小写不同视为他人", false, "Alice", OwnershipOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.isAI, tt.username, "alice"))
		})
	}
}

func TestHighlightMentions(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		mentions []string
		want     string
	}{
		{
			name:     "无提及",
			body:     "hello world",
			mentions: nil,
			want:     "hello world",
		},
		{
			name:     "单个提及",
			body:     "hi @alice!",
			mentions: []string{"alice"},
			want:     `hi <span class="mention">@alice</span>!`,
		},
		{
			name:     "所有出现都被包裹",
			body:     "@alice and @alice again",
			mentions: []string{"alice"},
			want:     `<span class="mention">@alice</span> and <span class="mention">@alice</span> again`,
		},
		{
			name:     "中文名字",
			body:     "你好 @张三 在吗",
			mentions: []string{"张三"},
			want:     `你好 <span class="mention">@张三</span> 在吗`,
		},
		{
			name:     "中文名字后紧跟汉字",
			body:     "@张三丰",
			mentions: []string{"张三"},
			want:     "@张三丰",
		},
		{
			name:     "带重音的名字",
			body:     "hi @José there",
			mentions: []string{"José"},
			want:     `hi <span class="mention">@José</span> there`,
		},
		{
			name:     "带重音的名字后紧跟字母",
			body:     "@Joséx @José",
			mentions: []string{"José"},
			want:     `@Joséx <span class="mention">@José</span>`,
		},
		{
			name:     "名字后紧跟标点",
			body:     "@bob.smithx",
			mentions: []string{"bob", "bob.smith"},
			want:     `<span class="mention">@bob</span>.smithx`,
		},
		{
			name:     "不匹配更长的标识符",
			body:     "@alicetown vs @alice",
			mentions: []string{"alice"},
			want:     `@alicetown vs <span class="mention">@alice</span>`,
		},
		{
			name:     "前缀名字与完整名字同时提及",
			body:     "@ali @alice",
			mentions: []string{"ali", "alice"},
			want:     `<span class="mention">@ali</span> <span class="mention">@alice</span>`,
		},
		{
			name:     "重复提及只包裹一次",
			body:     "@bob",
			mentions: []string{"bob", "bob"},
			want:     `<span class="mention">@bob</span>`,
		},
		{
			name:     "正文中的 HTML 被转义",
			body:     `<b>@bob</b> & "x"`,
			mentions: []string{"bob"},
			want:     `&lt;b&gt;<span class="mention">@bob</span>&lt;/b&gt; &amp; &quot;x&quot;`,
		},
		{
			name:     "名字中的正则字符按字面匹配",
			body:     "@a.b @axb",
			mentions: []string{"a.b"},
			want:     `<span class="mention">@a.b</span> @axb`,
		},
		{
			name:     "没有 @ 的名字不匹配",
			body:     "alice said hi",
			mentions: []string{"alice"},
			want:     "alice said hi",
		},
		{
			name:     "空名字被忽略",
			body:     "@ hi",
			mentions: []string{""},
			want:     "@ hi",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HighlightMentions(tt.body, tt.mentions))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	assert.Equal(t, "18:30:05", FormatTimestamp("2025-03-01T10:30:05.123456+00:00", loc))
	assert.Equal(t, "10:30:05", FormatTimestamp("2025-03-01T10:30:05Z", time.UTC))
	assert.Equal(t, "10:30:05", FormatTimestamp("2025-03-01T10:30:05.5", loc))
	assert.Equal(t, "yesterday", FormatTimestamp("yesterday", loc))
}

func TestChatLog_AppendOnlyAndScrolls(t *testing.T) {
	var changes []Region
	p := NewPage(ListenerFunc(func(r Region) { changes = append(changes, r) }))
	assert.Equal(t, -1, p.Chat.ScrollTop())

	p.AppendChat(ChatEntry{Username: "b", Text: "second"})
	p.AppendChat(ChatEntry{Username: "a", Text: "first"})
	p.AppendChat(ChatEntry{Username: "a", Text: "first"})

	entries := p.Chat.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "second", entries[0].Text)
	assert.Equal(t, 2, p.Chat.ScrollTop())
	assert.Equal(t, []Region{RegionChat, RegionChat, RegionChat}, changes)

	// 修改副本不影响记录
	entries[0].Text = "mutated"
	last, ok := p.Chat.Last()
	require.True(t, ok)
	assert.Equal(t, "first", last.Text)
	assert.Equal(t, "second", p.Chat.Entries()[0].Text)
}

func TestPage_SummarizingCycle(t *testing.T) {
	p := NewPage(nil)
	assert.Equal(t, UIState{ChatEnabled: true}, p.State)
	assert.True(t, p.Summary.Placeholder)

	p.BeginSummarizing("Summarizing report.pdf")
	assert.Equal(t, UIState{Summarizing: true, ChatEnabled: false}, p.State)
	assert.True(t, p.Progress.Visible)
	assert.False(t, p.Summary.Visible)

	p.UpdateChunk(2)
	assert.Equal(t, 2, p.Progress.Chunk)

	p.FinishSummarizing()
	assert.Equal(t, UIState{Summarizing: false, ChatEnabled: true}, p.State)
	assert.False(t, p.Progress.Visible)
	assert.True(t, p.Summary.Visible)
}

func TestPage_PrependSummary(t *testing.T) {
	p := NewPage(nil)
	p.PrependSummary(SummaryItem{PDFName: "a.pdf"})
	p.PrependSummary(SummaryItem{PDFName: "b.pdf"})

	assert.False(t, p.Summary.Placeholder)
	require.Len(t, p.Summary.Items, 2)
	assert.Equal(t, "b.pdf", p.Summary.Items[0].PDFName)
	assert.Equal(t, "a.pdf", p.Summary.Items[1].PDFName)
}

func TestPage_QuizPanel(t *testing.T) {
	p := NewPage(nil)
	assert.Error(t, p.SelectQuizOption(1, "a"))

	var picked []string
	quiz := wire.Quiz{ID: 1, Question: "q", Options: wire.Options{{Key: "a", Label: "x"}, {Key: "b", Label: "y"}}}
	p.ShowQuizzes([]QuizItem{NewQuizItem(quiz, func(key string) { picked = append(picked, key) })})

	require.NoError(t, p.SelectQuizOption(1, "b"))
	require.NoError(t, p.SelectQuizOption(1, "a"))
	assert.Equal(t, []string{"b", "a"}, picked)
	assert.Equal(t, "a", p.Quiz.Items[0].Selected)

	assert.Error(t, p.SelectQuizOption(1, "z"))
	assert.Error(t, p.SelectQuizOption(2, "a"))

	p.ShowRanking([]wire.RankingEntry{{Name: "bob", Score: 4}, {Name: "amy", Score: 5}})
	assert.Equal(t, QuizModeRanking, p.Quiz.Mode)
	assert.Empty(t, p.Quiz.Items)
	assert.Equal(t, "bob", p.Quiz.Rankings[0].Name)
	assert.Error(t, p.SelectQuizOption(1, "a"))
}

func TestQuizForm(t *testing.T) {
	f := NewQuizForm()
	f.Select(1, "a")
	f.Select(1, "c")
	f.Select(3, "b")

	key, ok := f.Selected(1)
	assert.True(t, ok)
	assert.Equal(t, "c", key)
	_, ok = f.Selected(2)
	assert.False(t, ok)
	assert.Equal(t, 2, f.Len())
}
