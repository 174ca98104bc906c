package view

import (
	"fmt"

	"github.com/fachebot/study-room-client/internal/wire"
)

// Region 页面区域，每个渲染处理函数只修改自己的区域
type Region string

const (
	RegionChat     Region = "chat"
	RegionInput    Region = "input"
	RegionProgress Region = "progress"
	RegionSummary  Region = "summary"
	RegionQuiz     Region = "quiz"
	RegionNotice   Region = "notice"
)

// Listener 区域变化通知
type Listener interface {
	Changed(region Region)
}

type ListenerFunc func(region Region)

func (f ListenerFunc) Changed(region Region) {
	f(region)
}

// UIState 房间共享的界面状态，只由总结开始与总结完成两个处理函数修改
type UIState struct {
	Summarizing bool
	ChatEnabled bool
}

// Input 聊天输入框
type Input struct {
	Value string
}

// Progress 总结进度提示
type Progress struct {
	Visible bool
	Message string
	Chunk   int
}

// SummaryItem 文档总结条目
type SummaryItem struct {
	PDFName  string
	Username string
	Summary  string
}

// SummaryPanel 总结列表，新条目插入到最前面
type SummaryPanel struct {
	Visible     bool
	Placeholder bool
	Items       []SummaryItem
}

type QuizMode int

const (
	QuizModeEmpty QuizMode = iota
	QuizModeQuestions
	QuizModeRanking
)

// QuizItem 测验面板中的一道题，选择即提交
type QuizItem struct {
	Quiz     wire.Quiz
	Selected string
	onSelect func(key string)
}

func NewQuizItem(quiz wire.Quiz, onSelect func(key string)) QuizItem {
	return QuizItem{Quiz: quiz, onSelect: onSelect}
}

// QuizPanel 测验面板，整体替换为题目或排行榜
type QuizPanel struct {
	Mode     QuizMode
	Items    []QuizItem
	Rankings []wire.RankingEntry
}

// Notice 非阻塞的房间通知
type Notice struct {
	Username string
	Text     string
}

// Page 客户端页面模型
type Page struct {
	State    UIState
	Input    Input
	Chat     ChatLog
	Progress Progress
	Summary  SummaryPanel
	Quiz     QuizPanel
	Form     *QuizForm
	Notices  []Notice
	listener Listener
}

func NewPage(listener Listener) *Page {
	return &Page{
		State:    UIState{ChatEnabled: true},
		Summary:  SummaryPanel{Visible: true, Placeholder: true},
		Form:     NewQuizForm(),
		listener: listener,
	}
}

func (p *Page) changed(regions ...Region) {
	if p.listener == nil {
		return
	}
	for _, r := range regions {
		p.listener.Changed(r)
	}
}

// AppendChat 追加消息并滚动到底部
func (p *Page) AppendChat(entry ChatEntry) {
	p.Chat.append(entry)
	p.changed(RegionChat)
}

// BeginSummarizing 进入总结中状态：显示进度、隐藏总结列表、禁用输入
func (p *Page) BeginSummarizing(message string) {
	p.State = UIState{Summarizing: true, ChatEnabled: false}
	p.Progress = Progress{Visible: true, Message: message}
	p.Summary.Visible = false
	p.changed(RegionProgress, RegionSummary, RegionInput)
}

// UpdateChunk 记录最近完成的分段
func (p *Page) UpdateChunk(chunk int) {
	p.Progress.Chunk = chunk
	p.changed(RegionProgress)
}

// FinishSummarizing 退出总结中状态
func (p *Page) FinishSummarizing() {
	p.State = UIState{Summarizing: false, ChatEnabled: true}
	p.Progress = Progress{}
	p.Summary.Visible = true
	p.changed(RegionProgress, RegionSummary, RegionInput)
}

// PrependSummary 插入总结条目，首次插入时移除占位提示
func (p *Page) PrependSummary(item SummaryItem) {
	items := make([]SummaryItem, 0, len(p.Summary.Items)+1)
	items = append(items, item)
	p.Summary.Items = append(items, p.Summary.Items...)
	p.Summary.Placeholder = false
	p.changed(RegionSummary)
}

// ShowQuizzes 用题目整体替换测验面板
func (p *Page) ShowQuizzes(items []QuizItem) {
	p.Quiz = QuizPanel{Mode: QuizModeQuestions, Items: items}
	p.changed(RegionQuiz)
}

// ShowRanking 用排行榜整体替换测验面板，保持服务端顺序
func (p *Page) ShowRanking(rankings []wire.RankingEntry) {
	entries := make([]wire.RankingEntry, len(rankings))
	copy(entries, rankings)
	p.Quiz = QuizPanel{Mode: QuizModeRanking, Rankings: entries}
	p.changed(RegionQuiz)
}

// SelectQuizOption 选中测验面板中的选项并立即触发提交
func (p *Page) SelectQuizOption(quizID int, key string) error {
	if p.Quiz.Mode != QuizModeQuestions {
		return fmt.Errorf("测验面板当前没有题目")
	}
	for i := range p.Quiz.Items {
		item := &p.Quiz.Items[i]
		if item.Quiz.ID != quizID {
			continue
		}
		if _, ok := item.Quiz.Options.Label(key); !ok {
			return fmt.Errorf("题目 %d 没有选项 %s", quizID, key)
		}
		item.Selected = key
		p.changed(RegionQuiz)
		if item.onSelect != nil {
			item.onSelect(key)
		}
		return nil
	}
	return fmt.Errorf("测验面板中没有题目 %d", quizID)
}

// AddNotice 追加非阻塞通知
func (p *Page) AddNotice(notice Notice) {
	p.Notices = append(p.Notices, notice)
	p.changed(RegionNotice)
}

// QuizItemView 测验题快照
type QuizItemView struct {
	Quiz     wire.Quiz
	Selected string
}

// Snapshot 页面可比较的快照，用于检查区域是否被修改
type Snapshot struct {
	State     UIState
	Input     Input
	Chat      []ChatEntry
	ScrollTop int
	Progress  Progress
	Summary   SummaryPanel
	QuizMode  QuizMode
	Quizzes   []QuizItemView
	Rankings  []wire.RankingEntry
	Notices   []Notice
}

func (p *Page) Snapshot() Snapshot {
	summary := p.Summary
	summary.Items = append([]SummaryItem(nil), p.Summary.Items...)

	quizzes := make([]QuizItemView, 0, len(p.Quiz.Items))
	for _, item := range p.Quiz.Items {
		quizzes = append(quizzes, QuizItemView{Quiz: item.Quiz, Selected: item.Selected})
	}

	return Snapshot{
		State:     p.State,
		Input:     p.Input,
		Chat:      p.Chat.Entries(),
		ScrollTop: p.Chat.ScrollTop(),
		Progress:  p.Progress,
		Summary:   summary,
		QuizMode:  p.Quiz.Mode,
		Quizzes:   quizzes,
		Rankings:  append([]wire.RankingEntry(nil), p.Quiz.Rankings...),
		Notices:   append([]Notice(nil), p.Notices...),
	}
}
