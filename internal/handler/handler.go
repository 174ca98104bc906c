package handler

import (
	"fmt"
	"time"

	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/notify"
	"github.com/fachebot/study-room-client/internal/router"
	"github.com/fachebot/study-room-client/internal/session"
	"github.com/fachebot/study-room-client/internal/view"
	"github.com/fachebot/study-room-client/internal/wire"
)

// QuizResponder 测验选项被选中时提交答案
type QuizResponder interface {
	SubmitQuizResponse(quizID int, selectedAnswer string)
}

// Handlers 每种入站消息一个渲染处理函数，各自只修改页面上的一个区域
type Handlers struct {
	page      *view.Page
	session   *session.Session
	alerter   notify.Alerter
	responder QuizResponder
	loc       *time.Location
}

func New(page *view.Page, sess *session.Session, alerter notify.Alerter, responder QuizResponder, loc *time.Location) *Handlers {
	if loc == nil {
		loc = time.Local
	}
	return &Handlers{
		page:      page,
		session:   sess,
		alerter:   alerter,
		responder: responder,
		loc:       loc,
	}
}

// Register 把处理函数注册到路由表，每种类型只有一个处理函数
func (h *Handlers) Register(r *router.Router) {
	r.Handle(wire.TypeChatMessage, h.ChatMessage)
	r.Handle(wire.TypeSummarizingStart, h.SummarizingStart)
	r.Handle(wire.TypeChunkSummary, h.ChunkSummary)
	r.Handle(wire.TypeFinalSummary, h.FinalSummary)
	r.Handle(wire.TypeQuiz, h.Quiz)
	r.Handle(wire.TypeRanking, h.Ranking)
	r.Handle(wire.TypeError, h.Error)
	r.Handle(wire.TypeNotification, h.Notification)
	r.Handle(wire.TypeQuizStartNotification, h.QuizStartNotification)
}

func (h *Handlers) ChatMessage(env *wire.Envelope) error {
	var msg wire.ChatMessage
	if err := env.Decode(&msg); err != nil {
		return err
	}

	h.page.AppendChat(view.ChatEntry{
		Username: msg.Username,
		Time:     view.FormatTimestamp(msg.Timestamp, h.loc),
		Text:     msg.Message,
		HTML:     view.HighlightMentions(msg.Message, msg.Mentions),
		Class:    view.Classify(msg.IsAIResponse, msg.Username, h.session.Username),
	})
	return nil
}

func (h *Handlers) SummarizingStart(env *wire.Envelope) error {
	var msg wire.SummarizingStart
	if err := env.Decode(&msg); err != nil {
		return err
	}

	logger.Infof("[Handler] 房间开始总结文档，输入已禁用")
	h.page.BeginSummarizing(msg.Message)
	return nil
}

func (h *Handlers) ChunkSummary(env *wire.Envelope) error {
	var msg wire.ChunkSummary
	if err := env.Decode(&msg); err != nil {
		return err
	}

	if !h.page.State.Summarizing {
		logger.Debugf("[Handler] 未处于总结状态，忽略分段 %d", msg.ChunkNumber)
		return nil
	}
	h.page.UpdateChunk(msg.ChunkNumber)
	return nil
}

// FinalSummary 无条件恢复输入，不区分是谁发起的总结
func (h *Handlers) FinalSummary(env *wire.Envelope) error {
	var msg wire.FinalSummary
	if err := env.Decode(&msg); err != nil {
		return err
	}

	h.page.FinishSummarizing()
	h.page.PrependSummary(view.SummaryItem{
		PDFName:  msg.PDFName,
		Username: msg.Username,
		Summary:  msg.Summary,
	})
	logger.Infof("[Handler] 收到 %s 的总结: %s", msg.Username, msg.PDFName)
	return nil
}

func (h *Handlers) Quiz(env *wire.Envelope) error {
	var msg wire.QuizBatch
	if err := env.Decode(&msg); err != nil {
		return err
	}

	items := make([]view.QuizItem, 0, len(msg.Quizzes))
	for _, quiz := range msg.Quizzes {
		quizID := quiz.ID
		items = append(items, view.NewQuizItem(quiz, func(key string) {
			h.responder.SubmitQuizResponse(quizID, key)
		}))
	}
	h.page.ShowQuizzes(items)
	logger.Infof("[Handler] 收到 %d 道测验题", len(items))
	return nil
}

func (h *Handlers) Ranking(env *wire.Envelope) error {
	var msg wire.Ranking
	if err := env.Decode(&msg); err != nil {
		return err
	}

	h.page.ShowRanking(msg.Rankings)
	return nil
}

func (h *Handlers) Error(env *wire.Envelope) error {
	var msg wire.ErrorEvent
	if err := env.Decode(&msg); err != nil {
		return err
	}

	logger.Errorf("[Handler] 服务端错误: %s", msg.Message)
	h.alerter.Alert(fmt.Sprintf("Error: %s", msg.Message))
	return nil
}

func (h *Handlers) Notification(env *wire.Envelope) error {
	var msg wire.Notification
	if err := env.Decode(&msg); err != nil {
		return err
	}

	h.page.AddNotice(view.Notice{Username: msg.Username, Text: msg.Message})
	return nil
}

func (h *Handlers) QuizStartNotification(env *wire.Envelope) error {
	var msg wire.QuizStartNotification
	if err := env.Decode(&msg); err != nil {
		return err
	}

	h.page.AddNotice(view.Notice{Text: msg.Message})
	return nil
}
