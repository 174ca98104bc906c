package action

import (
	"strings"

	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/notify"
	"github.com/fachebot/study-room-client/internal/session"
	"github.com/fachebot/study-room-client/internal/view"
	"github.com/fachebot/study-room-client/internal/wire"
)

const quizSubmittedText = "Quiz submitted successfully!"

// Sender 出站消息通道，发送失败由实现方记录日志
type Sender interface {
	Send(event any) error
}

// Emitter 用户操作触发的出站消息
type Emitter struct {
	sender  Sender
	session *session.Session
	alerter notify.Alerter
}

func NewEmitter(sender Sender, sess *session.Session, alerter notify.Alerter) *Emitter {
	return &Emitter{
		sender:  sender,
		session: sess,
		alerter: alerter,
	}
}

// SendMessage 发送输入框中的消息并清空输入框；空白输入什么也不做
func (e *Emitter) SendMessage(input *view.Input) bool {
	message := strings.TrimSpace(input.Value)
	if message == "" {
		return false
	}

	e.send(wire.NewChatMessage(message, e.session.Username))
	input.Value = ""
	return true
}

// SubmitQuizResponse 提交单题答案，不校验选项是否存在
func (e *Emitter) SubmitQuizResponse(quizID int, selectedAnswer string) {
	e.send(wire.NewQuizResponse(quizID, selectedAnswer, e.session.Username))
}

// SubmitQuizForm 为表单中已作答的题目逐一提交答案，未作答的跳过
// 无论提交了几道题都会提示提交成功
func (e *Emitter) SubmitQuizForm(form *view.QuizForm) int {
	submitted := 0
	for _, quiz := range e.session.Quizzes() {
		answer, ok := form.Selected(quiz.ID)
		if !ok {
			continue
		}
		e.SubmitQuizResponse(quiz.ID, answer)
		submitted++
	}

	logger.Infof("[Action] 测验表单已提交 %d 道题", submitted)
	e.alerter.Alert(quizSubmittedText)
	return submitted
}

// TriggerQuiz 请求服务端向房间推送测验
func (e *Emitter) TriggerQuiz() {
	e.send(wire.NewQuizTrigger(e.session.Quizzes()))
}

func (e *Emitter) send(event any) {
	if err := e.sender.Send(event); err != nil {
		logger.Debugf("[Action] 消息未发送: %v", err)
	}
}
