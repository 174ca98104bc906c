package quiztimer

import (
	"sync"
	"time"

	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/session"

	"github.com/robfig/cron/v3"
)

// Trigger 到点后请求服务端推送测验
type Trigger interface {
	TriggerQuiz()
}

// Poster 把回调投递到事件循环
type Poster interface {
	Post(fn func()) bool
}

// once 只在 at 触发一次的调度，触发后 Next 返回零值，cron 不会再运行它
type once struct {
	at time.Time
}

func (s once) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}

// Timer 房间开始后固定偏移时间触发一次测验
type Timer struct {
	cron    *cron.Cron
	session *session.Session
	loop    Poster
	trigger Trigger
	mu      sync.Mutex
	armed   bool
	entryID cron.EntryID
}

func New(sess *session.Session, loop Poster, trigger Trigger, loc *time.Location) *Timer {
	if loc == nil {
		loc = time.Local
	}
	return &Timer{
		cron:    cron.New(cron.WithLocation(loc)),
		session: sess,
		loop:    loop,
		trigger: trigger,
	}
}

// FireAt 触发时刻
func (t *Timer) FireAt() time.Time {
	return t.session.StartAt.Add(t.session.QuizOffset)
}

// Plan 距离触发还剩多久，可能为负
func (t *Timer) Plan(now time.Time) time.Duration {
	return t.FireAt().Sub(now)
}

// Arm 在页面加载时调用一次；已经过了触发时间则不安排任何任务
func (t *Timer) Arm(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.armed {
		logger.Warnf("[QuizTimer] 定时器已经安排过")
		return false
	}

	remaining := t.Plan(now)
	if remaining <= 0 {
		logger.Infof("[QuizTimer] 测验触发时间 %s 已过，不再安排", t.FireAt().Format(time.DateTime))
		return false
	}

	t.entryID = t.cron.Schedule(once{at: t.FireAt()}, cron.FuncJob(func() {
		if !t.loop.Post(t.fire) {
			logger.Warnf("[QuizTimer] 事件循环已停止，测验未触发")
		}
	}))
	t.armed = true
	t.cron.Start()

	logger.Infof("[QuizTimer] 测验将在 %s 后触发 (%s)", remaining, t.FireAt().Format(time.DateTime))
	return true
}

// Next 已安排任务的下次运行时间，未安排或已触发时为零值
func (t *Timer) Next() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.armed {
		return time.Time{}
	}
	return t.cron.Entry(t.entryID).Next
}

// Stop 只在进程退出时调用
func (t *Timer) Stop() {
	t.mu.Lock()
	armed := t.armed
	t.mu.Unlock()

	if !armed {
		return
	}
	ctx := t.cron.Stop()
	<-ctx.Done()
	logger.Infof("[QuizTimer] 定时器已停止")
}

func (t *Timer) fire() {
	if !t.session.QuizSession {
		logger.Infof("[QuizTimer] 当前不是测验房间，跳过")
		return
	}

	logger.Infof("[QuizTimer] 触发测验")
	t.trigger.TriggerQuiz()
}
