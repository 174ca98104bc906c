package session

import (
	"fmt"
	"time"

	"github.com/fachebot/study-room-client/internal/config"
	"github.com/fachebot/study-room-client/internal/wire"
)

var startLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Session 房间会话上下文，启动时创建，之后只读
type Session struct {
	RoomID      string
	PageURL     string
	Username    string
	StartAt     time.Time
	QuizSession bool
	QuizOffset  time.Duration
	quizzes     []wire.Quiz
}

// New 根据配置创建会话，房间开始时间按本地时区解析
func New(c *config.Config, loc *time.Location) (*Session, error) {
	if loc == nil {
		loc = time.Local
	}

	startAt, err := ParseStart(c.Room.Date, c.Room.Time, loc)
	if err != nil {
		return nil, err
	}

	quizzes := make([]wire.Quiz, len(c.Quizzes))
	copy(quizzes, c.Quizzes)

	return &Session{
		RoomID:      c.Room.Id,
		PageURL:     c.Page.URL,
		Username:    c.Room.Username,
		StartAt:     startAt,
		QuizSession: c.Room.QuizSession,
		QuizOffset:  c.Room.QuizOffset(),
		quizzes:     quizzes,
	}, nil
}

// ParseStart 解析房间日期与时间
func ParseStart(date, clock string, loc *time.Location) (time.Time, error) {
	value := date + "T" + clock
	for _, layout := range startLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无效的房间开始时间: %s", value)
}

// Quizzes 页面内嵌的测验列表副本
func (s *Session) Quizzes() []wire.Quiz {
	quizzes := make([]wire.Quiz, len(s.quizzes))
	copy(quizzes, s.quizzes)
	return quizzes
}
