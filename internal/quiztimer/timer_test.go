package quiztimer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/fachebot/study-room-client/internal/config"
	"github.com/fachebot/study-room-client/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTrigger struct {
	mock.Mock
}

func (m *mockTrigger) TriggerQuiz() {
	m.Called()
}

// inlineLoop 直接执行投递的回调并计数
type inlineLoop struct {
	posted atomic.Int32
}

func (l *inlineLoop) Post(fn func()) bool {
	l.posted.Add(1)
	fn()
	return true
}

func newTestSession(t *testing.T, quizSession bool) *session.Session {
	t.Helper()
	c := &config.Config{
		Page: config.Page{URL: "http://localhost:8000/room/12/"},
		Room: config.Room{
			Id:          "12",
			Date:        "2025-03-01",
			Time:        "14:00",
			Username:    "alice",
			QuizSession: quizSession,
		},
	}
	s, err := session.New(c, time.UTC)
	require.NoError(t, err)
	return s
}

func TestOnce(t *testing.T) {
	at := time.Date(2025, 3, 1, 14, 20, 0, 0, time.UTC)
	s := once{at: at}

	assert.Equal(t, at, s.Next(at.Add(-time.Hour)))
	assert.True(t, s.Next(at).IsZero())
	assert.True(t, s.Next(at.Add(time.Second)).IsZero())
}

func TestArm_DeadlinePassed(t *testing.T) {
	sess := newTestSession(t, true)
	trigger := new(mockTrigger)
	timer := New(sess, &inlineLoop{}, trigger, time.UTC)

	now := sess.StartAt.Add(25 * time.Minute)
	assert.Equal(t, -5*time.Minute, timer.Plan(now))
	assert.False(t, timer.Arm(now))
	assert.True(t, timer.Next().IsZero())

	timer.Stop()
	trigger.AssertNotCalled(t, "TriggerQuiz")
}

func TestArm_ExactlyAtDeadline(t *testing.T) {
	sess := newTestSession(t, true)
	timer := New(sess, &inlineLoop{}, new(mockTrigger), time.UTC)

	now := sess.StartAt.Add(20 * time.Minute)
	assert.Zero(t, timer.Plan(now))
	assert.False(t, timer.Arm(now))
}

func TestArm_SchedulesRemaining(t *testing.T) {
	sess := newTestSession(t, true)
	now := time.Now().In(time.UTC)
	sess.StartAt = now.Add(-5 * time.Minute)

	trigger := new(mockTrigger)
	timer := New(sess, &inlineLoop{}, trigger, time.UTC)
	defer timer.Stop()

	assert.Equal(t, 15*time.Minute, timer.Plan(now))
	require.True(t, timer.Arm(now))
	assert.True(t, timer.Next().Equal(sess.StartAt.Add(20*time.Minute)))

	// 只能安排一次
	assert.False(t, timer.Arm(now))
	trigger.AssertNotCalled(t, "TriggerQuiz")
}

func TestFire(t *testing.T) {
	tests := []struct {
		name        string
		quizSession bool
		wantCalls   int
	}{
		{"测验房间触发", true, 1},
		{"非测验房间不发送", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newTestSession(t, tt.quizSession)
			now := time.Now().In(time.UTC)
			sess.StartAt = now.Add(-sess.QuizOffset).Add(200 * time.Millisecond)

			trigger := new(mockTrigger)
			trigger.On("TriggerQuiz").Return().Maybe()
			loop := &inlineLoop{}
			timer := New(sess, loop, trigger, time.UTC)
			defer timer.Stop()

			require.True(t, timer.Arm(now))
			assert.Eventually(t, func() bool {
				return loop.posted.Load() == 1
			}, 3*time.Second, 20*time.Millisecond)

			// 触发后不会再次运行
			time.Sleep(300 * time.Millisecond)
			assert.EqualValues(t, 1, loop.posted.Load())
			trigger.AssertNumberOfCalls(t, "TriggerQuiz", tt.wantCalls)
			assert.True(t, timer.Next().IsZero())
		})
	}
}
