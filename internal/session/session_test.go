package session

import (
	"testing"
	"time"

	"github.com/fachebot/study-room-client/internal/config"
	"github.com/fachebot/study-room-client/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStart(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)

	tests := []struct {
		name    string
		date    string
		clock   string
		want    time.Time
		wantErr bool
	}{
		{"时分", "2025-03-01", "14:00", time.Date(2025, 3, 1, 14, 0, 0, 0, loc), false},
		{"时分秒", "2025-03-01", "14:00:30", time.Date(2025, 3, 1, 14, 0, 30, 0, loc), false},
		{"日期错误", "2025-13-01", "14:00", time.Time{}, true},
		{"时间为空", "2025-03-01", "", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStart(tt.date, tt.clock, loc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestNew(t *testing.T) {
	c := &config.Config{
		Page: config.Page{URL: "https://study.example.com/room/12/"},
		Room: config.Room{
			Id:          "12",
			Date:        "2025-03-01",
			Time:        "14:00",
			Username:    "alice",
			QuizSession: true,
		},
		Quizzes: []wire.Quiz{{ID: 1, Question: "q", Options: wire.Options{{Key: "a", Label: "x"}}}},
	}

	s, err := New(c, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "12", s.RoomID)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, 20*time.Minute, s.QuizOffset)
	assert.True(t, s.QuizSession)
	assert.Equal(t, time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC), s.StartAt)

	// 会话持有配置的副本
	quizzes := s.Quizzes()
	quizzes[0].Question = "changed"
	c.Quizzes[0].Question = "changed too"
	assert.Equal(t, "q", s.Quizzes()[0].Question)

	offset := 0
	c.Room.QuizOffsetMinutes = &offset
	s, err = New(c, time.UTC)
	require.NoError(t, err)
	assert.Zero(t, s.QuizOffset)

	c.Room.Date = "bad"
	_, err = New(c, time.UTC)
	assert.Error(t, err)
}
