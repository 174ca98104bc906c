package router

import (
	"errors"
	"testing"

	"github.com/fachebot/study-room-client/internal/wire"
	"github.com/stretchr/testify/assert"
)

func TestDispatch(t *testing.T) {
	calls := make(map[wire.Type]int)
	r := New()
	r.Handle(wire.TypeChatMessage, func(env *wire.Envelope) error {
		calls[env.Type]++
		return nil
	})
	r.Handle(wire.TypeError, func(env *wire.Envelope) error {
		calls[env.Type]++
		return errors.New("handler failed")
	})

	tests := []struct {
		name    string
		raw     string
		handled bool
	}{
		{"已注册类型", `{"type":"chat_message","message":"hi"}`, true},
		{"处理函数返回错误", `{"type":"error","message":"x"}`, true},
		{"未知类型", `{"type":"presence"}`, false},
		{"非 JSON", `<<garbage>>`, false},
		{"空帧", ``, false},
		{"缺少 type", `{"message":"hi"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.handled, r.Dispatch([]byte(tt.raw)))
			})
		})
	}

	assert.Equal(t, 1, calls[wire.TypeChatMessage])
	assert.Equal(t, 1, calls[wire.TypeError])
}

func TestHandle_ReplacesExisting(t *testing.T) {
	var first, second int
	r := New()
	r.Handle(wire.TypeChatMessage, func(*wire.Envelope) error { first++; return nil })
	r.Handle(wire.TypeChatMessage, func(*wire.Envelope) error { second++; return nil })

	r.Dispatch([]byte(`{"type":"chat_message"}`))
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Len(t, r.Types(), 1)
}
