package eventloop

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/fachebot/study-room-client/internal/logger"
)

// Loop 单线程事件循环：所有任务在同一个 goroutine 上按投递顺序依次执行，互不重叠
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 256
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Post 投递任务，循环已停止时返回 false
// 不要在循环内部投递后等待，队列满时会死锁
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call 投递任务并等待执行完成，只能在循环之外调用
func (l *Loop) Call(fn func()) bool {
	finished := make(chan struct{})
	ok := l.Post(func() {
		defer close(finished)
		fn()
	})
	if !ok {
		return false
	}

	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Run 执行任务直到 ctx 取消或调用 Stop
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Done 循环停止后关闭
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[EventLoop] 任务执行异常: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}
