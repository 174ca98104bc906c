package roomapp

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fachebot/study-room-client/internal/action"
	"github.com/fachebot/study-room-client/internal/conn"
	"github.com/fachebot/study-room-client/internal/console"
	"github.com/fachebot/study-room-client/internal/eventloop"
	"github.com/fachebot/study-room-client/internal/handler"
	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/notify"
	"github.com/fachebot/study-room-client/internal/offline"
	"github.com/fachebot/study-room-client/internal/quiztimer"
	"github.com/fachebot/study-room-client/internal/router"
	"github.com/fachebot/study-room-client/internal/session"
	"github.com/fachebot/study-room-client/internal/svc"
	"github.com/fachebot/study-room-client/internal/view"
)

var log = logger.Component("RoomApp")

// RoomApp 一个房间页面的完整生命周期
type RoomApp struct {
	svcCtx   *svc.ServiceContext
	session  *session.Session
	loop     *eventloop.Loop
	page     *view.Page
	conn     *conn.Manager
	router   *router.Router
	emitter  *action.Emitter
	timer    *quiztimer.Timer
	cache    *offline.Cache
	out      io.Writer
	closeMu  sync.Mutex
	started  bool
	closed   bool
	quitOnce sync.Once
	quit     chan struct{}
}

func NewApp(svcCtx *svc.ServiceContext, out io.Writer, loc *time.Location) (*RoomApp, error) {
	c := svcCtx.Config
	sess, err := session.New(c, loc)
	if err != nil {
		return nil, err
	}

	wsURL, err := conn.URL(sess.PageURL, sess.RoomID)
	if err != nil {
		return nil, err
	}

	app := &RoomApp{
		svcCtx:  svcCtx,
		session: sess,
		loop:    eventloop.New(0),
		router:  router.New(),
		out:     out,
		quit:    make(chan struct{}),
	}

	renderer := console.NewRenderer(out, true)
	app.page = view.NewPage(renderer)
	renderer.Attach(app.page)

	var options []conn.Option
	if svcCtx.NetDial != nil {
		options = append(options, conn.WithNetDial(svcCtx.NetDial))
	}
	app.conn = conn.NewManager(wsURL, app.loop, conn.Handlers{
		OnOpen:    func() { log.Infof("已加入房间 %s，用户: %s", sess.RoomID, sess.Username) },
		OnClose:   func() { log.Infof("房间连接已关闭") },
		OnMessage: func(raw []byte) { app.router.Dispatch(raw) },
	}, options...)

	notifier := notify.NewNotifier(out)
	app.emitter = action.NewEmitter(app.conn, sess, notifier)
	handler.New(app.page, sess, notifier, app.emitter, loc).Register(app.router)
	app.timer = quiztimer.New(sess, app.loop, app.emitter, loc)

	if c.OfflineCache.Enable && svcCtx.AssetModel != nil {
		app.cache, err = offline.NewCache(&c.OfflineCache, sess.PageURL, svcCtx.HTTPClient, svcCtx.AssetModel)
		if err != nil {
			return nil, err
		}
	}
	return app, nil
}

func (app *RoomApp) Session() *session.Session {
	return app.session
}

// Run 加载页面并处理终端输入，直到 ctx 取消或用户退出
// 用户退出或输入结束时返回 nil，ctx 取消时返回 ctx.Err()，读取输入失败时返回该错误
func (app *RoomApp) Run(ctx context.Context, in io.Reader) (err error) {
	app.closeMu.Lock()
	if app.started || app.closed {
		app.closeMu.Unlock()
		return fmt.Errorf("房间已经运行过")
	}
	app.started = true
	app.closeMu.Unlock()

	// 事件循环只由 Close 停止，保证退出时还能在循环上关闭连接
	go app.loop.Run(context.Background())

	if app.cache != nil {
		go app.prepareOfflineCache(ctx)
	}

	// 页面加载
	app.loop.Post(func() {
		app.conn.Open(ctx)
		app.timer.Arm(time.Now())
	})

	readDone := make(chan error, 1)
	go func() {
		readDone <- console.ReadCommands(ctx, in, app.out, func(cmd console.Command) {
			app.loop.Post(func() { app.execute(ctx, cmd) })
		})
	}()

	select {
	case <-ctx.Done():
	case <-app.quit:
	case <-app.loop.Done():
	case err = <-readDone:
		if err != nil {
			err = fmt.Errorf("读取输入失败: %w", err)
		}
	}
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	app.Close()
	return err
}

// Close 离开房间
func (app *RoomApp) Close() {
	app.closeMu.Lock()
	defer app.closeMu.Unlock()
	if app.closed {
		return
	}
	app.closed = true

	app.timer.Stop()
	if app.started {
		app.loop.Call(app.conn.Close)
	}
	app.loop.Stop()
}

func (app *RoomApp) stop() {
	app.quitOnce.Do(func() { close(app.quit) })
}

func (app *RoomApp) execute(ctx context.Context, cmd console.Command) {
	switch cmd.Kind {
	case console.KindSend:
		if !app.page.State.ChatEnabled {
			fmt.Fprintln(app.out, "chat input is disabled while a document is summarized")
			return
		}
		app.page.Input.Value = cmd.Text
		app.emitter.SendMessage(&app.page.Input)
	case console.KindPick:
		if err := app.page.SelectQuizOption(cmd.QuizID, cmd.Key); err != nil {
			fmt.Fprintln(app.out, err)
		}
	case console.KindMark:
		app.page.Form.Select(cmd.QuizID, cmd.Key)
	case console.KindSubmit:
		app.emitter.SubmitQuizForm(app.page.Form)
	case console.KindAsset:
		app.fetchAsset(ctx, cmd.Path)
	case console.KindHelp:
		fmt.Fprintln(app.out, console.Usage)
	case console.KindQuit:
		app.stop()
	}
}

// fetchAsset 网络请求在事件循环之外执行，结果再投递回来输出
func (app *RoomApp) fetchAsset(ctx context.Context, path string) {
	if app.cache == nil {
		fmt.Fprintln(app.out, "offline cache is disabled")
		return
	}

	go func() {
		resp, err := app.cache.Fetch(ctx, path)
		app.loop.Post(func() {
			if err != nil {
				fmt.Fprintf(app.out, "asset %s unavailable: %v\n", path, err)
				return
			}
			fmt.Fprintf(app.out, "asset %s: status %d, %d bytes from %s\n", path, resp.Status, len(resp.Body), resp.Source)
		})
	}()
}

func (app *RoomApp) prepareOfflineCache(ctx context.Context) {
	if err := app.cache.Install(ctx); err != nil {
		log.Warnf("安装离线缓存失败: %v", err)
		return
	}
	if _, err := app.cache.Activate(ctx); err != nil {
		log.Warnf("清理旧缓存失败: %v", err)
	}
}
