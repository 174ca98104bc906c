package conn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/wire"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 5 * time.Second
	handshakeTimeout = 10 * time.Second
)

var ErrNotOpen = errors.New("连接未打开")

// State 连接状态，只在事件循环中读写
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Poster 把回调投递到事件循环
type Poster interface {
	Post(fn func()) bool
}

// Handlers 连接生命周期回调，全部在事件循环中执行
type Handlers struct {
	OnOpen    func()
	OnClose   func()
	OnError   func(err error)
	OnMessage func(raw []byte)
}

type Option func(m *Manager)

// WithNetDial 自定义底层拨号，如 SOCKS5 代理
func WithNetDial(dial func(network, addr string) (net.Conn, error)) Option {
	return func(m *Manager) {
		m.dialer.NetDial = dial
	}
}

// Manager 持有房间唯一的 websocket 连接，不做自动重连
type Manager struct {
	id       string
	url      string
	dialer   *websocket.Dialer
	loop     Poster
	handlers Handlers
	state    State
	ws       *websocket.Conn
}

// URL 由宿主页面地址和房间ID推导连接地址，https 页面使用 wss
func URL(pageURL, roomID string) (string, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("无效的页面地址: %w", err)
	}
	if page.Host == "" {
		return "", fmt.Errorf("页面地址缺少主机: %s", pageURL)
	}

	scheme := "ws"
	if page.Scheme == "https" {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: page.Host, Path: fmt.Sprintf("/ws/room/%s/", roomID)}
	return u.String(), nil
}

func NewManager(wsURL string, loop Poster, handlers Handlers, options ...Option) *Manager {
	m := &Manager{
		id:  uuid.NewString(),
		url: wsURL,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
		},
		loop:     loop,
		handlers: handlers,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *Manager) ID() string {
	return m.id
}

func (m *Manager) State() State {
	return m.state
}

// Open 在后台拨号，结果投递回事件循环；只能打开一次
func (m *Manager) Open(ctx context.Context) {
	if m.state != StateIdle {
		logger.Warnf("[Conn] 连接 %s 已处于 %s 状态，忽略打开请求", m.id, m.state)
		return
	}
	m.state = StateConnecting
	logger.Infof("[Conn] 正在连接 %s, id: %s", m.url, m.id)

	go func() {
		ws, _, err := m.dialer.DialContext(ctx, m.url, nil)
		if err != nil {
			m.loop.Post(func() {
				if m.state != StateConnecting {
					return
				}
				m.state = StateClosed
				m.fireError(fmt.Errorf("连接失败: %w", err))
				m.fireClose()
			})
			return
		}

		m.loop.Post(func() {
			if m.state != StateConnecting {
				_ = ws.Close()
				return
			}
			m.ws = ws
			m.state = StateOpen
			logger.Infof("[Conn] 连接已建立, id: %s", m.id)
			if m.handlers.OnOpen != nil {
				m.handlers.OnOpen()
			}
		})
		m.readPump(ws)
	}()
}

// Send 序列化并发送消息；连接未打开时只记录日志
func (m *Manager) Send(event any) error {
	if m.state != StateOpen || m.ws == nil {
		logger.Warnf("[Conn] 连接 %s 未打开（%s），丢弃消息", m.id, m.state)
		return ErrNotOpen
	}

	data, err := wire.Encode(event)
	if err != nil {
		logger.Errorf("[Conn] %v", err)
		return err
	}

	_ = m.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := m.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Errorf("[Conn] 发送消息失败, id: %s, %v", m.id, err)
		return fmt.Errorf("发送消息失败: %w", err)
	}

	logger.Debugf("[Conn] 发送消息: %s", data)
	return nil
}

// Close 主动关闭连接，不会重连
func (m *Manager) Close() {
	switch m.state {
	case StateOpen:
		m.state = StateClosed
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = m.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = m.ws.Close()
		m.fireClose()
	case StateConnecting:
		m.state = StateClosed
		m.fireClose()
	case StateIdle:
		m.state = StateClosed
	}
}

func (m *Manager) readPump(ws *websocket.Conn) {
	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			m.loop.Post(func() { m.handleReadError(ws, err) })
			return
		}
		if messageType != websocket.TextMessage {
			logger.Debugf("[Conn] 忽略非文本帧, type: %d", messageType)
			continue
		}

		m.loop.Post(func() {
			if m.ws != ws || m.state != StateOpen {
				return
			}
			if m.handlers.OnMessage != nil {
				m.handlers.OnMessage(data)
			}
		})
	}
}

func (m *Manager) handleReadError(ws *websocket.Conn, err error) {
	if m.ws != ws || m.state != StateOpen {
		return
	}
	m.state = StateClosed
	_ = ws.Close()

	if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		m.fireError(err)
	}
	m.fireClose()
}

func (m *Manager) fireError(err error) {
	logger.Errorf("[Conn] 连接错误, id: %s, %v", m.id, err)
	if m.handlers.OnError != nil {
		m.handlers.OnError(err)
	}
}

func (m *Manager) fireClose() {
	logger.Infof("[Conn] 连接已关闭, id: %s", m.id)
	if m.handlers.OnClose != nil {
		m.handlers.OnClose()
	}
}
