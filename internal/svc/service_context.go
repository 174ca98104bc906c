package svc

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fachebot/study-room-client/internal/config"
	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/model"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/net/proxy"
)

type ServiceContext struct {
	Config         *config.Config
	DB             *sql.DB
	TransportProxy *http.Transport
	HTTPClient     *http.Client
	NetDial        func(network, addr string) (net.Conn, error)
	AssetModel     *model.AssetModel
}

func NewServiceContext(c *config.Config) (*ServiceContext, error) {
	svcCtx := &ServiceContext{Config: c}

	// 创建SOCKS5代理
	if c.Sock5Proxy.Enable {
		socks5Proxy := fmt.Sprintf("%s:%d", c.Sock5Proxy.Host, c.Sock5Proxy.Port)
		dialer, err := proxy.SOCKS5("tcp", socks5Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("创建SOCKS5代理失败: %w", err)
		}

		svcCtx.NetDial = dialer.Dial
		svcCtx.TransportProxy = &http.Transport{
			Dial:            dialer.Dial,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	svcCtx.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	if svcCtx.TransportProxy != nil {
		svcCtx.HTTPClient.Transport = svcCtx.TransportProxy
	}

	// 离线缓存数据库
	if c.OfflineCache.Enable {
		db, err := OpenDatabase(c.OfflineCache.Database)
		if err != nil {
			return nil, err
		}
		svcCtx.DB = db
		svcCtx.AssetModel = model.NewAssetModel(db)
		if err := svcCtx.AssetModel.Migrate(context.Background()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return svcCtx, nil
}

// OpenDatabase 打开 sqlite 数据库，目录不存在时自动创建
func OpenDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, nil
}

func (svcCtx *ServiceContext) Close() {
	if svcCtx.DB == nil {
		return
	}
	if err := svcCtx.DB.Close(); err != nil {
		logger.Errorf("关闭数据库失败, %v", err)
	}
}
