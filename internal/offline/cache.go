package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"

	"github.com/fachebot/study-room-client/internal/config"
	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/model"
)

// Source 响应来源
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
	SourceOffline Source = "offline"
)

// Response 资源响应
type Response struct {
	Path        string
	Status      int
	ContentType string
	Body        []byte
	Source      Source
}

// Cache 页面静态资源的离线缓存，与聊天协议无关
type Cache struct {
	name        string
	allow       []string
	assets      []string
	offlinePage string
	base        *url.URL
	client      *http.Client
	assetModel  *model.AssetModel
}

func NewCache(c *config.OfflineCache, pageURL string, client *http.Client, assetModel *model.AssetModel) (*Cache, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("解析页面地址失败: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}

	allow := c.Allow
	if len(allow) == 0 {
		allow = []string{c.Name}
	}

	return &Cache{
		name:        c.Name,
		allow:       allow,
		assets:      c.Assets,
		offlinePage: c.OfflinePage,
		base:        base,
		client:      client,
		assetModel:  assetModel,
	}, nil
}

func (c *Cache) Name() string {
	return c.name
}

// Install 下载全部关键资源并写入当前缓存，任何一个失败则什么都不写
func (c *Cache) Install(ctx context.Context) error {
	paths := c.assets
	if c.offlinePage != "" && !slices.Contains(paths, c.offlinePage) {
		paths = append(slices.Clone(paths), c.offlinePage)
	}

	assets := make([]*model.Asset, 0, len(paths))
	for _, path := range paths {
		resp, err := c.get(ctx, path)
		if err != nil {
			return fmt.Errorf("缓存 %s 失败: %w", path, err)
		}
		if resp.Status < 200 || resp.Status > 299 {
			return fmt.Errorf("缓存 %s 失败: 状态码 %d", path, resp.Status)
		}
		assets = append(assets, &model.Asset{
			CacheName:   c.name,
			Path:        path,
			Status:      resp.Status,
			ContentType: resp.ContentType,
			Body:        resp.Body,
		})
	}

	if err := c.assetModel.PutAll(ctx, assets); err != nil {
		return fmt.Errorf("写入缓存失败: %w", err)
	}
	logger.Infof("[Offline] 缓存 %s 已安装 %d 个资源", c.name, len(assets))
	return nil
}

// Fetch 优先返回缓存，其次请求网络，网络不可用时返回离线页面
func (c *Cache) Fetch(ctx context.Context, path string) (*Response, error) {
	asset, err := c.assetModel.Match(ctx, path)
	if err == nil {
		return fromAsset(asset, SourceCache), nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		logger.Warnf("[Offline] 查询缓存失败: %v", err)
	}

	resp, netErr := c.get(ctx, path)
	if netErr == nil {
		return resp, nil
	}
	logger.Warnf("[Offline] 请求 %s 失败: %v", path, netErr)

	if c.offlinePage == "" {
		return nil, netErr
	}
	asset, err = c.assetModel.Match(ctx, c.offlinePage)
	if err != nil {
		return nil, fmt.Errorf("离线页面不可用: %w", errors.Join(netErr, err))
	}
	return fromAsset(asset, SourceOffline), nil
}

// Activate 删除不在保留列表中的旧缓存，返回被删除的缓存名
func (c *Cache) Activate(ctx context.Context) ([]string, error) {
	names, err := c.assetModel.CacheNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取缓存列表失败: %w", err)
	}

	var deleted []string
	for _, name := range names {
		if slices.Contains(c.allow, name) {
			continue
		}
		n, err := c.assetModel.DeleteCache(ctx, name)
		if err != nil {
			return deleted, fmt.Errorf("删除缓存 %s 失败: %w", name, err)
		}
		logger.Infof("[Offline] 已删除旧缓存 %s (%d 条)", name, n)
		deleted = append(deleted, name)
	}
	return deleted, nil
}

func (c *Cache) get(ctx context.Context, path string) (*Response, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Path:        path,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Source:      SourceNetwork,
	}, nil
}

func fromAsset(asset *model.Asset, source Source) *Response {
	return &Response{
		Path:        asset.Path,
		Status:      asset.Status,
		ContentType: asset.ContentType,
		Body:        asset.Body,
		Source:      source,
	}
}
