package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound 缓存中没有对应资源
var ErrNotFound = errors.New("缓存资源不存在")

const assetSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	cache_name   TEXT     NOT NULL,
	path         TEXT     NOT NULL,
	status       INTEGER  NOT NULL,
	content_type TEXT     NOT NULL DEFAULT '',
	body         BLOB     NOT NULL,
	stored_at    DATETIME NOT NULL,
	PRIMARY KEY (cache_name, path)
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_path ON cache_entries (path);
`

const upsertAsset = `
INSERT INTO cache_entries (cache_name, path, status, content_type, body, stored_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (cache_name, path) DO UPDATE SET
	status = excluded.status,
	content_type = excluded.content_type,
	body = excluded.body,
	stored_at = excluded.stored_at`

// Asset 一条缓存的响应
type Asset struct {
	CacheName   string
	Path        string
	Status      int
	ContentType string
	Body        []byte
	StoredAt    time.Time
}

type AssetModel struct {
	db *sql.DB
}

func NewAssetModel(db *sql.DB) *AssetModel {
	return &AssetModel{db: db}
}

// Migrate 创建表结构
func (m *AssetModel) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, assetSchema); err != nil {
		return fmt.Errorf("创建缓存表失败: %w", err)
	}
	return nil
}

// Put 写入或覆盖缓存资源
func (m *AssetModel) Put(ctx context.Context, asset *Asset) error {
	storedAt := asset.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}
	body := asset.Body
	if body == nil {
		body = []byte{}
	}

	_, err := m.db.ExecContext(ctx, upsertAsset,
		asset.CacheName, asset.Path, asset.Status, asset.ContentType, body, storedAt.UTC())
	return err
}

// PutAll 在一个事务中写入多条资源，任何一条失败则全部回滚
func (m *AssetModel) PutAll(ctx context.Context, assets []*Asset) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertAsset)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, asset := range assets {
		body := asset.Body
		if body == nil {
			body = []byte{}
		}
		if _, err = stmt.ExecContext(ctx, asset.CacheName, asset.Path, asset.Status, asset.ContentType, body, now); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", asset.Path, err)
		}
	}
	return tx.Commit()
}

// Get 在指定缓存中查找资源
func (m *AssetModel) Get(ctx context.Context, cacheName, path string) (*Asset, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT cache_name, path, status, content_type, body, stored_at
		FROM cache_entries WHERE cache_name = ? AND path = ?`, cacheName, path)
	return scanAsset(row)
}

// Match 在所有缓存中查找资源，取最近写入的一条
func (m *AssetModel) Match(ctx context.Context, path string) (*Asset, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT cache_name, path, status, content_type, body, stored_at
		FROM cache_entries WHERE path = ?
		ORDER BY stored_at DESC LIMIT 1`, path)
	return scanAsset(row)
}

// CacheNames 所有缓存名
func (m *AssetModel) CacheNames(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT DISTINCT cache_name FROM cache_entries ORDER BY cache_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteCache 删除整个缓存，返回删除的条数
func (m *AssetModel) DeleteCache(ctx context.Context, cacheName string) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_name = ?`, cacheName)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*Asset, error) {
	var asset Asset
	err := row.Scan(&asset.CacheName, &asset.Path, &asset.Status, &asset.ContentType, &asset.Body, &asset.StoredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
