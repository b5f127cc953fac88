// Package remote forwards saved note content to the owning backend resource.
// Delivery is best effort: the local save has already been committed and is
// never rolled back; failures are logged and surfaced only as a sync status.
//
// Package remote 将已保存的笔记内容转发给后端资源。
// 尽力投递：本地保存已提交且绝不回滚，失败仅记录日志并体现在同步状态上。
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/propline/entity-notes-engine/internal/domain"
	"github.com/propline/entity-notes-engine/pkg/code"
	"github.com/propline/entity-notes-engine/pkg/logger"
	"github.com/propline/entity-notes-engine/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// endpoint 单个实体类型的远端接口描述
type endpoint struct {
	method string
	path   string // 含一个 %s 占位的路径模板
	field  string // 请求体中承载笔记内容的字段名
}

// endpoints 按实体类型的远端接口表
// 空内容统一以 JSON null 表达"已清空"，四种类型一致（见设计决策）
var endpoints = map[domain.EntityType]endpoint{
	domain.EntityLandlord:  {method: http.MethodPut, path: "/landlords/%s", field: "notes"},
	domain.EntityApplicant: {method: http.MethodPut, path: "/applicants/%s", field: "notes"},
	domain.EntityVendor:    {method: http.MethodPut, path: "/vendors/%s", field: "notes"},
	domain.EntityProperty:  {method: http.MethodPatch, path: "/properties/%s", field: "management_notes"},
}

// Config 远端同步配置
type Config struct {
	// BaseURL 后端根地址
	BaseURL string
	// Timeout 单次请求超时
	Timeout time.Duration
}

// Client 远端同步客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	// gone 已确认远端不存在的实体（404 为终态，不再投递）
	mu   sync.Mutex
	gone map[string]struct{}
}

// NewClient 创建远端同步客户端
// logger 为 nil 时使用 nop logger
func NewClient(cfg Config, l *zap.Logger) *Client {
	if l == nil {
		l = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     l,
		gone:       make(map[string]struct{}),
	}
}

// Push forwards record.Content to the backend on a detached goroutine and
// never blocks or fails the caller. done, when non-nil, receives the outcome
// so a UI can keep a non-blocking "not synced" indicator.
// Push 在独立 goroutine 上转发内容，绝不阻塞调用方或使其失败。
// done 非 nil 时收到投递结果，供界面维护非阻塞的"未同步"提示。
func (c *Client) Push(record *domain.NoteRecord, done func(error)) {
	go func() {
		err := c.push(context.Background(), record)
		if done != nil {
			done(err)
		}
	}()
}

// PushSync 同步投递一次，供测试与关闭前的最后一次尝试使用
func (c *Client) PushSync(ctx context.Context, record *domain.NoteRecord) error {
	return c.push(ctx, record)
}

// push 执行单次投递
func (c *Client) push(ctx context.Context, record *domain.NoteRecord) error {
	ep, ok := endpoints[record.EntityType]
	if !ok {
		return code.ErrorInvalidEntityType
	}

	key := record.Key()
	c.mu.Lock()
	_, isGone := c.gone[key]
	c.mu.Unlock()
	if isGone {
		metrics.RemoteSyncs.WithLabelValues(string(record.EntityType), metrics.OutcomeSkipped).Inc()
		return code.ErrorRemoteGone
	}

	syncID := uuid.NewString()
	url := c.baseURL + fmt.Sprintf(ep.path, record.EntityID)

	// 空内容以 null 表达"已清空"，而不是空字符串
	var content *string
	if record.Content != "" {
		content = &record.Content
	}
	body, err := json.Marshal(map[string]*string{ep.field: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteSyncs.WithLabelValues(string(record.EntityType), metrics.OutcomeFailed).Inc()
		c.logger.Warn("remote sync request failed",
			zap.String(logger.FieldSyncID, syncID),
			zap.String(logger.FieldEntityType, string(record.EntityType)),
			zap.String(logger.FieldEntityID, record.EntityID),
			zap.String(logger.FieldEndpoint, url),
			zap.Duration(logger.FieldDuration, time.Since(start)),
			zap.Error(err))
		return code.ErrorRemoteSync.WithDetails(err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		metrics.RemoteSyncs.WithLabelValues(string(record.EntityType), metrics.OutcomeOK).Inc()
		c.logger.Debug("remote sync ok",
			zap.String(logger.FieldSyncID, syncID),
			zap.String(logger.FieldEntityType, string(record.EntityType)),
			zap.String(logger.FieldEntityID, record.EntityID),
			zap.Int(logger.FieldStatus, resp.StatusCode),
			zap.Duration(logger.FieldDuration, time.Since(start)))
		return nil

	case resp.StatusCode == http.StatusNotFound:
		// 实体已不存在，终态：记录后不再对该 ID 投递
		c.mu.Lock()
		c.gone[key] = struct{}{}
		c.mu.Unlock()
		metrics.RemoteSyncs.WithLabelValues(string(record.EntityType), metrics.OutcomeGone).Inc()
		c.logger.Warn("remote entity gone, sync disabled for id",
			zap.String(logger.FieldSyncID, syncID),
			zap.String(logger.FieldEntityType, string(record.EntityType)),
			zap.String(logger.FieldEntityID, record.EntityID),
			zap.String(logger.FieldEndpoint, url))
		return code.ErrorRemoteGone

	default:
		metrics.RemoteSyncs.WithLabelValues(string(record.EntityType), metrics.OutcomeFailed).Inc()
		c.logger.Warn("remote sync rejected",
			zap.String(logger.FieldSyncID, syncID),
			zap.String(logger.FieldEntityType, string(record.EntityType)),
			zap.String(logger.FieldEntityID, record.EntityID),
			zap.String(logger.FieldEndpoint, url),
			zap.Int(logger.FieldStatus, resp.StatusCode))
		return code.ErrorRemoteSync.WithDetails(fmt.Sprintf("status %d", resp.StatusCode))
	}
}

// IsGone reports whether pushes for the entity were terminally disabled by a 404
// IsGone 返回该实体的投递是否已因 404 进入终态
func (c *Client) IsGone(entityType domain.EntityType, entityID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.gone[string(entityType)+":"+entityID]
	return ok
}
