package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/dailyreport-gin/internal/model"
	"github.com/mautops/dailyreport-gin/internal/repository"
)

// 审计上下文键
type auditCtxKey string

const (
	ctxKeyRequestID auditCtxKey = "request_id"
	ctxKeyIP        auditCtxKey = "ip"
	ctxKeyUserAgent auditCtxKey = "user_agent"
)

// WithRequestInfo 将请求信息注入上下文,供审计日志使用
func WithRequestInfo(ctx context.Context, requestID, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyRequestID, requestID)
	ctx = context.WithValue(ctx, ctxKeyIP, ip)
	ctx = context.WithValue(ctx, ctxKeyUserAgent, userAgent)
	return ctx
}

// AuditLogService 审计日志服务
type AuditLogService interface {
	RecordAction(ctx context.Context, userID string, action string, resourceType string, resourceID string, details interface{}) error
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
	}
}

// RecordAction 记录操作审计日志
func (s *auditLogService) RecordAction(
	ctx context.Context,
	userID string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	// 未配置审计仓储时静默跳过(测试场景)
	if s.auditRepo == nil {
		return nil
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	auditLog := &model.AuditLogModel{
		ID:           uuid.New().String(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    ctxString(ctx, ctxKeyRequestID),
		IP:           ctxString(ctx, ctxKeyIP),
		UserAgent:    ctxString(ctx, ctxKeyUserAgent),
		Details:      detailsJSON,
		CreatedAt:    time.Now(),
	}

	return s.auditRepo.Save(auditLog)
}

// ctxString 从上下文取字符串值,缺失时返回空串
func ctxString(ctx context.Context, key auditCtxKey) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
