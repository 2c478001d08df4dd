package draft

import (
	"context"
	"io"

	"github.com/mautops/dailyreport-gin/internal/report"
)

// SubmitRequest 创建日报请求
type SubmitRequest struct {
	ReportDate   string              `json:"report_date"`
	ReportData   report.ReportData   `json:"report_data"`
	GeneralNotes string              `json:"general_notes"`
	Attachments  []report.Attachment `json:"attachments"`
}

// UpdateRequest 更新日报请求
type UpdateRequest struct {
	ReportData   report.ReportData   `json:"report_data"`
	GeneralNotes string              `json:"general_notes"`
	Attachments  []report.Attachment `json:"attachments"`
}

// UploadFile 待上传文件
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// Store 报告存储接口(服务端 REST API 的抽象)
type Store interface {
	GetMyParams(ctx context.Context) (*report.ParamsResult, error)
	// GetToday 返回 (nil, nil) 表示今天尚未提交
	GetToday(ctx context.Context) (*report.DailyReport, error)
	GetMyReports(ctx context.Context, startDate, endDate string) ([]*report.DailyReport, error)
	GetMyStats(ctx context.Context) (*report.Stats, error)
	Submit(ctx context.Context, req *SubmitRequest) (*report.DailyReport, error)
	Update(ctx context.Context, id string, req *UpdateRequest) (*report.DailyReport, error)
	Delete(ctx context.Context, id string) error
	UploadAttachments(ctx context.Context, files []UploadFile) ([]report.Attachment, error)
}
