package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mautops/dailyreport-gin/internal/draft"
	"github.com/mautops/dailyreport-gin/internal/report"
)

// Config 客户端配置
type Config struct {
	BaseURL string // 服务端地址,如 http://localhost:8080
	// Token Keycloak 颁发的 JWT,设置后走 Bearer 认证
	Token string
	// EmployeeID 本地开发模式下的身份,Token 为空时经 X-Employee-ID 头传递
	EmployeeID string
	Timeout    time.Duration
}

// Client 报告存储的 HTTP 客户端,实现 draft.Store
type Client struct {
	baseURL    string
	token      string
	employeeID string
	httpClient *http.Client
}

var _ draft.Store = (*Client)(nil)

// New 创建客户端
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		employeeID: cfg.EmployeeID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope 服务端统一响应格式
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

// GetMyParams 获取当前员工的指标集
func (c *Client) GetMyParams(ctx context.Context) (*report.ParamsResult, error) {
	var result report.ParamsResult
	if err := c.getJSON(ctx, "/api/v1/params/my", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetToday 获取今天的日报,未提交时返回 (nil, nil)
func (c *Client) GetToday(ctx context.Context) (*report.DailyReport, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/reports/today", nil, "")
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var r report.DailyReport
	if err := json.Unmarshal(env.Data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

// GetMyReports 获取某个日期区间内的日报,按日期倒序
func (c *Client) GetMyReports(ctx context.Context, startDate, endDate string) ([]*report.DailyReport, error) {
	query := url.Values{}
	if startDate != "" {
		query.Set("start_date", startDate)
	}
	if endDate != "" {
		query.Set("end_date", endDate)
	}
	// 一个区间内的日报数量有限,单页取回
	query.Set("page_size", "500")

	var reports []*report.DailyReport
	if err := c.getJSON(ctx, "/api/v1/reports/my", query, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetMyStats 获取当月提交统计
func (c *Client) GetMyStats(ctx context.Context) (*report.Stats, error) {
	var stats report.Stats
	if err := c.getJSON(ctx, "/api/v1/reports/stats/my", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Submit 提交新日报
func (c *Client) Submit(ctx context.Context, req *draft.SubmitRequest) (*report.DailyReport, error) {
	var r report.DailyReport
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/reports", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Update 更新日报
func (c *Client) Update(ctx context.Context, id string, req *draft.UpdateRequest) (*report.DailyReport, error) {
	var r report.DailyReport
	if err := c.sendJSON(ctx, http.MethodPut, "/api/v1/reports/"+url.PathEscape(id), req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete 删除日报
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/reports/"+url.PathEscape(id), nil, "")
	return err
}

// UploadAttachments 上传附件
func (c *Client) UploadAttachments(ctx context.Context, files []draft.UploadFile) ([]report.Attachment, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", report.ErrUpload, err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, fmt.Errorf("%w: %v", report.ErrUpload, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrUpload, err)
	}

	env, err := c.do(ctx, http.MethodPost, "/api/v1/attachments", body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var attachments []report.Attachment
	if err := json.Unmarshal(env.Data, &attachments); err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrUpload, err)
	}
	return attachments, nil
}

// Export 下载某月日报的 xlsx 工作簿,month 形如 "2026-08"
func (c *Client) Export(ctx context.Context, month string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/reports/export?month="+url.QueryEscape(month), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.employeeID != "" {
		req.Header.Set("X-Employee-ID", c.employeeID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
			return nil, mapError(resp.StatusCode, &env)
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// getJSON 发起 GET 请求并解码 data 字段
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	env, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// sendJSON 发送 JSON 请求体并解码 data 字段
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	env, err := c.do(ctx, method, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// do 执行请求,非 2xx 响应映射为领域错误
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.employeeID != "" {
		req.Header.Set("X-Employee-ID", c.employeeID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, mapError(resp.StatusCode, &env)
	}
	return &env, nil
}

// mapError 将 HTTP 错误响应映射回领域错误
func mapError(status int, env *envelope) error {
	msg := env.Message
	switch status {
	case http.StatusNotFound:
		return report.ErrNotFound
	case http.StatusConflict:
		if strings.Contains(msg, "already exists") {
			return report.ErrDuplicateReport
		}
		if strings.Contains(msg, "immutable") {
			return report.ErrInvalidState
		}
		return report.ErrAlreadyVerified
	case http.StatusBadRequest:
		if strings.Contains(msg, "upload") {
			return fmt.Errorf("%w: %s", report.ErrUpload, env.Detail)
		}
	}
	if env.Detail != "" {
		return fmt.Errorf("server error (%d): %s: %s", status, msg, env.Detail)
	}
	return fmt.Errorf("server error (%d): %s", status, msg)
}
