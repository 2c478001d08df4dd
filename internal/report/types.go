package report

import (
	"encoding/json"
	"time"
)

// DateLayout 报告日期格式,一人一天一份报告
const DateLayout = "2006-01-02"

// ParameterType 指标展示类型
type ParameterType string

const (
	TypeNumber     ParameterType = "number"
	TypePercentage ParameterType = "percentage"
	TypeCurrency   ParameterType = "currency"
)

// Parameter 汇报指标定义(来源于员工角色,客户端只读)
type Parameter struct {
	Key        string        `json:"key"`         // 稳定标识,角色内唯一
	Label      string        `json:"label"`       // 展示名称
	Target     float64       `json:"target"`      // 当日目标值
	Type       ParameterType `json:"type"`        // 展示类型,仅影响格式化
	AllowProof bool          `json:"allow_proof"` // 是否允许挂载证明附件
}

// ParamEntry 单个指标的填报内容
type ParamEntry struct {
	Value float64  `json:"value"`
	Notes string   `json:"notes"`
	Links []string `json:"links"` // 用户提供的 URL,保持插入顺序
}

// UnmarshalJSON 兼容旧数据:历史记录可能只存了一个裸数字
func (e *ParamEntry) UnmarshalJSON(data []byte) error {
	// 先尝试按裸数字解析
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		e.Value = n
		e.Notes = ""
		e.Links = []string{}
		return nil
	}

	// 按完整对象解析,缺失字段取零值
	var raw struct {
		Value float64  `json:"value"`
		Notes string   `json:"notes"`
		Links []string `json:"links"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Value = raw.Value
	e.Notes = raw.Notes
	if raw.Links == nil {
		e.Links = []string{}
	} else {
		e.Links = raw.Links
	}
	return nil
}

// ReportData 指标 key 到填报内容的映射
type ReportData map[string]ParamEntry

// Attachment 附件,ParamKey 非空时是某个指标的证明材料
type Attachment struct {
	FileName string  `json:"file_name"`
	FilePath string  `json:"file_path"` // 上传接口返回的不透明句柄
	ParamKey *string `json:"param_key"` // nil = 通用附件
}

// Equal 附件结构相等(删除附件时按首个相等项匹配)
func (a Attachment) Equal(b Attachment) bool {
	if a.FileName != b.FileName || a.FilePath != b.FilePath {
		return false
	}
	if (a.ParamKey == nil) != (b.ParamKey == nil) {
		return false
	}
	return a.ParamKey == nil || *a.ParamKey == *b.ParamKey
}

// DailyReport 日报聚合,由服务端持有,客户端仅在提交时构造
type DailyReport struct {
	ID             string       `json:"id"`
	EmployeeID     string       `json:"employee_id"`
	ReportDate     string       `json:"report_date"` // YYYY-MM-DD
	ReportData     ReportData   `json:"report_data"`
	GeneralNotes   string       `json:"general_notes"`
	Attachments    []Attachment `json:"attachments"`
	IsVerified     bool         `json:"is_verified"`
	VerifiedBy     *string      `json:"verified_by"`
	VerifiedAt     *time.Time   `json:"verified_at"`
	ManagerComment string       `json:"manager_comment"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ParamsResult 参数集响应
type ParamsResult struct {
	Parameters []Parameter `json:"parameters"`
	RoleName   string      `json:"role_name"`
}

// Stats 月度提交统计
type Stats struct {
	TotalReports    int64   `json:"total_reports"`
	VerifiedReports int64   `json:"verified_reports"`
	PendingReports  int64   `json:"pending_reports"`
	WorkingDays     int     `json:"working_days"`
	SubmissionRate  float64 `json:"submission_rate"` // 百分比
	Month           string  `json:"month"`           // YYYY-MM
}
