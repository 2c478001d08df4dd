package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mautops/dailyreport-gin/internal/report"
)

// Mode 表单所处的编辑上下文
type Mode string

const (
	ModeNew            Mode = "new"             // 今天尚未提交
	ModeEditToday      Mode = "edit_today"      // 编辑今天已提交的报告
	ModeEditHistorical Mode = "edit_historical" // 显式编辑某份历史未验证报告
)

// ErrOperationInFlight 已有提交/删除在途,拒绝并发触发
var ErrOperationInFlight = errors.New("another operation is in progress")

// Draft 当前可编辑内容
type Draft struct {
	ReportData   report.ReportData
	GeneralNotes string
	Attachments  []report.Attachment
	ReportDate   string // 仅在 new 模式下有意义
}

// FormState 日报表单的唯一事实来源
// 把页面上分散的局部状态收敛为一个带显式 mode 标签的状态机,
// 避免从多个可空字段组合推断当前上下文
type FormState struct {
	store Store

	params     []report.Parameter
	mode       Mode
	activeRep  *report.DailyReport // new 模式下为 nil
	todayRep   *report.DailyReport // 今天的报告,cancelEdit 的回退目标
	draft      Draft
	committing bool
	now        func() time.Time
}

// New 创建表单状态机
func New(store Store) *FormState {
	return &FormState{
		store: store,
		mode:  ModeNew,
		now:   time.Now,
	}
}

// Mode 当前模式
func (f *FormState) Mode() Mode { return f.mode }

// Draft 当前草稿(调用方只读)
func (f *FormState) Draft() *Draft { return &f.draft }

// ActiveReport 当前绑定的报告,new 模式下为 nil
func (f *FormState) ActiveReport() *report.DailyReport { return f.activeRep }

// Parameters 当前参数集
func (f *FormState) Parameters() []report.Parameter { return f.params }

// Initialize 按参数集重置草稿为全零状态
// 参数集首次加载时调用一次,放弃编辑时再次调用
func (f *FormState) Initialize(params []report.Parameter) {
	f.params = params
	f.draft = Draft{
		ReportData:   report.Zero(params),
		GeneralNotes: "",
		Attachments:  []report.Attachment{},
		ReportDate:   f.today(),
	}
}

// LoadToday 绑定今天的报告;r 为 nil 时保持 new 模式和零值草稿
func (f *FormState) LoadToday(r *report.DailyReport) {
	f.todayRep = r
	if r == nil {
		f.mode = ModeNew
		f.activeRep = nil
		return
	}
	f.mode = ModeEditToday
	f.activeRep = r
	f.loadDraftFrom(r)
}

// BeginEditHistorical 进入历史报告编辑模式
// 已验证的报告不可变,返回 ErrInvalidState 且不改变任何状态
func (f *FormState) BeginEditHistorical(r *report.DailyReport) error {
	if r.IsVerified {
		return report.ErrInvalidState
	}
	f.mode = ModeEditHistorical
	f.activeRep = r
	f.loadDraftFrom(r)
	f.draft.ReportDate = r.ReportDate
	return nil
}

// CancelEdit 放弃编辑,回到今天的上下文。总是合法。
func (f *FormState) CancelEdit() {
	f.LoadToday(f.todayRep)
	if f.todayRep == nil {
		f.Initialize(f.params)
	}
}

// SetValue 修改指标数值
func (f *FormState) SetValue(key string, value float64) error {
	e, ok := f.draft.ReportData[key]
	if !ok {
		return fmt.Errorf("%w: %s", report.ErrUnknownParameter, key)
	}
	e.Value = value
	f.draft.ReportData[key] = e
	return nil
}

// SetNotes 修改指标备注
func (f *FormState) SetNotes(key string, notes string) error {
	e, ok := f.draft.ReportData[key]
	if !ok {
		return fmt.Errorf("%w: %s", report.ErrUnknownParameter, key)
	}
	e.Notes = notes
	f.draft.ReportData[key] = e
	return nil
}

// AddLink 追加链接,保持既有链接顺序,允许重复
func (f *FormState) AddLink(key string, url string) error {
	e, ok := f.draft.ReportData[key]
	if !ok {
		return fmt.Errorf("%w: %s", report.ErrUnknownParameter, key)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return report.ErrInvalidURL
	}
	e.Links = append(e.Links, url)
	f.draft.ReportData[key] = e
	return nil
}

// RemoveLink 删除指定下标的链接,其余链接相对顺序不变
func (f *FormState) RemoveLink(key string, index int) error {
	e, ok := f.draft.ReportData[key]
	if !ok {
		return fmt.Errorf("%w: %s", report.ErrUnknownParameter, key)
	}
	if index < 0 || index >= len(e.Links) {
		return report.ErrIndexOutOfRange
	}
	e.Links = append(e.Links[:index], e.Links[index+1:]...)
	f.draft.ReportData[key] = e
	return nil
}

// SetGeneralNotes 修改整体备注
func (f *FormState) SetGeneralNotes(notes string) {
	f.draft.GeneralNotes = notes
}

// AddAttachment 上传文件并追加到草稿
// paramKey 非 nil 时作为该指标的证明材料。多个上传可以背靠背发起,
// 成功的逐个累积,单个失败不回滚已追加的附件。
func (f *FormState) AddAttachment(ctx context.Context, files []UploadFile, paramKey *string) error {
	atts, err := f.store.UploadAttachments(ctx, files)
	if err != nil {
		return fmt.Errorf("%w: %v", report.ErrUpload, err)
	}
	for _, a := range atts {
		a.ParamKey = paramKey
		f.draft.Attachments = append(f.draft.Attachments, a)
	}
	return nil
}

// RemoveAttachment 删除首个结构相等的附件
func (f *FormState) RemoveAttachment(att report.Attachment) {
	for i, a := range f.draft.Attachments {
		if a.Equal(att) {
			f.draft.Attachments = append(f.draft.Attachments[:i], f.draft.Attachments[i+1:]...)
			return
		}
	}
}

// Commit 提交草稿
// new 模式走 submit,其余模式走 update。失败时草稿原样保留,
// 错误返回给调用方展示;成功后按 initialize/loadToday 规则复位。
func (f *FormState) Commit(ctx context.Context) (*report.DailyReport, error) {
	if f.committing {
		return nil, ErrOperationInFlight
	}
	f.committing = true
	defer func() { f.committing = false }()

	var saved *report.DailyReport
	var err error

	if f.mode == ModeNew || f.activeRep == nil {
		saved, err = f.store.Submit(ctx, &SubmitRequest{
			ReportDate:   f.draft.ReportDate,
			ReportData:   f.draft.ReportData,
			GeneralNotes: f.draft.GeneralNotes,
			Attachments:  f.draft.Attachments,
		})
	} else {
		saved, err = f.store.Update(ctx, f.activeRep.ID, &UpdateRequest{
			ReportData:   f.draft.ReportData,
			GeneralNotes: f.draft.GeneralNotes,
			Attachments:  f.draft.Attachments,
		})
	}
	if err != nil {
		return nil, err
	}

	if f.mode == ModeEditHistorical {
		// 历史编辑完成,回到今天的上下文
		f.CancelEdit()
		return saved, nil
	}
	f.LoadToday(saved)
	return saved, nil
}

// Remove 删除指定报告。已验证的报告服务端会拒绝。
func (f *FormState) Remove(ctx context.Context, reportID string) error {
	if f.committing {
		return ErrOperationInFlight
	}
	f.committing = true
	defer func() { f.committing = false }()

	if err := f.store.Delete(ctx, reportID); err != nil {
		return err
	}
	if f.todayRep != nil && f.todayRep.ID == reportID {
		f.todayRep = nil
		f.mode = ModeNew
		f.activeRep = nil
		f.Initialize(f.params)
	} else if f.mode == ModeEditHistorical && f.activeRep != nil && f.activeRep.ID == reportID {
		// 正在编辑的历史报告被删除,回到今天的上下文
		f.CancelEdit()
	}
	return nil
}

// loadDraftFrom 按归一化规则从服务端记录填充草稿
func (f *FormState) loadDraftFrom(r *report.DailyReport) {
	atts := make([]report.Attachment, len(r.Attachments))
	copy(atts, r.Attachments)
	f.draft = Draft{
		ReportData:   report.Normalize(f.params, r.ReportData),
		GeneralNotes: r.GeneralNotes,
		Attachments:  atts,
		ReportDate:   r.ReportDate,
	}
}

func (f *FormState) today() string {
	return f.now().Format(report.DateLayout)
}
