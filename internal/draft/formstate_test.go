package draft_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mautops/dailyreport-gin/internal/draft"
	"github.com/mautops/dailyreport-gin/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore 记录调用并按预设返回的内存存储
type fakeStore struct {
	submitCalls int
	updateCalls int
	deleteCalls int

	submitErr error
	updateErr error
	deleteErr error
	uploadErr error

	lastSubmit *draft.SubmitRequest
	lastUpdate *draft.UpdateRequest
	lastUpdID  string

	uploaded []report.Attachment
}

func (s *fakeStore) GetMyParams(ctx context.Context) (*report.ParamsResult, error) {
	return &report.ParamsResult{Parameters: testParams(), RoleName: "销售"}, nil
}

func (s *fakeStore) GetToday(ctx context.Context) (*report.DailyReport, error) {
	return nil, nil
}

func (s *fakeStore) GetMyReports(ctx context.Context, startDate, endDate string) ([]*report.DailyReport, error) {
	return nil, nil
}

func (s *fakeStore) GetMyStats(ctx context.Context) (*report.Stats, error) {
	return &report.Stats{}, nil
}

func (s *fakeStore) Submit(ctx context.Context, req *draft.SubmitRequest) (*report.DailyReport, error) {
	s.submitCalls++
	s.lastSubmit = req
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &report.DailyReport{
		ID:           "r-new",
		EmployeeID:   "emp-1",
		ReportDate:   req.ReportDate,
		ReportData:   req.ReportData,
		GeneralNotes: req.GeneralNotes,
		Attachments:  req.Attachments,
	}, nil
}

func (s *fakeStore) Update(ctx context.Context, id string, req *draft.UpdateRequest) (*report.DailyReport, error) {
	s.updateCalls++
	s.lastUpdID = id
	s.lastUpdate = req
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &report.DailyReport{
		ID:           id,
		EmployeeID:   "emp-1",
		ReportDate:   time.Now().Format(report.DateLayout),
		ReportData:   req.ReportData,
		GeneralNotes: req.GeneralNotes,
		Attachments:  req.Attachments,
	}, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.deleteCalls++
	return s.deleteErr
}

func (s *fakeStore) UploadAttachments(ctx context.Context, files []draft.UploadFile) ([]report.Attachment, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return s.uploaded, nil
}

func testParams() []report.Parameter {
	return []report.Parameter{
		{Key: "calls", Label: "电话量", Target: 20, Type: report.TypeNumber, AllowProof: true},
		{Key: "revenue", Label: "营收", Target: 50000, Type: report.TypeCurrency},
	}
}

func todayReport() *report.DailyReport {
	return &report.DailyReport{
		ID:         "r-today",
		EmployeeID: "emp-1",
		ReportDate: time.Now().Format(report.DateLayout),
		ReportData: report.ReportData{"calls": {Value: 9, Links: []string{}}},
	}
}

func newForm(store draft.Store) *draft.FormState {
	f := draft.New(store)
	f.Initialize(testParams())
	return f
}

// TestFormState_InitialMode 测试初始状态为新建模式
func TestFormState_InitialMode(t *testing.T) {
	f := newForm(&fakeStore{})
	assert.Equal(t, draft.ModeNew, f.Mode())
	assert.Nil(t, f.ActiveReport())
	assert.Equal(t, 0.0, f.Draft().ReportData["calls"].Value)
}

// TestFormState_LoadToday 测试加载今天的报告进入编辑模式
func TestFormState_LoadToday(t *testing.T) {
	f := newForm(&fakeStore{})
	f.LoadToday(todayReport())

	assert.Equal(t, draft.ModeEditToday, f.Mode())
	assert.Equal(t, 9.0, f.Draft().ReportData["calls"].Value)
	// 缺失的参数补零
	assert.Equal(t, 0.0, f.Draft().ReportData["revenue"].Value)
}

// TestFormState_LoadTodayNil 测试无今日报告时保持新建模式
func TestFormState_LoadTodayNil(t *testing.T) {
	f := newForm(&fakeStore{})
	f.LoadToday(nil)
	assert.Equal(t, draft.ModeNew, f.Mode())
}

// TestFormState_SetValueUnknownKey 测试未知参数报错
func TestFormState_SetValueUnknownKey(t *testing.T) {
	f := newForm(&fakeStore{})
	err := f.SetValue("retired", 1)
	assert.ErrorIs(t, err, report.ErrUnknownParameter)
}

// TestFormState_AddLinkValidation 测试链接协议校验
func TestFormState_AddLinkValidation(t *testing.T) {
	f := newForm(&fakeStore{})

	assert.NoError(t, f.AddLink("calls", "https://crm.example.com/123"))
	assert.NoError(t, f.AddLink("calls", "http://wiki.internal/page"))
	assert.ErrorIs(t, f.AddLink("calls", "ftp://files.example.com/x"), report.ErrInvalidURL)
	assert.ErrorIs(t, f.AddLink("calls", "javascript:alert(1)"), report.ErrInvalidURL)

	// 失败的添加不影响已有链接
	assert.Len(t, f.Draft().ReportData["calls"].Links, 2)
}

// TestFormState_RemoveLink 测试链接删除与下标越界
func TestFormState_RemoveLink(t *testing.T) {
	f := newForm(&fakeStore{})
	require.NoError(t, f.AddLink("calls", "https://a.example.com"))
	require.NoError(t, f.AddLink("calls", "https://b.example.com"))
	require.NoError(t, f.AddLink("calls", "https://c.example.com"))

	assert.ErrorIs(t, f.RemoveLink("calls", 3), report.ErrIndexOutOfRange)
	assert.ErrorIs(t, f.RemoveLink("calls", -1), report.ErrIndexOutOfRange)

	require.NoError(t, f.RemoveLink("calls", 1))
	assert.Equal(t, []string{"https://a.example.com", "https://c.example.com"}, f.Draft().ReportData["calls"].Links)
}

// TestFormState_CommitNew 测试新建模式提交走 Submit
func TestFormState_CommitNew(t *testing.T) {
	store := &fakeStore{}
	f := newForm(store)
	require.NoError(t, f.SetValue("calls", 15))

	saved, err := f.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.submitCalls)
	assert.Equal(t, 0, store.updateCalls)
	assert.Equal(t, 15.0, store.lastSubmit.ReportData["calls"].Value)

	// 提交成功后绑定到新报告,进入编辑模式
	assert.Equal(t, draft.ModeEditToday, f.Mode())
	assert.Equal(t, saved.ID, f.ActiveReport().ID)
}

// TestFormState_CommitEdit 测试编辑模式提交走 Update
func TestFormState_CommitEdit(t *testing.T) {
	store := &fakeStore{}
	f := newForm(store)
	f.LoadToday(todayReport())
	require.NoError(t, f.SetValue("calls", 11))

	_, err := f.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, store.submitCalls)
	assert.Equal(t, 1, store.updateCalls)
	assert.Equal(t, "r-today", store.lastUpdID)
}

// TestFormState_CommitFailureKeepsDraft 测试提交失败时草稿原样保留
func TestFormState_CommitFailureKeepsDraft(t *testing.T) {
	store := &fakeStore{submitErr: report.ErrDuplicateReport}
	f := newForm(store)
	require.NoError(t, f.SetValue("calls", 8))
	f.SetGeneralNotes("今天路况差")

	_, err := f.Commit(context.Background())
	assert.ErrorIs(t, err, report.ErrDuplicateReport)

	assert.Equal(t, draft.ModeNew, f.Mode())
	assert.Equal(t, 8.0, f.Draft().ReportData["calls"].Value)
	assert.Equal(t, "今天路况差", f.Draft().GeneralNotes)
}

// TestFormState_BeginEditHistorical 测试进入历史编辑模式
func TestFormState_BeginEditHistorical(t *testing.T) {
	store := &fakeStore{}
	f := newForm(store)
	f.LoadToday(todayReport())

	hist := &report.DailyReport{
		ID:         "r-old",
		EmployeeID: "emp-1",
		ReportDate: "2026-08-12",
		ReportData: report.ReportData{"revenue": {Value: 30000}},
	}
	require.NoError(t, f.BeginEditHistorical(hist))

	assert.Equal(t, draft.ModeEditHistorical, f.Mode())
	assert.Equal(t, "2026-08-12", f.Draft().ReportDate)
	assert.Equal(t, 30000.0, f.Draft().ReportData["revenue"].Value)

	// 提交后回到今天的上下文
	_, err := f.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r-old", store.lastUpdID)
	assert.Equal(t, draft.ModeEditToday, f.Mode())
	assert.Equal(t, "r-today", f.ActiveReport().ID)
}

// TestFormState_BeginEditVerified 测试已验证报告拒绝编辑且状态不变
func TestFormState_BeginEditVerified(t *testing.T) {
	f := newForm(&fakeStore{})
	f.LoadToday(todayReport())

	verified := &report.DailyReport{ID: "r-v", ReportDate: "2026-08-10", IsVerified: true}
	err := f.BeginEditHistorical(verified)
	assert.ErrorIs(t, err, report.ErrInvalidState)

	assert.Equal(t, draft.ModeEditToday, f.Mode())
	assert.Equal(t, "r-today", f.ActiveReport().ID)
}

// TestFormState_CancelEdit 测试放弃历史编辑回到今天
func TestFormState_CancelEdit(t *testing.T) {
	f := newForm(&fakeStore{})
	f.LoadToday(todayReport())

	hist := &report.DailyReport{ID: "r-old", ReportDate: "2026-08-12", ReportData: report.ReportData{}}
	require.NoError(t, f.BeginEditHistorical(hist))

	f.CancelEdit()
	assert.Equal(t, draft.ModeEditToday, f.Mode())
	assert.Equal(t, "r-today", f.ActiveReport().ID)
}

// TestFormState_CancelEditNoToday 测试无今日报告时放弃编辑回到全零草稿
func TestFormState_CancelEditNoToday(t *testing.T) {
	f := newForm(&fakeStore{})

	hist := &report.DailyReport{ID: "r-old", ReportDate: "2026-08-12", ReportData: report.ReportData{}}
	require.NoError(t, f.BeginEditHistorical(hist))

	f.CancelEdit()
	assert.Equal(t, draft.ModeNew, f.Mode())
	assert.Nil(t, f.ActiveReport())
	assert.Equal(t, 0.0, f.Draft().ReportData["calls"].Value)
}

// TestFormState_AddAttachment 测试附件上传累积
func TestFormState_AddAttachment(t *testing.T) {
	store := &fakeStore{uploaded: []report.Attachment{
		{FileName: "proof.png", FilePath: "h-1"},
	}}
	f := newForm(store)

	key := "calls"
	err := f.AddAttachment(context.Background(), []draft.UploadFile{{Name: "proof.png"}}, &key)
	require.NoError(t, err)

	require.Len(t, f.Draft().Attachments, 1)
	require.NotNil(t, f.Draft().Attachments[0].ParamKey)
	assert.Equal(t, "calls", *f.Draft().Attachments[0].ParamKey)
}

// TestFormState_AddAttachmentFailure 测试上传失败不影响已有附件
func TestFormState_AddAttachmentFailure(t *testing.T) {
	store := &fakeStore{uploaded: []report.Attachment{{FileName: "a.png", FilePath: "h-1"}}}
	f := newForm(store)
	require.NoError(t, f.AddAttachment(context.Background(), []draft.UploadFile{{Name: "a.png"}}, nil))

	store.uploadErr = errors.New("file too large")
	err := f.AddAttachment(context.Background(), []draft.UploadFile{{Name: "big.bin"}}, nil)
	assert.ErrorIs(t, err, report.ErrUpload)
	assert.Len(t, f.Draft().Attachments, 1)
}

// TestFormState_RemoveAttachment 测试按结构相等删除首个附件
func TestFormState_RemoveAttachment(t *testing.T) {
	store := &fakeStore{uploaded: []report.Attachment{
		{FileName: "a.png", FilePath: "h-1"},
		{FileName: "b.png", FilePath: "h-2"},
	}}
	f := newForm(store)
	require.NoError(t, f.AddAttachment(context.Background(), nil, nil))

	f.RemoveAttachment(report.Attachment{FileName: "a.png", FilePath: "h-1"})
	require.Len(t, f.Draft().Attachments, 1)
	assert.Equal(t, "b.png", f.Draft().Attachments[0].FileName)

	// 不存在时无动作
	f.RemoveAttachment(report.Attachment{FileName: "missing.png", FilePath: "h-x"})
	assert.Len(t, f.Draft().Attachments, 1)
}

// TestFormState_RemoveToday 测试删除今日报告后复位为新建模式
func TestFormState_RemoveToday(t *testing.T) {
	store := &fakeStore{}
	f := newForm(store)
	f.LoadToday(todayReport())
	require.NoError(t, f.SetValue("calls", 3))

	require.NoError(t, f.Remove(context.Background(), "r-today"))

	assert.Equal(t, 1, store.deleteCalls)
	assert.Equal(t, draft.ModeNew, f.Mode())
	assert.Nil(t, f.ActiveReport())
	assert.Equal(t, 0.0, f.Draft().ReportData["calls"].Value)
}

// TestFormState_RemoveOther 测试删除历史报告不影响今天的上下文
func TestFormState_RemoveOther(t *testing.T) {
	store := &fakeStore{}
	f := newForm(store)
	f.LoadToday(todayReport())

	require.NoError(t, f.Remove(context.Background(), "r-old"))
	assert.Equal(t, draft.ModeEditToday, f.Mode())
	assert.Equal(t, "r-today", f.ActiveReport().ID)
}

// TestFormState_RemoveFailure 测试删除失败时状态不变
func TestFormState_RemoveFailure(t *testing.T) {
	store := &fakeStore{deleteErr: report.ErrAlreadyVerified}
	f := newForm(store)
	f.LoadToday(todayReport())

	err := f.Remove(context.Background(), "r-today")
	assert.ErrorIs(t, err, report.ErrAlreadyVerified)
	assert.Equal(t, draft.ModeEditToday, f.Mode())
}

// TestFormState_RemoveLinkKeepsLoadedReport 测试草稿链接编辑不污染已加载的报告
func TestFormState_RemoveLinkKeepsLoadedReport(t *testing.T) {
	today := todayReport()
	today.ReportData["calls"] = report.ParamEntry{
		Value: 9,
		Links: []string{"https://a.example.com", "https://b.example.com"},
	}

	f := newForm(&fakeStore{})
	f.LoadToday(today)

	require.NoError(t, f.RemoveLink("calls", 0))
	assert.Equal(t, []string{"https://b.example.com"}, f.Draft().ReportData["calls"].Links)

	// 原报告不受草稿编辑影响,放弃编辑恢复完整链接
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, today.ReportData["calls"].Links)
	f.CancelEdit()
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, f.Draft().ReportData["calls"].Links)
}

// TestFormState_CommitEditStaleVerified 测试编辑提交撞上已验证报告时草稿保留
func TestFormState_CommitEditStaleVerified(t *testing.T) {
	store := &fakeStore{updateErr: report.ErrAlreadyVerified}
	f := newForm(store)
	f.LoadToday(todayReport())
	require.NoError(t, f.SetValue("calls", 14))
	f.SetGeneralNotes("下午补录")

	_, err := f.Commit(context.Background())
	assert.ErrorIs(t, err, report.ErrAlreadyVerified)

	assert.Equal(t, 1, store.updateCalls)
	assert.Equal(t, draft.ModeEditToday, f.Mode())
	assert.Equal(t, 14.0, f.Draft().ReportData["calls"].Value)
	assert.Equal(t, "下午补录", f.Draft().GeneralNotes)
}

// TestFormState_RemoveHistoricalActive 测试删除正在编辑的历史报告后回到今天
func TestFormState_RemoveHistoricalActive(t *testing.T) {
	store := &fakeStore{}
	f := newForm(store)
	f.LoadToday(todayReport())

	hist := &report.DailyReport{ID: "r-old", ReportDate: "2026-08-12", ReportData: report.ReportData{}}
	require.NoError(t, f.BeginEditHistorical(hist))

	require.NoError(t, f.Remove(context.Background(), "r-old"))
	assert.Equal(t, 1, store.deleteCalls)
	assert.Equal(t, draft.ModeEditToday, f.Mode())
	assert.Equal(t, "r-today", f.ActiveReport().ID)
}
