package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/api"
	"github.com/mautops/dailyreport-gin/internal/config"
	"github.com/mautops/dailyreport-gin/internal/container"
	"github.com/mautops/dailyreport-gin/internal/database"
	"github.com/mautops/dailyreport-gin/internal/model"
	"github.com/mautops/dailyreport-gin/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// setupRouter 构建带内存数据库的完整路由
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := config.Default()
	cfg.Upload.Dir = t.TempDir()

	ctr, err := container.NewContainerWithDB(cfg, db)
	require.NoError(t, err)

	return api.SetupRoutes(cfg, ctr), db
}

// seedAPIData 写入角色、指标和员工
func seedAPIData(t *testing.T, db *gorm.DB) {
	now := time.Now()
	require.NoError(t, db.Create(&model.RoleModel{
		ID: "role-sales", Name: "销售", CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&model.ParameterModel{
		ID: "p-calls", RoleID: "role-sales", Key: "calls", Label: "电话量",
		Target: 20, Type: "number", AllowProof: true, SortOrder: 1,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&model.EmployeeModel{
		ID: "emp-1", Name: "张三", RoleID: "role-sales", ManagerID: "mgr-1",
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&model.EmployeeModel{
		ID: "emp-2", Name: "李四", RoleID: "role-sales", ManagerID: "mgr-1",
		CreatedAt: now, UpdatedAt: now,
	}).Error)
}

// doJSON 发送带身份头的 JSON 请求
func doJSON(router *gin.Engine, method, path, employeeID string, body interface{}, roles string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if employeeID != "" {
		req.Header.Set("X-Employee-ID", employeeID)
	}
	if roles != "" {
		req.Header.Set("X-Employee-Roles", roles)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// submitBody 标准提交请求体
func submitBody(date string) map[string]interface{} {
	return map[string]interface{}{
		"report_date": date,
		"report_data": map[string]interface{}{
			"calls": map[string]interface{}{"value": 15, "notes": "含大客户"},
		},
	}
}

// TestRoutes_Health 测试健康检查
func TestRoutes_Health(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, "GET", "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "database")
}

// TestRoutes_NotFound 测试未匹配路由返回 JSON 404
func TestRoutes_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, "GET", "/api/v1/unknown", "emp-1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

// TestRoutes_Unauthenticated 测试缺失身份时拒绝访问
func TestRoutes_Unauthenticated(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, "GET", "/api/v1/reports/today", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestRoutes_GetMyParams 测试获取指标集
func TestRoutes_GetMyParams(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	w := doJSON(router, "GET", "/api/v1/params/my", "emp-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int                 `json:"code"`
		Data report.ParamsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "销售", resp.Data.RoleName)
	require.Len(t, resp.Data.Parameters, 1)
	assert.Equal(t, "calls", resp.Data.Parameters[0].Key)
}

// TestRoutes_SubmitAndToday 测试提交与查询今日日报
func TestRoutes_SubmitAndToday(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	// 提交前今日为空
	w := doJSON(router, "GET", "/api/v1/reports/today", "emp-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var empty struct {
		Data *report.DailyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &empty))
	assert.Nil(t, empty.Data)

	today := time.Now().Format(report.DateLayout)
	w = doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody(today), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/v1/reports/today", "emp-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Data *report.DailyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Data)
	assert.Equal(t, today, got.Data.ReportDate)
	assert.Equal(t, 15.0, got.Data.ReportData["calls"].Value)
}

// TestRoutes_SubmitDuplicate 测试重复提交返回 409
func TestRoutes_SubmitDuplicate(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	w := doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody("2026-08-28"), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody("2026-08-28"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

// TestRoutes_SubmitValidation 测试请求体校验
func TestRoutes_SubmitValidation(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	// 缺失必填字段
	w := doJSON(router, "POST", "/api/v1/reports", "emp-1", map[string]interface{}{
		"report_date": "2026-08-28",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 非法日期
	w = doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody("28/08/2026"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestRoutes_UpdateAndDelete 测试更新与删除
func TestRoutes_UpdateAndDelete(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	w := doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody("2026-08-28"), "")
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Data report.DailyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID

	// 他人更新返回 404
	w = doJSON(router, "PUT", "/api/v1/reports/"+id, "emp-2", map[string]interface{}{
		"report_data": map[string]interface{}{"calls": map[string]interface{}{"value": 1}},
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 本人更新成功
	w = doJSON(router, "PUT", "/api/v1/reports/"+id, "emp-1", map[string]interface{}{
		"report_data":   map[string]interface{}{"calls": map[string]interface{}{"value": 19}},
		"general_notes": "下午补录",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Data report.DailyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 19.0, updated.Data.ReportData["calls"].Value)

	// 删除
	w = doJSON(router, "DELETE", "/api/v1/reports/"+id, "emp-1", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "DELETE", "/api/v1/reports/"+id, "emp-1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestRoutes_VerifyFlow 测试主管验证流程
func TestRoutes_VerifyFlow(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	w := doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody("2026-08-28"), "")
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Data report.DailyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID

	// 非主管角色被拒绝
	w = doJSON(router, "POST", "/api/v1/reports/"+id+"/verify", "mgr-1", map[string]interface{}{
		"comment": "确认",
	}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 主管验证成功
	w = doJSON(router, "POST", "/api/v1/reports/"+id+"/verify", "mgr-1", map[string]interface{}{
		"comment": "本周表现不错",
	}, "manager")
	require.Equal(t, http.StatusOK, w.Code)
	var verified struct {
		Data report.DailyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verified))
	assert.True(t, verified.Data.IsVerified)
	assert.Equal(t, "本周表现不错", verified.Data.ManagerComment)

	// 重复验证返回 409
	w = doJSON(router, "POST", "/api/v1/reports/"+id+"/verify", "mgr-1", map[string]interface{}{}, "manager")
	assert.Equal(t, http.StatusConflict, w.Code)

	// 验证后员工不可再修改
	w = doJSON(router, "PUT", "/api/v1/reports/"+id, "emp-1", map[string]interface{}{
		"report_data": map[string]interface{}{"calls": map[string]interface{}{"value": 1}},
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "verified")
}

// TestRoutes_ListMyAndPending 测试列表接口
func TestRoutes_ListMyAndPending(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	for _, date := range []string{"2026-08-25", "2026-08-26", "2026-08-27"} {
		w := doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody(date), "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(router, "GET", "/api/v1/reports/my?start_date=2026-08-26&page=1&page_size=10", "emp-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Data       []report.DailyReport `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, int64(2), listResp.Pagination.Total)

	// 非法排序字段
	w = doJSON(router, "GET", "/api/v1/reports/my?sort_by=employee_id", "emp-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 待验证列表需要主管角色
	w = doJSON(router, "GET", "/api/v1/reports/pending", "mgr-1", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, "GET", "/api/v1/reports/pending", "mgr-1", nil, "manager")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, int64(3), listResp.Pagination.Total)
}

// TestRoutes_ListByEmployee 测试主管查看指定员工日报
func TestRoutes_ListByEmployee(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	w := doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody("2026-08-28"), "")
	require.Equal(t, http.StatusOK, w.Code)

	// OpenFGA 未配置时中间件放行,按主管角色控制
	w = doJSON(router, "GET", "/api/v1/reports/employee/emp-1", "mgr-1", nil, "manager")
	require.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, int64(1), listResp.Pagination.Total)
}

// TestRoutes_Stats 测试统计接口
func TestRoutes_Stats(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	today := time.Now().Format(report.DateLayout)
	w := doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody(today), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/v1/reports/stats/my", "emp-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data report.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.TotalReports)
	assert.Equal(t, time.Now().Format("2006-01"), resp.Data.Month)
}

// TestRoutes_AttachmentRoundTrip 测试附件上传下载
func TestRoutes_AttachmentRoundTrip(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "proof.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Employee-ID", "emp-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []report.Attachment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "proof.png", resp.Data[0].FileName)

	w = doJSON(router, "GET", "/api/v1/attachments/"+resp.Data[0].FilePath, "emp-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

// TestRoutes_Export 测试月度导出
func TestRoutes_Export(t *testing.T) {
	router, db := setupRouter(t)
	seedAPIData(t, db)

	w := doJSON(router, "POST", "/api/v1/reports", "emp-1", submitBody("2026-08-28"), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/v1/reports/export?month=2026-08", "emp-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheet")
	assert.NotEmpty(t, w.Body.Bytes())

	// 非法月份
	w = doJSON(router, "GET", "/api/v1/reports/export?month=bad", "emp-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestRoutes_SecurityHeaders 测试安全响应头
func TestRoutes_SecurityHeaders(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, "GET", "/health", "", nil, "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

// TestRoutes_RequestIDEcho 测试透传请求 ID
func TestRoutes_RequestIDEcho(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))
}
