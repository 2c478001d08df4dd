package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/auth"
	"github.com/mautops/dailyreport-gin/internal/report"
	"github.com/mautops/dailyreport-gin/internal/service"
	"github.com/mautops/dailyreport-gin/internal/utils"
)

// ReportController 日报控制器
type ReportController struct {
	reportService service.ReportService
	authorizer    *auth.Authorizer
}

// NewReportController 创建日报控制器
// authorizer 可以为 nil,此时验证接口只受角色中间件保护
func NewReportController(reportService service.ReportService, authorizer *auth.Authorizer) *ReportController {
	return &ReportController{
		reportService: reportService,
		authorizer:    authorizer,
	}
}

// SubmitReportBody 提交日报请求体
type SubmitReportBody struct {
	ReportDate   string              `json:"report_date" binding:"required"`
	ReportData   report.ReportData   `json:"report_data" binding:"required"`
	GeneralNotes string              `json:"general_notes"`
	Attachments  []report.Attachment `json:"attachments"`
}

// UpdateReportBody 更新日报请求体
type UpdateReportBody struct {
	ReportData   report.ReportData   `json:"report_data" binding:"required"`
	GeneralNotes string              `json:"general_notes"`
	Attachments  []report.Attachment `json:"attachments"`
}

// VerifyReportBody 验证日报请求体
type VerifyReportBody struct {
	Comment string `json:"comment"`
}

// currentUser 取认证中间件写入的用户 ID
func currentUser(ctx *gin.Context) (string, bool) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return "", false
	}
	return userID, true
}

// validateReportID 验证日报 ID 并返回错误响应（如果无效）
func (c *ReportController) validateReportID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateReportID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid report ID", err.Error())
		return false
	}
	return true
}

// Submit 提交日报
// @Summary      提交日报
// @Description  为当前员工提交指定日期的日报,同一日期只允许一份
// @Tags         日报管理
// @Accept       json
// @Produce      json
// @Param        request body SubmitReportBody true "日报内容"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /reports [post]
// @Security     BearerAuth
func (c *ReportController) Submit(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var body SubmitReportBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := utils.ValidateReportDate(body.ReportDate); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid report date", err.Error())
		return
	}

	r, err := c.reportService.Submit(auditContext(ctx), &service.SubmitReportRequest{
		EmployeeID:   userID,
		ReportDate:   body.ReportDate,
		ReportData:   body.ReportData,
		GeneralNotes: body.GeneralNotes,
		Attachments:  body.Attachments,
	})
	if err != nil {
		domainError(ctx, err)
		return
	}

	Success(ctx, r)
}

// Update 更新日报
// @Summary      更新日报
// @Description  更新当前员工的一份未验证日报
// @Tags         日报管理
// @Accept       json
// @Produce      json
// @Param        id path string true "日报 ID"
// @Param        request body UpdateReportBody true "日报内容"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /reports/{id} [put]
// @Security     BearerAuth
func (c *ReportController) Update(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !c.validateReportID(ctx, id) {
		return
	}

	var body UpdateReportBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	r, err := c.reportService.Update(auditContext(ctx), userID, id, &service.UpdateReportRequest{
		ReportData:   body.ReportData,
		GeneralNotes: body.GeneralNotes,
		Attachments:  body.Attachments,
	})
	if err != nil {
		domainError(ctx, err)
		return
	}

	Success(ctx, r)
}

// Delete 删除日报
// @Summary      删除日报
// @Description  删除当前员工的一份未验证日报
// @Tags         日报管理
// @Produce      json
// @Param        id path string true "日报 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /reports/{id} [delete]
// @Security     BearerAuth
func (c *ReportController) Delete(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !c.validateReportID(ctx, id) {
		return
	}

	if err := c.reportService.Delete(auditContext(ctx), userID, id); err != nil {
		domainError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// GetToday 获取今天的日报
// @Summary      获取今天的日报
// @Description  获取当前员工今天的日报,未提交时 data 为 null
// @Tags         日报管理
// @Produce      json
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Router       /reports/today [get]
// @Security     BearerAuth
func (c *ReportController) GetToday(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	r, err := c.reportService.GetToday(ctx.Request.Context(), userID)
	if err != nil {
		domainError(ctx, err)
		return
	}

	Success(ctx, r)
}

// Verify 验证日报
// @Summary      验证日报
// @Description  主管验证下属日报,验证后日报不可再修改
// @Tags         日报管理
// @Accept       json
// @Produce      json
// @Param        id path string true "日报 ID"
// @Param        request body VerifyReportBody true "验证评语"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /reports/{id}/verify [post]
// @Security     BearerAuth
func (c *ReportController) Verify(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !c.validateReportID(ctx, id) {
		return
	}

	var body VerifyReportBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	// 细粒度鉴权:验证人必须持有该员工的 verifier 关系
	if c.authorizer != nil {
		target, err := c.reportService.GetByID(ctx.Request.Context(), id)
		if err != nil {
			domainError(ctx, err)
			return
		}
		allowed, err := c.authorizer.CheckPermission(ctx.Request.Context(), userID, "verifier", "employee", target.EmployeeID)
		if err != nil {
			Error(ctx, http.StatusInternalServerError, "permission check failed", err.Error())
			return
		}
		if !allowed {
			Error(ctx, http.StatusForbidden, "forbidden", "verifier relation required")
			return
		}
	}

	r, err := c.reportService.Verify(auditContext(ctx), &service.VerifyReportRequest{
		VerifierID: userID,
		ReportID:   id,
		Comment:    body.Comment,
	})
	if err != nil {
		domainError(ctx, err)
		return
	}

	Success(ctx, r)
}

// auditContext 将请求信息注入上下文,供审计日志使用
func auditContext(ctx *gin.Context) context.Context {
	return service.WithRequestInfo(ctx.Request.Context(),
		ctx.GetString("request_id"),
		ctx.ClientIP(),
		ctx.Request.UserAgent(),
	)
}
