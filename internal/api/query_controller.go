package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/service"
	"github.com/mautops/dailyreport-gin/internal/utils"
)

// QueryController 日报查询控制器
type QueryController struct {
	queryService service.QueryService
	statsService service.StatisticsService
}

// NewQueryController 创建日报查询控制器
func NewQueryController(queryService service.QueryService, statsService service.StatisticsService) *QueryController {
	return &QueryController{
		queryService: queryService,
		statsService: statsService,
	}
}

// ListMy 列出当前员工的日报
// @Summary      获取我的日报列表
// @Description  分页获取当前员工的日报,支持日期区间过滤和排序
// @Tags         查询统计
// @Produce      json
// @Param        start_date query string false "起始日期 YYYY-MM-DD"
// @Param        end_date query string false "截止日期 YYYY-MM-DD"
// @Param        sort_by query string false "排序字段" default(report_date)
// @Param        order query string false "排序方向" Enums(asc, desc) default(desc)
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200  {object}  PaginatedResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reports/my [get]
// @Security     BearerAuth
func (c *QueryController) ListMy(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	if sortBy := ctx.Query("sort_by"); sortBy != "" {
		if err := utils.ValidateSortField(sortBy); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid sort field", err.Error())
			return
		}
	}

	filter := service.ListReportsFilter{
		SortBy:   ctx.Query("sort_by"),
		Order:    ctx.Query("order"),
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "page_size", 20),
	}

	if start := ctx.Query("start_date"); start != "" {
		if err := utils.ValidateReportDate(start); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid start date", err.Error())
			return
		}
		filter.StartDate = &start
	}
	if end := ctx.Query("end_date"); end != "" {
		if err := utils.ValidateReportDate(end); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid end date", err.Error())
			return
		}
		filter.EndDate = &end
	}

	reports, total, err := c.queryService.ListMyReports(ctx.Request.Context(), userID, &filter)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to list reports", err.Error())
		return
	}

	Paginated(ctx, reports, newPagination(filter.Page, filter.PageSize, total))
}

// ListPending 列出待验证日报
// @Summary      获取待验证日报列表
// @Description  分页获取当前主管直属下属的未验证日报
// @Tags         查询统计
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200  {object}  PaginatedResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reports/pending [get]
// @Security     BearerAuth
func (c *QueryController) ListPending(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	page := queryInt(ctx, "page", 1)
	pageSize := queryInt(ctx, "page_size", 20)

	reports, total, err := c.queryService.ListPending(ctx.Request.Context(), userID, page, pageSize)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to list pending reports", err.Error())
		return
	}

	Paginated(ctx, reports, newPagination(page, pageSize, total))
}

// ListByEmployee 列出指定员工的日报
// @Summary      获取下属日报列表
// @Description  主管分页查看指定下属的日报,需要验证人权限
// @Tags         查询统计
// @Produce      json
// @Param        employee_id path string true "员工 ID"
// @Param        start_date query string false "起始日期 YYYY-MM-DD"
// @Param        end_date query string false "截止日期 YYYY-MM-DD"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200  {object}  PaginatedResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reports/employee/{employee_id} [get]
// @Security     BearerAuth
func (c *QueryController) ListByEmployee(ctx *gin.Context) {
	employeeID := ctx.Param("employee_id")
	if err := utils.ValidateEmployeeID(employeeID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid employee ID", err.Error())
		return
	}

	filter := service.ListReportsFilter{
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "page_size", 20),
	}
	if start := ctx.Query("start_date"); start != "" {
		filter.StartDate = &start
	}
	if end := ctx.Query("end_date"); end != "" {
		filter.EndDate = &end
	}

	reports, total, err := c.queryService.ListEmployeeReports(ctx.Request.Context(), employeeID, &filter)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to list reports", err.Error())
		return
	}

	Paginated(ctx, reports, newPagination(filter.Page, filter.PageSize, total))
}

// GetMyStats 获取当月提交统计
// @Summary      获取我的提交统计
// @Description  获取当前员工当月的日报提交统计
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reports/stats/my [get]
// @Security     BearerAuth
func (c *QueryController) GetMyStats(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	stats, err := c.statsService.GetMyStats(ctx.Request.Context(), userID)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to get stats", err.Error())
		return
	}

	Success(ctx, stats)
}

// queryInt 解析整数查询参数,无效值回落到默认值
func queryInt(ctx *gin.Context, key string, def int) int {
	if v := ctx.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
