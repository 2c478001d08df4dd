package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/service"
	"github.com/mautops/dailyreport-gin/internal/utils"
)

// ExportController 日报导出控制器
type ExportController struct {
	exportService service.ExportService
}

// NewExportController 创建日报导出控制器
func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

// ExportMonth 导出某月日报
// @Summary      导出月度日报
// @Description  将当前员工某月的日报导出为 xlsx 工作簿,month 缺省为当月
// @Tags         查询统计
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        month query string false "月份 YYYY-MM"
// @Success      200  {file}  binary
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reports/export [get]
// @Security     BearerAuth
func (c *ExportController) ExportMonth(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	month := ctx.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if err := utils.ValidateMonth(month); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid month", err.Error())
		return
	}

	f, err := c.exportService.ExportMonth(ctx.Request.Context(), userID, month)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to export reports", err.Error())
		return
	}

	filename := fmt.Sprintf("reports-%s.xlsx", month)
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(ctx.Writer); err != nil {
		_ = ctx.Error(err)
	}
}
