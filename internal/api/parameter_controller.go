package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/service"
)

// ParameterController 汇报指标控制器
type ParameterController struct {
	paramService service.ParameterService
}

// NewParameterController 创建汇报指标控制器
func NewParameterController(paramService service.ParameterService) *ParameterController {
	return &ParameterController{
		paramService: paramService,
	}
}

// GetMyParams 获取当前员工的指标集
// @Summary      获取汇报指标
// @Description  获取当前员工角色配置的汇报指标集与角色名
// @Tags         汇报指标
// @Produce      json
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /params/my [get]
// @Security     BearerAuth
func (c *ParameterController) GetMyParams(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	result, err := c.paramService.GetMyParams(ctx.Request.Context(), userID)
	if err != nil {
		domainError(ctx, err)
		return
	}

	Success(ctx, result)
}
