package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/auth"
	"gorm.io/gorm"
)

// HealthController 健康检查控制器
type HealthController struct {
	db         *gorm.DB
	authorizer *auth.Authorizer
}

// NewHealthController 创建健康检查控制器
func NewHealthController(db *gorm.DB, authorizer *auth.Authorizer) *HealthController {
	return &HealthController{
		db:         db,
		authorizer: authorizer,
	}
}

// Check 健康检查
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	// 检查数据库连接
	if c.db != nil {
		if err := c.checkDatabase(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	// 检查 OpenFGA 连接
	if c.authorizer != nil {
		if err := c.checkOpenFGA(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["openfga"] = "unhealthy: " + err.Error()
		} else {
			checks["openfga"] = "healthy"
		}
	} else {
		checks["openfga"] = "not configured"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// checkDatabase 检查数据库连接
func (c *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

// checkOpenFGA 检查 OpenFGA 连接
// 对不存在的资源做一次权限查询,网络错误视为不健康,其余错误说明连接正常
func (c *HealthController) checkOpenFGA(ctx context.Context) error {
	_, err := c.authorizer.CheckPermission(ctx, "health-check-user", "viewer", "employee", "health-check-resource")
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "context deadline exceeded") || strings.Contains(msg, "connection refused") {
			return err
		}
		return nil
	}
	return nil
}
