package container

import (
	"fmt"
	"time"

	"github.com/mautops/dailyreport-gin/internal/auth"
	"github.com/mautops/dailyreport-gin/internal/config"
	"github.com/mautops/dailyreport-gin/internal/database"
	"github.com/mautops/dailyreport-gin/internal/repository"
	"github.com/mautops/dailyreport-gin/internal/service"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、仓储、服务和认证组件
type Container struct {
	DB                *gorm.DB
	TokenValidator    *auth.TokenValidator
	Authorizer        *auth.Authorizer
	ReportService     service.ReportService
	ParameterService  service.ParameterService
	QueryService      service.QueryService
	StatisticsService service.StatisticsService
	UploadService     service.UploadService
	ExportService     service.ExportService
	AuditLogService   service.AuditLogService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewContainerWithDB(cfg, db)
}

// NewContainerWithDB 用现成的数据库连接组装容器(测试用)
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) (*Container, error) {
	// 2. 初始化认证组件
	// Issuer 未配置时跳过 JWT 验证(本地开发模式)
	var validator *auth.TokenValidator
	if cfg.Keycloak.Issuer != "" {
		validator = auth.NewTokenValidator(cfg.Keycloak.Issuer)
	}

	// OpenFGA 未配置时跳过细粒度鉴权
	var authorizer *auth.Authorizer
	if cfg.OpenFGA.APIURL != "" {
		var err error
		authorizer, err = auth.NewAuthorizer(cfg.OpenFGA.APIURL, cfg.OpenFGA.StoreID, cfg.OpenFGA.ModelID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenFGA client: %w", err)
		}
	}

	// 3. 初始化仓储
	reportRepo := repository.NewReportRepository(db)
	paramRepo := repository.NewParameterRepository(db)
	empRepo := repository.NewEmployeeRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	attRepo := repository.NewAttachmentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// 4. 初始化服务
	auditSvc := service.NewAuditLogService(auditRepo)

	return &Container{
		DB:                db,
		TokenValidator:    validator,
		Authorizer:        authorizer,
		ReportService:     service.NewReportService(reportRepo, paramRepo, empRepo, auditSvc),
		ParameterService:  service.NewParameterService(paramRepo, empRepo, roleRepo),
		QueryService:      service.NewQueryService(db),
		StatisticsService: service.NewStatisticsService(reportRepo),
		UploadService:     service.NewUploadService(&cfg.Upload, attRepo),
		ExportService:     service.NewExportService(reportRepo, paramRepo, empRepo),
		AuditLogService:   auditSvc,
	}, nil
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
