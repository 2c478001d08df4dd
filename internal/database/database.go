package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/dailyreport-gin/internal/config"
	"github.com/mautops/dailyreport-gin/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 从配置中读取连接池参数,缺省值兜底
	poolConfig := GetPoolConfig()
	if cfg.MaxIdleConns > 0 {
		poolConfig.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(poolConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(poolConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(poolConfig.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(poolConfig.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,需要手动建表
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		if err := db.AutoMigrate(
			&model.RoleModel{},
			&model.EmployeeModel{},
			&model.ParameterModel{},
			&model.DailyReportModel{},
			&model.AttachmentModel{},
			&model.AuditLogModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动创建表(使用 TEXT 替代 jsonb)
func createSQLiteTables(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS roles (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create roles table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS employees (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			role_id VARCHAR(64) NOT NULL,
			manager_id VARCHAR(64),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create employees table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reporting_parameters (
			id VARCHAR(64) PRIMARY KEY,
			role_id VARCHAR(64) NOT NULL,
			key VARCHAR(64) NOT NULL,
			label VARCHAR(255) NOT NULL,
			target REAL NOT NULL,
			type VARCHAR(16) NOT NULL,
			allow_proof BOOLEAN NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (role_id, key)
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create reporting_parameters table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_reports (
			id VARCHAR(64) PRIMARY KEY,
			employee_id VARCHAR(64) NOT NULL,
			report_date VARCHAR(10) NOT NULL,
			report_data TEXT NOT NULL,
			general_notes TEXT,
			attachments TEXT,
			is_verified BOOLEAN NOT NULL DEFAULT 0,
			verified_by VARCHAR(64),
			verified_at DATETIME,
			manager_comment TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (employee_id, report_date)
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create daily_reports table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS attachments (
			id VARCHAR(64) PRIMARY KEY,
			file_name VARCHAR(255) NOT NULL,
			file_path VARCHAR(512) NOT NULL,
			content_type VARCHAR(128),
			size INTEGER NOT NULL,
			uploaded_by VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create attachments table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			request_id VARCHAR(64),
			ip VARCHAR(45),
			user_agent TEXT,
			details TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// daily_reports 表索引
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_employee_date ON daily_reports(employee_id, report_date)").Error; err != nil {
		return fmt.Errorf("failed to create idx_reports_employee_date: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_reports_date ON daily_reports(report_date)").Error; err != nil {
		return fmt.Errorf("failed to create idx_reports_date: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_reports_verified ON daily_reports(is_verified)").Error; err != nil {
		return fmt.Errorf("failed to create idx_reports_verified: %w", err)
	}

	// reporting_parameters 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_params_role ON reporting_parameters(role_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_params_role: %w", err)
	}

	// employees 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_employees_manager ON employees(manager_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_employees_manager: %w", err)
	}

	// attachments 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_attachments_path ON attachments(file_path)").Error; err != nil {
		return fmt.Errorf("failed to create idx_attachments_path: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_attachments_uploader ON attachments(uploaded_by)").Error; err != nil {
		return fmt.Errorf("failed to create idx_attachments_uploader: %w", err)
	}

	// audit_logs 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_resource: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_user_id: %w", err)
	}

	// PostgreSQL 特定的 GIN 索引
	if dialector == "postgres" {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_reports_data_gin ON daily_reports USING GIN (report_data)").Error; err != nil {
			return fmt.Errorf("failed to create idx_reports_data_gin: %w", err)
		}
	}

	return nil
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}
