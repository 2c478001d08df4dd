package service

import (
	"context"
	"fmt"

	"github.com/mautops/dailyreport-gin/internal/repository"
	"github.com/mautops/dailyreport-gin/internal/report"
)

// ParameterService 汇报指标服务接口
type ParameterService interface {
	// GetMyParams 获取员工角色的指标集,按配置顺序
	GetMyParams(ctx context.Context, employeeID string) (*report.ParamsResult, error)
}

// parameterService 汇报指标服务实现
type parameterService struct {
	paramRepo repository.ParameterRepository
	empRepo   repository.EmployeeRepository
	roleRepo  repository.RoleRepository
}

// NewParameterService 创建汇报指标服务
func NewParameterService(
	paramRepo repository.ParameterRepository,
	empRepo repository.EmployeeRepository,
	roleRepo repository.RoleRepository,
) ParameterService {
	return &parameterService{
		paramRepo: paramRepo,
		empRepo:   empRepo,
		roleRepo:  roleRepo,
	}
}

// GetMyParams 获取员工角色的指标集
func (s *parameterService) GetMyParams(ctx context.Context, employeeID string) (*report.ParamsResult, error) {
	emp, err := s.empRepo.FindByID(employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}

	role, err := s.roleRepo.FindByID(emp.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	models, err := s.paramRepo.FindByRoleID(emp.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}

	return &report.ParamsResult{
		Parameters: toParameters(models),
		RoleName:   role.Name,
	}, nil
}
