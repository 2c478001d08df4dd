package repository

import (
	"github.com/mautops/dailyreport-gin/internal/model"
	"gorm.io/gorm"
)

// EmployeeRepository 员工仓储接口
type EmployeeRepository interface {
	Save(emp *model.EmployeeModel) error
	FindByID(id string) (*model.EmployeeModel, error)
	FindByManagerID(managerID string) ([]*model.EmployeeModel, error)
}

// RoleRepository 角色仓储接口
type RoleRepository interface {
	Save(role *model.RoleModel) error
	FindByID(id string) (*model.RoleModel, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Save 保存员工
func (r *employeeRepository) Save(emp *model.EmployeeModel) error {
	return r.db.Save(emp).Error
}

// FindByID 根据 ID 查找员工
func (r *employeeRepository) FindByID(id string) (*model.EmployeeModel, error) {
	var m model.EmployeeModel
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByManagerID 查找主管的直属下属
func (r *employeeRepository) FindByManagerID(managerID string) ([]*model.EmployeeModel, error) {
	var emps []*model.EmployeeModel
	err := r.db.Where("manager_id = ?", managerID).Order("name ASC").Find(&emps).Error
	return emps, err
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓储
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// Save 保存角色
func (r *roleRepository) Save(role *model.RoleModel) error {
	return r.db.Save(role).Error
}

// FindByID 根据 ID 查找角色
func (r *roleRepository) FindByID(id string) (*model.RoleModel, error) {
	var m model.RoleModel
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
