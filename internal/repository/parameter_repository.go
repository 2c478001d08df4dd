package repository

import (
	"github.com/mautops/dailyreport-gin/internal/model"
	"gorm.io/gorm"
)

// ParameterRepository 汇报指标仓储接口
type ParameterRepository interface {
	Save(param *model.ParameterModel) error
	FindByID(id string) (*model.ParameterModel, error)
	FindByRoleID(roleID string) ([]*model.ParameterModel, error)
	Delete(id string) error
}

// parameterRepository 汇报指标仓储实现
type parameterRepository struct {
	db *gorm.DB
}

// NewParameterRepository 创建汇报指标仓储
func NewParameterRepository(db *gorm.DB) ParameterRepository {
	return &parameterRepository{db: db}
}

// Save 保存指标
func (r *parameterRepository) Save(param *model.ParameterModel) error {
	return r.db.Save(param).Error
}

// FindByID 根据 ID 查找指标
func (r *parameterRepository) FindByID(id string) (*model.ParameterModel, error) {
	var m model.ParameterModel
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByRoleID 查找角色的全部指标,按配置顺序
func (r *parameterRepository) FindByRoleID(roleID string) ([]*model.ParameterModel, error) {
	var params []*model.ParameterModel
	err := r.db.Where("role_id = ?", roleID).Order("sort_order ASC, key ASC").Find(&params).Error
	return params, err
}

// Delete 删除指标
func (r *parameterRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.ParameterModel{}).Error
}
