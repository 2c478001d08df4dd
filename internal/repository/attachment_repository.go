package repository

import (
	"github.com/mautops/dailyreport-gin/internal/model"
	"gorm.io/gorm"
)

// AttachmentRepository 附件仓储接口
type AttachmentRepository interface {
	Save(att *model.AttachmentModel) error
	FindByID(id string) (*model.AttachmentModel, error)
	FindByPath(path string) (*model.AttachmentModel, error)
	FindByUploader(uploadedBy string) ([]*model.AttachmentModel, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository 创建附件仓储
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

// Save 保存附件记录
func (r *attachmentRepository) Save(att *model.AttachmentModel) error {
	return r.db.Save(att).Error
}

// FindByID 根据 ID 查找附件
func (r *attachmentRepository) FindByID(id string) (*model.AttachmentModel, error) {
	var m model.AttachmentModel
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByPath 根据文件句柄查找附件
func (r *attachmentRepository) FindByPath(path string) (*model.AttachmentModel, error) {
	var m model.AttachmentModel
	if err := r.db.Where("file_path = ?", path).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByUploader 查找某用户上传的全部附件
func (r *attachmentRepository) FindByUploader(uploadedBy string) ([]*model.AttachmentModel, error) {
	var atts []*model.AttachmentModel
	err := r.db.Where("uploaded_by = ?", uploadedBy).Order("created_at DESC").Find(&atts).Error
	return atts, err
}
