package model

import (
	"errors"
	"time"
)

// AttachmentModel 上传文件登记
// FilePath 是返回给客户端的不透明句柄
type AttachmentModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	FilePath    string    `gorm:"type:varchar(512);not null;index"`
	ContentType string    `gorm:"type:varchar(128)"`
	Size        int64     `gorm:"not null"`
	UploadedBy  string    `gorm:"type:varchar(64);not null;index"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (AttachmentModel) TableName() string {
	return "attachments"
}

// Validate 验证附件模型
func (m *AttachmentModel) Validate() error {
	if m.ID == "" {
		return errors.New("attachment ID is required")
	}
	if m.FileName == "" {
		return errors.New("file name is required")
	}
	if m.FilePath == "" {
		return errors.New("file path is required")
	}
	if m.UploadedBy == "" {
		return errors.New("uploader ID is required")
	}
	return nil
}
