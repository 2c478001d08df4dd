package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/dailyreport-gin/internal/config"
	"github.com/mautops/dailyreport-gin/internal/metrics"
	"github.com/mautops/dailyreport-gin/internal/model"
	"github.com/mautops/dailyreport-gin/internal/repository"
	"github.com/mautops/dailyreport-gin/internal/report"
)

// UploadService 附件上传服务接口
type UploadService interface {
	// SaveFiles 存储上传文件并登记,返回可挂载到日报的附件列表
	SaveFiles(ctx context.Context, uploadedBy string, files []*multipart.FileHeader) ([]report.Attachment, error)
	// Open 打开已登记的附件文件
	Open(ctx context.Context, filePath string) (io.ReadCloser, *model.AttachmentModel, error)
}

// uploadService 附件上传服务实现
type uploadService struct {
	cfg     *config.UploadConfig
	attRepo repository.AttachmentRepository
}

// NewUploadService 创建附件上传服务
func NewUploadService(cfg *config.UploadConfig, attRepo repository.AttachmentRepository) UploadService {
	return &uploadService{
		cfg:     cfg,
		attRepo: attRepo,
	}
}

// SaveFiles 存储上传文件并登记
// 任一文件超限或落盘失败时整体失败,已写入的文件清理掉
func (s *uploadService) SaveFiles(ctx context.Context, uploadedBy string, files []*multipart.FileHeader) ([]report.Attachment, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", report.ErrUpload)
	}
	if s.cfg.MaxFilesPerOp > 0 && len(files) > s.cfg.MaxFilesPerOp {
		return nil, fmt.Errorf("%w: at most %d files per upload", report.ErrUpload, s.cfg.MaxFilesPerOp)
	}

	if err := os.MkdirAll(s.cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrUpload, err)
	}

	maxBytes := int64(s.cfg.MaxSizeMB) * 1024 * 1024
	attachments := make([]report.Attachment, 0, len(files))
	written := make([]string, 0, len(files))

	cleanup := func() {
		for _, p := range written {
			_ = os.Remove(filepath.Join(s.cfg.Dir, p))
		}
	}

	for _, fh := range files {
		if maxBytes > 0 && fh.Size > maxBytes {
			cleanup()
			return nil, fmt.Errorf("%w: %s exceeds %d MB", report.ErrUpload, fh.Filename, s.cfg.MaxSizeMB)
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !s.extAllowed(ext) {
			cleanup()
			return nil, fmt.Errorf("%w: file type %q not allowed", report.ErrUpload, ext)
		}

		handle := uuid.New().String() + ext
		if err := s.writeFile(fh, filepath.Join(s.cfg.Dir, handle)); err != nil {
			cleanup()
			return nil, fmt.Errorf("%w: %v", report.ErrUpload, err)
		}
		written = append(written, handle)

		att := &model.AttachmentModel{
			ID:          uuid.New().String(),
			FileName:    filepath.Base(fh.Filename),
			FilePath:    handle,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			UploadedBy:  uploadedBy,
			CreatedAt:   time.Now(),
		}
		if err := s.attRepo.Save(att); err != nil {
			cleanup()
			return nil, fmt.Errorf("%w: %v", report.ErrUpload, err)
		}

		metrics.RecordAttachmentUploaded()
		attachments = append(attachments, report.Attachment{
			FileName: att.FileName,
			FilePath: att.FilePath,
		})
	}

	return attachments, nil
}

// Open 打开已登记的附件文件
func (s *uploadService) Open(ctx context.Context, filePath string) (io.ReadCloser, *model.AttachmentModel, error) {
	att, err := s.attRepo.FindByPath(filePath)
	if err != nil {
		return nil, nil, report.ErrNotFound
	}

	// 句柄是服务端生成的 uuid 文件名,拒绝任何路径成分
	if filepath.Base(att.FilePath) != att.FilePath {
		return nil, nil, report.ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.cfg.Dir, att.FilePath))
	if err != nil {
		return nil, nil, report.ErrNotFound
	}
	return f, att, nil
}

// extAllowed 检查扩展名是否在允许列表中,列表为空时放行
func (s *uploadService) extAllowed(ext string) bool {
	if len(s.cfg.AllowedExts) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedExts {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// writeFile 将上传文件写入目标路径
func (s *uploadService) writeFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
