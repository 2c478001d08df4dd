package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/service"
)

// UploadController 附件上传控制器
type UploadController struct {
	uploadService service.UploadService
}

// NewUploadController 创建附件上传控制器
func NewUploadController(uploadService service.UploadService) *UploadController {
	return &UploadController{
		uploadService: uploadService,
	}
}

// Upload 上传附件
// @Summary      上传附件
// @Description  上传一个或多个文件,返回可挂载到日报的附件列表
// @Tags         附件
// @Accept       multipart/form-data
// @Produce      json
// @Param        files formData file true "附件文件,可多选"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /attachments [post]
// @Security     BearerAuth
func (c *UploadController) Upload(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		Error(ctx, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	files := form.File["files"]
	attachments, err := c.uploadService.SaveFiles(ctx.Request.Context(), userID, files)
	if err != nil {
		domainError(ctx, err)
		return
	}

	Success(ctx, attachments)
}

// Download 下载附件
// @Summary      下载附件
// @Description  按上传时返回的句柄下载附件
// @Tags         附件
// @Produce      octet-stream
// @Param        handle path string true "附件句柄"
// @Success      200  {file}  binary
// @Failure      404  {object}  ErrorResponse
// @Router       /attachments/{handle} [get]
// @Security     BearerAuth
func (c *UploadController) Download(ctx *gin.Context) {
	if _, ok := currentUser(ctx); !ok {
		return
	}

	handle := ctx.Param("handle")
	f, att, err := c.uploadService.Open(ctx.Request.Context(), handle)
	if err != nil {
		domainError(ctx, err)
		return
	}
	defer f.Close()

	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+att.FileName+`"`)
	ctx.DataFromReader(http.StatusOK, att.Size, contentType, f, nil)
}
