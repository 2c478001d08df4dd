package report

import "errors"

// 错误分类
// 本地校验错误在客户端拦截,不发起请求；其余错误由服务端返回并映射回调用方
var (
	// ErrInvalidState 对已验证(不可变)报告发起编辑
	ErrInvalidState = errors.New("report is verified and immutable")

	// ErrUnknownParameter 草稿与参数集不一致(程序错误)
	ErrUnknownParameter = errors.New("unknown reporting parameter")

	// ErrInvalidURL 链接必须以 http:// 或 https:// 开头
	ErrInvalidURL = errors.New("link must start with http:// or https://")

	// ErrIndexOutOfRange 链接下标越界
	ErrIndexOutOfRange = errors.New("link index out of range")

	// ErrUpload 附件上传失败(大小/类型限制或传输错误)
	ErrUpload = errors.New("attachment upload failed")

	// ErrDuplicateReport 同一员工同一日期的报告已存在
	ErrDuplicateReport = errors.New("report already exists for this date")

	// ErrAlreadyVerified 报告已被主管验证,拒绝修改/删除
	ErrAlreadyVerified = errors.New("report has already been verified")

	// ErrNotFound 报告不存在
	ErrNotFound = errors.New("report not found")
)
