package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Error:   "请求格式错误",
		Details: "invalid request format",
	}

	ErrInternal = ErrorResponse{
		Error: "服务器内部错误",
	}

	ErrUploadFailed = ErrorResponse{
		Error: "上传失败",
	}

	ErrExportFailed = ErrorResponse{
		Error: "导出失败",
	}

	ErrAuthenticationRequired = ErrorResponse{
		Error: "需要登录",
	}

	ErrAdminRequired = ErrorResponse{
		Error: "需要管理员权限",
	}
)
