package util

const DateFormat = "2006-01-02"

const (
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimePDF         = "application/pdf"
	MimeText        = "text/plain"
	MimeZip         = "application/zip"
	MimeOctetStream = "application/octet-stream"
)

var (
	// docx 本质是 zip 包，DetectContentType 识别为 application/zip
	AllowedMaterialMimeTypes = []string{MimePDF, MimeText, MimeZip}
)
