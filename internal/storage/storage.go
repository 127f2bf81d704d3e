package storage

import "mime/multipart"

// Storage 抽象第三方媒体托管。UploadFile 返回可公开访问的URL
// 和一个用于后续删除的资源句柄
type Storage interface {
	UploadFile(file *multipart.FileHeader, path string) (url string, assetID string, err error)
	DeleteFile(assetID string) error
}
