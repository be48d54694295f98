package service

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
)

// PhotoFile 待存储的照片
type PhotoFile struct {
	FileName    string
	ContentType string
	Ext         string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// NewPhotoFromBytes 由内存数据构造照片（种子数据与测试使用）
func NewPhotoFromBytes(name, contentType string, data []byte) PhotoFile {
	return PhotoFile{
		FileName:    name,
		ContentType: contentType,
		Ext:         strings.ToLower(filepath.Ext(name)),
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// UploadService 照片上传校验服务
type UploadService struct {
	cfg config.UploadConfig
}

// NewUploadService 创建上传服务
func NewUploadService(cfg config.UploadConfig) *UploadService {
	return &UploadService{cfg: cfg}
}

// PreparePhotos 校验一批上传文件
func (s *UploadService) PreparePhotos(files []*multipart.FileHeader) ([]PhotoFile, error) {
	if len(files) == 0 {
		return nil, invalid(ErrPhotoRequired, "")
	}
	if s.cfg.MaxFilesPerRequest > 0 && len(files) > s.cfg.MaxFilesPerRequest {
		return nil, invalid(ErrUploadTooMany, fmt.Sprintf("max %d", s.cfg.MaxFilesPerRequest))
	}
	result := make([]PhotoFile, 0, len(files))
	for _, file := range files {
		photo, err := s.PreparePhoto(file)
		if err != nil {
			return nil, err
		}
		result = append(result, photo)
	}
	return result, nil
}

// PreparePhoto 校验单个上传文件（大小、扩展名、嗅探类型）
func (s *UploadService) PreparePhoto(file *multipart.FileHeader) (PhotoFile, error) {
	if file == nil {
		return PhotoFile{}, invalid(ErrPhotoRequired, "")
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return PhotoFile{}, invalid(ErrUploadTooLarge, fmt.Sprintf("max %d MB", s.cfg.MaxSize/1024/1024))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
			return PhotoFile{}, invalid(ErrUploadTypeInvalid, ext)
		}
	}

	src, err := file.Open()
	if err != nil {
		return PhotoFile{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return PhotoFile{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	contentType := detectPhotoContentType(buffer[:n], ext)
	if len(s.cfg.AllowedTypes) > 0 && !isAllowedType(contentType, s.cfg.AllowedTypes) {
		return PhotoFile{}, invalid(ErrUploadTypeInvalid, contentType)
	}

	return PhotoFile{
		FileName:    filepath.Base(file.Filename),
		ContentType: contentType,
		Ext:         ext,
		Size:        file.Size,
		Open: func() (io.ReadCloser, error) {
			return file.Open()
		},
	}, nil
}

// detectPhotoContentType 嗅探文件类型；HEIC 无法被标准嗅探识别，按扩展名兜底
func detectPhotoContentType(head []byte, ext string) string {
	contentType := http.DetectContentType(head)
	if contentType == "application/octet-stream" && (ext == ".heic" || ext == ".heif") {
		return "image/heic"
	}
	return contentType
}

func isAllowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(contentType, strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}
