package server

import (
	"errors"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxCommentImages = 9
	maxImageSize     = 5 << 20
)

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var (
	errTooManyImages = errors.New("最多上传 9 张图片")
	errImageTooLarge = errors.New("单张图片不能超过 5MB")
	errImageType     = errors.New("不支持的图片格式")
)

func checkImages(files []*multipart.FileHeader) error {
	if len(files) > maxCommentImages {
		return errTooManyImages
	}
	for _, fh := range files {
		if fh.Size > maxImageSize {
			return errImageTooLarge
		}
		if !allowedImageExt[strings.ToLower(filepath.Ext(fh.Filename))] {
			return errImageType
		}
	}
	return nil
}

// saveImages 落盘到 uploadDir，文件名用 uuid，返回对外 URL 和本地路径。
// 中途失败会清理已写入的文件。
func (s *Server) saveImages(c *gin.Context, files []*multipart.FileHeader) (urls, saved []string, err error) {
	if len(files) == 0 {
		return nil, nil, nil
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, nil, err
	}
	urls = make([]string, 0, len(files))
	saved = make([]string, 0, len(files))
	for _, fh := range files {
		name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
		dst := filepath.Join(s.uploadDir, name)
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			s.removeFiles(saved)
			return nil, nil, err
		}
		saved = append(saved, dst)
		urls = append(urls, path.Join(s.uploadURLPrefix, name))
	}
	return urls, saved, nil
}

func (s *Server) removeFiles(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("清理上传文件失败", zap.String("path", p), zap.Error(err))
		}
	}
}
