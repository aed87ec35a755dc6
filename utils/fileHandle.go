package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedMediaType rejects uploads that are not course images
var ErrUnsupportedMediaType = errors.New("unsupported media type")

var courseMediaExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// SaveCourseMedia stores an uploaded course image under destDir with a
// collision-free name derived from the given prefix (e.g.
// "course-12-thumb"). Returns the stored file name.
func SaveCourseMedia(file *multipart.FileHeader, destDir, prefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !courseMediaExts[ext] {
		return "", ErrUnsupportedMediaType
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%s-%s%s", prefix, time.Now().Format("20060102150405"), ext)

	dst, err := os.Create(filepath.Join(destDir, fileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return fileName, nil
}

// CourseMediaURL maps a stored file name to its public URL
func CourseMediaURL(fileName string) string {
	if fileName == "" {
		return ""
	}
	return "/uploads/" + fileName
}
