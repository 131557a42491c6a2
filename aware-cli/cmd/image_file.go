package main

import (
	"os"
	"path"
	"strings"

	"github.com/ItsRikan/aware"
	"github.com/pkg/errors"
)

// loadImageFile reads a local image into an aware.UploadFile, inferring the
// content type from the extension.
func loadImageFile(imagePath string) (aware.UploadFile, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return aware.UploadFile{}, errors.Wrapf(
			err,
			"error reading image file at %s",
			imagePath,
		)
	}
	contentType := ""
	switch strings.ToLower(path.Ext(imagePath)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	case ".gif":
		contentType = "image/gif"
	}
	file := aware.UploadFile{
		Name:        path.Base(imagePath),
		ContentType: contentType,
		Data:        data,
	}
	if err := file.Validate(); err != nil {
		return aware.UploadFile{}, err
	}
	return file, nil
}
