package filemgr

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"mercato/utils"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// UploadDir is where product images land; they are served back under
// the /uploads/ URL prefix.
var UploadDir = "./static/uploads"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SaveImage validates and stores an uploaded image, returning the stored
// filename.
func SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(utils.SanitizeFilename(header.Filename)))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}
	if mime := header.Header.Get("Content-Type"); mime != "" && !allowedMIMEs[mime] {
		return "", fmt.Errorf("unsupported image type %q", mime)
	}

	if err := utils.EnsureDir(UploadDir); err != nil {
		return "", err
	}

	filename := utils.GetUUID() + ext
	dstPath := filepath.Join(UploadDir, filename)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}

	return filename, nil
}

// CreateThumb writes a fitted jpeg thumbnail next to the original.
func CreateThumb(filename string, width, height int) error {
	src, err := imaging.Open(filepath.Join(UploadDir, filename))
	if err != nil {
		return err
	}

	thumb := imaging.Fit(src, width, height, imaging.Lanczos)

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return imaging.Save(thumb, filepath.Join(UploadDir, base+"_thumb.jpg"))
}
