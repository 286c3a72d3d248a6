package http

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	avatarFormField  = "imagem"
	maxUploadBytes   = 5 << 20
	uploadURLPrefix  = "/uploads"
	customerUploads  = "usuarios"
	employeeUploads  = "funcionarios"
)

var errUnsupportedImage = errors.New("Apenas imagens JPG, PNG ou WEBP são permitidas.")

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// uploader stores multipart avatar uploads under the configured directory
// and hands back their public URL.
type uploader struct {
	dir string
}

// saveAvatar extracts the avatar file from a multipart request and writes it
// under dir/subdir with a random name. It returns the public URL, or an
// empty string when the request carries no file.
func (u uploader) saveAvatar(r *http.Request, subdir string) (string, error) {
	if u.dir == "" {
		return "", nil
	}
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return "", nil
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", err
	}

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return "", errUnsupportedImage
	}

	targetDir := filepath.Join(u.dir, subdir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	target, err := os.Create(filepath.Join(targetDir, name))
	if err != nil {
		return "", err
	}
	defer target.Close()

	if _, err := io.Copy(target, file); err != nil {
		return "", err
	}
	return uploadURLPrefix + "/" + subdir + "/" + name, nil
}

// removeAvatar deletes a previously stored avatar given its public URL.
// Unknown or external paths are ignored.
func (u uploader) removeAvatar(imageURL string) {
	if u.dir == "" || !strings.HasPrefix(imageURL, uploadURLPrefix+"/") {
		return
	}
	relative := strings.TrimPrefix(imageURL, uploadURLPrefix+"/")
	_ = os.Remove(filepath.Join(u.dir, filepath.FromSlash(relative)))
}
