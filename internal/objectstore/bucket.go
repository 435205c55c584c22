/**
 * Name: objectstore
 * Description: 이력서 PDF와 미리보기 이미지를 저장하는 버킷 추상화
 * Workflow:
 *   1. ObjectPath로 <userID>/<ms>-<kind>-<rand>.<ext> 경로 생성
 *   2. Upload / Download / Delete
 *   3. SignedURL로 만료 시간이 있는 다운로드 링크 발급
 */
package objectstore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"path"
	"strings"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidPath    = errors.New("invalid object path")
)

// Kind tags what a stored object is.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// Bucket stores user files under slash-separated paths.
type Bucket interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) error
	Download(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectPath string) error
	SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// ObjectPath builds the storage path for a new upload.
func ObjectPath(userID string, kind Kind, fileName string, now time.Time) string {
	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%d-%s-%s.%s", userID, now.UnixMilli(), kind, randomSuffix(6), strings.ToLower(ext))
}

func randomSuffix(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(base36)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 실패 시 시간 기반
			idx = big.NewInt(time.Now().UnixNano() % int64(len(base36)))
		}
		b.WriteByte(base36[idx.Int64()])
	}
	return b.String()
}

// CleanPath rejects absolute paths, traversal segments and empty names.
func CleanPath(objectPath string) (string, error) {
	if objectPath == "" || strings.HasPrefix(objectPath, "/") || strings.Contains(objectPath, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	for _, seg := range strings.Split(objectPath, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
		}
	}
	return path.Clean(objectPath), nil
}

// OwnedBy reports whether objectPath lives under the user's prefix.
func OwnedBy(objectPath, userID string) bool {
	return userID != "" && strings.HasPrefix(objectPath, userID+"/")
}
