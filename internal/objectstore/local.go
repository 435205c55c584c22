package objectstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var ErrBadSignature = errors.New("invalid or expired signature")

// LocalBucket keeps objects on disk under <dir>/<bucket>/ and signs download
// links with HMAC-SHA256 over "path|expiry".
type LocalBucket struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
}

func NewLocalBucket(dir, bucket, baseURL string, secret []byte) (*LocalBucket, error) {
	root := filepath.Join(dir, bucket)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalBucket{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}, nil
}

func (b *LocalBucket) filePath(objectPath string) (string, error) {
	clean, err := CleanPath(objectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}

func (b *LocalBucket) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) error {
	dst, err := b.filePath(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	// 임시 파일에 쓴 뒤 rename
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("store object: %w", err)
	}
	return nil
}

func (b *LocalBucket) Download(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	src, err := b.filePath(objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (b *LocalBucket) Delete(ctx context.Context, objectPath string) error {
	p, err := b.filePath(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// SignedURL returns <baseURL>/files/<path>?expires=<unix>&signature=<hex>.
func (b *LocalBucket) SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	clean, err := CleanPath(objectPath)
	if err != nil {
		return "", err
	}
	expires := b.now().Add(ttl).Unix()

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", b.sign(clean, expires))
	return b.baseURL + "/files/" + escapePath(clean) + "?" + q.Encode(), nil
}

// Verify checks a signature produced by SignedURL.
func (b *LocalBucket) Verify(objectPath, expires, signature string) error {
	clean, err := CleanPath(objectPath)
	if err != nil {
		return err
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if b.now().Unix() > exp {
		return ErrBadSignature
	}
	if !hmac.Equal([]byte(b.sign(clean, exp)), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

func (b *LocalBucket) sign(objectPath string, expires int64) string {
	mac := hmac.New(sha256.New, b.secret)
	fmt.Fprintf(mac, "%s|%d", objectPath, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
