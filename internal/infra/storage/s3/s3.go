package s3

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

type Storage struct {
	cl     *minio.Client
	bucket string
	logger *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Storage{cl: cl, bucket: cfg.Bucket, logger: logger}, nil
}

// Ping — проверка доступности бакета для readiness-пробы.
func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		s.logger.Printf("ping failed: %v", err)
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

// Put загружает поток фото и возвращает итоговый ключ вида "sha256/<hex>" и размер.
func (s *Storage) Put(ctx context.Context, r io.Reader, hintName string, mime string) (domain.BlobPutResult, error) {
	h := sha256.New()
	pr, pw := io.Pipe()
	mw := io.MultiWriter(h, pw)

	// копируем в пайп и считаем sha параллельно
	go func() {
		_, copyErr := io.Copy(mw, r)
		pw.CloseWithError(copyErr)
	}()

	// временный ключ уникален: параллельные загрузки одного имени не пересекаются
	tmpKey := "tmp/" + uuid.NewString() + "_" + sanitize(hintName)
	info, err := s.cl.PutObject(ctx, s.bucket, tmpKey, pr, -1, minio.PutObjectOptions{
		ContentType: mime,
	})
	if err != nil {
		return domain.BlobPutResult{}, err
	}

	sha := h.Sum(nil)
	finalKey := fmt.Sprintf("sha256/%x", sha)
	if finalKey != tmpKey {
		src := minio.CopySrcOptions{Bucket: s.bucket, Object: tmpKey}
		dst := minio.CopyDestOptions{Bucket: s.bucket, Object: finalKey}
		if _, err := s.cl.CopyObject(ctx, dst, src); err != nil {
			_ = s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{})
			return domain.BlobPutResult{}, err
		}
		_ = s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{})
	}
	s.logger.Printf("put ok key=%s size=%d", finalKey, info.Size)
	return domain.BlobPutResult{StorageKey: finalKey, Size: info.Size, SHA256: sha}, nil
}

// Get открывает поток для чтения.
// rangeHeader в формате "bytes=START-END" (опционально).
// Возвращает поток, длину отдаваемого тела (полного или диапазона),
// Content-Range (если был запрошен диапазон), Content-Type и ETag.
func (s *Storage) Get(
	ctx context.Context,
	storageKey string,
	rangeHeader string,
) (rc io.ReadCloser, contentLen int64, contentRange, contentType, etag string, err error) {

	// 1) HEAD: базовая мета (размер всего объекта, content-type, etag)
	info, err := s.cl.StatObject(ctx, s.bucket, storageKey, minio.StatObjectOptions{})
	if err != nil {
		return nil, 0, "", "", "", err
	}
	totalSize := info.Size
	contentType = info.ContentType
	etag = info.ETag

	// 2) Парс диапазона (если есть)
	start, end, useRange, err := parseRange(rangeHeader, totalSize)
	if err != nil {
		return nil, 0, "", "", "", err
	}

	opts := minio.GetObjectOptions{}
	if useRange {
		// NB: SetRange принимает включающие границы [start, end]
		if e := opts.SetRange(start, end); e != nil {
			return nil, 0, "", "", "", e
		}
		contentLen = (end - start + 1)
		contentRange = fmt.Sprintf("bytes %d-%d/%d", start, end, totalSize)
	} else {
		contentLen = totalSize
	}

	// 3) Получаем поток
	obj, err := s.cl.GetObject(ctx, s.bucket, storageKey, opts)
	if err != nil {
		return nil, 0, "", "", "", err
	}

	return obj, contentLen, contentRange, contentType, etag, nil
}

func (s *Storage) Delete(ctx context.Context, storageKey string) error {
	return s.cl.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{})
}

// parseRange разбирает заголовок Range относительно размера объекта.
// Синтаксически некорректный заголовок по RFC 7233 игнорируется
// (useRange=false); корректный, но не пересекающийся с объектом —
// domain.ErrRangeInvalid. Хвост за концом объекта обрезается до size-1.
func parseRange(rangeHeader string, totalSize int64) (start, end int64, useRange bool, err error) {
	if !strings.HasPrefix(rangeHeader, "bytes=") {
		return 0, 0, false, nil
	}
	parts := strings.SplitN(strings.TrimPrefix(rangeHeader, "bytes="), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false, nil
	}

	switch {
	// bytes=A-B
	case parts[0] != "" && parts[1] != "":
		a, e1 := strconv.ParseInt(parts[0], 10, 64)
		b, e2 := strconv.ParseInt(parts[1], 10, 64)
		if e1 != nil || e2 != nil || a < 0 || b < a {
			return 0, 0, false, nil
		}
		if a >= totalSize {
			return 0, 0, false, domain.ErrRangeInvalid
		}
		if b > totalSize-1 {
			b = totalSize - 1
		}
		return a, b, true, nil

	// bytes=A-  (от A до конца)
	case parts[0] != "":
		a, e := strconv.ParseInt(parts[0], 10, 64)
		if e != nil || a < 0 {
			return 0, 0, false, nil
		}
		if a >= totalSize {
			return 0, 0, false, domain.ErrRangeInvalid
		}
		return a, totalSize - 1, true, nil

	// bytes=-N  (последние N байт)
	case parts[1] != "":
		n, e := strconv.ParseInt(parts[1], 10, 64)
		if e != nil || n <= 0 {
			return 0, 0, false, nil
		}
		if totalSize == 0 {
			return 0, 0, false, domain.ErrRangeInvalid
		}
		if n > totalSize {
			n = totalSize
		}
		return totalSize - n, totalSize - 1, true, nil
	}
	return 0, 0, false, nil
}

func sanitize(name string) string {
	u := url.PathEscape(name)
	return strings.ReplaceAll(u, "%2F", "_")
}
