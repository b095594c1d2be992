package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ossgate/internal/config"
	"ossgate/internal/domain"
	"ossgate/internal/objectkey"
	"ossgate/internal/port"
)

// UploadFile is one file part of a multipart submission.
type UploadFile struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// PropertyImageOptions carries the optional form fields of a property image
// submission.
type PropertyImageOptions struct {
	// IsPrimary is honoured only for single-file submissions.
	IsPrimary *bool
	// SortOrder is the base added to each file's index.
	SortOrder *int
}

// UploadService relays uploads from clients that cannot write to the bucket
// directly.
type UploadService interface {
	UploadAvatar(ctx context.Context, ownerID string, file UploadFile) (*domain.UploadedObject, error)
	UploadPropertyImages(ctx context.Context, ownerID string, files []UploadFile, opts PropertyImageOptions) ([]domain.PropertyImage, error)
}

type uploadService struct {
	storage  port.ObjectStorage
	signer   URLSigner
	cfg      *config.UploadConfig
	observer port.Observer
	logger   *zap.Logger
	now      func() time.Time
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(
	storage port.ObjectStorage,
	signer URLSigner,
	cfg *config.UploadConfig,
	observer port.Observer,
	logger *zap.Logger,
) UploadService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &uploadService{
		storage:  storage,
		signer:   signer,
		cfg:      cfg,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// checkedFile is a file that passed validation and is positioned at offset 0.
type checkedFile struct {
	UploadFile
	ext         string
	contentType string
}

func (s *uploadService) UploadAvatar(ctx context.Context, ownerID string, file UploadFile) (*domain.UploadedObject, error) {
	if !objectkey.ValidOwner(ownerID) {
		return nil, domain.ErrInvalidOwner
	}
	checked, err := checkFile(file, s.cfg.AvatarMaxBytes())
	if err != nil {
		return nil, err
	}

	key := objectkey.Avatar(s.cfg.AvatarPrefix, ownerID, s.now(), checked.ext)
	if err := s.put(ctx, domain.CategoryAvatar, key, checked); err != nil {
		return nil, err
	}

	obj := &domain.UploadedObject{
		ID:       objectID(ownerID, key),
		OSSPath:  key,
		MimeType: checked.contentType,
		Size:     checked.Header.Size,
	}
	obj.URL = s.signOrEmpty(ctx, key)

	s.logger.Info("uploadService.UploadAvatar: avatar stored",
		zap.String("owner_id", ownerID),
		zap.String("oss_path", key),
		zap.Int64("size", obj.Size),
	)
	return obj, nil
}

func (s *uploadService) UploadPropertyImages(ctx context.Context, ownerID string, files []UploadFile, opts PropertyImageOptions) ([]domain.PropertyImage, error) {
	if len(files) == 0 {
		return nil, domain.ErrMissingFile
	}
	if len(files) > s.cfg.MaxPropertyImages {
		return nil, domain.ErrTooManyFiles
	}
	if !objectkey.ValidOwner(ownerID) {
		return nil, domain.ErrInvalidOwner
	}

	// Every file is validated before the first write.
	checked := make([]checkedFile, 0, len(files))
	for _, f := range files {
		c, err := checkFile(f, s.cfg.PropertyImageMaxBytes())
		if err != nil {
			return nil, err
		}
		checked = append(checked, c)
	}

	keys := make([]string, 0, len(checked))
	for _, c := range checked {
		key := objectkey.PropertyImage(s.cfg.PropertyImagePrefix, ownerID, s.now(), c.ext)
		if err := s.put(ctx, domain.CategoryPropertyImage, key, c); err != nil {
			s.rollback(keys)
			return nil, err
		}
		keys = append(keys, key)
	}

	base := 0
	if opts.SortOrder != nil {
		base = *opts.SortOrder
	}

	images := make([]domain.PropertyImage, len(checked))
	for i, c := range checked {
		isPrimary := i == 0
		if len(checked) == 1 && opts.IsPrimary != nil {
			isPrimary = *opts.IsPrimary
		}
		images[i] = domain.PropertyImage{
			UploadedObject: domain.UploadedObject{
				ID:       objectID(ownerID, keys[i]),
				OSSPath:  keys[i],
				URL:      s.signOrEmpty(ctx, keys[i]),
				MimeType: c.contentType,
				Size:     c.Header.Size,
			},
			IsPrimary: isPrimary,
			SortOrder: base + i,
		}
	}

	s.logger.Info("uploadService.UploadPropertyImages: images stored",
		zap.String("owner_id", ownerID),
		zap.Int("count", len(images)),
	)
	return images, nil
}

func (s *uploadService) put(ctx context.Context, category domain.ContentCategory, key string, f checkedFile) error {
	start := time.Now()
	_, err := s.storage.Put(ctx, port.PutInput{
		Key:         key,
		Body:        f.File,
		ContentType: f.contentType,
		Size:        f.Header.Size,
	})
	s.observer.ObjectUploaded(string(category), f.Header.Size, time.Since(start), err)
	if err != nil {
		s.logger.Error("uploadService: storage write failed",
			zap.String("category", string(category)),
			zap.String("oss_path", key),
			zap.Error(err),
		)
		return domain.ErrUploadFailed
	}
	return nil
}

// rollback removes objects already written by a failed submission. Errors
// are logged and otherwise ignored.
func (s *uploadService) rollback(keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("uploadService: rollback delete failed",
				zap.String("oss_path", key),
				zap.Error(err),
			)
		}
	}
}

// signOrEmpty signs key for the relay expiry. The path is durable, so a
// signing failure only leaves the URL empty.
func (s *uploadService) signOrEmpty(ctx context.Context, key string) string {
	url, err := s.signer.SignURL(ctx, key, s.cfg.SignedURLExpiry)
	if err != nil {
		s.logger.Warn("uploadService: signing uploaded object failed",
			zap.String("oss_path", key),
			zap.Error(err),
		)
		return ""
	}
	return url
}

func checkFile(f UploadFile, maxBytes int64) (checkedFile, error) {
	if f.File == nil || f.Header == nil {
		return checkedFile{}, domain.ErrMissingFile
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Header.Filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return checkedFile{}, domain.ErrUnsupportedMediaType
	}

	if f.Header.Size > maxBytes {
		return checkedFile{}, fmt.Errorf("%w: limit is %d MB", domain.ErrPayloadTooLarge, maxBytes/(1024*1024))
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := io.ReadFull(f.File, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return checkedFile{}, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, ok := domain.AllowedContentTypes[detectedType]; !ok {
		return checkedFile{}, domain.ErrUnsupportedMediaType
	}

	if _, err := f.File.Seek(0, io.SeekStart); err != nil {
		return checkedFile{}, fmt.Errorf("seeking file: %w", err)
	}

	return checkedFile{UploadFile: f, ext: ext, contentType: detectedType}, nil
}

// objectID derives a stable identifier from the key, e.g.
// "10001_1754417659021_3f2a9c1b7d4e".
func objectID(ownerID, key string) string {
	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	if strings.HasPrefix(base, ownerID+"_") {
		return base
	}
	return ownerID + "_" + base
}
