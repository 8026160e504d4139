package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/repository"
	"yatube-backend/internal/infrastructure/storage"
)

// Upload is a validated image read from a form, not yet stored.
type Upload struct {
	Data []byte
	Info *storage.ImageInfo
}

// ReadUpload reads and validates a multipart image.
// Validation failures come back as a FormError on the image field.
func ReadUpload(fh *multipart.FileHeader, processor *storage.ImageProcessor) (*Upload, error) {
	if fh.Size > processor.MaxSize {
		return nil, model.NewFieldError("image", fmt.Sprintf("Image must not exceed %dMB.", processor.MaxSize/(1024*1024)))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, processor.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	info, err := processor.ValidateImage(data)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, model.NewFieldError("image",
				"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
		return nil, err
	}
	return &Upload{Data: data, Info: info}, nil
}

type imageService struct {
	images    repository.ImageRepository
	objects   ObjectStore
	queue     TaskQueue
	processor *storage.ImageProcessor
	now       func() time.Time
}

func NewImageService(
	images repository.ImageRepository,
	objects ObjectStore,
	queue TaskQueue,
	processor *storage.ImageProcessor,
) ImageService {
	return &imageService{
		images:    images,
		objects:   objects,
		queue:     queue,
		processor: processor,
		now:       time.Now,
	}
}

func (s *imageService) Save(ctx context.Context, upload *Upload) (string, error) {
	key := model.ImageKeyPrefix + uuid.NewString() + "." + upload.Info.Extension
	if err := s.objects.Upload(ctx, key, upload.Data, upload.Info.ContentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

func (s *imageService) Track(ctx context.Context, postID int64, key string) error {
	img := &model.PostImage{PostID: postID, OriginalKey: key, Status: model.ImageStatusProcessing}
	if err := s.images.Upsert(ctx, img); err != nil {
		return fmt.Errorf("track image: %w", err)
	}
	if err := s.queue.EnqueueProcessImage(ctx, postID, key); err != nil {
		// The sweep picks the image up again later.
		log.Warn().Err(err).Int64("post_id", postID).Msg("Failed to enqueue image processing")
	}
	return nil
}

func (s *imageService) Discard(ctx context.Context, postID int64, keys ...string) {
	var nonEmpty []string
	for _, k := range keys {
		if k != "" {
			nonEmpty = append(nonEmpty, k)
		}
	}
	if len(nonEmpty) == 0 {
		return
	}
	if err := s.queue.EnqueueDeleteImages(ctx, nonEmpty...); err != nil {
		log.Warn().Err(err).Int64("post_id", postID).Strs("keys", nonEmpty).Msg("Failed to enqueue image deletion")
	}
}

// ProcessImage builds the thumbnail of key. A newer upload on the same post
// makes the task obsolete, its thumbnail is then removed again.
func (s *imageService) ProcessImage(ctx context.Context, postID int64, key string) error {
	current, err := s.images.GetByPost(ctx, postID)
	if err != nil {
		if errors.Is(err, model.ErrImageNotFound) {
			log.Info().Int64("post_id", postID).Msg("Image no longer tracked, skipping")
			return nil
		}
		return fmt.Errorf("load image record: %w", err)
	}
	if current.OriginalKey != key {
		log.Info().Int64("post_id", postID).Str("key", key).Msg("Image replaced, skipping stale task")
		return nil
	}

	original, err := s.objects.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return s.fail(ctx, postID, key, err)
		}
		return fmt.Errorf("download original: %w", err)
	}

	thumb, err := s.processor.Thumbnail(original, model.ThumbnailSize)
	if err != nil {
		return s.fail(ctx, postID, key, err)
	}

	thumbKey := ThumbnailKey(key)
	if err := s.objects.Upload(ctx, thumbKey, thumb, "image/jpeg"); err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}

	if err := s.images.MarkReady(ctx, postID, key, thumbKey); err != nil {
		if errors.Is(err, model.ErrImageNotFound) {
			// Replaced while we were resizing.
			_ = s.objects.RemoveObjects(ctx, []string{thumbKey})
			return nil
		}
		return fmt.Errorf("mark image ready: %w", err)
	}

	log.Info().Int64("post_id", postID).Str("thumbnail", thumbKey).Msg("Post image processed")
	return nil
}

// fail marks the image failed; retrying a broken image is pointless.
func (s *imageService) fail(ctx context.Context, postID int64, key string, cause error) error {
	log.Warn().Err(cause).Int64("post_id", postID).Str("key", key).Msg("Post image processing failed")
	if err := s.images.MarkFailed(ctx, postID, key); err != nil && !errors.Is(err, model.ErrImageNotFound) {
		return fmt.Errorf("mark image failed: %w", err)
	}
	return nil
}

func (s *imageService) DeleteObjects(ctx context.Context, keys []string) error {
	if err := s.objects.RemoveObjects(ctx, keys); err != nil {
		return fmt.Errorf("remove objects: %w", err)
	}
	log.Info().Strs("keys", keys).Msg("Post image objects removed")
	return nil
}

// SweepStale re-enqueues images stuck in processing and returns how many it picked up.
func (s *imageService) SweepStale(ctx context.Context, staleAfter time.Duration, limit int) (int, error) {
	stale, err := s.images.ListStale(ctx, s.now().Add(-staleAfter), limit)
	if err != nil {
		return 0, fmt.Errorf("list stale images: %w", err)
	}

	var requeued []int64
	for _, img := range stale {
		if err := s.queue.EnqueueProcessImage(ctx, img.PostID, img.OriginalKey); err != nil {
			log.Warn().Err(err).Int64("post_id", img.PostID).Msg("Failed to re-enqueue stale image")
			continue
		}
		requeued = append(requeued, img.PostID)
	}

	if err := s.images.Touch(ctx, requeued); err != nil {
		return len(requeued), fmt.Errorf("touch stale images: %w", err)
	}
	return len(requeued), nil
}

// ThumbnailKey maps posts/<name>.<ext> to posts/thumbs/<name>.jpg.
func ThumbnailKey(originalKey string) string {
	name := strings.TrimSuffix(path.Base(originalKey), path.Ext(originalKey))
	return model.ThumbnailKeyPrefix + name + ".jpg"
}
