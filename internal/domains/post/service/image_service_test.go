package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/posttest"
	"yatube-backend/internal/domains/post/repository"
	"yatube-backend/internal/infrastructure/storage"
)

func TestPostService_CreateWithImageStoresAndEnqueues(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	leo := f.store.Users.Add("leo")

	post, err := f.posts.Create(ctx, viewerOf(leo), model.PostForm{
		Text:  "with picture",
		Image: posttest.FileHeader("cat.png", posttest.PNG(800, 400)),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(post.Image, model.ImageKeyPrefix))
	assert.True(t, strings.HasSuffix(post.Image, ".png"))
	assert.Equal(t, []string{post.Image}, f.objects.Keys())
	assert.Equal(t, "image/png", f.objects.ContentType(post.Image))
	assert.Equal(t, []posttest.ProcessTask{{PostID: post.ID, Key: post.Image}}, f.queue.Processed)

	img, err := f.store.Images().GetByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ImageStatusProcessing, img.Status)
}

func TestPostService_CreateRejectsInvalidImage(t *testing.T) {
	f := newFixture()
	leo := f.store.Users.Add("leo")

	_, err := f.posts.Create(context.Background(), viewerOf(leo), model.PostForm{
		Text:  "hi",
		Image: posttest.FileHeader("notes.txt", []byte("plain text")),
	})

	var ferr *model.FormError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Fields, "image")
	assert.Empty(t, f.objects.Keys())
	assert.Equal(t, 0, f.store.PostCount())
}

func TestPostService_CreateSurvivesQueueOutage(t *testing.T) {
	f := newFixture()
	f.queue.Err = posttest.ErrQueueDown
	leo := f.store.Users.Add("leo")

	post, err := f.posts.Create(context.Background(), viewerOf(leo), model.PostForm{
		Text:  "hi",
		Image: posttest.FileHeader("cat.png", posttest.PNG(10, 10)),
	})
	require.NoError(t, err)

	img, err := f.store.Images().GetByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ImageStatusProcessing, img.Status)
}

func TestPostService_EditReplacingImageDiscardsOld(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	leo := f.store.Users.Add("leo")

	post, err := f.posts.Create(ctx, viewerOf(leo), model.PostForm{
		Text:  "v1",
		Image: posttest.FileHeader("a.png", posttest.PNG(10, 10)),
	})
	require.NoError(t, err)
	require.NoError(t, f.images.ProcessImage(ctx, post.ID, post.Image))
	oldImage := post.Image

	edited, err := f.posts.Edit(ctx, viewerOf(leo), post.ID, model.PostForm{
		Text:  "v2",
		Image: posttest.FileHeader("b.png", posttest.PNG(10, 10)),
	})
	require.NoError(t, err)

	assert.NotEqual(t, oldImage, edited.Image)
	require.Len(t, f.queue.Deleted, 1)
	assert.Equal(t, []string{oldImage, ThumbnailKey(oldImage)}, f.queue.Deleted[0])
	assert.Len(t, f.queue.Processed, 2)
}

// failingUpdates lets every post update fail after the image upload went through.
type failingUpdates struct {
	repository.PostRepository
	err error
}

func (r failingUpdates) Update(context.Context, *model.Post) error { return r.err }

func TestPostService_EditFailureDiscardsNewImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	leo := f.store.Users.Add("leo")

	post, err := f.posts.Create(ctx, viewerOf(leo), model.PostForm{
		Text:  "v1",
		Image: posttest.FileHeader("a.png", posttest.PNG(10, 10)),
	})
	require.NoError(t, err)

	dbDown := errors.New("connection reset")
	svc := NewPostService(
		failingUpdates{PostRepository: f.store.Posts(), err: dbDown},
		f.store.Groups(), f.store.Comments(), f.store.Follows(),
		f.store.Users, f.images, storage.NewImageProcessor(),
	)

	_, err = svc.Edit(ctx, viewerOf(leo), post.ID, model.PostForm{
		Text:  "v2",
		Image: posttest.FileHeader("b.png", posttest.PNG(10, 10)),
	})
	require.ErrorIs(t, err, dbDown)

	stored, err := f.store.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Image, stored.Image)

	require.Len(t, f.queue.Deleted, 1)
	require.Len(t, f.queue.Deleted[0], 1)
	newImage := f.queue.Deleted[0][0]
	assert.NotEqual(t, post.Image, newImage)
	assert.Contains(t, f.objects.Keys(), newImage)
}

func TestPostService_EditFailureWithoutUploadDiscardsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	leo := f.store.Users.Add("leo")

	post, err := f.posts.Create(ctx, viewerOf(leo), model.PostForm{
		Text:  "v1",
		Image: posttest.FileHeader("a.png", posttest.PNG(10, 10)),
	})
	require.NoError(t, err)

	svc := NewPostService(
		failingUpdates{PostRepository: f.store.Posts(), err: errors.New("boom")},
		f.store.Groups(), f.store.Comments(), f.store.Follows(),
		f.store.Users, f.images, storage.NewImageProcessor(),
	)

	_, err = svc.Edit(ctx, viewerOf(leo), post.ID, model.PostForm{Text: "v2"})
	require.Error(t, err)
	assert.Empty(t, f.queue.Deleted)
}

func TestPostService_EditWithoutImageKeepsCurrent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	leo := f.store.Users.Add("leo")

	post, err := f.posts.Create(ctx, viewerOf(leo), model.PostForm{
		Text:  "v1",
		Image: posttest.FileHeader("a.png", posttest.PNG(10, 10)),
	})
	require.NoError(t, err)

	edited, err := f.posts.Edit(ctx, viewerOf(leo), post.ID, model.PostForm{Text: "v2"})
	require.NoError(t, err)
	assert.Equal(t, post.Image, edited.Image)
	assert.Empty(t, f.queue.Deleted)
}

func TestImageService_ProcessImageBuildsThumbnail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	leo := f.store.Users.Add("leo")

	post, err := f.posts.Create(ctx, viewerOf(leo), model.PostForm{
		Text:  "big",
		Image: posttest.FileHeader("big.png", posttest.PNG(1200, 900)),
	})
	require.NoError(t, err)

	require.NoError(t, f.images.ProcessImage(ctx, post.ID, post.Image))

	thumbKey := ThumbnailKey(post.Image)
	assert.Contains(t, f.objects.Keys(), thumbKey)

	stored, err := f.store.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, thumbKey, stored.Thumbnail)
	assert.Equal(t, thumbKey, stored.DisplayImage())
}

func TestImageService_ProcessImageSkipsReplacedImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	leo := f.store.Users.Add("leo")
	post := f.store.AddPost(leo.ID, "x", nil)
	require.NoError(t, f.images.Track(ctx, post.ID, "posts/new.png"))

	require.NoError(t, f.images.ProcessImage(ctx, post.ID, "posts/old.png"))
	assert.Empty(t, f.objects.Keys())
}

func TestImageService_ProcessImageMarksMissingOriginalFailed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	leo := f.store.Users.Add("leo")
	post := f.store.AddPost(leo.ID, "x", nil)
	require.NoError(t, f.images.Track(ctx, post.ID, "posts/gone.png"))

	require.NoError(t, f.images.ProcessImage(ctx, post.ID, "posts/gone.png"))

	img, err := f.store.Images().GetByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ImageStatusFailed, img.Status)
}

func TestImageService_SweepStaleRequeues(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f.store.SetClock(func() time.Time { return now })
	f.images.(*imageService).now = func() time.Time { return now }

	leo := f.store.Users.Add("leo")
	stuck := f.store.AddPost(leo.ID, "stuck", nil)
	fresh := f.store.AddPost(leo.ID, "fresh", nil)
	require.NoError(t, f.images.Track(ctx, stuck.ID, "posts/stuck.png"))
	now = now.Add(2 * time.Hour)
	require.NoError(t, f.images.Track(ctx, fresh.ID, "posts/fresh.png"))
	f.queue.Processed = nil

	n, err := f.images.SweepStale(ctx, time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []posttest.ProcessTask{{PostID: stuck.ID, Key: "posts/stuck.png"}}, f.queue.Processed)

	// Touched rows are not picked up again right away.
	n, err = f.images.SweepStale(ctx, time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestImageService_DeleteObjects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.objects.Upload(ctx, "posts/a.png", []byte("a"), "image/png"))
	require.NoError(t, f.objects.Upload(ctx, "posts/b.png", []byte("b"), "image/png"))

	require.NoError(t, f.images.DeleteObjects(ctx, []string{"posts/a.png"}))
	assert.Equal(t, []string{"posts/b.png"}, f.objects.Keys())
}

func TestThumbnailKey(t *testing.T) {
	assert.Equal(t, "posts/thumbs/abc.jpg", ThumbnailKey("posts/abc.png"))
	assert.Equal(t, "posts/thumbs/abc.jpg", ThumbnailKey("posts/abc.jpg"))
}
