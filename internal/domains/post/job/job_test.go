package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube-backend/internal/shared"
)

type recordingImages struct {
	processed  []shared.ProcessPostImagePayload
	deleted    [][]string
	staleAfter time.Duration
	limit      int
	err        error
}

func (r *recordingImages) ProcessImage(_ context.Context, postID int64, key string) error {
	r.processed = append(r.processed, shared.ProcessPostImagePayload{PostID: postID, Key: key})
	return r.err
}

func (r *recordingImages) DeleteObjects(_ context.Context, keys []string) error {
	r.deleted = append(r.deleted, keys)
	return r.err
}

func (r *recordingImages) SweepStale(_ context.Context, staleAfter time.Duration, limit int) (int, error) {
	r.staleAfter, r.limit = staleAfter, limit
	return 0, r.err
}

func task(t *testing.T, typ string, payload interface{}) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(typ, data)
}

func TestProcessImageHandler(t *testing.T) {
	images := &recordingImages{}
	h := NewProcessImageHandler(images)

	err := h.ProcessTask(context.Background(), task(t, shared.TypeProcessPostImage,
		shared.ProcessPostImagePayload{PostID: 7, Key: "posts/a.png"}))

	require.NoError(t, err)
	assert.Equal(t, []shared.ProcessPostImagePayload{{PostID: 7, Key: "posts/a.png"}}, images.processed)
}

func TestProcessImageHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewProcessImageHandler(&recordingImages{})

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeProcessPostImage, []byte("{")))

	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestProcessImageHandler_PropagatesFailure(t *testing.T) {
	h := NewProcessImageHandler(&recordingImages{err: errors.New("minio down")})

	err := h.ProcessTask(context.Background(), task(t, shared.TypeProcessPostImage,
		shared.ProcessPostImagePayload{PostID: 1, Key: "posts/a.png"}))

	assert.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestDeleteImageHandler(t *testing.T) {
	images := &recordingImages{}
	h := NewDeleteImageHandler(images)

	require.NoError(t, h.ProcessTask(context.Background(), task(t, shared.TypeDeletePostImage,
		shared.DeletePostImagePayload{Keys: []string{"posts/a.png", "posts/thumbs/a.jpg"}})))
	require.NoError(t, h.ProcessTask(context.Background(), task(t, shared.TypeDeletePostImage,
		shared.DeletePostImagePayload{})))

	assert.Equal(t, [][]string{{"posts/a.png", "posts/thumbs/a.jpg"}}, images.deleted)
}

func TestSweepImagesHandler_Defaults(t *testing.T) {
	images := &recordingImages{}
	h := NewSweepImagesHandler(images)

	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeSweepPostImages, nil)))
	assert.Equal(t, defaultStaleAfter, images.staleAfter)
	assert.Equal(t, defaultSweepLimit, images.limit)

	require.NoError(t, h.ProcessTask(context.Background(), task(t, shared.TypeSweepPostImages,
		shared.SweepPostImagesPayload{StaleAfterSeconds: 60, Limit: 5})))
	assert.Equal(t, time.Minute, images.staleAfter)
	assert.Equal(t, 5, images.limit)
}
