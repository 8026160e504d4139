package main

import (
	"github.com/hibiken/asynq"

	postJob "yatube-backend/internal/domains/post/job"
	"yatube-backend/internal/shared"
	"yatube-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	processImage *postJob.ProcessImageHandler
	deleteImage  *postJob.DeleteImageHandler
	sweepImages  *postJob.SweepImagesHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		processImage: postJob.NewProcessImageHandler(c.ImageService),
		deleteImage:  postJob.NewDeleteImageHandler(c.ImageService),
		sweepImages:  postJob.NewSweepImagesHandler(c.ImageService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeProcessPostImage, h.processImage.ProcessTask)
	mux.HandleFunc(shared.TypeDeletePostImage, h.deleteImage.ProcessTask)
	mux.HandleFunc(shared.TypeSweepPostImages, h.sweepImages.ProcessTask)
}
