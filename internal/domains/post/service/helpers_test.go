package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"yatube-backend/internal/domains/post/repository"
)

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// racingFollows pretends no edge exists so Create hits the unique constraint.
type racingFollows struct {
	repository.FollowRepository
}

func (racingFollows) Exists(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}
