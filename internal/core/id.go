package core

import "github.com/google/uuid"

type ThreadID string

func NewThreadID() ThreadID {
	return ThreadID("T-" + uuid.NewString())
}
