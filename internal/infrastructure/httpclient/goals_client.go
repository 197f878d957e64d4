package httpclient

import (
	"context"

	"massa_gateway/internal/entity"
)

// GoalsClient posts learner messages to a course goals webhook. A non-2xx
// status is not an error; only transport failures are.
type GoalsClient interface {
	PostMessage(ctx context.Context, goalsURL, authorization string, payload any) (*entity.GoalsReply, error)
}
