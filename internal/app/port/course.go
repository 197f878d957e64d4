package port

import (
	"context"

	"massa_gateway/internal/domain/entity"
)

// CourseRepository loads the goal webhook settings of a course.
// A missing course is reported as (nil, nil).
type CourseRepository interface {
	GetCourseGoal(ctx context.Context, courseID string) (*entity.CourseGoal, error)
}

// GoalService forwards learner messages to a course's goals webhook.
type GoalService interface {
	// Relay returns the decoded JSON body of the webhook reply.
	Relay(ctx context.Context, courseID, message string) (any, error)
}
