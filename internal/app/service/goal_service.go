package service

import (
	"context"
	"fmt"
	"strings"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/domain/entity"
	massa "massa_gateway/internal/entity"
	"massa_gateway/internal/infrastructure/httpclient"
	"massa_gateway/internal/pkg/metrics"
)

const (
	MsgGoalMessageRequired = "Message field is required. Please provide a message."
	MsgCourseIDRequired    = "Course ID is required. Please provide a courseId."
)

// GoalServiceImpl implements port.GoalService.
type GoalServiceImpl struct {
	courses port.CourseRepository
	goals   httpclient.GoalsClient
	metrics *metrics.Metrics
	logger  port.Logger
}

// NewGoalService creates a new instance of GoalServiceImpl.
func NewGoalService(courses port.CourseRepository, goals httpclient.GoalsClient, m *metrics.Metrics, l port.Logger) port.GoalService {
	return &GoalServiceImpl{courses: courses, goals: goals, metrics: m, logger: l}
}

type goalMessage struct {
	Message string `json:"message"`
}

// Relay looks up the course's goals endpoint, posts message to it and
// returns the decoded reply.
func (s *GoalServiceImpl) Relay(ctx context.Context, courseID, message string) (any, error) {
	data, err := s.relay(ctx, courseID, message)
	outcome := "ok"
	if err != nil {
		outcome = string(entity.KindOf(err))
	}
	s.metrics.ObserveGoalRelay(outcome)
	return data, err
}

func (s *GoalServiceImpl) relay(ctx context.Context, courseID, message string) (any, error) {
	if message == "" {
		return nil, entity.NewServiceError(entity.KindMissingField, MsgGoalMessageRequired)
	}
	if strings.TrimSpace(courseID) == "" {
		return nil, entity.NewServiceError(entity.KindMissingField, MsgCourseIDRequired)
	}

	course, err := s.courses.GetCourseGoal(ctx, courseID)
	if err != nil {
		s.logger.Error("Course lookup failed", "courseId", courseID, "error", err)
		return nil, entity.WrapServiceError(entity.KindCourseLookupFailed, "Failed to fetch course information: "+err.Error(), err)
	}
	if course == nil {
		return nil, entity.NewServiceError(entity.KindCourseNotFound, "Course not found")
	}
	goalsURL := strings.TrimSpace(course.GoalsURL)
	if goalsURL == "" {
		return nil, entity.NewServiceError(entity.KindNoGoalsEndpoint, "Course has no goals endpoint configured")
	}

	reply, err := s.goals.PostMessage(ctx, goalsURL, course.AuthorizationHeader, goalMessage{Message: message})
	if err != nil {
		s.logger.Error("Goals endpoint unreachable", "courseId", courseID, "error", err)
		return nil, entity.WrapServiceError(entity.KindWebhookError, "Failed to reach goals endpoint", err)
	}
	if !reply.OK() {
		msg := webhookFailureMessage(reply)
		s.logger.Warn("Goals endpoint rejected message", "courseId", courseID, "status", reply.StatusCode, "message", msg)
		return nil, &entity.ServiceError{Kind: entity.KindWebhookError, Message: msg, UpstreamStatus: reply.StatusCode}
	}

	var data any
	if err := json.Unmarshal(reply.Body, &data); err != nil {
		return nil, &entity.ServiceError{
			Kind:           entity.KindWebhookError,
			Message:        "Goals endpoint returned a non-JSON response",
			UpstreamStatus: reply.StatusCode,
			Err:            err,
		}
	}
	return data, nil
}

// webhookFailureMessage prefers the message or error field of a JSON reply.
// A body that is not JSON is used as text. Otherwise the status line is used.
func webhookFailureMessage(reply *massa.GoalsReply) string {
	fallback := fmt.Sprintf("Goals endpoint returned %d: %s", reply.StatusCode, reply.Status)

	var body any
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		if text := strings.TrimSpace(string(reply.Body)); text != "" {
			return text
		}
		return fallback
	}
	if obj, ok := body.(map[string]any); ok {
		for _, field := range []string{"message", "error"} {
			if s, ok := obj[field].(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}
