package entity

// CourseGoal is the goal webhook configured for a course.
type CourseGoal struct {
	CourseID            string
	GoalsURL            string
	AuthorizationHeader string
}
