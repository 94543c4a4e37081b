package api

import (
	"context"
	"net/http"
)

// Stats are the learner's totals and the last seven days of activity.
type Stats struct {
	TotalLessons      int     `json:"total_lessons"`
	TotalExercises    int     `json:"total_exercises"`
	TotalQuizzes      int     `json:"total_quizzes"`
	TotalPoints       int     `json:"total_points"`
	CurrentStreak     int     `json:"current_streak"`
	LessonsThisWeek   int     `json:"lessons_this_week"`
	ExercisesThisWeek int     `json:"exercises_this_week"`
	QuizzesThisWeek   int     `json:"quizzes_this_week"`
	AverageScore      float64 `json:"average_score"`
}

// Progress is the overall counter block of the dashboard.
type Progress struct {
	TotalLessonsViewed      int            `json:"total_lessons_viewed"`
	TotalExercisesCompleted int            `json:"total_exercises_completed"`
	TotalQuizzesCompleted   int            `json:"total_quizzes_completed"`
	TotalPoints             int            `json:"total_points"`
	CurrentStreak           int            `json:"current_streak"`
	LongestStreak           int            `json:"longest_streak"`
	LastActivity            Timestamp      `json:"last_activity"`
	WeeklyGoal              int            `json:"weekly_goal"`
	WeeklyProgress          WeeklyProgress `json:"weekly_progress"`
}

// WeeklyProgress counts lessons read in the last seven days against the
// learner's goal.
type WeeklyProgress struct {
	LessonsThisWeek int `json:"lessons_this_week"`
	Goal            int `json:"goal"`
	Percentage      int `json:"percentage"`
}

// SubjectProgress is the learner's standing in one subject.
type SubjectProgress struct {
	Subject              int64   `json:"subject"`
	SubjectName          string  `json:"subject_name"`
	LessonsCompleted     int     `json:"lessons_completed"`
	TotalLessons         int     `json:"total_lessons"`
	CompletionPercentage int     `json:"completion_percentage"`
	ExercisesCompleted   int     `json:"exercises_completed"`
	AverageScore         float64 `json:"average_score"`
	MasteryLevel         int     `json:"mastery_level"`
}

// WeakArea is a concept the learner keeps getting wrong.
type WeakArea struct {
	ID          int64  `json:"id"`
	SubjectName string `json:"subject_name"`
	Concept     string `json:"concept"`
	Description string `json:"description"`
	ErrorCount  int    `json:"error_count"`
}

// Dashboard is the learner's progress overview. Achievements, study
// sessions and skill mastery are not decoded.
type Dashboard struct {
	Progress        Progress          `json:"progress"`
	SubjectProgress []SubjectProgress `json:"subject_progress"`
	WeakAreas       []WeakArea        `json:"weak_areas"`
}

// GetStats returns the learner's totals. Requires a token.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.doJSON(ctx, "get stats", http.MethodGet, "progress/stats/", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetDashboard returns the progress overview. Requires a token.
func (c *Client) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := c.doJSON(ctx, "get dashboard", http.MethodGet, "progress/dashboard/", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
