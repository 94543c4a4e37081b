package practice

import (
	"github.com/tutorat/tutorat/internal/exercise"
)

// loadedMsg is sent when the exercise fetch completes.
type loadedMsg struct {
	owner    *Screen
	Exercise *exercise.Exercise
	Err      error
}

// timerTickMsg is sent every second while the attempt clock runs.
type timerTickMsg struct {
	owner *Screen
}

// submittedMsg is sent when the grading request completes.
type submittedMsg struct {
	owner   *Screen
	attempt int
	Result  *exercise.GradingResult
	Err     error
}

// recordedMsg confirms the attempt was written to local history.
type recordedMsg struct {
	Err error
}
