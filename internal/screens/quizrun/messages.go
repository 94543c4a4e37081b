package quizrun

import (
	"github.com/tutorat/tutorat/internal/quiz"
)

type loadedMsg struct {
	owner *Screen
	Quiz  *quiz.Quiz
	Err   error
}

// startedMsg carries the attempt id issued by the server.
type startedMsg struct {
	owner     *Screen
	session   *quiz.Session
	AttemptID int64
	Err       error
}

type finishedMsg struct {
	owner   *Screen
	session *quiz.Session
	Result  *quiz.Result
	Err     error
}

type timerTickMsg struct {
	owner *Screen
}

type recordedMsg struct {
	Err error
}
