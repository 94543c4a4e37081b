package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ExerciseAttemptData is one graded exercise attempt.
type ExerciseAttemptData struct {
	ExerciseID    int64
	Title         string
	ExerciseType  string
	Answer        string // as sent, JSON encoded
	IsCorrect     bool
	Score         int
	MaxScore      int
	HintsUsed     int
	TimeSpentSecs int
}

// QuizAttemptData is one finished quiz attempt.
type QuizAttemptData struct {
	QuizID        int64
	AttemptID     int64 // server attempt id
	Title         string
	Score         int
	TotalScore    int
	Percentage    float64
	IsPassed      bool
	Answered      int
	Questions     int
	TimeSpentSecs int
}

// Attempt kinds.
const (
	KindExercise = "exercise"
	KindQuiz     = "quiz"
)

// Attempt is a row of the merged attempt history.
type Attempt struct {
	ID            string
	Sequence      int64
	Timestamp     time.Time
	Kind          string
	RefID         int64 // exercise or quiz id
	Title         string
	Score         int
	MaxScore      int
	Success       bool // correct, or passed for quizzes
	HintsUsed     int
	TimeSpentSecs int
}

// ChatMessageData is one message of a tutor conversation.
type ChatMessageData struct {
	SessionID string
	Role      string
	Content   string
}

// ChatMessage is a stored chat message.
type ChatMessage struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionID string
	Role      string
	Content   string
}

// ChatSession summarizes one stored conversation.
type ChatSession struct {
	SessionID string
	Started   time.Time
	Messages  int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM requests for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo appends and queries local history.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// GetLLMEvent returns nil when no event has the id.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendExerciseAttempt records a graded attempt and returns its id.
	AppendExerciseAttempt(ctx context.Context, data ExerciseAttemptData) (string, error)
	// AppendQuizAttempt records a finished quiz and returns its id.
	AppendQuizAttempt(ctx context.Context, data QuizAttemptData) (string, error)
	// QueryAttempts returns exercise and quiz attempts, newest first.
	QueryAttempts(ctx context.Context, opts QueryOpts) ([]Attempt, error)

	AppendChatMessage(ctx context.Context, data ChatMessageData) error
	ChatTranscript(ctx context.Context, sessionID string) ([]ChatMessage, error)
	ChatSessions(ctx context.Context, limit int) ([]ChatSession, error)
}
