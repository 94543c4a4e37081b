package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// LessonFilter narrows ListLessons. Zero fields are not sent.
type LessonFilter struct {
	Subject string
	Level   string
	Search  string
}

// Lesson is a catalogue row. Content, resources and the viewer's
// completion are only filled by GetLesson.
type Lesson struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Summary         string `json:"summary"`
	Level           string `json:"level"`
	ChapterTitle    string `json:"chapter_title"`
	SubjectName     string `json:"subject_name"`
	DurationMinutes int    `json:"duration_minutes"`
	Order           int    `json:"order"`
	IsOfficial      bool   `json:"is_official"`

	Content              string           `json:"content"`
	VideoURL             string           `json:"video_url"`
	AuthorName           string           `json:"author_name"`
	Resources            []LessonResource `json:"resources"`
	IsViewed             bool             `json:"is_viewed"`
	CompletionPercentage int              `json:"completion_percentage"`
	UpdatedAt            Timestamp        `json:"updated_at"`
}

// LessonResource is an attachment listed under a lesson.
type LessonResource struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	ResourceType string `json:"resource_type"`
	URL          string `json:"url"`
	File         string `json:"file"`
	Description  string `json:"description"`
}

// Link returns the external URL, or the uploaded file when there is none.
func (r LessonResource) Link() string {
	if r.URL != "" {
		return r.URL
	}
	return r.File
}

// LessonView is the viewer's reading progress on one lesson.
type LessonView struct {
	ID                   int64     `json:"id"`
	Lesson               int64     `json:"lesson"`
	LessonTitle          string    `json:"lesson_title"`
	ViewedAt             Timestamp `json:"viewed_at"`
	Completed            bool      `json:"completed"`
	CompletionPercentage int       `json:"completion_percentage"`
}

// ErrEmptySlug is returned before any request when a lesson slug is blank.
var ErrEmptySlug = errors.New("lesson slug is empty")

func lessonPath(slug, suffix string) string {
	return "lessons/lessons/" + url.PathEscape(slug) + "/" + suffix
}

// ListLessons returns the lesson catalogue. For a signed-in student the
// server already restricts it to the levels they may see.
func (c *Client) ListLessons(ctx context.Context, f LessonFilter) ([]Lesson, error) {
	q := url.Values{}
	if f.Subject != "" {
		q.Set("subject", f.Subject)
	}
	if f.Level != "" {
		q.Set("level", f.Level)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	raw, err := c.getList(ctx, "list lessons", "lessons/lessons/", q)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[Lesson](raw)
	if err != nil {
		return nil, fmt.Errorf("list lessons: decode: %w", err)
	}
	return items, nil
}

// GetLesson fetches a lesson with its content and resources.
func (c *Client) GetLesson(ctx context.Context, slug string) (*Lesson, error) {
	if slug == "" {
		return nil, ErrEmptySlug
	}
	var l Lesson
	if err := c.doJSON(ctx, "get lesson", http.MethodGet, lessonPath(slug, ""), nil, nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// MarkLessonViewed records reading progress. percent is clamped to 0..100
// and 100 marks the lesson completed.
func (c *Client) MarkLessonViewed(ctx context.Context, slug string, percent int) (*LessonView, error) {
	if slug == "" {
		return nil, ErrEmptySlug
	}
	percent = min(max(percent, 0), 100)
	body := map[string]any{
		"completion_percentage": percent,
		"completed":             percent == 100,
	}
	var out struct {
		Data LessonView `json:"data"`
	}
	if err := c.doJSON(ctx, "mark lesson viewed", http.MethodPost, lessonPath(slug, "mark_viewed/"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
