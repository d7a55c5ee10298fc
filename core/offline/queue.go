package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

type Kind string

const (
	KindLesson Kind = "lesson"
	KindGrade  Kind = "grade"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
)

// Submission is a write created while offline, waiting to be delivered to the API.
// Its ID is sent along as the payload's submissionId so that redelivery is idempotent.
type Submission struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	TeacherID int             `json:"teacherId"`
	StudentID int             `json:"studentId,omitempty"` // KindGrade only
	Payload   json.RawMessage `json:"payload"`
	QueuedAt  time.Time       `json:"queuedAt"`
	Attempts  int             `json:"attempts"`
}

// NewSubmission returns a submission with a fresh ID, stamped into payload (a JSON object).
func NewSubmission(kind Kind, teacherID, studentID int, payload json.RawMessage) (Submission, error) {
	switch kind {
	case KindLesson:
	case KindGrade:
		if studentID <= 0 {
			return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "studentId", Error: "a grade submission needs a student"})
		}
	default:
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "kind", Error: fmt.Sprintf("unknown submission kind %q", kind)})
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil || body == nil {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "payload", Error: "payload must be a JSON object"})
	}

	id := uuid.New().String()
	body["submissionId"], _ = json.Marshal(id)
	stamped, err := json.Marshal(body)
	if err != nil {
		return Submission{}, errors.Wrap(err, "encoding payload")
	}

	return Submission{
		ID:        id,
		Kind:      kind,
		TeacherID: teacherID,
		StudentID: studentID,
		Payload:   stamped,
		QueuedAt:  nowFunc().UTC(),
	}, nil
}

// Path returns the API path the submission is delivered to.
func (s Submission) Path() string {
	if s.Kind == KindGrade {
		return fmt.Sprintf("/api/students/%d/grades", s.StudentID)
	}
	return "/api/lessons"
}

// Queue stores pending submissions in FIFO order.
type Queue interface {
	Enqueue(ctx context.Context, s Submission) error
	// Pending returns up to limit submissions, oldest first. limit <= 0 means all.
	Pending(ctx context.Context, limit int) ([]Submission, error)
	// Remove deletes the submission; removing an unknown submission is not an error.
	Remove(ctx context.Context, id string) error
	// MarkAttempt increments the delivery attempts of the submission.
	MarkAttempt(ctx context.Context, id string) error
}

// MemoryQueue is a Queue kept in memory.
type MemoryQueue struct {
	mu    sync.Mutex
	items []Submission
}

var _ Queue = (*MemoryQueue)(nil)

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(_ context.Context, s Submission) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, it := range q.items {
		if it.ID == s.ID {
			return nil
		}
	}
	q.items = append(q.items, s)
	return nil
}

func (q *MemoryQueue) Pending(_ context.Context, limit int) ([]Submission, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]Submission(nil), q.items[:n]...), nil
}

func (q *MemoryQueue) Remove(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, it := range q.items {
		if it.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	return nil
}

func (q *MemoryQueue) MarkAttempt(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Attempts++
			return nil
		}
	}
	return ErrSubmissionNotFound
}
