package offline

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/mwalimu/core"
)

// RejectedError is returned by a Deliverer when the API refused a submission for good:
// the payload failed validation (400) or could not be processed (422).
type RejectedError struct {
	StatusCode int
	Body       string
}

func (err RejectedError) Error() string {
	return fmt.Sprintf("submission rejected: %d %s", err.StatusCode, strings.TrimSpace(err.Body))
}

func IsRejected(err error) bool {
	_, ok := errors.Cause(err).(*RejectedError)
	return ok
}

// Deliverer sends a submission to the API. A nil error means the API acknowledged it.
type Deliverer interface {
	Deliver(ctx context.Context, s Submission) error
}

// HTTPDeliverer posts submissions to the REST API on behalf of the teacher who queued them.
type HTTPDeliverer struct {
	baseURL string
	tokens  map[int]string // teacher ID -> API token
	client  *rest.Client
}

var _ Deliverer = (*HTTPDeliverer)(nil)

func NewHTTPDeliverer(baseURL string, tokens map[int]string, timeout time.Duration) *HTTPDeliverer {
	return &HTTPDeliverer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		client:  &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

// Deliver posts the submission. Only 400 and 422 responses reject it; any other failure is transient.
func (d *HTTPDeliverer) Deliver(ctx context.Context, s Submission) error {
	token, ok := d.tokens[s.TeacherID]
	if !ok {
		return errors.Errorf("no API token for teacher %d", s.TeacherID)
	}

	httpReq, err := rest.BuildRequestObject(rest.Request{
		Method:  rest.Post,
		BaseURL: d.baseURL + s.Path(),
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + token,
		},
		Body: s.Payload,
	})
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	httpRes, err := d.client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "posting submission")
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}

	switch {
	case res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices:
		return nil
	case res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnprocessableEntity:
		return &RejectedError{StatusCode: res.StatusCode, Body: res.Body}
	default:
		return errors.Errorf("unexpected status %d", res.StatusCode)
	}
}

// SyncResult counts what happened to the submissions during a sync run.
type SyncResult struct {
	Delivered int
	Rejected  int
	Kept      int
}

// Syncer delivers pending submissions, oldest first.
// A submission leaves the queue only once the API acknowledged or rejected it. The first transient
// failure ends the run so that later submissions are not delivered ahead of it.
type Syncer struct {
	queue     Queue
	deliverer Deliverer
	logger    core.Logger
	batchSize int
}

func NewSyncer(queue Queue, deliverer Deliverer, logger core.Logger, batchSize int) *Syncer {
	return &Syncer{queue: queue, deliverer: deliverer, logger: logger, batchSize: batchSize}
}

func (s *Syncer) Run(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	pending, err := s.queue.Pending(ctx, s.batchSize)
	if err != nil {
		return res, errors.Wrap(err, "listing pending submissions")
	}

	for i, sub := range pending {
		if err := ctx.Err(); err != nil {
			res.Kept += len(pending) - i
			return res, err
		}

		err := s.deliverer.Deliver(ctx, sub)
		switch {
		case err == nil:
			if err := s.queue.Remove(ctx, sub.ID); err != nil {
				return res, errors.Wrapf(err, "removing submission %s", sub.ID)
			}
			res.Delivered++
		case IsRejected(err):
			s.logger.Warn(fmt.Sprintf("offline: dropping %s submission %s: %v", sub.Kind, sub.ID, err))
			if err := s.queue.Remove(ctx, sub.ID); err != nil {
				return res, errors.Wrapf(err, "removing submission %s", sub.ID)
			}
			res.Rejected++
		default:
			s.logger.Info(fmt.Sprintf("offline: %s submission %s not delivered, will retry: %v", sub.Kind, sub.ID, err))
			if err := s.queue.MarkAttempt(ctx, sub.ID); err != nil {
				s.logger.Error(fmt.Sprintf("offline: marking attempt of %s: %v", sub.ID, err), err)
			}
			res.Kept += len(pending) - i
			return res, nil
		}
	}
	return res, nil
}
