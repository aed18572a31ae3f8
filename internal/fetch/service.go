package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joshsymonds/hourwatch/internal/extract"
	"github.com/joshsymonds/hourwatch/internal/gmail"
	"github.com/joshsymonds/hourwatch/internal/rate"
)

// Failure scopes reported to a Recorder.
const (
	ScopeBatch = "batch"
	ScopeItem  = "item"
)

// Recorder observes fetch outcomes. metrics.Recorder is the production
// implementation.
type Recorder interface {
	Processed(n int)
	Failure(scope string)
}

// Result is the outcome for a single message identifier.
type Result struct {
	ID      gmail.MessageID
	Summary extract.Summary
	Err     error
}

// OK reports whether the message was summarized.
func (r Result) OK() bool { return r.Err == nil }

// Service fetches recent unread mail and reduces it to summaries.
type Service struct {
	Client   gmail.Client
	Limiter  rate.Limiter
	Logger   *slog.Logger
	Recorder Recorder

	processed int
}

// NewService constructs a Service with sane defaults.
func NewService(client gmail.Client, limiter rate.Limiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Service{
		Client:  client,
		Limiter: limiter,
		Logger:  logger,
	}
}

// Processed returns how many summaries this Service has produced.
func (s *Service) Processed() int { return s.processed }

// ListRecentUnread returns summaries for up to maxResults unread messages
// received within the last hour. A failed list call yields an empty slice;
// a failed message is logged and skipped.
func (s *Service) ListRecentUnread(ctx context.Context, maxResults int) []extract.Summary {
	results, err := s.Collect(ctx, maxResults)
	if err != nil {
		s.Logger.ErrorContext(ctx, "error fetching emails", slog.Any("error", err))
		s.recordFailure(ScopeBatch)
		return []extract.Summary{}
	}

	summaries := make([]extract.Summary, 0, len(results))
	for _, res := range results {
		if !res.OK() {
			s.Logger.WarnContext(ctx, "error extracting email",
				slog.String("message_id", string(res.ID)),
				slog.Any("error", res.Err),
			)
			s.recordFailure(ScopeItem)
			continue
		}
		summaries = append(summaries, res.Summary)
	}

	s.processed += len(summaries)
	if s.Recorder != nil {
		s.Recorder.Processed(len(summaries))
	}
	s.Logger.InfoContext(ctx, "fetched recent unread",
		slog.Int("listed", len(results)),
		slog.Int("count", len(summaries)),
		slog.Int("processed", s.processed),
	)
	return summaries
}

// Collect lists recent unread identifiers and fetches each one in order,
// returning a Result per identifier. Only the list call can fail the batch.
func (s *Service) Collect(ctx context.Context, maxResults int) ([]Result, error) {
	ids, err := s.listMessages(ctx, clampMaxResults(maxResults))
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		results = append(results, s.fetchOne(ctx, id))
	}
	return results, nil
}

func (s *Service) fetchOne(ctx context.Context, id gmail.MessageID) Result {
	if err := s.wait(ctx, "rate limit get"); err != nil {
		return Result{ID: id, Err: err}
	}
	msg, err := s.Client.Get(ctx, id)
	if err != nil {
		return Result{ID: id, Err: fmt.Errorf("get message %s: %w", id, err)}
	}
	if msg.ID == "" {
		msg.ID = id
	}
	return Result{ID: id, Summary: extract.Summarize(msg)}
}

func (s *Service) listMessages(ctx context.Context, maxResults int) ([]gmail.MessageID, error) {
	if err := s.wait(ctx, "rate limit list"); err != nil {
		return nil, err
	}
	ids, err := s.Client.List(ctx, gmail.RecentUnread, maxResults)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

func (s *Service) wait(ctx context.Context, operation string) error {
	if s.Limiter == nil {
		return nil
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func (s *Service) recordFailure(scope string) {
	if s.Recorder != nil {
		s.Recorder.Failure(scope)
	}
}

func clampMaxResults(n int) int {
	if n <= 0 {
		return gmail.DefaultMaxResults
	}
	if n > gmail.MaxPageSize {
		return gmail.MaxPageSize
	}
	return n
}
