package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
)

const (
	StreamEventCode     = "code"
	StreamEventAccounts = "accounts"

	streamBuffer = 10
)

// StreamEvent is one message of a code stream. Code is set for
// StreamEventCode; AccountIDs is set for StreamEventAccounts, which is sent
// whenever the account list changes.
type StreamEvent struct {
	Type       string
	Code       CodeOutput
	AccountIDs []string
}

// StreamCodes starts pushing the code of every account once per tick until ctx
// is done. Each account runs its own periodic task; the set of tasks follows
// the account list, and a change of secret or parameters restarts the task of
// that account. Slow readers lose events rather than block the stream.
//
// The returned channel is closed when the stream stops.
func (s *Usecase) StreamCodes(ctx context.Context) (<-chan StreamEvent, error) {
	ctx, span := s.startSpan(ctx, "StreamCodes")
	defer span.End()

	tick := s.cfg.GetSecond("stream.tick_seconds")
	if tick <= 0 {
		tick = time.Second
	}

	changes, unsubscribe := s.subscribe()
	context.AfterFunc(ctx, unsubscribe)

	events := make(chan StreamEvent, streamBuffer)

	started := s.goroutine.Go(ctx, "authenticator.stream", func(ctx context.Context) error {
		defer close(events)

		sched := goroutine.NewScheduler()
		defer sched.StopAll()

		s.syncStream(ctx, sched, tick, events)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				ids := s.syncStream(ctx, sched, tick, events)
				send(events, StreamEvent{Type: StreamEventAccounts, AccountIDs: ids})
			}
		}
	})
	if !started {
		unsubscribe()
		return nil, goerror.NewUnavailable(ErrStreamRejected)
	}

	slog.InfoContext(ctx, "code stream started", "tick", tick.String())

	return events, nil
}

// syncStream makes the scheduler run exactly one task per current account and
// returns the account ids in list order.
func (s *Usecase) syncStream(ctx context.Context, sched *goroutine.Scheduler, tick time.Duration, events chan<- StreamEvent) []string {
	s.mu.RLock()
	accounts := s.store.List()
	s.mu.RUnlock()

	for _, acc := range accounts {
		sched.Ensure(ctx, acc.ID, streamTag(acc), tick, func(ctx context.Context) {
			send(events, StreamEvent{Type: StreamEventCode, Code: s.codeFor(ctx, acc, s.clock.Now())})
		})
	}

	ids := lo.Map(accounts, func(a entity.Account, _ int) string { return a.ID })
	sched.Retain(lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} }))

	return ids
}

// streamTag identifies what a stream task was built from.
func streamTag(a entity.Account) string {
	return strings.Join([]string{
		a.Secret,
		a.Algorithm.String(),
		strconv.Itoa(a.Digits),
		strconv.Itoa(a.Period),
	}, "|")
}

func send(events chan<- StreamEvent, ev StreamEvent) {
	select {
	case events <- ev:
	default:
	}
}
