package notifications

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/varsityhq/varsity-server/calendar"
	"github.com/varsityhq/varsity-server/internal/metrics"
)

// Gateway is the external push transport. Broadcast delivers one message to a
// set of device tokens; failure covers the whole attempt.
type Gateway interface {
	Broadcast(ctx context.Context, deviceTokens []string, title, body string) error
}

// Dispatcher claims due notification records and pushes them through the
// gateway. A gateway failure is scoped to its record: the record is put back
// for a same-day retry and the batch continues.
type Dispatcher struct {
	repo           Repo
	events         calendar.Repo
	gateway        Gateway
	gatewayTimeout time.Duration
	log            zerolog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithGatewayTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.gatewayTimeout = timeout
	}
}

func WithDispatcherLogger(log zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.log = log
	}
}

func NewDispatcher(repo Repo, events calendar.Repo, gateway Gateway, options ...DispatcherOption) (*Dispatcher, error) {
	if repo == nil {
		return nil, errors.New("[NewDispatcher] notifications repo is required")
	}
	if events == nil {
		return nil, errors.New("[NewDispatcher] calendar repo is required")
	}
	if gateway == nil {
		return nil, errors.New("[NewDispatcher] gateway is required")
	}

	d := &Dispatcher{
		repo:           repo,
		events:         events,
		gateway:        gateway,
		gatewayTimeout: 10 * time.Second,
		log:            zerolog.Nop(),
	}
	for _, opt := range options {
		opt(d)
	}
	return d, nil
}

// Run processes every notification due on day. Claiming happens up front and
// atomically, so a concurrent or repeated run on the same day sends nothing
// for already-claimed records. Run only returns an error when the claim itself
// fails; per-record delivery failures are logged and retried next trigger.
func (d *Dispatcher) Run(ctx context.Context, day time.Time) error {
	day = DateOf(day)
	metrics.DispatchRuns.Inc()

	claimed, err := d.repo.ClaimDue(ctx, day)
	if err != nil {
		return errors.Wrap(err, "Dispatcher.Run ClaimDue")
	}
	if len(claimed) == 0 {
		d.log.Debug().Time("day", day).Msg("no due notifications")
		return nil
	}

	d.log.Info().Time("day", day).Int("claimed", len(claimed)).Msg("dispatching notifications")

	for _, n := range claimed {
		if err := d.send(ctx, n); err != nil {
			metrics.NotificationsFailed.Inc()
			d.log.Error().Err(err).Str("notification", n.ID).Msg("delivery failed, record left active for retry")
			if reErr := d.repo.Reactivate(ctx, n.ID); reErr != nil {
				d.log.Error().Err(reErr).Str("notification", n.ID).Msg("failed to reactivate notification")
			}
			continue
		}
		metrics.NotificationsSent.Inc()
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, n *Notification) error {
	event, err := d.events.Get(ctx, n.EventID)
	if err != nil {
		return errors.Wrap(err, "event lookup")
	}

	ctx, cancel := context.WithTimeout(ctx, d.gatewayTimeout)
	defer cancel()

	if err := d.gateway.Broadcast(ctx, n.DeviceTokens, event.Title, ""); err != nil {
		return errors.Wrap(err, "gateway broadcast")
	}
	return nil
}
