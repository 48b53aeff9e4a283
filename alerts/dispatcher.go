package alerts

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/MountainGod2/stripalerts/events"
	"github.com/MountainGod2/stripalerts/ledcontrol"
)

// The tip menu front-end inserts this placeholder when the tipper never
// picked an option; it carries no meaning and is stripped before matching.
const (
	selectOnePrefix      = "-- Select One -- | "
	selectOnePlaceholder = "-- Select One --"
)

const defaultColorAlertTokens = 35

var (
	tipsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stripalerts_tips_total",
		Help: "Tip events dispatched",
	})
	alertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stripalerts_alerts_total",
		Help: "Alerts triggered, by kind",
	}, []string{"kind"})
)

// Source yields batches of feed events; see events.Poller.
type Source interface {
	NextEvents(ctx context.Context) ([]events.Event, error)
}

// Sink is the animation side of the house; see ledcontrol.Controller.
type Sink interface {
	TriggerNormalAlert(ctx context.Context) error
	TriggerColorAlert(ctx context.Context, color ledcontrol.AlertColor) error
}

// Dispatcher turns tip events into alerts. Tips of at least the token
// threshold whose message names a supported color become color alerts;
// every other tip becomes a normal alert.
type Dispatcher struct {
	sink      Sink
	threshold int
	log       *logrus.Entry
}

func New(sink Sink, colorAlertTokens int) *Dispatcher {
	if colorAlertTokens <= 0 {
		colorAlertTokens = defaultColorAlertTokens
	}
	return &Dispatcher{
		sink:      sink,
		threshold: colorAlertTokens,
		log:       logrus.WithField("component", "dispatcher"),
	}
}

// Run consumes batches from src until ctx is canceled, the source fails
// terminally, or the sink reports a hardware error. Events are handled
// strictly in order; alert pauses in the sink pace the whole loop.
func (d *Dispatcher) Run(ctx context.Context, src Source) error {
	for {
		batch, err := src.NextEvents(ctx)
		if err != nil {
			return err
		}
		for _, ev := range batch {
			if err := d.Handle(ctx, ev); err != nil {
				return err
			}
		}
	}
}

// Handle dispatches a single feed event. Non-tip and malformed events are
// logged and skipped; only sink failures propagate.
func (d *Dispatcher) Handle(ctx context.Context, ev events.Event) error {
	if ev.Method != events.MethodTip {
		d.log.WithField("method", ev.Method).Debug("ignoring event")
		return nil
	}
	tip := ev.Object.Tip
	if tip == nil {
		d.log.WithField("id", ev.ID).Warn("tip event without tip object, skipping")
		return nil
	}

	username := "Unknown"
	if ev.Object.User != nil && ev.Object.User.Username != "" {
		username = ev.Object.User.Username
	}
	message := CleanMessage(tip.Message)
	tipsTotal.Inc()
	d.log.WithFields(logrus.Fields{
		"user":    username,
		"tokens":  tip.Tokens,
		"message": message,
	}).Debug("tip received")

	if color, ok := ledcontrol.ColorFromString(message); ok && tip.Tokens >= d.threshold {
		alertsTotal.WithLabelValues("color").Inc()
		if err := d.sink.TriggerColorAlert(ctx, color); err != nil {
			d.log.WithError(err).Error("color alert failed")
			return err
		}
		return nil
	}

	alertsTotal.WithLabelValues("normal").Inc()
	if err := d.sink.TriggerNormalAlert(ctx); err != nil {
		d.log.WithError(err).Error("normal alert failed")
		return err
	}
	return nil
}

// CleanMessage strips the tip-menu placeholder so that a menu selection
// like "-- Select One -- | red" matches the color "red" and an untouched
// menu ("-- Select One --") collapses to an empty string.
func CleanMessage(message string) string {
	message = strings.ReplaceAll(message, selectOnePrefix, "")
	message = strings.ReplaceAll(message, selectOnePlaceholder, "")
	return strings.TrimSpace(message)
}
