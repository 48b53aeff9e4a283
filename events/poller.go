package events

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	eventsPolled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stripalerts_events_polled_total",
		Help: "Events received from the feed",
	})
	pollRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stripalerts_poll_retries_total",
		Help: "Transient poll failures that were retried",
	})
)

// TerminalError is a feed response that retrying cannot fix: bad
// credentials (401) or a bad URL (404). The polling loop stops on it.
type TerminalError struct {
	Status int
	URL    string
}

func (e *TerminalError) Error() string {
	return "events feed returned " + http.StatusText(e.Status) + " for " + e.URL + "; check credentials and base URL"
}

// IsTerminal reports whether err means polling must stop for good.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}

// Poller long-polls the events feed and follows the nextUrl cursor the
// server hands back. Transient failures (5xx, connection errors, garbled
// bodies) are retried against the same URL on an exponential schedule:
// 5s doubling up to 60s, reset to 5s by the next success.
type Poller struct {
	url    string
	client *http.Client
	retry  *backoff.ExponentialBackOff
	sleep  func(context.Context, time.Duration) error
	log    *logrus.Entry
}

// NewPoller starts at feedURL. timeout is the server-side long-poll window;
// the HTTP client allows slack on top of it so the request itself does not
// race the server's timeout.
func NewPoller(feedURL string, timeout time.Duration) *Poller {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Second
	b.Multiplier = 2
	b.MaxInterval = 60 * time.Second
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0 // never give up on transient failures
	b.Reset()

	return &Poller{
		url:    feedURL,
		client: &http.Client{Timeout: timeout + 10*time.Second},
		retry:  b,
		sleep:  sleepCtx,
		log:    logrus.WithField("component", "poller"),
	}
}

// NextEvents blocks until the feed yields a batch (possibly empty on a
// long-poll timeout) or an unrecoverable condition: context cancellation
// or a terminal 401/404 response.
func (p *Poller) NextEvents(ctx context.Context) ([]Event, error) {
	for {
		feed, err := p.fetch(ctx)
		if err == nil {
			if feed.NextURL != "" {
				p.url = feed.NextURL
			}
			p.retry.Reset()
			eventsPolled.Add(float64(len(feed.Events)))
			return feed.Events, nil
		}
		if IsTerminal(err) || ctx.Err() != nil {
			return nil, err
		}

		delay := p.retry.NextBackOff()
		pollRetries.Inc()
		p.log.WithError(err).Warnf("poll failed, retrying in %s", delay)
		if serr := p.sleep(ctx, delay); serr != nil {
			return nil, serr
		}
	}
}

func (p *Poller) fetch(ctx context.Context) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var feed Feed
		if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
			return nil, errors.Wrap(err, "decode feed")
		}
		return &feed, nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return nil, &TerminalError{Status: resp.StatusCode, URL: p.url}
	default:
		return nil, errors.Errorf("server returned status %d", resp.StatusCode)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
