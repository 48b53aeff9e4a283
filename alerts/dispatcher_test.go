package alerts

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/MountainGod2/stripalerts/events"
	"github.com/MountainGod2/stripalerts/ledcontrol"
)

type recordingSink struct {
	normal int
	colors []ledcontrol.AlertColor
}

func (s *recordingSink) TriggerNormalAlert(context.Context) error {
	s.normal++
	return nil
}

func (s *recordingSink) TriggerColorAlert(_ context.Context, c ledcontrol.AlertColor) error {
	s.colors = append(s.colors, c)
	return nil
}

func tipEvent(username string, tokens int, message string) events.Event {
	return events.Event{
		Method: events.MethodTip,
		Object: events.Object{
			Tip:  &events.Tip{Tokens: tokens, Message: message},
			User: &events.User{Username: username},
		},
		ID: "1-0",
	}
}

func TestBelowThresholdAlwaysNormal(t *testing.T) {
	sink := &recordingSink{}
	d := New(sink, 35)

	for _, msg := range []string{"red", "GREEN", "not a color", ""} {
		for _, tokens := range []int{0, 1, 10, 34} {
			if err := d.Handle(context.Background(), tipEvent("u", tokens, msg)); err != nil {
				t.Fatalf("Handle(%d, %q) returned error: %v", tokens, msg, err)
			}
		}
	}

	if len(sink.colors) != 0 {
		t.Fatalf("expected no color alerts below threshold, got %v", sink.colors)
	}
	if sink.normal != 16 {
		t.Fatalf("expected 16 normal alerts, got %d", sink.normal)
	}
}

func TestColorAlertAtOrAboveThreshold(t *testing.T) {
	tests := []struct {
		tokens  int
		message string
		want    ledcontrol.AlertColor
	}{
		{35, "green", ledcontrol.Green},
		{35, "-- Select One -- | green", ledcontrol.Green},
		{35, "RED", ledcontrol.Red},
		{100, "Violet", ledcontrol.Violet},
	}

	for _, tt := range tests {
		sink := &recordingSink{}
		d := New(sink, 35)
		if err := d.Handle(context.Background(), tipEvent("u", tt.tokens, tt.message)); err != nil {
			t.Fatalf("Handle(%d, %q) returned error: %v", tt.tokens, tt.message, err)
		}
		if len(sink.colors) != 1 || sink.colors[0] != tt.want {
			t.Fatalf("Handle(%d, %q): expected color alert %v, got %v (normal=%d)",
				tt.tokens, tt.message, tt.want, sink.colors, sink.normal)
		}
	}
}

func TestQualifyingTipWithoutColorIsNormal(t *testing.T) {
	sink := &recordingSink{}
	d := New(sink, 35)

	if err := d.Handle(context.Background(), tipEvent("u", 100, "thanks!")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if err := d.Handle(context.Background(), tipEvent("u", 35, "-- Select One --")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if sink.normal != 2 || len(sink.colors) != 0 {
		t.Fatalf("expected 2 normal alerts, got normal=%d colors=%v", sink.normal, sink.colors)
	}
}

func TestCleanMessage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"-- Select One -- | red", "red"},
		{"-- Select One --", ""},
		{"red", "red"},
		{"", ""},
		{"nice stream", "nice stream"},
	}
	for _, tt := range tests {
		if got := CleanMessage(tt.in); got != tt.want {
			t.Fatalf("CleanMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNonTipEventsIgnored(t *testing.T) {
	sink := &recordingSink{}
	d := New(sink, 35)

	for _, method := range []string{"follow", "chatMessage", "broadcastStart", ""} {
		ev := events.Event{Method: method}
		if err := d.Handle(context.Background(), ev); err != nil {
			t.Fatalf("Handle(%q) returned error: %v", method, err)
		}
	}

	if sink.normal != 0 || len(sink.colors) != 0 {
		t.Fatalf("non-tip events must not trigger alerts: normal=%d colors=%v", sink.normal, sink.colors)
	}
}

func TestMalformedTipSkipped(t *testing.T) {
	sink := &recordingSink{}
	d := New(sink, 35)

	ev := events.Event{Method: events.MethodTip, ID: "2-0"} // no tip object
	if err := d.Handle(context.Background(), ev); err != nil {
		t.Fatalf("malformed tip must be skipped, not fatal: %v", err)
	}
	if sink.normal != 0 || len(sink.colors) != 0 {
		t.Fatalf("malformed tip must not trigger alerts")
	}
}

type errSink struct{ err error }

func (s errSink) TriggerNormalAlert(context.Context) error { return s.err }
func (s errSink) TriggerColorAlert(context.Context, ledcontrol.AlertColor) error {
	return s.err
}

func TestSinkErrorPropagates(t *testing.T) {
	want := errors.New("render failed")
	d := New(errSink{err: want}, 35)

	if err := d.Handle(context.Background(), tipEvent("u", 10, "hi")); !errors.Is(err, want) {
		t.Fatalf("expected sink error to propagate, got %v", err)
	}
}

type scriptedSource struct {
	batches [][]events.Event
	err     error
}

func (s *scriptedSource) NextEvents(context.Context) ([]events.Event, error) {
	if len(s.batches) == 0 {
		return nil, s.err
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

func TestRunStopsOnSourceError(t *testing.T) {
	want := errors.New("terminal")
	sink := &recordingSink{}
	src := &scriptedSource{
		batches: [][]events.Event{{tipEvent("u", 35, "green"), tipEvent("u", 10, "red")}},
		err:     want,
	}

	err := New(sink, 35).Run(context.Background(), src)
	if !errors.Is(err, want) {
		t.Fatalf("Run should return the source error, got %v", err)
	}
	if len(sink.colors) != 1 || sink.colors[0] != ledcontrol.Green || sink.normal != 1 {
		t.Fatalf("batch not fully dispatched before stopping: normal=%d colors=%v", sink.normal, sink.colors)
	}
}
