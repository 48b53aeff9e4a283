// Command mockserver fakes the events API for manual testing: it serves the
// same long-polling feed shape the daemon expects, fabricates a qualifying
// "red" tip every few seconds, and can be forced to answer with an error
// status to exercise the poller's retry and terminal paths.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/MountainGod2/stripalerts/events"
)

// eventStore hands the latest fabricated event to exactly one poll.
type eventStore struct {
	mu     sync.Mutex
	latest *events.Event
}

func (s *eventStore) put(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &ev
}

func (s *eventStore) take() *events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.latest
	s.latest = nil
	return ev
}

func eventID(hasEvent bool) string {
	epoch := time.Now().Unix()
	if hasEvent {
		return fmt.Sprintf("%d-0", epoch)
	}
	return strconv.FormatInt(epoch, 10)
}

func makeTip(username, message string, tokens int) events.Event {
	return events.Event{
		Method: events.MethodTip,
		Object: events.Object{
			Broadcaster: "mock_broadcaster",
			Tip:         &events.Tip{Tokens: tokens, Message: message},
			User:        &events.User{Username: username},
		},
		ID: eventID(true),
	}
}

func main() {
	addr := flag.String("addr", ":5000", "listen address")
	responseCode := flag.Int("response-code", http.StatusOK, "status code to answer the events endpoint with")
	generateEvery := flag.Duration("generate-every", 10*time.Second, "interval between synthetic tips (0 disables)")
	flag.Parse()

	store := &eventStore{}

	if *generateEvery > 0 {
		go func() {
			for range time.Tick(*generateEvery) {
				store.put(makeTip("myFavoriteTipper", "red", 35))
			}
		}()
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/events/{username}/{token}/", func(w http.ResponseWriter, req *http.Request) {
		if *responseCode != http.StatusOK {
			writeJSON(w, *responseCode, map[string]string{"message": http.StatusText(*responseCode)})
			return
		}

		timeout, err := strconv.Atoi(req.URL.Query().Get("timeout"))
		if err != nil {
			timeout = 10
		}
		if timeout < 0 {
			timeout = 0
		}
		if timeout > 90 {
			timeout = 90
		}

		deadline := time.Now().Add(time.Duration(timeout) * time.Second)
		for time.Now().Before(deadline) {
			if ev := store.take(); ev != nil {
				writeJSON(w, http.StatusOK, events.Feed{Events: []events.Event{*ev}, NextURL: nextURL(req)})
				return
			}
			select {
			case <-req.Context().Done():
				return
			case <-time.After(time.Second):
			}
		}
		writeJSON(w, http.StatusOK, events.Feed{Events: []events.Event{}, NextURL: nextURL(req)})
	})

	// Manual injection for testing specific tips, e.g.
	//   curl -d '{"tokens":35,"message":"green"}' localhost:5000/trigger
	r.Post("/trigger", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Username string `json:"username"`
			Message  string `json:"message"`
			Tokens   int    `json:"tokens"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if body.Username == "" {
			body.Username = "tester"
		}
		store.put(makeTip(body.Username, body.Message, body.Tokens))
		w.WriteHeader(http.StatusNoContent)
	})

	logrus.Infof("mock events API listening on %s", *addr)
	logrus.Fatal(http.ListenAndServe(*addr, r))
}

func nextURL(req *http.Request) string {
	return fmt.Sprintf("http://%s/events/%s/%s/?i=%s&timeout=10",
		req.Host, chi.URLParam(req, "username"), chi.URLParam(req, "token"), eventID(false))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}
