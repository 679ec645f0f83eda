// Package ops implements the console watcher used during household
// debugging: it polls the API for the roster, tasks, and per-device
// presence, and logs a compact snapshot each round.
package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Watcher struct {
	baseURL  string
	client   *http.Client
	interval time.Duration
	log      *logrus.Logger

	mu         sync.Mutex
	cancelPrev context.CancelFunc
}

func NewWatcher(baseURL string, interval time.Duration, log *logrus.Logger) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		interval: interval,
		log:      log,
	}
}

type userEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type taskEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	State string `json:"state"`
}

type presenceEntry struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// Run polls until the context is cancelled. Each tick supersedes the
// previous round: a slow round is cancelled rather than allowed to log a
// stale snapshot after a newer one.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.startRound(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.startRound(ctx)
		}
	}
}

func (w *Watcher) startRound(parent context.Context) {
	roundCtx, cancel := context.WithCancel(parent)

	w.mu.Lock()
	if w.cancelPrev != nil {
		w.cancelPrev()
	}
	w.cancelPrev = cancel
	w.mu.Unlock()

	go func() {
		defer cancel()
		if err := w.Snapshot(roundCtx); err != nil && roundCtx.Err() == nil {
			w.log.WithError(err).Warn("watch round failed")
		}
	}()
}

// Snapshot fetches one full view and logs it. Presence lookups fan out
// per user; one offline device or failed lookup does not abort the round.
func (w *Watcher) Snapshot(ctx context.Context) error {
	var usersResp struct {
		Users []userEntry `json:"users"`
	}
	if err := w.getJSON(ctx, "/api/users", &usersResp); err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}

	var tasksResp struct {
		Tasks []taskEntry `json:"tasks"`
	}
	if err := w.getJSON(ctx, "/api/tasks", &tasksResp); err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}

	online := make(map[string]bool, len(usersResp.Users))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, u := range usersResp.Users {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			var p presenceEntry
			if err := w.getJSON(ctx, "/api/device/presence?userId="+id, &p); err != nil {
				w.log.WithError(err).WithField("user", id).Debug("presence lookup failed")
				return
			}
			mu.Lock()
			online[id] = p.Online
			mu.Unlock()
		}(u.ID)
	}
	wg.Wait()

	states := map[string]int{}
	for _, t := range tasksResp.Tasks {
		states[t.State]++
	}

	w.log.WithFields(logrus.Fields{
		"users":  len(usersResp.Users),
		"tasks":  len(tasksResp.Tasks),
		"states": states,
		"online": online,
	}).Info("household snapshot")
	return nil
}

func (w *Watcher) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
