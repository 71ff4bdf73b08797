package main

import (
	"sync"
	"time"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

// latestHolder serializes access to the most recent result between
// the frame loop and the HTTP handlers.
type latestHolder struct {
	mu  sync.Mutex
	res vitals.Result
	at  time.Time
	ok  bool
}

func (l *latestHolder) set(res vitals.Result, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.res = res
	l.at = at
	l.ok = true
}

// Latest implements api.ResultSource.
func (l *latestHolder) Latest() (vitals.Result, time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.res, l.at, l.ok
}
