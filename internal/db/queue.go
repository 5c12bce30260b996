package db

import (
	"database/sql"
	"time"

	log "github.com/sirupsen/logrus"
)

type task struct {
	exec func(*sql.DB) (any, error)
	resp chan result
}

type result struct {
	data any
	err  error
}

// DBQueue funnels every statement through a single worker so that SQLite
// never sees concurrent writers.
type DBQueue struct {
	tasks      chan task
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
	linear     bool
}

func NewDBQueue(db *sql.DB) *DBQueue {
	return newDBQueue(db, 100*time.Millisecond, false)
}

func NewDBQueueForTest(db *sql.DB) *DBQueue {
	return newDBQueue(db, time.Millisecond, true)
}

func newDBQueue(db *sql.DB, retryDelay time.Duration, linear bool) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan task, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: retryDelay,
		linear:     linear,
	}
	go q.worker()
	return q
}

func (q *DBQueue) Execute(exec func(*sql.DB) (any, error)) (any, error) {
	resp := make(chan result, 1)
	q.tasks <- task{exec: exec, resp: resp}
	r := <-resp
	return r.data, r.err
}

func (q *DBQueue) worker() {
	for t := range q.tasks {
		t.resp <- q.executeWithRetry(t)
	}
}

func (q *DBQueue) executeWithRetry(t task) result {
	var lastErr error
	for attempt := 0; attempt < q.maxRetry; attempt++ {
		data, err := t.exec(q.db)
		if err == nil {
			return result{data: data}
		}
		lastErr = err
		if err == sql.ErrNoRows {
			// a missing row will not appear by retrying
			break
		}
		if attempt < q.maxRetry-1 {
			log.WithError(err).Debugf("[DB] attempt %d/%d failed, retrying", attempt+1, q.maxRetry)
			if q.linear {
				time.Sleep(q.retryDelay)
			} else {
				time.Sleep(time.Duration(attempt+1) * q.retryDelay)
			}
		}
	}
	return result{err: lastErr}
}

func (q *DBQueue) Close() {
	close(q.tasks)
}

func (q *DBQueue) DB() *sql.DB {
	return q.db
}
