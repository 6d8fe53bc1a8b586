package inflight

import (
	"github.com/viant/worker/service/dao"
	"go.uber.org/zap"
)

// Option customises a Table.
type Option func(*Table)

// WithJournal mirrors every entry to a persistent store so that a restarted
// process can fail tasks left behind by a crash.
func WithJournal(journal dao.Service[string, Entry]) Option {
	return func(t *Table) {
		t.journal = journal
	}
}

// WithLogger sets the logger used for journal errors.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}
