package idgen

import (
	"os"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier as string. It is a
// variable so tests can stub it.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// WorkerID returns a worker identifier composed of the host name and a short
// random suffix, e.g. "host-1a2b3c4d".
func WorkerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	id := New()
	if len(id) > 8 {
		id = id[:8]
	}
	return host + "-" + id
}
