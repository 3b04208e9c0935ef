package as2model

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	hostname string
	counter  uint64
)

func init() {
	h, err := os.Hostname()
	if err != nil {
		h = "localhost"
	}
	hostname = h
}

// NewMessageID produces a globally unique AS2 Message-ID, angle-bracketed
// per RFC 5322, combining a monotonic counter, a timestamp, and a host
// fingerprint so that concurrent Sender invocations across goroutines never
// collide, matching the "monotonic counter + timestamp + host fingerprint"
// guidance in §5.
func NewMessageID() string {
	n := atomic.AddUint64(&counter, 1)
	return fmt.Sprintf("<%d.%d.%s@%s>", time.Now().UnixNano(), n, uuid.NewString(), hostname)
}
