package cli

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DescribeAndStop(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	s := StartSpinner(&out, "Enviando documento...")
	s.Describe("Analisando com IA...")
	time.Sleep(3 * spinnerTick)
	s.Stop()

	assert.Contains(t, out.String(), "Analisando com IA...")
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	s := StartSpinner(&syncBuffer{}, "x")
	s.Stop()
	assert.NotPanics(t, s.Stop)
}
