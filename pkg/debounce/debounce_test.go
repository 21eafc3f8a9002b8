package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects emissions for assertions.
type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) emit(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

func TestBurstEmitsLastValueOnce(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.emit)
	defer d.Stop()

	d.Set("a")
	d.Set("ap")
	d.Set("app")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	// Wait past another interval to confirm nothing else fires.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"app"}, rec.snapshot())
}

func TestStopBeforeIntervalSuppressesEmission(t *testing.T) {
	rec := &recorder{}
	d := New(30*time.Millisecond, rec.emit)

	d.Set("pending")
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestSetAfterStopIsIgnored(t *testing.T) {
	rec := &recorder{}
	d := New(10*time.Millisecond, rec.emit)
	d.Stop()

	d.Set("late")
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestSeparateBurstsEmitSeparately(t *testing.T) {
	rec := &recorder{}
	d := New(15*time.Millisecond, rec.emit)
	defer d.Stop()

	d.Set("first")
	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	d.Set("second")
	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"first", "second"}, rec.snapshot())
}

func TestFlushEmitsImmediately(t *testing.T) {
	rec := &recorder{}
	d := New(time.Hour, rec.emit)
	defer d.Stop()

	d.Set("now")
	d.Flush()
	assert.Equal(t, []string{"now"}, rec.snapshot())

	// Flush with nothing pending is a no-op.
	d.Flush()
	assert.Equal(t, []string{"now"}, rec.snapshot())
}

func TestDefaultIntervalApplied(t *testing.T) {
	d := New[string](0, func(string) {})
	defer d.Stop()
	assert.Equal(t, DefaultInterval, d.interval)
}
