package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStopIsIdempotent(t *testing.T) {
	p := New(Options{ReportInterval: time.Hour, SampleInterval: time.Hour})
	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
}

func TestStartOperationRecordsTimings(t *testing.T) {
	p := New(Options{})

	stop := p.StartOperation("mask")
	time.Sleep(time.Millisecond)
	stop()
	p.StartOperation("mask")()

	p.mu.Lock()
	defer p.mu.Unlock()
	op, ok := p.operations["mask"]
	require.True(t, ok)
	assert.EqualValues(t, 2, op.count)
	assert.Len(t, op.durations, 2)
	assert.GreaterOrEqual(t, op.max, op.min)
}

func TestSampleHistoryIsBounded(t *testing.T) {
	p := New(Options{MaxSamples: 4})
	for i := 0; i < 10; i++ {
		p.record("op", time.Duration(i+1)*time.Millisecond)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	op := p.operations["op"]
	assert.Len(t, op.durations, 4)
	assert.EqualValues(t, 10, op.count)

	// The running total covers only the retained window: 7+8+9+10 ms.
	assert.Equal(t, 34*time.Millisecond, op.total)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{in: 512, want: "512 B"},
		{in: 2048, want: "2.0 KB"},
		{in: 5 * 1024 * 1024, want: "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}
