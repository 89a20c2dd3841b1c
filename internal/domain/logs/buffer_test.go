package logs

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

func entry(i int) types.LogEntry {
	return types.LogEntry{
		ServiceID:   "api",
		Stream:      types.StreamStdout,
		TimestampMs: int64(i),
		Level:       types.LevelInfo,
		Line:        "line " + strconv.Itoa(i),
	}
}

func lines(entries []types.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Line
	}
	return out
}

func TestBufferDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewBuffer(0).Cap())
	assert.Equal(t, 3, NewBuffer(3).Cap())
}

func TestBufferEvictsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 1; i <= 4; i++ {
		b.Push(entry(i))
	}

	require.Equal(t, 3, b.Len())
	all := b.All()
	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, lines(all))
}

func TestBufferLast(t *testing.T) {
	b := NewBuffer(10)
	for i := 1; i <= 6; i++ {
		b.Push(entry(i))
	}

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{}},
		{2, []string{"line 5", "line 6"}},
		{6, []string{"line 1", "line 2", "line 3", "line 4", "line 5", "line 6"}},
		{50, []string{"line 1", "line 2", "line 3", "line 4", "line 5", "line 6"}},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, lines(b.Last(tt.n)))
		})
	}
}

func TestBufferLastAfterWrap(t *testing.T) {
	b := NewBuffer(4)
	for i := 1; i <= 10; i++ {
		b.Push(entry(i))
	}
	assert.Equal(t, []string{"line 8", "line 9", "line 10"}, lines(b.Last(3)))
}

func TestBufferClear(t *testing.T) {
	b := NewBuffer(2)
	b.Push(entry(1))
	b.Push(entry(2))
	b.Push(entry(3))
	b.Clear()

	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.All())

	b.Push(entry(4))
	assert.Equal(t, []string{"line 4"}, lines(b.All()))
}

func TestBufferConcurrent(t *testing.T) {
	b := NewBuffer(100)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				b.Push(entry(w*1000 + i))
				_ = b.Last(10)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 100, b.Len())
}
