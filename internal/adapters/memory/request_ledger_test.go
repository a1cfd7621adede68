package memory

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

func TestRequestLedger_AssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	l := NewRequestLedger()

	for i := 1; i <= 3; i++ {
		req, err := l.Append(ctx, entities.EmergencyRequest{PatientName: "p", SequenceID: 99})
		require.NoError(t, err)
		assert.Equal(t, i, req.SequenceID)
	}

	all, err := l.List(ctx)
	require.NoError(t, err)
	for i, req := range all {
		assert.Equal(t, i+1, req.SequenceID)
	}
}

func TestRequestLedger_ConcurrentAppendsAreUnique(t *testing.T) {
	ctx := context.Background()
	l := NewRequestLedger()

	const n = 200
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := l.Append(ctx, entities.EmergencyRequest{PatientName: "p"})
			assert.NoError(t, err)
			ids <- req.SequenceID
		}()
	}
	wg.Wait()
	close(ids)

	got := make([]int, 0, n)
	for id := range ids {
		got = append(got, id)
	}
	sort.Ints(got)
	for i, id := range got {
		assert.Equal(t, i+1, id)
	}

	count, _ := l.Count(ctx)
	assert.Equal(t, n, count)
}

func TestRequestLedger_Restore(t *testing.T) {
	ctx := context.Background()
	l := NewRequestLedger()

	err := l.Restore(ctx, []entities.EmergencyRequest{{SequenceID: 1}, {SequenceID: 3}})
	assert.ErrorContains(t, err, "position 2 has sequence id 3")

	require.NoError(t, l.Restore(ctx, []entities.EmergencyRequest{{SequenceID: 1}, {SequenceID: 2}}))
	req, err := l.Append(ctx, entities.EmergencyRequest{PatientName: "next"})
	require.NoError(t, err)
	assert.Equal(t, 3, req.SequenceID)
}
