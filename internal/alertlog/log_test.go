package alertlog

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/market-pulse/internal/models"
)

func alertN(n int) models.Alert {
	return models.Alert{
		ID:        fmt.Sprintf("id-%d", n),
		RuleID:    fmt.Sprintf("rule-%d", n),
		Severity:  models.SeverityInfo,
		Message:   fmt.Sprintf("alert %d", n),
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute),
	}
}

func TestLogAppendAndRecentOrder(t *testing.T) {
	log := New(10)

	for i := 1; i <= 3; i++ {
		log.Append(alertN(i))
	}

	require.Equal(t, 3, log.Len())
	recent := log.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "id-3", recent[0].ID)
	assert.Equal(t, "id-2", recent[1].ID)
	assert.Equal(t, "id-1", recent[2].ID)
}

func TestLogEvictsOldestAtCapacity(t *testing.T) {
	log := New(3)

	for i := 1; i <= 4; i++ {
		log.Append(alertN(i))
	}

	require.Equal(t, 3, log.Len())
	recent := log.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "id-4", recent[0].ID)
	assert.Equal(t, "id-2", recent[2].ID)

	for _, a := range recent {
		assert.NotEqual(t, "id-1", a.ID)
	}
}

func TestLogRecentLimit(t *testing.T) {
	log := New(10)
	for i := 1; i <= 5; i++ {
		log.Append(alertN(i))
	}

	recent := log.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "id-5", recent[0].ID)
	assert.Equal(t, "id-4", recent[1].ID)

	assert.Len(t, log.Recent(100), 5)
}

func TestLogBatchAppend(t *testing.T) {
	log := New(5)

	log.Append(alertN(1), alertN(2), alertN(3))

	recent := log.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "id-3", recent[0].ID)
}

func TestLogEmpty(t *testing.T) {
	log := New(5)

	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.Recent(0))
	assert.Empty(t, log.Recent(3))
}

func TestLogMinimumCapacity(t *testing.T) {
	log := New(0)

	log.Append(alertN(1), alertN(2))

	assert.Equal(t, 1, log.Capacity())
	require.Equal(t, 1, log.Len())
	assert.Equal(t, "id-2", log.Recent(0)[0].ID)
}

func TestLogConcurrentAccess(t *testing.T) {
	log := New(50)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				log.Append(alertN(g*100 + i))
				_ = log.Recent(10)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 50, log.Len())
}
