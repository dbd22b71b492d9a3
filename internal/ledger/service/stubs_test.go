package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/repository/memory"
)

type stubStoreMetrics struct{}

func (stubStoreMetrics) Observe(string, error, time.Time) {}

func newLedgerRepo(t *testing.T) *memory.Repository {
	t.Helper()
	repo, err := memory.NewRepository(stubStoreMetrics{})
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	return repo
}

type recordedEvent struct {
	topic model.Topic
	event any
}

type recorderBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recorderBus) Publish(topic model.Topic, event any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{topic: topic, event: event})
}

func (b *recorderBus) byTopic(topic model.Topic) []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []any
	for _, e := range b.events {
		if e.topic == topic {
			out = append(out, e.event)
		}
	}
	return out
}

type producerRecorder struct {
	mu      sync.Mutex
	seals   []error
	commits []error
}

func (m *producerRecorder) ObserveSeal(_ string, err error, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seals = append(m.seals, err)
}

func (m *producerRecorder) ObserveCommit(_ string, err error, _ int, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits = append(m.commits, err)
}

type failingSealer struct {
	err error
}

func (f failingSealer) Seal(context.Context, *model.BlockHeader) (string, error) {
	return "", f.err
}

func (f failingSealer) Difficulty() uint32 {
	return 7
}
