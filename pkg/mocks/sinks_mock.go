package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ninjagenz/automata/pkg/eventbus"
	"github.com/ninjagenz/automata/pkg/models"
)

// MockNotifier is a mock implementation of protocol.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, recipient, message string) error {
	args := m.Called(ctx, recipient, message)

	return args.Error(0)
}

// MockRecordUpdater is a mock implementation of protocol.RecordUpdater.
type MockRecordUpdater struct {
	mock.Mock
}

func (m *MockRecordUpdater) Apply(ctx context.Context, recordKind, recordID string, patch map[string]any) error {
	args := m.Called(ctx, recordKind, recordID, patch)

	return args.Error(0)
}

// MockContinuationScheduler is a mock implementation of protocol.ContinuationScheduler.
type MockContinuationScheduler struct {
	mock.Mock
}

func (m *MockContinuationScheduler) Schedule(ctx context.Context, c *models.Continuation) error {
	args := m.Called(ctx, c)

	return args.Error(0)
}

// MockEventPublisher is a mock implementation of eventbus.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}
