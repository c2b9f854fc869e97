// Package mocks provides testify mocks for the engine's collaborator
// interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/persistence"
)

// MockRuleRepository is a mock implementation of persistence.RuleRepository.
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) FindActiveRules(ctx context.Context, workspaceID, eventName string) ([]*models.Rule, error) {
	args := m.Called(ctx, workspaceID, eventName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) Rules(ctx context.Context, workspaceID string) ([]*models.Rule, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) RuleByID(ctx context.Context, workspaceID, id string) (*models.Rule, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) SaveRule(ctx context.Context, rule *models.Rule) error {
	args := m.Called(ctx, rule)

	return args.Error(0)
}

func (m *MockRuleRepository) DeleteRule(ctx context.Context, workspaceID, id string) error {
	args := m.Called(ctx, workspaceID, id)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) RuleRepository() persistence.RuleRepository {
	args := m.Called()

	return args.Get(0).(persistence.RuleRepository)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
