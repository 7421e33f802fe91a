// Package mocks provides testify mocks shared across package tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/auditflow/auditflow/pkg/models"
)

// MockGateway is a mock implementation of the gateway.Client interface.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SubmitRun(ctx context.Context, source models.SourceSelection) (string, error) {
	args := m.Called(ctx, source)

	return args.String(0), args.Error(1)
}

func (m *MockGateway) JobStatus(ctx context.Context, jobID string) (*models.JobState, error) {
	args := m.Called(ctx, jobID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.JobState), args.Error(1)
}

func (m *MockGateway) ReadinessCheck(ctx context.Context, scores models.ScoreCard) (*models.ReadinessResult, error) {
	args := m.Called(ctx, scores)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ReadinessResult), args.Error(1)
}

func (m *MockGateway) ComplianceCheck(ctx context.Context, profile string, scores models.ScoreCard) (*models.ComplianceResult, error) {
	args := m.Called(ctx, profile, scores)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ComplianceResult), args.Error(1)
}

func (m *MockGateway) CostEstimate(ctx context.Context, metrics map[string]float64, rate float64) (*models.CostResult, error) {
	args := m.Called(ctx, metrics, rate)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CostResult), args.Error(1)
}

func (m *MockGateway) GenerateDocument(ctx context.Context, docType models.DocumentType, format string, contextData map[string]any) (*models.GeneratedDocument, error) {
	args := m.Called(ctx, docType, format, contextData)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.GeneratedDocument), args.Error(1)
}

func (m *MockGateway) CompareContract(ctx context.Context, contractID string, scores models.ScoreCard) (*models.ComparisonResult, error) {
	args := m.Called(ctx, contractID, scores)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ComparisonResult), args.Error(1)
}

func (m *MockGateway) DocumentRequirements(ctx context.Context, classification string) (*models.DocumentRequirements, error) {
	args := m.Called(ctx, classification)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.DocumentRequirements), args.Error(1)
}
