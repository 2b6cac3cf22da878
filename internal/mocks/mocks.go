// Package mocks har testify-mocker for grensesnittene runner- og
// backup-testene bruker.
package mocks

import (
	"context"

	"github.com/jonmartinstorm/repobackupern/internal/catalog"
	"github.com/jonmartinstorm/repobackupern/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) GetUser(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockFetcher) GetReposPage(ctx context.Context, page int) ([]models.RepoMeta, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RepoMeta), args.Error(1)
}

func (m *MockFetcher) GetBranches(ctx context.Context, fullName string) ([]string, error) {
	args := m.Called(ctx, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFetcher) GetTags(ctx context.Context, fullName string) ([]string, error) {
	args := m.Called(ctx, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFetcher) GetLanguages(ctx context.Context, fullName string) (map[string]int64, error) {
	args := m.Called(ctx, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockFetcher) GetGistsPage(ctx context.Context, login string, page int) ([]models.GistMeta, error) {
	args := m.Called(ctx, login, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GistMeta), args.Error(1)
}

func (m *MockFetcher) DownloadRawFile(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockCloner struct {
	mock.Mock
}

func (m *MockCloner) CloneAll(ctx context.Context, cloneURL, dest string, branches []string) error {
	args := m.Called(ctx, cloneURL, dest, branches)
	return args.Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) RecordSession(ctx context.Context, rec catalog.SessionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
