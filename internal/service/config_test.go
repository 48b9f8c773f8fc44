package service

import (
	"context"
	"errors"
	"testing"

	"monthlymix/internal/config"
	"monthlymix/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memConfigRepo struct {
	values map[string]string
}

func (m *memConfigRepo) Get(_ context.Context, key string) (*model.Config, error) {
	value, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return &model.Config{Key: key, Value: value}, nil
}

func (m *memConfigRepo) GetAll(context.Context) ([]model.Config, error) {
	out := make([]model.Config, 0, len(m.values))
	for k, v := range m.values {
		out = append(out, model.Config{Key: k, Value: v})
	}
	return out, nil
}

func (m *memConfigRepo) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memConfigRepo) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestConfigService_GetActiveConfig_EnvOverDB(t *testing.T) {
	repo := &memConfigRepo{values: map[string]string{
		"SPOTIFY_CLIENT_ID":     "db-id",
		"SPOTIFY_CLIENT_SECRET": "db-secret",
		"SPOTIFY_REFRESH_TOKEN": "db-refresh",
		"SPOTIFY_OWNER_ID":      "db-owner",
	}}
	svc := NewConfigService(repo, config.SpotifyConfig{ClientID: "env-id"}, zap.NewNop())

	active, err := svc.GetActiveConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-id", active.ClientID)
	assert.Equal(t, "db-secret", active.ClientSecret)
	assert.Equal(t, "db-owner", active.OwnerID)
	assert.Equal(t, "db-refresh", active.Credentials().RefreshToken)
}

func TestConfigService_GetActiveConfig_ListsMissingKeys(t *testing.T) {
	svc := NewConfigService(nil, config.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
	}, zap.NewNop())

	_, err := svc.GetActiveConfig(context.Background())
	require.Error(t, err)

	var missing *MissingConfigError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"SPOTIFY_REFRESH_TOKEN", "SPOTIFY_OWNER_ID"}, missing.Keys)
	assert.Equal(t, "missing required configuration: SPOTIFY_REFRESH_TOKEN, SPOTIFY_OWNER_ID", err.Error())
}

func TestConfigService_SaveRefreshToken(t *testing.T) {
	repo := &memConfigRepo{values: map[string]string{}}
	svc := NewConfigService(repo, config.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "old",
		OwnerID:      "owner",
	}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.SaveRefreshToken(ctx, "new"))
	assert.Equal(t, "new", repo.values["SPOTIFY_REFRESH_TOKEN"])

	active, err := svc.GetActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", active.RefreshToken)
}

func TestConfigService_GetAllMasksSecrets(t *testing.T) {
	repo := &memConfigRepo{values: map[string]string{
		"SPOTIFY_CLIENT_SECRET": "s3cr3t",
		"SPOTIFY_OWNER_ID":      "owner",
	}}
	svc := NewConfigService(repo, config.SpotifyConfig{}, zap.NewNop())

	lines, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SPOTIFY_CLIENT_SECRET=[hidden]", "SPOTIFY_OWNER_ID=owner"}, lines)
}

func TestConfigService_WithoutStore(t *testing.T) {
	svc := NewConfigService(nil, config.SpotifyConfig{}, zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, svc.Set(ctx, "SPOTIFY_OWNER_ID", "x"), ErrNoConfigStore)
	_, err := svc.Get(ctx, "SPOTIFY_OWNER_ID")
	assert.ErrorIs(t, err, ErrNoConfigStore)
}
