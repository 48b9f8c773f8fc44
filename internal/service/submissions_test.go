package service

import (
	"context"
	"testing"
	"time"

	"monthlymix/internal/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmissionService_Submit(t *testing.T) {
	links := newMemLinks()
	svc := NewSubmissionService(links, extract.DefaultOptions(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	result, err := svc.Submit(ctx, []string{
		"listen https://open.spotify.com/track/ABC123",
		"hello",
		"",
		"Daft Punk - Around The World",
	})
	require.NoError(t, err)
	assert.Equal(t, &SubmitResult{Month: "2026-03", Accepted: 2, Rejected: 2}, result)
	assert.Len(t, links.links["2026-03"], 2)

	count, err := svc.Count(ctx, svc.CurrentMonth())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSubmissionService_NothingAccepted(t *testing.T) {
	links := newMemLinks()
	svc := NewSubmissionService(links, extract.DefaultOptions(), zap.NewNop())

	result, err := svc.Submit(context.Background(), []string{"ok", "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Accepted)
	assert.Empty(t, links.links)
}
