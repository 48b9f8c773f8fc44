package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"monthlymix/internal/extract"
	"monthlymix/internal/gateway/spotify"
	"monthlymix/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 10 февраля 2026, целевой месяц январь 2026
var testNow = time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

type mixtapeFixture struct {
	api       *fakeAPI
	links     *memLinks
	runs      *memRuns
	playlists *memPlaylists
	notifier  *recordingNotifier
	mixtape   *Mixtape
}

func newMixtapeFixture(configs ActiveConfigSource) *mixtapeFixture {
	f := &mixtapeFixture{
		api:       newFakeAPI(),
		links:     newMemLinks(),
		runs:      &memRuns{},
		playlists: &memPlaylists{},
		notifier:  &recordingNotifier{},
	}
	history := NewHistoryService(f.playlists, f.runs, zap.NewNop())
	f.mixtape = NewMixtape(configs, f.links, f.api.factory, history, MixtapeOptions{
		SearchLimit: 10,
		Extract:     extract.DefaultOptions(),
	}, zap.NewNop())
	f.mixtape.now = func() time.Time { return testNow }
	f.mixtape.AddNotifier(f.notifier)
	return f
}

func TestMixtape_DirectLinkEndToEnd(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.links.links["2026-01"] = []string{"check this https://open.spotify.com/track/ABC123"}
	f.api.tracks["ABC123"] = track("ABC123", "Song", "Artist", "2026-01-15")

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	require.True(t, report.Success, report.Message)
	assert.Equal(t, "2026-01", report.Month)
	require.NotNil(t, report.Playlist)
	assert.Equal(t, "Community Picks January 2026", report.Playlist.Name)
	assert.Equal(t, "https://open.spotify.com/playlist/pl1", report.Playlist.URL)
	assert.Equal(t, 1, report.Stats.ItemsScanned)
	assert.Equal(t, 1, report.Stats.CandidatesExtracted)
	assert.Equal(t, 1, report.Stats.TracksMatched)
	assert.Equal(t, 1, report.Stats.TracksAdded)
	assert.Empty(t, report.Stats.Errors)
	assert.NotEmpty(t, report.RunID)

	assert.Empty(t, f.api.searchCalls)
	assert.Equal(t, []string{"spotify:track:ABC123"}, f.api.members["pl1"])

	require.Len(t, f.runs.records, 1)
	assert.Equal(t, model.TriggerCLI, f.runs.records[0].Trigger)
	assert.Equal(t, "pl1", f.runs.records[0].PlaylistID)
	require.Len(t, f.playlists.saved, 1)
	assert.Equal(t, "2026-01", f.playlists.saved[0].MonthKey)
	assert.Equal(t, "Artist", f.playlists.tracks["pl1"][0].Artist)
	require.Len(t, f.notifier.reports, 1)
}

func TestMixtape_TextSubmission(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.links.links["2026-01"] = []string{"Daft Punk - Get Lucky (Official Video)"}
	f.api.search[`track:"Get Lucky" artist:"Daft Punk"`] = []spotify.Track{
		track("LUCKY", "Get Lucky", "Daft Punk", "2026-01-05"),
	}

	report := f.mixtape.Run(context.Background(), model.TriggerHTTP)

	require.True(t, report.Success, report.Message)
	assert.Equal(t, 1, report.Stats.TracksAdded)
	assert.Equal(t, []string{`track:"Get Lucky" artist:"Daft Punk"`}, f.api.searchCalls)
	assert.Equal(t, []string{"spotify:track:LUCKY"}, f.api.members["pl1"])
}

func TestMixtape_ConfigErrorSurfacedVerbatim(t *testing.T) {
	cfgErr := &MissingConfigError{Keys: []string{"SPOTIFY_OWNER_ID"}}
	f := newMixtapeFixture(staticConfig{err: cfgErr})

	report := f.mixtape.Run(context.Background(), model.TriggerSchedule)

	assert.False(t, report.Success)
	assert.Equal(t, cfgErr.Error(), report.Message)
	assert.Nil(t, report.Playlist)
	assert.Empty(t, f.api.getCalls)
	assert.Empty(t, f.api.created)
}

func TestMixtape_AuthFailure(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.api.authErr = errors.New("invalid_grant")

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	assert.False(t, report.Success)
	assert.Contains(t, report.Message, "invalid_grant")
	assert.Equal(t, "2026-01", report.Month)
}

func TestMixtape_NoSubmissions(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	assert.True(t, report.Success)
	assert.Nil(t, report.Playlist)
	assert.Equal(t, 0, report.Stats.ItemsScanned)
	assert.Empty(t, f.api.created)
}

func TestMixtape_NoMatchesCreatesNoPlaylist(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.links.links["2026-01"] = []string{"https://open.spotify.com/track/OLD1"}
	f.api.tracks["OLD1"] = track("OLD1", "Old", "Artist", "2020-03-01")

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	assert.True(t, report.Success)
	assert.Nil(t, report.Playlist)
	assert.Equal(t, 1, report.Stats.CandidatesExtracted)
	assert.Equal(t, 0, report.Stats.TracksMatched)
	assert.Empty(t, f.api.created)
}

func TestMixtape_CandidateErrorsDoNotAbort(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.links.links["2026-01"] = []string{
		"https://open.spotify.com/track/MISSING",
		"https://open.spotify.com/track/GOOD",
		"https://open.spotify.com/track/GOOD",
	}
	f.api.tracks["GOOD"] = track("GOOD", "Good", "Artist", "2026-01-31")

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	require.True(t, report.Success, report.Message)
	assert.Equal(t, 3, report.Stats.ItemsScanned)
	assert.Equal(t, 2, report.Stats.CandidatesExtracted)
	assert.Equal(t, 1, report.Stats.TracksAdded)
	require.Len(t, report.Stats.Errors, 1)
	assert.Contains(t, report.Stats.Errors[0], "MISSING")
}

func TestMixtape_PublishFailureKeepsPartialStats(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.links.links["2026-01"] = []string{"https://open.spotify.com/track/GOOD"}
	f.api.tracks["GOOD"] = track("GOOD", "Good", "Artist", "2026-01-31")
	f.api.failAddAt = 1

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	assert.False(t, report.Success)
	assert.Equal(t, 1, report.Stats.TracksMatched)
	assert.Equal(t, 0, report.Stats.TracksAdded)
	require.NotNil(t, report.Playlist)
	assert.Empty(t, f.playlists.saved)
	require.Len(t, f.runs.records, 1)
	assert.False(t, f.runs.records[0].Success)
}

func TestMixtape_SourcesAreBestEffort(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.api.tracks["FEED1"] = track("FEED1", "From Feed", "Artist", "2026-01-03")
	f.mixtape.AddSource(stubSource{name: "blog", items: []string{"https://open.spotify.com/track/FEED1"}})
	f.mixtape.AddSource(stubSource{name: "board", err: errors.New("timeout")})

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	require.True(t, report.Success, report.Message)
	assert.Equal(t, 1, report.Stats.ItemsScanned)
	assert.Equal(t, 1, report.Stats.TracksAdded)
	require.Len(t, report.Stats.Errors, 1)
	assert.Contains(t, report.Stats.Errors[0], "board")
}

func TestMixtape_HistoryFailureIsNotFatal(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.links.links["2026-01"] = []string{"https://open.spotify.com/track/GOOD"}
	f.api.tracks["GOOD"] = track("GOOD", "Good", "Artist", "2026-01-31")
	f.playlists.err = errors.New("disk full")

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	assert.True(t, report.Success)
	require.Len(t, report.Stats.Errors, 1)
	assert.Contains(t, report.Stats.Errors[0], "disk full")
}

func TestMixtape_RunForMonth(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.links.links["2025-12"] = []string{"https://open.spotify.com/track/DEC"}
	f.api.tracks["DEC"] = track("DEC", "December", "Artist", "2025-12-24")

	month, err := model.ParseMonthKey("2025-12")
	require.NoError(t, err)
	report := f.mixtape.RunForMonth(context.Background(), model.TriggerCLI, month)

	require.True(t, report.Success, report.Message)
	assert.Equal(t, "2025-12", report.Month)
	assert.Equal(t, "Community Picks December 2025", report.Playlist.Name)
}

func TestMixtape_ReportJSONShape(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)
	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "playlist")
	stats := decoded["stats"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, stats["errors"])
}

type blockingConfig struct {
	entered chan struct{}
	release chan struct{}
}

func (b blockingConfig) GetActiveConfig(context.Context) (*ActiveConfig, error) {
	close(b.entered)
	<-b.release
	return nil, errors.New("stopped")
}

func TestExclusiveRunner_RejectsConcurrentRun(t *testing.T) {
	cfg := blockingConfig{entered: make(chan struct{}), release: make(chan struct{})}
	f := newMixtapeFixture(cfg)
	runner := NewExclusiveRunner(f.mixtape)

	done := make(chan *model.Report)
	go func() {
		report, _ := runner.TryRun(context.Background(), model.TriggerSchedule)
		done <- report
	}()

	<-cfg.entered
	_, err := runner.TryRun(context.Background(), model.TriggerHTTP)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(cfg.release)
	report := <-done
	require.NotNil(t, report)
	assert.False(t, report.Success)
}

func TestMixtape_SpacesLookups(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.mixtape.opts.RequestDelay = 60 * time.Millisecond
	f.links.links["2026-01"] = []string{
		"https://open.spotify.com/track/AAA",
		"https://open.spotify.com/track/BBB",
		"https://open.spotify.com/track/CCC",
	}
	for _, id := range []string{"AAA", "BBB", "CCC"} {
		f.api.tracks[id] = track(id, "Song "+id, "Artist", "2026-01-10")
	}

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	require.True(t, report.Success, report.Message)
	require.Len(t, f.api.lookups, 3)
	for i := 1; i < len(f.api.lookups); i++ {
		gap := f.api.lookups[i].Sub(f.api.lookups[i-1])
		assert.GreaterOrEqual(t, gap, 50*time.Millisecond, "lookup %d came too early", i)
	}
}

func TestMixtape_CountsRepeatedMatches(t *testing.T) {
	f := newMixtapeFixture(validActiveConfig())
	f.links.links["2026-01"] = []string{
		"https://open.spotify.com/track/ABC123",
		"Artist - Song",
	}
	f.api.tracks["ABC123"] = track("ABC123", "Song", "Artist", "2026-01-15")
	f.api.search[`track:"Song" artist:"Artist"`] = []spotify.Track{
		track("ABC123", "Song", "Artist", "2026-01-15"),
	}

	report := f.mixtape.Run(context.Background(), model.TriggerCLI)

	require.True(t, report.Success, report.Message)
	assert.Equal(t, 2, report.Stats.CandidatesExtracted)
	assert.Equal(t, 1, report.Stats.TracksMatched)
	assert.Equal(t, 1, report.Stats.TracksAdded)
	assert.Equal(t, 1, report.Stats.TracksSkippedDuplicate)
}
