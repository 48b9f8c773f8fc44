package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"monthlymix/internal/gateway/spotify"
	"monthlymix/internal/model"
)

// fakeAPI имитирует Spotify в памяти
type fakeAPI struct {
	mu sync.Mutex

	authErr   error
	tracks    map[string]spotify.Track
	search    map[string][]spotify.Track
	searchErr map[string]error
	createErr error
	failAddAt int

	getCalls    []string
	searchCalls []string
	lookups     []time.Time
	addCalls    [][]string
	members     map[string][]string
	created     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		tracks:    make(map[string]spotify.Track),
		search:    make(map[string][]spotify.Track),
		searchErr: make(map[string]error),
		members:   make(map[string][]string),
	}
}

func (f *fakeAPI) Authenticate(context.Context) error {
	return f.authErr
}

func (f *fakeAPI) GetTrack(_ context.Context, id string) (*spotify.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)
	f.lookups = append(f.lookups, time.Now())

	track, ok := f.tracks[id]
	if !ok {
		return nil, fmt.Errorf("track %s not found", id)
	}
	return &track, nil
}

func (f *fakeAPI) SearchTracks(_ context.Context, query string, _ int) ([]spotify.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	f.lookups = append(f.lookups, time.Now())

	if err := f.searchErr[query]; err != nil {
		return nil, err
	}
	return f.search[query], nil
}

func (f *fakeAPI) CreatePlaylist(_ context.Context, ownerID, name, _ string) (*spotify.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	id := fmt.Sprintf("pl%d", len(f.created)+1)
	f.created = append(f.created, name)
	f.members[id] = nil
	return &spotify.Playlist{
		ID:   id,
		Name: name,
		URL:  "https://open.spotify.com/playlist/" + id,
	}, nil
}

func (f *fakeAPI) PlaylistTrackURIs(_ context.Context, playlistID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.members[playlistID]...), nil
}

func (f *fakeAPI) AddTracks(_ context.Context, playlistID string, uris []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.addCalls = append(f.addCalls, append([]string(nil), uris...))
	if f.failAddAt > 0 && len(f.addCalls) == f.failAddAt {
		return errors.New("spotify returned 502")
	}
	f.members[playlistID] = append(f.members[playlistID], uris...)
	return nil
}

func (f *fakeAPI) factory(spotify.Credentials) spotify.Interface {
	return f
}

func track(id, name, artist, releaseDate string) spotify.Track {
	return spotify.Track{
		ID:          id,
		URI:         "spotify:track:" + id,
		Name:        name,
		Artists:     []string{artist},
		ReleaseDate: releaseDate,
	}
}

type staticConfig struct {
	cfg *ActiveConfig
	err error
}

func (s staticConfig) GetActiveConfig(context.Context) (*ActiveConfig, error) {
	return s.cfg, s.err
}

func validActiveConfig() staticConfig {
	return staticConfig{cfg: &ActiveConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		OwnerID:      "owner",
	}}
}

type memLinks struct {
	mu    sync.Mutex
	links map[string][]string
	err   error
}

func newMemLinks() *memLinks {
	return &memLinks{links: make(map[string][]string)}
}

func (m *memLinks) GetSubmittedLinks(_ context.Context, monthKey string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]string(nil), m.links[monthKey]...), nil
}

func (m *memLinks) AppendSubmittedLinks(_ context.Context, monthKey string, links []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[monthKey] = append(m.links[monthKey], links...)
	return nil
}

type stubSource struct {
	name  string
	items []string
	err   error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(context.Context, model.TargetMonth) ([]string, error) {
	return s.items, s.err
}

type recordingNotifier struct {
	reports []*model.Report
}

func (n *recordingNotifier) Notify(_ context.Context, report *model.Report) error {
	n.reports = append(n.reports, report)
	return nil
}

type memRuns struct {
	records []model.RunRecord
}

func (m *memRuns) Create(_ context.Context, record *model.RunRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *memRuns) Latest(_ context.Context, limit int) ([]model.RunRecord, error) {
	if limit > len(m.records) {
		limit = len(m.records)
	}
	return m.records[len(m.records)-limit:], nil
}

type memPlaylists struct {
	saved  []model.Playlist
	tracks map[string][]model.PlaylistTrack
	err    error
}

func (m *memPlaylists) Save(_ context.Context, playlist *model.Playlist, tracks []model.PlaylistTrack) error {
	if m.err != nil {
		return m.err
	}
	if m.tracks == nil {
		m.tracks = make(map[string][]model.PlaylistTrack)
	}
	m.saved = append(m.saved, *playlist)
	m.tracks[playlist.SpotifyID] = tracks
	return nil
}

func (m *memPlaylists) List(context.Context, int) ([]model.Playlist, error) {
	return m.saved, nil
}

func (m *memPlaylists) GetTracks(_ context.Context, spotifyID string) ([]model.PlaylistTrack, error) {
	return m.tracks[spotifyID], nil
}

func (m *memPlaylists) Stats(context.Context, int) (*model.HistoryStats, error) {
	return &model.HistoryStats{Playlists: len(m.saved)}, nil
}
