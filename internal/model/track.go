package model

import "strings"

// ResolvedTrack трек Spotify, прошедший фильтр по месяцу релиза
type ResolvedTrack struct {
	ID          string   `json:"id"`
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	ReleaseDate string   `json:"release_date"`
}

// ArtistLine возвращает артистов через запятую
func (t ResolvedTrack) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// TrackSet упорядоченное множество треков по ID, первое вхождение выигрывает
type TrackSet struct {
	order []ResolvedTrack
	seen  map[string]struct{}
}

// NewTrackSet создает пустое множество
func NewTrackSet() *TrackSet {
	return &TrackSet{seen: make(map[string]struct{})}
}

// Add добавляет трек и сообщает, был ли он новым
func (s *TrackSet) Add(track ResolvedTrack) bool {
	if _, ok := s.seen[track.ID]; ok {
		return false
	}
	s.seen[track.ID] = struct{}{}
	s.order = append(s.order, track)
	return true
}

// Len возвращает размер множества
func (s *TrackSet) Len() int {
	return len(s.order)
}

// Tracks возвращает треки в порядке добавления
func (s *TrackSet) Tracks() []ResolvedTrack {
	out := make([]ResolvedTrack, len(s.order))
	copy(out, s.order)
	return out
}

// URIs возвращает URI треков в порядке добавления
func (s *TrackSet) URIs() []string {
	uris := make([]string, 0, len(s.order))
	for _, t := range s.order {
		uris = append(uris, t.URI)
	}
	return uris
}
