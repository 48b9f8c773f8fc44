package model

import "fmt"

// RunStats счетчики одного запуска
type RunStats struct {
	ItemsScanned           int      `json:"itemsScanned"`
	CandidatesExtracted    int      `json:"candidatesExtracted"`
	TracksMatched          int      `json:"tracksMatched"`
	TracksAdded            int      `json:"tracksAdded"`
	TracksSkippedDuplicate int      `json:"tracksSkippedDuplicate"`
	Errors                 []string `json:"errors"`
}

// NewRunStats создает нулевые счетчики
func NewRunStats() *RunStats {
	return &RunStats{Errors: []string{}}
}

// AddError добавляет сообщение об ошибке
func (s *RunStats) AddError(format string, args ...interface{}) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// PlaylistRef ссылка на созданный плейлист
type PlaylistRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	ID   string `json:"id"`
}

// Report итог запуска, отдается вызывающей стороне как JSON
type Report struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Playlist   *PlaylistRef `json:"playlist,omitempty"`
	Stats      RunStats     `json:"stats"`
	DurationMS int64        `json:"duration_ms"`
	RunID      string       `json:"run_id"`
	Month      string       `json:"month"`
}
