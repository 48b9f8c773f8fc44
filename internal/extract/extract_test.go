package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "no urls", text: "just some words", want: []string{}},
		{
			name: "duplicate url",
			text: "https://youtu.be/abc and again https://youtu.be/abc",
			want: []string{"https://youtu.be/abc"},
		},
		{
			name: "trailing punctuation",
			text: "Listen: https://open.spotify.com/track/XYZ. Also (https://soundcloud.com/a/b), ok?",
			want: []string{"https://open.spotify.com/track/XYZ", "https://soundcloud.com/a/b"},
		},
		{
			name: "balanced parentheses kept",
			text: "see https://en.wikipedia.org/wiki/Song_(music)!",
			want: []string{"https://en.wikipedia.org/wiki/Song_(music)"},
		},
		{
			name: "non http scheme ignored",
			text: "ftp://example.com and spotify:track:123 and http:// nothing",
			want: []string{},
		},
		{
			name: "order of first occurrence",
			text: "http://b.example/x https://a.example/y http://b.example/x",
			want: []string{"http://b.example/x", "https://a.example/y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URLs(tt.text))
		})
	}
}

func TestRemoveURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain", text: "Air - Sexy Boy https://youtu.be/xyz", want: "Air - Sexy Boy"},
		{name: "trimmed punctuation stays", text: "see https://youtu.be/xyz, then", want: "see , then"},
		{name: "link in parentheses", text: "see (https://open.spotify.com/track/ABC123).", want: "see ."},
		{name: "balanced link kept whole", text: "wiki https://en.wikipedia.org/wiki/Song_(music) here", want: "wiki here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveURLs(tt.text))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		url      string
		platform Platform
		trackID  string
	}{
		{"https://www.youtube.com/watch?v=abc", PlatformYouTube, ""},
		{"https://youtu.be/abc", PlatformYouTube, ""},
		{"https://music.youtube.com/watch?v=abc", PlatformYouTube, ""},
		{"https://m.soundcloud.com/artist/track", PlatformSoundCloud, ""},
		{"https://open.spotify.com/track/ABC123", PlatformSpotify, "ABC123"},
		{"https://OPEN.SPOTIFY.COM/track/ABC123?si=xyz", PlatformSpotify, "ABC123"},
		{"https://open.spotify.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC", PlatformSpotify, "4uLU6hMCjMI75M1A2tKUQC"},
		{"https://open.spotify.com/album/1ATL5GLyefJaxhQzSPVrLX", PlatformSpotify, ""},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", PlatformUnknown, ""},
		{"https://play.spotify.com/track/ABC123", PlatformSpotify, "ABC123"},
		{"https://spotify.link/aBcD", PlatformSpotify, ""},
		{"https://music.apple.com/us/album/x/123?i=456", PlatformAppleMusic, ""},
		{"https://www.deezer.com/en/track/3135556", PlatformDeezer, ""},
		{"https://listen.tidal.com/track/12345", PlatformTidal, ""},
		{"https://artist.bandcamp.com/track/song", PlatformBandcamp, ""},
		{"https://bandcamp.com/discover", PlatformUnknown, ""},
		{"https://example.com/track/1", PlatformUnknown, ""},
		{"not a url", PlatformUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := Classify(tt.url)
			assert.Equal(t, tt.platform, got.Platform)
			assert.Equal(t, tt.trackID, got.TrackID)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Query
	}{
		{
			name: "dash pattern",
			text: "Daft Punk - Around The World",
			want: Query{Raw: "Daft Punk - Around The World", Artist: "Daft Punk", Track: "Around The World"},
		},
		{
			name: "en dash and em dash",
			text: "Air – Sexy Boy",
			want: Query{Raw: "Air – Sexy Boy", Artist: "Air", Track: "Sexy Boy"},
		},
		{
			name: "by pattern",
			text: "Around The World by Daft Punk",
			want: Query{Raw: "Around The World by Daft Punk", Artist: "Daft Punk", Track: "Around The World"},
		},
		{
			name: "dash wins over by",
			text: "Foo - Bar by Baz",
			want: Query{Raw: "Foo - Bar by Baz", Artist: "Foo", Track: "Bar by Baz"},
		},
		{
			name: "promo suffixes and emoji",
			text: "🔥🔥 Daft Punk - Around The World (Official Music Video) [HD] 🎶",
			want: Query{Raw: "Daft Punk - Around The World", Artist: "Daft Punk", Track: "Around The World"},
		},
		{
			name: "bare promo suffix",
			text: "Daft Punk - Around The World official audio",
			want: Query{Raw: "Daft Punk - Around The World", Artist: "Daft Punk", Track: "Around The World"},
		},
		{
			name: "promo word as the whole title",
			text: "Daft Punk - Audio",
			want: Query{Raw: "Daft Punk - Audio", Artist: "Daft Punk", Track: "Audio"},
		},
		{
			name: "lead in phrase",
			text: "Check out Daft Punk - Around The World",
			want: Query{Raw: "Daft Punk - Around The World", Artist: "Daft Punk", Track: "Around The World"},
		},
		{
			name: "full width folding",
			text: "Ｄａｆｔ Ｐｕｎｋ - Ｏｎｅ Ｍｏｒｅ Ｔｉｍｅ",
			want: Query{Raw: "Daft Punk - One More Time", Artist: "Daft Punk", Track: "One More Time"},
		},
		{
			name: "no pattern",
			text: "  the   best   song   ever  ",
			want: Query{Raw: "the best song ever"},
		},
		{
			name: "hyphen inside word is not a separator",
			text: "Jay-Z Empire State of Mind",
			want: Query{Raw: "Jay-Z Empire State of Mind"},
		},
		{name: "empty", text: "   ", want: Query{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.text))
		})
	}
}

func TestBuildCandidates(t *testing.T) {
	opts := DefaultOptions()

	t.Run("direct spotify id", func(t *testing.T) {
		got := BuildCandidates("https://open.spotify.com/track/ABC123", opts)
		require.Len(t, got, 1)
		assert.Equal(t, PlatformSpotify, got[0].Platform)
		assert.Equal(t, "ABC123", got[0].DirectTrackID)
		assert.Equal(t, "https://open.spotify.com/track/ABC123", got[0].SourceURL)
		assert.Empty(t, got[0].SearchQuery)
	})

	t.Run("query from surrounding text", func(t *testing.T) {
		got := BuildCandidates("Air - Sexy Boy https://youtu.be/xyz (Official Video)", opts)
		require.Len(t, got, 1)
		assert.Equal(t, PlatformYouTube, got[0].Platform)
		assert.Equal(t, "Air", got[0].ArtistHint)
		assert.Equal(t, "Sexy Boy", got[0].TrackHint)
		assert.NotContains(t, got[0].SearchQuery, "youtu")
	})

	t.Run("link inside parentheses", func(t *testing.T) {
		got := BuildCandidates("Daft Punk - Get Lucky (https://youtu.be/5NV6Rdv1a3I)", opts)
		require.Len(t, got, 1)
		assert.Equal(t, "Daft Punk", got[0].ArtistHint)
		assert.Equal(t, "Get Lucky", got[0].TrackHint)
	})

	t.Run("one candidate per music url", func(t *testing.T) {
		got := BuildCandidates("https://youtu.be/a https://example.com/x https://soundcloud.com/b/c", opts)
		require.Len(t, got, 2)
		assert.Equal(t, PlatformYouTube, got[0].Platform)
		assert.Equal(t, PlatformSoundCloud, got[1].Platform)
	})

	t.Run("text only fallback", func(t *testing.T) {
		got := BuildCandidates("Check out Daft Punk - Around The World", opts)
		require.Len(t, got, 1)
		assert.Equal(t, PlatformText, got[0].Platform)
		assert.Empty(t, got[0].SourceURL)
		assert.Equal(t, "Daft Punk", got[0].ArtistHint)
		assert.Equal(t, "Around The World", got[0].TrackHint)
	})

	t.Run("text with non music link falls back", func(t *testing.T) {
		got := BuildCandidates("Daft Punk - Around The World https://example.com/blog", opts)
		require.Len(t, got, 1)
		assert.Equal(t, PlatformText, got[0].Platform)
	})

	t.Run("short text ignored", func(t *testing.T) {
		assert.Empty(t, BuildCandidates("nice one", opts))
		assert.Empty(t, BuildCandidates("https://example.com/page", opts))
		assert.Empty(t, BuildCandidates("", opts))
	})

	t.Run("long raw text without hints", func(t *testing.T) {
		got := BuildCandidates("that new massive attack single", opts)
		require.Len(t, got, 1)
		assert.Equal(t, "that new massive attack single", got[0].SearchQuery)
	})
}

func TestBuildAll_Dedupes(t *testing.T) {
	got := BuildAll([]string{
		"https://open.spotify.com/track/ABC123",
		"again https://open.spotify.com/track/ABC123?si=1",
		"Daft Punk - Around The World",
		"daft punk - around the world",
	}, DefaultOptions())

	require.Len(t, got, 2)
	assert.Equal(t, "ABC123", got[0].DirectTrackID)
	assert.Equal(t, PlatformText, got[1].Platform)
}

func TestFromHTML(t *testing.T) {
	html := `<div><p>Check out <a href="https://youtu.be/abc">Air - Sexy Boy</a></p>` +
		`<p>Second<br>line</p><script>var x = "https://evil.example";</script>` +
		`<a href="https://youtu.be/abc">dup</a><a href="/relative">rel</a></div>`

	text, links, err := FromHTML(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://youtu.be/abc"}, links)
	assert.Contains(t, text, "Air - Sexy Boy")
	assert.Contains(t, text, "Second line")
	assert.NotContains(t, text, "evil")
}
