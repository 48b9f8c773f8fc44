package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform источник музыкальной ссылки
type Platform string

const (
	PlatformYouTube    Platform = "youtube"
	PlatformSoundCloud Platform = "soundcloud"
	PlatformSpotify    Platform = "spotify"
	PlatformAppleMusic Platform = "apple_music"
	PlatformDeezer     Platform = "deezer"
	PlatformTidal      Platform = "tidal"
	PlatformBandcamp   Platform = "bandcamp"
	PlatformUnknown    Platform = "unknown"
	PlatformText       Platform = "text"
)

// Classification результат разбора ссылки
type Classification struct {
	Platform Platform
	TrackID  string
}

// IsMusic сообщает, что ссылка ведет на музыкальную платформу
func (c Classification) IsMusic() bool {
	return c.Platform != PlatformUnknown && c.Platform != PlatformText
}

type platformRule struct {
	platform Platform
	hosts    []string
	path     *regexp.Regexp
}

// Правила не пересекаются по доменам, порядок на результат не влияет
var platformRules = []platformRule{
	{
		platform: PlatformYouTube,
		hosts:    []string{"youtube.com", "youtu.be", "music.youtube.com", "youtube-nocookie.com"},
	},
	{
		platform: PlatformSoundCloud,
		hosts:    []string{"soundcloud.com", "on.soundcloud.com", "snd.sc"},
	},
	{
		platform: PlatformSpotify,
		hosts:    []string{"open.spotify.com", "play.spotify.com"},
		path:     regexp.MustCompile(`(?i)/(track|album)/[A-Za-z0-9]+`),
	},
	{
		platform: PlatformSpotify,
		hosts:    []string{"spotify.link", "spotify.app.link"},
	},
	{
		platform: PlatformAppleMusic,
		hosts:    []string{"music.apple.com", "itunes.apple.com"},
		path:     regexp.MustCompile(`(?i)/(album|song|music-video)/`),
	},
	{
		platform: PlatformDeezer,
		hosts:    []string{"deezer.com"},
		path:     regexp.MustCompile(`(?i)/(track|album)/\d+`),
	},
	{
		platform: PlatformDeezer,
		hosts:    []string{"deezer.page.link", "link.deezer.com"},
	},
	{
		platform: PlatformTidal,
		hosts:    []string{"tidal.com", "listen.tidal.com"},
		path:     regexp.MustCompile(`(?i)/(track|album)/\d+`),
	},
	{
		platform: PlatformBandcamp,
		hosts:    []string{"bandcamp.com"},
		path:     regexp.MustCompile(`(?i)^/(track|album)/`),
	},
}

var spotifyIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Classify определяет платформу ссылки и, для Spotify, ID трека
func Classify(rawURL string) Classification {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return Classification{Platform: PlatformUnknown}
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	for _, rule := range platformRules {
		if !matchesHost(host, rule.hosts) {
			continue
		}
		if rule.path != nil && !rule.path.MatchString(u.Path) {
			continue
		}

		result := Classification{Platform: rule.platform}
		if rule.platform == PlatformSpotify {
			result.TrackID = spotifyTrackID(u.Path)
		}
		return result
	}

	return Classification{Platform: PlatformUnknown}
}

// matchesHost сравнивает хост с доменом или его поддоменом.
// bandcamp.com совпадает с artist.bandcamp.com.
func matchesHost(host string, domains []string) bool {
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// spotifyTrackID возвращает сегмент пути после /track/.
// Префиксы локали вроде /intl-de/ пропускаются сами собой.
func spotifyTrackID(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if strings.EqualFold(segments[i], "track") && spotifyIDPattern.MatchString(segments[i+1]) {
			return segments[i+1]
		}
	}
	return ""
}
