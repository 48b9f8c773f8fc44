package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Query нормализованный текст и подсказки для поиска
type Query struct {
	Raw    string
	Artist string
	Track  string
}

// HasHints сообщает, что удалось выделить артиста или трек
func (q Query) HasHints() bool {
	return q.Artist != "" || q.Track != ""
}

var (
	leadInPattern = regexp.MustCompile(`(?i)^\s*(check\s+(this\s+)?out|listen\s+to|new\s+music|new\s+release|new\s+single|now\s+playing|np|out\s+now|on\s+repeat)\s*[:!\-–—]*\s+`)

	promoPhrases = `official\s+music\s+video|official\s+lyrics?\s+video|official\s+video|official\s+audio|official\s+visuali[sz]er|lyrics?\s+video|lyrics?|audio|visuali[sz]er|m/?v|hd|hq|4k`

	promoBracketed = regexp.MustCompile(`(?i)\s*[(\[]\s*(` + promoPhrases + `)\s*[)\]]`)
	promoBare      = regexp.MustCompile(`(?i)\s*[|\-–—]?\s*\b(` + promoPhrases + `)\s*$`)

	emojiPattern = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{2190}-\x{21FF}\x{1F1E6}-\x{1F1FF}\x{FE0E}\x{FE0F}\x{200D}\x{20E3}\x{E0020}-\x{E007F}\x{3030}\x{303D}]`)

	dashPattern = regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`)
	byPattern   = regexp.MustCompile(`(?i)^(.+)\s+by\s+(.+)$`)
)

const hintCutset = " \t\"'“”‘’«»-–—|:;,"

// Normalize очищает текст и пробует выделить артиста и трек.
// Сначала проверяется шаблон "A - B", затем "B by A".
func Normalize(text string) Query {
	cleaned := clean(text)
	if cleaned == "" {
		return Query{}
	}

	q := Query{Raw: cleaned}

	if m := dashPattern.FindStringSubmatch(cleaned); m != nil {
		q.Artist = strings.Trim(m[1], hintCutset)
		q.Track = strings.Trim(m[2], hintCutset)
	} else if m := byPattern.FindStringSubmatch(cleaned); m != nil {
		q.Track = strings.Trim(m[1], hintCutset)
		q.Artist = strings.Trim(m[2], hintCutset)
	}

	// подсказки имеют смысл только парой или по одной непустой
	if q.Artist == "" && q.Track == "" {
		return Query{Raw: cleaned}
	}
	return q
}

func clean(text string) string {
	s := norm.NFC.String(width.Fold.String(text))
	s = emojiPattern.ReplaceAllString(s, " ")
	s = collapseSpaces(s)

	for {
		next := leadInPattern.ReplaceAllString(s, "")
		if next == s || strings.TrimSpace(next) == "" {
			break
		}
		s = next
	}

	s = promoBracketed.ReplaceAllString(s, " ")
	for {
		next := strings.TrimSpace(promoBare.ReplaceAllString(s, ""))
		if next == s || next == "" {
			break
		}
		// "Artist - Audio": слово целиком является названием трека
		if dashPattern.MatchString(s) && !dashPattern.MatchString(next) {
			break
		}
		s = next
	}

	return strings.Trim(collapseSpaces(s), hintCutset)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
