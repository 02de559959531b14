package relay

import "regexp"

var (
	instagramLinkPattern = regexp.MustCompile(`(?:https?://www\.)?instagram\.com\S*?/(p|reel)/([a-zA-Z0-9_-]{11})`)
	spotifyLinkPattern   = regexp.MustCompile(`(?:https?://)?open\.spotify\.com/(track|album|playlist|artist)/[a-zA-Z0-9]+`)
)

// ExtractShortcode pulls the 11-character post or reel identifier out of an
// Instagram link embedded anywhere in text.
func ExtractShortcode(text string) (string, bool) {
	match := instagramLinkPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[2], true
}

// IsInstagramLink reports whether text contains a post or reel link.
func IsInstagramLink(text string) bool {
	return instagramLinkPattern.MatchString(text)
}

// IsSpotifyLink reports whether text contains a Spotify link, which gets a
// dedicated redirect reply instead of the generic wrong-pattern one.
func IsSpotifyLink(text string) bool {
	return spotifyLinkPattern.MatchString(text)
}
