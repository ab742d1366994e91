package models

import "strings"

// Topic is one daily hashtag. The full topic set is regenerated once per
// calendar day; video counts are always rederived from the video set.
type Topic struct {
	ID          string `json:"id"`
	Tag         string `json:"tag"`
	Title       string `json:"title"`
	Emoji       string `json:"emoji"`
	Color       string `json:"color"`
	Category    string `json:"category"`
	Position    int    `json:"position"`
	VideoCount  int    `json:"video_count"`
	Trending    bool   `json:"trending"`
	AIGenerated bool   `json:"ai_generated"`
}

// SlugFromTag derives a topic id from its tag text: lowercase, '#' and any
// non-alphanumeric runes stripped.
func SlugFromTag(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimPrefix(tag, "#")) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
