package relay

// ComposeCaption fits rawCaption plus the trail marker into maxLen,
// truncating the caption from the right one rune at a time. The trail is
// never truncated and the result always ends with it. The loop terminates
// because each pass removes a rune and the trail length is fixed.
func ComposeCaption(rawCaption, trail string, maxLen int) string {
	caption := []rune(rawCaption)
	trailLen := len([]rune(trail))
	for len(caption)+trailLen > maxLen {
		caption = caption[:len(caption)-1]
	}
	return string(caption) + trail
}
