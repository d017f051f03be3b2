package util

const DefaultChunkSize = 1000

// ChunkText splits text into consecutive rune windows of at most maxChars.
// The pieces concatenate back to the input exactly: no trimming, no dropping,
// no overlap. Blank-chunk policy belongs to the caller, not here.
func ChunkText(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	out := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for i := 0; i < len(runes); i += maxChars {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}
