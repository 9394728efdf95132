package chunker

// DefaultSize is the chunk size used when none is configured.
const DefaultSize = 1000

// Split cuts text into contiguous, non-overlapping slices of at most size
// characters. Slicing is rune-based so a multi-byte character never ends up
// split across two chunks. The final slice may be shorter. No normalization
// is applied, so joining the slices in order reproduces text exactly.
func Split(text string, size int) []string {
	if size <= 0 || text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
