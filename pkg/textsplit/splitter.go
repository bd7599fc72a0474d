// Package textsplit chunks extracted document text for embedding.
package textsplit

// Defaults tuned for embedding context limits: roughly 375 tokens per
// chunk with enough overlap to preserve sentence boundaries.
const (
	DefaultChunkSize = 1500
	DefaultOverlap   = 200
)

// Split breaks text into chunks of at most chunkSize runes, each chunk
// sharing its first overlap runes with the tail of the previous one. A
// character-based splitter is deliberate: it never loses data, unlike
// word-boundary heuristics on malformed OCR output.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	runes := []rune(text)
	totalLen := len(runes)

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
