package utils

import "strings"

// Separators tried in order when looking for a natural chunk boundary:
// paragraph break, line break, sentence end, word break.
var boundarySeparators = []string{"\n\n", "\n", ". ", " "}

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with an 'overlap' to preserve context at boundaries. Within the
// final quarter of a chunk it prefers to break at a paragraph, line, or
// sentence boundary instead of mid-word.
func SplitText(text string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; {
		end := i + chunkSize
		if end >= totalLen {
			end = totalLen
		} else {
			end = adjustToBoundary(runes, i, end)
		}

		chunk := strings.TrimSpace(string(runes[i:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == totalLen {
			break
		}
		next := end - overlap
		if next <= i {
			next = i + step
		}
		i = next
	}

	return chunks
}

// adjustToBoundary moves 'end' back to the nearest separator inside the last
// quarter of the chunk, so sentences survive chunking intact.
func adjustToBoundary(runes []rune, start, end int) int {
	window := string(runes[start:end])
	minBreak := len(window) * 3 / 4

	for _, sep := range boundarySeparators {
		if idx := strings.LastIndex(window, sep); idx >= minBreak {
			return start + len([]rune(window[:idx+len(sep)]))
		}
	}
	return end
}

// ApproxTokens is a rough token count (~4 chars per token for English).
func ApproxTokens(text string) int {
	n := len(text) / 4
	if n < 0 {
		return 0
	}
	return n
}
