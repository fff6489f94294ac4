package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize = 1000
	sentenceEnders   = ".!?"
)

// TextChunker splits rubric documents into passages for embedding.
type TextChunker interface {
	ChunkText(text string, maxChunkSize, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText packs paragraphs into chunks of at most maxChunkSize runes.
// Paragraphs longer than a chunk are split on sentence boundaries, and a
// sentence longer than a chunk is hard-split. Each chunk after the first
// starts with the last overlap runes of its predecessor.
func (tc *textChunker) ChunkText(text string, maxChunkSize, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var pieces []string
	for _, para := range strings.Split(normalizeNewlines(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= maxChunkSize {
			pieces = append(pieces, para)
			continue
		}
		for _, sentence := range splitIntoSentences(para) {
			pieces = append(pieces, hardSplit(sentence, maxChunkSize)...)
		}
	}

	var chunks []string
	var current []rune
	for _, piece := range pieces {
		p := []rune(piece)
		if len(current) > 0 && len(current)+1+len(p) > maxChunkSize {
			chunks = append(chunks, string(current))
			current = tail(current, overlap, maxChunkSize-len(p)-1)
		}
		if len(current) > 0 {
			current = append(current, '\n')
		}
		current = append(current, p...)
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}

	return chunks
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// splitIntoSentences keeps the terminating punctuation with its sentence.
func splitIntoSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if strings.ContainsRune(sentenceEnders, r) {
			end := i + utf8.RuneLen(r)
			if s := strings.TrimSpace(text[start:end]); s != "" {
				sentences = append(sentences, s)
			}
			start = end
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func hardSplit(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	var parts []string
	for len(runes) > 0 {
		n := min(size, len(runes))
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	return parts
}

// tail returns the last n runes of chunk, shortened so that the next piece
// still fits in the remaining room.
func tail(chunk []rune, n, room int) []rune {
	n = min(n, room)
	if n <= 0 {
		return nil
	}
	if n > len(chunk) {
		n = len(chunk)
	}
	out := make([]rune, n)
	copy(out, chunk[len(chunk)-n:])
	return out
}

// truncateRunes cuts text to at most maxBytes bytes without splitting a rune.
func truncateRunes(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
