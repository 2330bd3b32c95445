package store

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"docqa/internal/domain"
)

// MinChunkLength is the exclusive lower bound on normalized chunk length, in characters.
const MinChunkLength = 20

// ErrMalformedRecord is returned for records that are not a JSON array of items.
var ErrMalformedRecord = errors.New("malformed record")

const (
	metadataOpen  = "<document_metadata>"
	metadataClose = "</document_metadata>"
	passageMarker = "passage:"
)

// ParseRecord extracts chunks from one input record. name is used as the
// source of items that carry no sourceDocument.
//
// A record is a JSON array of {"metadata": {"text": ..., "sourceDocument": ...}}
// items, optionally wrapped in one more array.
func ParseRecord(name string, data []byte) ([]domain.Chunk, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedRecord)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array, got %s", ErrMalformedRecord, root.Type)
	}
	items := root.Array()
	if len(items) == 0 {
		return nil, nil
	}
	if items[0].IsArray() {
		items = items[0].Array()
	}

	var chunks []domain.Chunk
	for _, item := range items {
		raw := item.Get("metadata.text")
		if raw.Type != gjson.String {
			continue
		}
		text := Normalize(raw.String())
		if utf8.RuneCountInString(text) <= MinChunkLength {
			continue
		}
		source := name
		if src := item.Get("metadata.sourceDocument"); src.Type == gjson.String && src.String() != "" {
			source = src.String()
		}
		chunks = append(chunks, domain.Chunk{Text: text, Source: source})
	}
	return chunks, nil
}

// Normalize strips the metadata header and passage markers and collapses whitespace.
func Normalize(text string) string {
	if strings.Contains(text, metadataOpen) {
		if i := strings.LastIndex(text, metadataClose); i >= 0 {
			text = text[i+len(metadataClose):]
		}
	}
	text = strings.ReplaceAll(text, passageMarker, "")
	return strings.Join(strings.Fields(text), " ")
}
