package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func TestParseRecordNormalizesText(t *testing.T) {
	data := `[
		{"metadata": {"text": "<document_metadata>title: x</document_metadata>passage:   The   fire exit shall be\n kept clear at all times.", "sourceDocument": "Code.pdf"}},
		{"metadata": {"text": "Table 3 lists load limits for floors."}}
	]`

	chunks, err := ParseRecord("records.json", []byte(data))
	require.NoError(t, err)

	assert.Equal(t, []domain.Chunk{
		{Text: "The fire exit shall be kept clear at all times.", Source: "Code.pdf"},
		{Text: "Table 3 lists load limits for floors.", Source: "records.json"},
	}, chunks)
}

func TestParseRecordUnwrapsNestedArray(t *testing.T) {
	data := `[[{"metadata": {"text": "Section 4.2 applies to every public building.", "sourceDocument": "A.pdf"}}], "ignored"]`

	chunks, err := ParseRecord("nested.json", []byte(data))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A.pdf", chunks[0].Source)
}

func TestParseRecordDropsShortAndInvalidItems(t *testing.T) {
	data := `[
		{"metadata": {"text": "passage: too short text"}},
		{"metadata": {"text": "exactly twenty chars"}},
		{"metadata": {"text": "twenty-one characters"}},
		{"metadata": {"text": 42}},
		{"metadata": {}},
		{"other": true},
		"string item"
	]`

	chunks, err := ParseRecord("r.json", []byte(data))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "twenty-one characters", chunks[0].Text)
	for _, c := range chunks {
		assert.Greater(t, len([]rune(c.Text)), MinChunkLength)
	}
}

func TestParseRecordKeepsTextWithoutOpeningTag(t *testing.T) {
	text := "Clause 9 ends here </document_metadata> and continues afterwards."
	chunks, err := ParseRecord("r.json", []byte(`[{"metadata": {"text": "`+text+`"}}]`))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestParseRecordEmptySourceFallsBackToName(t *testing.T) {
	chunks, err := ParseRecord("r.json", []byte(`[{"metadata": {"text": "A chunk that is long enough.", "sourceDocument": ""}}]`))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "r.json", chunks[0].Source)
}

func TestParseRecordMalformed(t *testing.T) {
	for name, data := range map[string]string{
		"invalid json": `[{"metadata":`,
		"object":       `{"metadata": {"text": "A chunk that is long enough."}}`,
		"string":       `"hello"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRecord("bad.json", []byte(data))
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestParseRecordEmptyArray(t *testing.T) {
	chunks, err := ParseRecord("empty.json", []byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "body text", Normalize("<document_metadata>a</document_metadata>x</document_metadata> passage: body\t\ttext "))
	assert.Equal(t, "", Normalize(" passage: \n "))
}

func writeRecord(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestStoreLoadSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "a.json", `[{"metadata": {"text": "First chunk of the first record.", "sourceDocument": "A.pdf"}}]`)
	writeRecord(t, dir, "b.json", `not json at all`)
	writeRecord(t, dir, "c.json", `[{"metadata": {"text": "Only chunk of the third record."}}]`)
	writeRecord(t, dir, "notes.txt", `ignored`)

	s := NewStore(zerolog.Nop())
	report, err := s.Load([]string{filepath.Join(dir, "*")})
	require.NoError(t, err)

	assert.Equal(t, LoadReport{Records: 2, Skipped: 1, Chunks: 2}, report)
	assert.Equal(t, []domain.Chunk{
		{Text: "First chunk of the first record.", Source: "A.pdf"},
		{Text: "Only chunk of the third record.", Source: "c.json"},
	}, s.Chunks())
	assert.Equal(t, 2, s.Len())
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := NewStore(zerolog.Nop())
	report, err := s.Load([]string{filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, s.Len())
}

func TestStoreLoadOnlyOnce(t *testing.T) {
	dir := t.TempDir()
	p := writeRecord(t, dir, "a.json", `[{"metadata": {"text": "First chunk of the first record."}}]`)

	s := NewStore(zerolog.Nop())
	_, err := s.Load([]string{p})
	require.NoError(t, err)
	_, err = s.Load([]string{p})
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.Equal(t, 1, s.Len())
}

func TestStoreChunksCannotGrowStore(t *testing.T) {
	dir := t.TempDir()
	p := writeRecord(t, dir, "a.json", `[{"metadata": {"text": "First chunk of the first record."}}]`)
	s := NewStore(zerolog.Nop())
	_, err := s.Load([]string{p})
	require.NoError(t, err)

	view := s.Chunks()
	_ = append(view, domain.Chunk{Text: "appended"})
	assert.Equal(t, 1, s.Len())
}
