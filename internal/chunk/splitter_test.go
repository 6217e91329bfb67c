// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitterValidate(t *testing.T) {
	tests := []struct {
		size, overlap int
		wantErr       string
	}{
		{size: 1800, overlap: 250},
		{size: 10, overlap: 0},
		{size: 0, overlap: 0, wantErr: "must be positive"},
		{size: 100, overlap: -1, wantErr: "must not be negative"},
		{size: 100, overlap: 100, wantErr: "smaller than chunk size"},
		{size: 100, overlap: 250, wantErr: "smaller than chunk size"},
	}
	for _, tt := range tests {
		err := NewSplitter(tt.size, tt.overlap).Validate()
		if tt.wantErr == "" {
			assert.NoError(t, err, "size=%d overlap=%d", tt.size, tt.overlap)
			continue
		}
		require.Error(t, err, "size=%d overlap=%d", tt.size, tt.overlap)
		assert.Contains(t, err.Error(), tt.wantErr)
	}
}

func TestSplitterSplit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
		want    []string
	}{
		{
			name: "short text is one trimmed segment",
			size: 100, overlap: 10,
			text: "  A single short paragraph.  ",
			want: []string{"A single short paragraph."},
		},
		{
			name: "prefers paragraph breaks",
			size: 50, overlap: 0,
			text: strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b", 30),
			want: []string{strings.Repeat("a", 30), strings.Repeat("b", 30)},
		},
		{
			name: "carries word overlap",
			size: 20, overlap: 10,
			text: "one two three four five six seven eight",
			want: []string{"one two three four", "four five six seven", "six seven eight"},
		},
		{
			name: "falls back to characters",
			size: 4, overlap: 0,
			text: "abcdefghij",
			want: []string{"abcd", "efgh", "ij"},
		},
		{
			name: "empty text",
			size: 10, overlap: 2,
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSplitter(tt.size, tt.overlap)
			assert.Equal(t, tt.want, s.Split(tt.text))
		})
	}
}

func TestSplitterRespectsSize(t *testing.T) {
	sentence := "Secondaries offered liquidity to limited partners facing slower distributions. "
	para := strings.Repeat(sentence, 12)
	text := strings.Join([]string{para, para, "Tail line\nwith a break", para}, "\n\n")

	s := NewSplitter(300, 50)
	segs := s.Split(text)

	assert.Greater(t, len(segs), 3)
	for _, seg := range segs {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg), 300)
		assert.NotEmpty(t, seg)
	}
}

func TestSplitterCountsRunes(t *testing.T) {
	s := NewSplitter(6, 0)
	segs := s.Split("ééééé ààààà")
	assert.Equal(t, []string{"ééééé", "ààààà"}, segs)
}
