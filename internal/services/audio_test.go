package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name string
		json string
		want float64
	}{
		{
			name: "container duration",
			json: `{"format":{"duration":"12.500000"},"streams":[{"codec_type":"audio","duration":"3.0"}]}`,
			want: 12.5,
		},
		{
			name: "audio stream duration",
			json: `{"format":{},"streams":[{"codec_type":"video","duration":"9.0"},{"codec_type":"audio","duration":"7.25"}]}`,
			want: 7.25,
		},
		{
			name: "start and end time",
			json: `{"format":{"duration":"N/A"},"streams":[{"codec_type":"audio","start_time":"1.5","end_time":"11.5"}]}`,
			want: 10,
		},
		{
			name: "nothing usable",
			json: `{"format":{},"streams":[{"codec_type":"audio"}]}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProbeDuration(tt.json)
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := ParseProbeDuration("not json")
	assert.Error(t, err)
}

func TestWordsPerMinute(t *testing.T) {
	assert.Equal(t, 4, WordCount("  I  love   Go\tprogramming "))
	assert.InDelta(t, 120.0, WordsPerMinute("one two three four five six", 3), 1e-9)
	assert.Zero(t, WordsPerMinute("one two", 0))
	assert.Zero(t, WordsPerMinute("one two", -1))
}
