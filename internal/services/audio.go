package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type AudioProcessor interface {
	// ConvertToMP3 writes an MP3 copy of src next to it and returns its path.
	ConvertToMP3(src string) (string, error)
	// ProbeDuration returns the duration of path in seconds, or 0 when it
	// cannot be determined.
	ProbeDuration(path string) float64
}

type audioProcessor struct {
	bitrate string
}

func NewAudioProcessor(bitrate string) AudioProcessor {
	if bitrate == "" {
		bitrate = "128k"
	}
	return &audioProcessor{bitrate: bitrate}
}

// ConvertToMP3 implements AudioProcessor.
func (a *audioProcessor) ConvertToMP3(src string) (string, error) {
	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".mp3"
	if dst == src {
		return src, nil
	}

	var stderr bytes.Buffer
	err := ffmpeg.Input(src).
		Output(dst, ffmpeg.KwArgs{"acodec": "libmp3lame", "b:a": a.bitrate}).
		OverWriteOutput().
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to convert %s to mp3: %w: %s", filepath.Base(src), err, strings.TrimSpace(stderr.String()))
	}

	return dst, nil
}

// ProbeDuration implements AudioProcessor.
func (a *audioProcessor) ProbeDuration(path string) float64 {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		log.Printf("⚠️  Failed to probe duration for %s: %v", path, err)
		return 0
	}

	duration, err := ParseProbeDuration(out)
	if err != nil {
		log.Printf("⚠️  Failed to read probe output for %s: %v", path, err)
		return 0
	}
	if duration <= 0 {
		log.Printf("⚠️  Probe returned no duration for %s", path)
		return 0
	}

	log.Printf("⏱️  Audio duration detected for %s: %.2f seconds", path, duration)
	return duration
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	} `json:"streams"`
}

// ParseProbeDuration reads a duration from ffprobe JSON output. The container
// duration wins; otherwise the first audio stream with a usable duration (or
// start/end pair) is used. WebM files recorded by browsers often only carry
// the latter.
func ParseProbeDuration(probeJSON string) (float64, error) {
	var probe probeOutput
	if err := json.Unmarshal([]byte(probeJSON), &probe); err != nil {
		return 0, fmt.Errorf("failed to decode probe output: %w", err)
	}

	if d := parseSeconds(probe.Format.Duration); d > 0 {
		return d, nil
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		if stream.Duration != "" {
			if d := parseSeconds(stream.Duration); d > 0 {
				return d, nil
			}
			continue
		}
		if stream.StartTime != "" && stream.EndTime != "" {
			if d := parseSeconds(stream.EndTime) - parseSeconds(stream.StartTime); d > 0 {
				return d, nil
			}
		}
	}

	return 0, nil
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// WordsPerMinute is the speaking rate of text over durationSeconds; 0 when
// the duration is unknown.
func WordsPerMinute(text string, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return float64(WordCount(text)) / (durationSeconds / 60)
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}
