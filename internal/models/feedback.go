package models

// MetricKeys lists the communication metrics every answer is scored on, in
// the order they are presented to the candidate.
var MetricKeys = []string{
	"clarityConciseness",
	"contentRelevanceDepth",
	"perceivedConfidence",
	"fluency",
	"speakingRateAppropriateness",
}

type MetricScore struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

type TutoringAdvice struct {
	WhatYouDidWell      string `json:"whatYouDidWell"`
	AreasForImprovement string `json:"areasForImprovement"`
	HowToPractice       string `json:"howToPractice"`
}

type MetricScores struct {
	ClarityConciseness          MetricScore `json:"clarityConciseness"`
	ContentRelevanceDepth       MetricScore `json:"contentRelevanceDepth"`
	PerceivedConfidence         MetricScore `json:"perceivedConfidence"`
	Fluency                     MetricScore `json:"fluency"`
	SpeakingRateAppropriateness MetricScore `json:"speakingRateAppropriateness"`
}

type TutoringPlan struct {
	ClarityConciseness          TutoringAdvice `json:"clarityConciseness"`
	ContentRelevanceDepth       TutoringAdvice `json:"contentRelevanceDepth"`
	PerceivedConfidence         TutoringAdvice `json:"perceivedConfidence"`
	Fluency                     TutoringAdvice `json:"fluency"`
	SpeakingRateAppropriateness TutoringAdvice `json:"speakingRateAppropriateness"`
}

// AnswerFeedback is the structured scoring returned by the model for one
// transcribed answer.
type AnswerFeedback struct {
	OverallScore         float64      `json:"overallScore"`
	Scores               MetricScores `json:"scores"`
	TutoringPlan         TutoringPlan `json:"tutoringPlan"`
	Transcription        string       `json:"transcription"`
	AudioDurationSeconds float64      `json:"audioDurationSeconds"`
	WordsPerMinute       float64      `json:"wordsPerMinute"`
}
