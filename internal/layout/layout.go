// Package layout names every object of a job. Keys are pure functions of the
// job name and the stage, so the bucket itself is the job ledger.
package layout

import (
	"path"
	"strings"

	"github.com/nguyentantai21042004/speech-digest/internal/config"
)

const (
	RecognitionSuffix = ".json"
	FormattedSuffix   = ".txt"
	SummarySuffix     = "_summary.txt"
	FailureSuffix     = "_FAILED.json"
)

type Layout struct {
	InputPrefix       string
	InputExtension    string
	RecognitionPrefix string
	FormattedPrefix   string
	SummaryPrefix     string
}

// Default matches the bucket layout the pipeline was designed around.
func Default() Layout {
	return Layout{
		InputPrefix:       "audios/",
		InputExtension:    ".mp3",
		RecognitionPrefix: "transcripciones/",
		FormattedPrefix:   "transcripciones-formateadas/",
		SummaryPrefix:     "resumenes/",
	}
}

// FromConfig builds a Layout from validated storage settings.
func FromConfig(cfg config.StorageConfig) Layout {
	return Layout{
		InputPrefix:       withSlash(cfg.InputPrefix),
		InputExtension:    strings.ToLower(cfg.InputExtension),
		RecognitionPrefix: withSlash(cfg.RecognitionPrefix),
		FormattedPrefix:   withSlash(cfg.FormattedPrefix),
		SummaryPrefix:     withSlash(cfg.SummaryPrefix),
	}
}

func withSlash(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

func (l Layout) RecognitionKey(job string) string {
	return l.RecognitionPrefix + job + RecognitionSuffix
}

func (l Layout) FormattedKey(job string) string {
	return l.FormattedPrefix + job + FormattedSuffix
}

func (l Layout) SummaryKey(job string) string {
	return l.SummaryPrefix + job + SummarySuffix
}

func (l Layout) FailureKey(job string) string {
	return l.SummaryPrefix + job + FailureSuffix
}

// IsInputAudio reports whether key is an audio object the submitter accepts.
func (l Layout) IsInputAudio(key string) bool {
	return strings.HasPrefix(key, l.InputPrefix) &&
		len(key) > len(l.InputPrefix)+len(l.InputExtension) &&
		strings.HasSuffix(strings.ToLower(key), l.InputExtension)
}

// MediaFormat is the input extension without its dot ("mp3").
func (l Layout) MediaFormat() string {
	return strings.TrimPrefix(l.InputExtension, ".")
}

func (l Layout) JobFromRecognitionKey(key string) (string, bool) {
	return jobFrom(key, l.RecognitionPrefix, RecognitionSuffix)
}

func (l Layout) JobFromFormattedKey(key string) (string, bool) {
	return jobFrom(key, l.FormattedPrefix, FormattedSuffix)
}

// SummaryKeyFor derives the summary key from a formatted transcript key by
// stripping the transcript extension from its base name.
func (l Layout) SummaryKeyFor(formattedKey string) string {
	return l.SummaryPrefix + stem(formattedKey) + SummarySuffix
}

func (l Layout) FailureKeyFor(formattedKey string) string {
	return l.SummaryPrefix + stem(formattedKey) + FailureSuffix
}

func stem(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

// jobFrom accepts only direct children of prefix; objects in nested
// directories are not job artifacts.
func jobFrom(key, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, suffix) {
		return "", false
	}
	job := strings.TrimSuffix(strings.TrimPrefix(key, prefix), suffix)
	if job == "" || strings.Contains(job, "/") {
		return "", false
	}
	return job, true
}
