package submitter

import (
	"github.com/google/uuid"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
)

// JobPrefix is prepended to every generated job name.
const JobPrefix = "transcription-job-"

type implSubmitter struct {
	service      recognition.Service
	outputBucket string
	layout       layout.Layout
	logger       logger.Logger
	newID        func() string
}

// New creates a Submitter that writes recognition output to outputBucket.
func New(service recognition.Service, outputBucket string, l layout.Layout, log logger.Logger) Submitter {
	return &implSubmitter{
		service:      service,
		outputBucket: outputBucket,
		layout:       l,
		logger:       log,
		newID:        uuid.NewString,
	}
}
