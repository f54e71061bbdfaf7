package submitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
	"golang.org/x/text/language"
)

const opSubmit = "submit job"

func (s *implSubmitter) Submit(ctx context.Context, req JobRequest) (Handle, error) {
	if err := s.validate(req); err != nil {
		return Handle{}, err
	}

	jobName := JobPrefix + s.newID()
	ctx = logger.WithJob(ctx, jobName)
	outputKey := s.layout.RecognitionKey(jobName)

	spec := recognition.JobSpec{
		JobName:      jobName,
		MediaURI:     fmt.Sprintf("s3://%s/%s", req.SourceBucket, req.SourceKey),
		MediaFormat:  s.layout.MediaFormat(),
		LanguageCode: req.LanguageCode,
		OutputBucket: s.outputBucket,
		OutputKey:    outputKey,
		MaxSpeakers:  req.MaxSpeakers,
	}

	s.logger.Info(ctx, "Starting recognition for %s (language %s, up to %d speakers)", spec.MediaURI, req.LanguageCode, req.MaxSpeakers)
	if err := s.service.StartJob(ctx, spec); err != nil {
		s.logger.Error(ctx, "Recognition service refused job: %v", err)
		if failure.KindOf(err) == failure.KindUnexpected {
			return Handle{}, failure.New(failure.KindUnexpected, opSubmit, err)
		}
		return Handle{}, err
	}

	return Handle{
		JobName:        jobName,
		OutputLocation: fmt.Sprintf("s3://%s/%s", s.outputBucket, outputKey),
	}, nil
}

func (s *implSubmitter) validate(req JobRequest) error {
	if strings.TrimSpace(req.SourceBucket) == "" {
		return failure.InvalidInput(opSubmit, "bucket name is required")
	}
	if !s.layout.IsInputAudio(req.SourceKey) {
		return failure.InvalidInput(opSubmit, "key %q must be under %s and end in %s", req.SourceKey, s.layout.InputPrefix, s.layout.InputExtension)
	}
	if req.LanguageCode == "" {
		return failure.InvalidInput(opSubmit, "language code is required")
	}
	if _, err := language.Parse(req.LanguageCode); err != nil {
		return failure.InvalidInput(opSubmit, "language code %q: %v", req.LanguageCode, err)
	}
	if req.MaxSpeakers < 1 {
		return failure.InvalidInput(opSubmit, "maxSpeakers must be at least 1, got %d", req.MaxSpeakers)
	}
	return nil
}
