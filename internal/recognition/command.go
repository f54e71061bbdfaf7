package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/pkg/executor"
)

// JobsPrefix holds the local backend's job records. A job is
// IN_PROGRESS while only {job}.json exists, FAILED once {job}.failed exists
// and COMPLETED once its output object exists.
const JobsPrefix = "recognition-jobs/"

// CommandConfig describes the local recognizer binary. Args may contain the
// placeholders {input}, {language}, {max_speakers} and {format}; the binary
// must print a recognition result document on stdout.
type CommandConfig struct {
	BinaryPath string
	Args       []string
	RunTimeout time.Duration
}

// CommandService runs recognition locally against the blob store,
// standing in for a hosted recognition API.
type CommandService struct {
	store    blob.Store
	executor executor.Executor
	cfg      CommandConfig
	logger   logger.Logger
	wg       sync.WaitGroup
}

func NewCommandService(store blob.Store, exec executor.Executor, cfg CommandConfig, log logger.Logger) *CommandService {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	return &CommandService{store: store, executor: exec, cfg: cfg, logger: log}
}

type jobRecord struct {
	JobSpec
	SubmittedAt time.Time `json:"submittedAt"`
}

func recordKey(job string) string { return JobsPrefix + job + ".json" }
func failedKey(job string) string { return JobsPrefix + job + ".failed" }

func (s *CommandService) StartJob(ctx context.Context, spec JobSpec) error {
	const op = "recognition start"

	mediaKey, err := s.mediaKey(spec.MediaURI)
	if err != nil {
		return failure.WithCode(failure.KindUpstreamRejected, op, "BadRequestException", err)
	}
	if spec.OutputBucket != s.store.Bucket() {
		return failure.WithCode(failure.KindUpstreamRejected, op, "BadRequestException",
			fmt.Errorf("output bucket %q is not served by this backend", spec.OutputBucket))
	}
	if ok, err := s.store.Exists(ctx, mediaKey); err != nil {
		return failure.New(failure.KindUpstreamTransient, op, err)
	} else if !ok {
		return failure.WithCode(failure.KindUpstreamRejected, op, "BadRequestException",
			fmt.Errorf("media %s does not exist", spec.MediaURI))
	}
	if ok, err := s.store.Exists(ctx, recordKey(spec.JobName)); err != nil {
		return failure.New(failure.KindUpstreamTransient, op, err)
	} else if ok {
		return failure.WithCode(failure.KindUpstreamRejected, op, "ConflictException",
			fmt.Errorf("job %s already exists", spec.JobName))
	}

	record, err := json.Marshal(jobRecord{JobSpec: spec, SubmittedAt: time.Now().UTC()})
	if err != nil {
		return failure.New(failure.KindUnexpected, op, err)
	}
	if err := s.store.Put(ctx, recordKey(spec.JobName), record); err != nil {
		return failure.New(failure.KindUpstreamTransient, op, err)
	}

	// The job outlives the request that started it
	runCtx := logger.WithJob(context.WithoutCancel(ctx), spec.JobName)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(runCtx, spec, mediaKey)
	}()
	return nil
}

// Wait blocks until every started job has finished
func (s *CommandService) Wait() {
	s.wg.Wait()
}

func (s *CommandService) run(ctx context.Context, spec JobSpec, mediaKey string) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info(ctx, "Starting local recognition: %s", spec.MediaURI)

	output, err := s.recognize(ctx, spec, mediaKey)
	if err == nil {
		err = s.store.Put(ctx, spec.OutputKey, output)
	}
	if err != nil {
		s.logger.Error(ctx, "Local recognition failed: %v", err)
		if putErr := s.store.Put(ctx, failedKey(spec.JobName), []byte(err.Error())); putErr != nil {
			s.logger.Error(ctx, "Failed to record recognition failure: %v", putErr)
		}
		return
	}
	s.logger.Info(ctx, "Recognition completed in %s: %s", time.Since(start), spec.OutputKey)
}

func (s *CommandService) recognize(ctx context.Context, spec JobSpec, mediaKey string) ([]byte, error) {
	audio, err := s.store.Get(ctx, mediaKey)
	if err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}

	// Isolated temp dir per job so concurrent jobs never share files
	workDir, err := os.MkdirTemp("", "recognition-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	input := "input." + spec.MediaFormat
	if err := os.WriteFile(filepath.Join(workDir, input), audio, 0644); err != nil {
		return nil, fmt.Errorf("write media: %w", err)
	}

	replacer := strings.NewReplacer(
		"{input}", input,
		"{language}", spec.LanguageCode,
		"{max_speakers}", strconv.Itoa(spec.MaxSpeakers),
		"{format}", spec.MediaFormat,
	)
	args := make([]string, len(s.cfg.Args))
	for i, arg := range s.cfg.Args {
		args[i] = replacer.Replace(arg)
	}

	out, err := s.executor.ExecuteInDir(ctx, workDir, s.cfg.BinaryPath, args...)
	if err != nil {
		return nil, err
	}
	if _, err := ParseResult([]byte(out)); err != nil {
		return nil, fmt.Errorf("recognizer output: %w", err)
	}
	return []byte(out), nil
}

func (s *CommandService) JobStatus(ctx context.Context, jobName string) (Status, error) {
	const op = "recognition status"

	data, err := s.store.Get(ctx, recordKey(jobName))
	if err != nil {
		if ok, _ := s.store.Exists(ctx, recordKey(jobName)); !ok {
			return "", failure.WithCode(failure.KindNotFound, op, "NotFoundException",
				fmt.Errorf("job %s does not exist", jobName))
		}
		return "", failure.New(failure.KindUpstreamTransient, op, err)
	}
	var record jobRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return "", failure.New(failure.KindUnexpected, op, fmt.Errorf("decode job record: %w", err))
	}

	if ok, err := s.store.Exists(ctx, record.OutputKey); err != nil {
		return "", failure.New(failure.KindUpstreamTransient, op, err)
	} else if ok {
		return StatusCompleted, nil
	}
	if ok, err := s.store.Exists(ctx, failedKey(jobName)); err != nil {
		return "", failure.New(failure.KindUpstreamTransient, op, err)
	} else if ok {
		return StatusFailed, nil
	}
	return StatusInProgress, nil
}

// mediaKey resolves an s3://bucket/key URI against the store's bucket
func (s *CommandService) mediaKey(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", fmt.Errorf("unsupported media uri %q", uri)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" {
		return "", fmt.Errorf("malformed media uri %q", uri)
	}
	if bucket != s.store.Bucket() {
		return "", fmt.Errorf("bucket %q is not served by this backend", bucket)
	}
	return key, nil
}
