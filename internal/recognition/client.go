package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/speech-digest/internal/failure"
)

const defaultHTTPTimeout = 15 * time.Second

// ClientConfig captures the settings required to talk to the recognition API.
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// HTTPClient talks to a transcription-job REST API:
// POST {base}/jobs starts a job, GET {base}/jobs/{name} reports its state.
type HTTPClient struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// ClientOption customizes the client.
type ClientOption func(*HTTPClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewHTTPClient(cfg ClientConfig, opts ...ClientOption) *HTTPClient {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &HTTPClient{
		cfg: ClientConfig{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type startJobRequest struct {
	TranscriptionJobName string `json:"transcriptionJobName"`
	Media                struct {
		MediaFileURI string `json:"mediaFileUri"`
	} `json:"media"`
	MediaFormat      string `json:"mediaFormat"`
	LanguageCode     string `json:"languageCode"`
	OutputBucketName string `json:"outputBucketName"`
	OutputKey        string `json:"outputKey"`
	Settings         struct {
		ShowSpeakerLabels bool `json:"showSpeakerLabels"`
		MaxSpeakerLabels  int  `json:"maxSpeakerLabels"`
	} `json:"settings"`
}

type jobStatusResponse struct {
	TranscriptionJob struct {
		TranscriptionJobName   string `json:"transcriptionJobName"`
		TranscriptionJobStatus string `json:"transcriptionJobStatus"`
		FailureReason          string `json:"failureReason"`
	} `json:"transcriptionJob"`
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Type    string `json:"__type"`
	Message string `json:"message"`
}

type httpStatusError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("recognition request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// StartJob registers a diarized transcription job. Failures are never
// retried here: the job name may already be registered upstream.
func (c *HTTPClient) StartJob(ctx context.Context, spec JobSpec) error {
	var payload startJobRequest
	payload.TranscriptionJobName = spec.JobName
	payload.Media.MediaFileURI = spec.MediaURI
	payload.MediaFormat = spec.MediaFormat
	payload.LanguageCode = spec.LanguageCode
	payload.OutputBucketName = spec.OutputBucket
	payload.OutputKey = spec.OutputKey
	payload.Settings.ShowSpeakerLabels = true
	payload.Settings.MaxSpeakerLabels = spec.MaxSpeakers

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("recognition start: encode body: %w", err)
	}
	if _, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/jobs", encoded); err != nil {
		return classify("recognition start", err)
	}
	return nil
}

func (c *HTTPClient) JobStatus(ctx context.Context, jobName string) (Status, error) {
	endpoint := c.cfg.BaseURL + "/jobs/" + url.PathEscape(jobName)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", classify("recognition status", err)
	}
	var resp jobStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", failure.New(failure.KindUnexpected, "recognition status", fmt.Errorf("decode body: %w", err))
	}
	return NormalizeStatus(resp.TranscriptionJob.TranscriptionJobStatus), nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
		var apiErr apiErrorBody
		if json.Unmarshal(body, &apiErr) == nil {
			statusErr.Code = firstNonEmpty(apiErr.Code, apiErr.Type)
		}
		return nil, statusErr
	}
	return body, nil
}

// classify maps transport and HTTP failures onto the error taxonomy
func classify(op string, err error) error {
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) {
		return failure.New(failure.KindUpstreamTransient, op, err)
	}
	code := firstNonEmpty(statusErr.Code, strconv.Itoa(statusErr.StatusCode))
	switch {
	case statusErr.StatusCode == http.StatusNotFound && op == "recognition status":
		return failure.WithCode(failure.KindNotFound, op, code, err)
	case statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError:
		return failure.WithCode(failure.KindUpstreamTransient, op, code, err)
	default:
		return failure.WithCode(failure.KindUpstreamRejected, op, code, err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
