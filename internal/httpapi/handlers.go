package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/submitter"
)

type submitRequest struct {
	S3 *struct {
		BucketName string `json:"bucketName"`
		Key        string `json:"key"`
	} `json:"s3"`
	Transcribe *struct {
		LanguageCode string `json:"languageCode"`
		MaxSpeakers  int    `json:"maxSpeakers"`
	} `json:"transcribe"`
}

type submitResponse struct {
	Message        string `json:"message"`
	JobName        string `json:"jobName"`
	OutputLocation string `json:"outputLocation"`
}

type jobRef struct {
	JobName string `json:"job_name"`
}

type statusRequest struct {
	CheckStatus *jobRef `json:"checkStatus"`
	GetResults  *jobRef `json:"getResults"`
}

type jobsResponse struct {
	Jobs []string `json:"jobs"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req submitRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.S3 == nil || req.Transcribe == nil {
		s.writeError(w, http.StatusBadRequest, "request must contain s3 and transcribe")
		return
	}

	handle, err := s.submitter.Submit(r.Context(), submitter.JobRequest{
		SourceBucket: req.S3.BucketName,
		SourceKey:    req.S3.Key,
		LanguageCode: req.Transcribe.LanguageCode,
		MaxSpeakers:  req.Transcribe.MaxSpeakers,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, submitResponse{
		Message:        "Transcription job started",
		JobName:        handle.JobName,
		OutputLocation: handle.OutputLocation,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req statusRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case req.CheckStatus != nil && req.GetResults != nil:
		s.writeError(w, http.StatusBadRequest, "send either checkStatus or getResults, not both")
	case req.CheckStatus != nil:
		st, err := s.tracker.CheckStatus(r.Context(), req.CheckStatus.JobName)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, st)
	case req.GetResults != nil:
		res, err := s.tracker.GetResults(r.Context(), req.GetResults.JobName)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, res)
	default:
		s.writeError(w, http.StatusBadRequest, "request must contain checkStatus or getResults")
	}
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jobs, err := s.jobs.Jobs(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []string{}
	}
	s.writeJSON(w, http.StatusOK, jobsResponse{Jobs: jobs})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind failure.Kind) int {
	switch kind {
	case failure.KindInvalidInput:
		return http.StatusBadRequest
	case failure.KindNotFound:
		return http.StatusNotFound
	case failure.KindUpstreamRejected:
		return http.StatusBadGateway
	case failure.KindUpstreamTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure reports classified errors with their message and keeps
// unexpected ones generic; the details only go to the log.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(failure.KindOf(err))
	if code == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "%s %s failed: %v", r.Method, r.URL.Path, err)
		s.writeError(w, code, "internal server error")
		return
	}
	s.logger.Warn(r.Context(), "%s %s rejected: %v", r.Method, r.URL.Path, err)

	var fe *failure.Error
	msg := err.Error()
	if errors.As(err, &fe) && fe.Err != nil {
		msg = fe.Err.Error()
	}
	s.writeError(w, code, strings.TrimSpace(msg))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error(context.Background(), "Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
