package records

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"resumind/internal/backend"
	"resumind/internal/convert"
	"resumind/internal/llm"
	"resumind/internal/shared/metrics"
	"resumind/internal/shared/telemetry"
)

// Pipeline stage messages, surfaced verbatim to callers.
const (
	stageUpload      = "upload failed"
	stageConvert     = "conversion failed"
	stageImageUpload = "image upload failed"
	stageAnalysis    = "analysis failed"
)

// Backend is the facade subset the pipeline needs.
type Backend interface {
	Upload(ctx context.Context, userID, fileName string, r io.Reader) (*backend.FileHandle, error)
	FeedbackOnFile(ctx context.Context, path, instruction string) (*llm.Response, error)
}

// Converter renders a PDF's first page to a PNG preview.
type Converter interface {
	Convert(ctx context.Context, fileName string, pdf []byte) (*convert.Preview, error)
}

// AnalyzeInput carries one pipeline submission.
type AnalyzeInput struct {
	UserID         string
	FileName       string
	File           []byte
	CompanyName    string
	JobTitle       string
	JobDescription string
}

// Service runs the analysis pipeline and serves record reads.
type Service struct {
	Backend   Backend
	Converter Converter
	Store     *Store
}

func NewService(b Backend, conv Converter, store *Store) *Service {
	return &Service{Backend: b, Converter: conv, Store: store}
}

// Analyze runs the strictly sequential pipeline: upload the original,
// render and upload the preview, checkpoint the record with empty feedback,
// request the critique, then overwrite the record with populated feedback.
// Each step is gated on the previous; a failure halts with a stage-specific
// message and leaves already-completed side effects in place.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*Record, error) {
	metrics.IncPipelineStarted()
	start := time.Now()

	rec, err := s.analyze(ctx, in)
	metrics.ObservePipelineDurationMs(float64(time.Since(start)) / float64(time.Millisecond))
	if err != nil {
		metrics.IncPipelineFailed()
		telemetry.Error("pipeline failed", map[string]any{
			"user_id": in.UserID,
			"file":    in.FileName,
			"error":   err.Error(),
		})
		return nil, err
	}
	metrics.IncPipelineCompleted()
	telemetry.Info("pipeline completed", map[string]any{
		"user_id":   in.UserID,
		"record_id": rec.ID,
	})
	return rec, nil
}

func (s *Service) analyze(ctx context.Context, in AnalyzeInput) (*Record, error) {
	resume, err := s.Backend.Upload(ctx, in.UserID, in.FileName, bytes.NewReader(in.File))
	if err != nil {
		return nil, stageErr(stageUpload, err)
	}

	preview, err := s.Converter.Convert(ctx, in.FileName, in.File)
	if err != nil {
		return nil, stageErr(stageConvert, err)
	}

	image, err := s.Backend.Upload(ctx, in.UserID, preview.FileName, bytes.NewReader(preview.PNG))
	if err != nil {
		return nil, stageErr(stageImageUpload, err)
	}

	rec := &Record{
		ID:             uuid.NewString(),
		ResumePath:     resume.Path,
		ImagePath:      image.Path,
		CompanyName:    in.CompanyName,
		JobTitle:       in.JobTitle,
		JobDescription: in.JobDescription,
	}
	// Checkpoint: the record is visible to listings before feedback exists.
	if err := s.Store.Put(ctx, rec); err != nil {
		return nil, stageErr(stageAnalysis, err)
	}

	instruction := llm.FeedbackInstruction(in.JobTitle, in.JobDescription)
	resp, err := s.Backend.FeedbackOnFile(ctx, resume.Path, instruction)
	if err != nil {
		return nil, stageErr(stageAnalysis, err)
	}
	text := resp.Text()
	if text == "" {
		return nil, stageErr(stageAnalysis, fmt.Errorf("empty model response"))
	}

	feedback, err := ParseFeedback([]byte(text))
	if err != nil {
		return nil, stageErr(stageAnalysis, err)
	}

	rec.Feedback = feedback
	if err := s.Store.Put(ctx, rec); err != nil {
		return nil, stageErr(stageAnalysis, err)
	}
	return rec, nil
}

// Get returns a record by id.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.Store.Get(ctx, id)
}

// List returns all records in store order.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	return s.Store.List(ctx)
}
