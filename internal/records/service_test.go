package records

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"resumind/internal/backend"
	"resumind/internal/convert"
	"resumind/internal/llm"
	"resumind/internal/shared/storage/kv"
)

type fakeBackend struct {
	uploadErr   map[string]error // keyed by file name
	feedbackErr error
	feedback    string

	uploads       []string
	feedbackCalls int
}

func (b *fakeBackend) Upload(_ context.Context, userID, fileName string, r io.Reader) (*backend.FileHandle, error) {
	if err := b.uploadErr[fileName]; err != nil {
		return nil, err
	}
	data, _ := io.ReadAll(r)
	b.uploads = append(b.uploads, fileName)
	return &backend.FileHandle{Path: userID + "/" + fileName, SizeBytes: int64(len(data))}, nil
}

func (b *fakeBackend) FeedbackOnFile(context.Context, string, string) (*llm.Response, error) {
	b.feedbackCalls++
	if b.feedbackErr != nil {
		return nil, b.feedbackErr
	}
	return &llm.Response{
		Message: llm.ResponseMessage{
			Role:    llm.RoleAssistant,
			Content: llm.TextContent(b.feedback),
		},
	}, nil
}

type fakeConverter struct {
	err   error
	calls int
}

func (c *fakeConverter) Convert(_ context.Context, fileName string, _ []byte) (*convert.Preview, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &convert.Preview{FileName: convert.PreviewName(fileName), PNG: []byte("png")}, nil
}

// recordingKV wraps the memory store and logs every Set in order.
type recordingKV struct {
	kv.Store
	sets []struct{ Key, Value string }
}

func (r *recordingKV) Set(ctx context.Context, key, value string) error {
	r.sets = append(r.sets, struct{ Key, Value string }{key, value})
	return r.Store.Set(ctx, key, value)
}

func validInput() AnalyzeInput {
	return AnalyzeInput{
		UserID:         "u1",
		FileName:       "resume.pdf",
		File:           []byte("%PDF-1.4 fake"),
		CompanyName:    "Acme",
		JobTitle:       "Engineer",
		JobDescription: "Build things",
	}
}

func TestAnalyzeWritesCheckpointThenFeedback(t *testing.T) {
	feedbackJSON, _ := json.Marshal(sampleFeedback())
	be := &fakeBackend{feedback: string(feedbackJSON)}
	kvs := &recordingKV{Store: kv.NewMemoryStore()}
	svc := NewService(be, &fakeConverter{}, NewStore(kvs))

	rec, err := svc.Analyze(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rec.Feedback == nil {
		t.Fatal("returned record must carry feedback")
	}
	if rec.ResumePath != "u1/resume.pdf" || rec.ImagePath != "u1/resume.png" {
		t.Fatalf("unexpected paths: %q %q", rec.ResumePath, rec.ImagePath)
	}

	if len(kvs.sets) != 2 {
		t.Fatalf("expected exactly 2 key-value writes, got %d", len(kvs.sets))
	}
	if kvs.sets[0].Key != kvs.sets[1].Key {
		t.Fatalf("both writes must target the same key: %q vs %q", kvs.sets[0].Key, kvs.sets[1].Key)
	}
	if kvs.sets[0].Key != Key(rec.ID) {
		t.Fatalf("unexpected key %q", kvs.sets[0].Key)
	}
	if !strings.Contains(kvs.sets[0].Value, `"feedback":""`) {
		t.Fatalf("first write must checkpoint with empty feedback: %s", kvs.sets[0].Value)
	}
	if !strings.Contains(kvs.sets[1].Value, `"overallScore"`) {
		t.Fatalf("second write must carry populated feedback: %s", kvs.sets[1].Value)
	}
}

func TestAnalyzeUploadFailureStopsPipeline(t *testing.T) {
	be := &fakeBackend{uploadErr: map[string]error{"resume.pdf": errors.New("quota")}}
	conv := &fakeConverter{}
	kvs := &recordingKV{Store: kv.NewMemoryStore()}
	svc := NewService(be, conv, NewStore(kvs))

	_, err := svc.Analyze(context.Background(), validInput())
	var stage *StageError
	if !errors.As(err, &stage) || stage.Stage != "upload failed" {
		t.Fatalf("expected stage 'upload failed', got %v", err)
	}
	if conv.calls != 0 {
		t.Fatal("converter must not run after upload failure")
	}
	if len(kvs.sets) != 0 {
		t.Fatal("no record may be written after upload failure")
	}
}

func TestAnalyzeConversionFailure(t *testing.T) {
	be := &fakeBackend{}
	svc := NewService(be, &fakeConverter{err: errors.New("corrupt pdf")}, NewStore(kv.NewMemoryStore()))

	_, err := svc.Analyze(context.Background(), validInput())
	var stage *StageError
	if !errors.As(err, &stage) || stage.Stage != "conversion failed" {
		t.Fatalf("expected stage 'conversion failed', got %v", err)
	}
	if be.feedbackCalls != 0 {
		t.Fatal("analysis must not run after conversion failure")
	}
}

func TestAnalyzeImageUploadFailure(t *testing.T) {
	be := &fakeBackend{uploadErr: map[string]error{"resume.png": errors.New("disk full")}}
	svc := NewService(be, &fakeConverter{}, NewStore(kv.NewMemoryStore()))

	_, err := svc.Analyze(context.Background(), validInput())
	var stage *StageError
	if !errors.As(err, &stage) || stage.Stage != "image upload failed" {
		t.Fatalf("expected stage 'image upload failed', got %v", err)
	}
}

func TestAnalyzeModelFailureLeavesCheckpoint(t *testing.T) {
	be := &fakeBackend{feedbackErr: errors.New("model down")}
	store := NewStore(kv.NewMemoryStore())
	svc := NewService(be, &fakeConverter{}, store)

	_, err := svc.Analyze(context.Background(), validInput())
	var stage *StageError
	if !errors.As(err, &stage) || stage.Stage != "analysis failed" {
		t.Fatalf("expected stage 'analysis failed', got %v", err)
	}

	// No rollback: the checkpointed record stays visible with empty feedback.
	recs, listErr := store.List(context.Background())
	if listErr != nil {
		t.Fatalf("List: %v", listErr)
	}
	if len(recs) != 1 || recs[0].Feedback != nil {
		t.Fatalf("expected one pending checkpoint record, got %+v", recs)
	}
}

func TestAnalyzeRejectsProseResponse(t *testing.T) {
	be := &fakeBackend{feedback: "here is some feedback"}
	svc := NewService(be, &fakeConverter{}, NewStore(kv.NewMemoryStore()))

	_, err := svc.Analyze(context.Background(), validInput())
	var stage *StageError
	if !errors.As(err, &stage) || stage.Stage != "analysis failed" {
		t.Fatalf("expected stage 'analysis failed', got %v", err)
	}
}
