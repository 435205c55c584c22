package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/llm"
	"ResumeSense/internal/models"
	"ResumeSense/internal/objectstore"
	"ResumeSense/internal/pdfconv"
	"ResumeSense/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")

type fakeAnalyzer struct {
	result llm.Result
	got    llm.Input
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in llm.Input) llm.Result {
	f.got = in
	return f.result
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []models.StatusUpdate
}

func (p *recordingPublisher) Publish(_ context.Context, u models.StatusUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
	return nil
}

func (p *recordingPublisher) stages() []models.Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.Stage
	for _, u := range p.updates {
		out = append(out, u.Stage)
	}
	return out
}

// failingBucket fails uploads whose path contains failOn.
type failingBucket struct {
	objectstore.Bucket
	failOn string
}

func (b *failingBucket) Upload(ctx context.Context, p, ct string, r io.Reader) error {
	if strings.Contains(p, b.failOn) {
		return errors.New("bucket unavailable")
	}
	return b.Bucket.Upload(ctx, p, ct, r)
}

type fixture struct {
	svc      *Service
	db       *storage.DB
	bucket   *objectstore.LocalBucket
	analyzer *fakeAnalyzer
	events   *recordingPublisher
	userID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "review.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	user, err := db.CreateUser(ctx, "a@example.com", "alice", "hash")
	require.NoError(t, err)

	bucket, err := objectstore.NewLocalBucket(t.TempDir(), "resumes", "http://localhost:8080", []byte("k"))
	require.NoError(t, err)

	analyzer := &fakeAnalyzer{result: llm.Result{Feedback: llm.FallbackFeedback()}}
	analyzer.result.Feedback.OverallScore = 91
	pub := &recordingPublisher{}

	svc := NewService(db, bucket, analyzer, pub, Options{
		MaxUploadBytes: 1 << 20,
		PreviewDPI:     72,
		SignedURLTTL:   time.Hour,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.convert = func(data []byte, name string, dpi float64) (*pdfconv.Image, error) {
		return &pdfconv.Image{FileName: pdfconv.PreviewName(name), Data: []byte("\x89PNG")}, nil
	}

	return &fixture{svc: svc, db: db, bucket: bucket, analyzer: analyzer, events: pub, userID: user.ID}
}

func (f *fixture) request() UploadRequest {
	return UploadRequest{
		UserID:         f.userID,
		CompanyName:    "Acme",
		JobTitle:       "Backend Engineer",
		JobDescription: "Go and Postgres",
		FileName:       "cv.pdf",
		Data:           pdfBytes,
	}
}

func requireType(t *testing.T, err error, typ apperror.Type) *apperror.Error {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %v", err)
	assert.Equal(t, typ, appErr.Type)
	return appErr
}

func readObject(t *testing.T, b objectstore.Bucket, p string) string {
	t.Helper()
	rc, err := b.Download(context.Background(), p)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestUpload_Pipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Upload(ctx, f.request())
	require.NoError(t, err)
	assert.NotEmpty(t, res.UploadID)
	assert.NotEmpty(t, res.ResumeID)
	assert.Equal(t, 91, res.Feedback.OverallScore)

	assert.Equal(t, []models.Stage{
		models.StageConverting, models.StageUploading, models.StageAnalyzing, models.StageCompleted,
	}, f.events.stages())
	last := f.events.updates[len(f.events.updates)-1]
	assert.Equal(t, res.ResumeID, last.ResumeID)
	assert.Equal(t, "Analysis complete, redirecting...", last.Message)

	assert.Equal(t, "Backend Engineer", f.analyzer.got.JobTitle)
	assert.Equal(t, pdfconv.MimePDF, f.analyzer.got.MimeType)

	r, err := f.svc.Get(ctx, f.userID, res.ResumeID)
	require.NoError(t, err)
	assert.Equal(t, 91, *r.OverallScore)
	assert.True(t, strings.HasPrefix(r.ResumePath, f.userID+"/"))
	assert.Contains(t, r.ResumePath, "-pdf-")
	assert.True(t, strings.HasSuffix(r.ImagePath, ".png"))
	assert.Equal(t, string(pdfBytes), readObject(t, f.bucket, r.ResumePath))
	assert.Equal(t, "\x89PNG", readObject(t, f.bucket, r.ImagePath))

	list, err := f.svc.List(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpload_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request()
	req.JobDescription = "   "
	_, err := f.svc.Upload(ctx, req)
	assert.Equal(t, "Please fill in all fields", requireType(t, err, apperror.TypeValidation).Message)

	req = f.request()
	req.Data = nil
	_, err = f.svc.Upload(ctx, req)
	assert.Equal(t, "Please select a resume file", requireType(t, err, apperror.TypeValidation).Message)

	req = f.request()
	req.Data = []byte("just some text")
	_, err = f.svc.Upload(ctx, req)
	assert.Equal(t, "Only PDF files are supported", requireType(t, err, apperror.TypeValidation).Message)

	req = f.request()
	req.Data = append([]byte("%PDF-"), make([]byte, 2<<20)...)
	_, err = f.svc.Upload(ctx, req)
	requireType(t, err, apperror.TypeTooLarge)

	assert.Empty(t, f.events.stages(), "nothing is published for rejected input")
}

func TestUpload_ConversionFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.convert = func([]byte, string, float64) (*pdfconv.Image, error) {
		return nil, errors.New("corrupt")
	}

	_, err := f.svc.Upload(context.Background(), f.request())
	assert.Equal(t, "Failed to convert PDF to image", requireType(t, err, apperror.TypeValidation).Message)
	assert.Equal(t, []models.Stage{models.StageConverting, models.StageFailed}, f.events.stages())
}

func TestUpload_BucketFailureCleansUp(t *testing.T) {
	f := newFixture(t)
	f.svc.bucket = &failingBucket{Bucket: f.bucket, failOn: "-image-"}

	_, err := f.svc.Upload(context.Background(), f.request())
	requireType(t, err, apperror.TypeExternal)

	list, err := f.db.ListUserResumes(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, models.StageFailed, f.events.stages()[len(f.events.stages())-1])
}

func TestUpload_FallbackStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.analyzer.result = llm.Result{Feedback: llm.FallbackFeedback(), Fallback: true, Reason: "ai provider not configured"}

	res, err := f.svc.Upload(context.Background(), f.request())
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 75, res.Feedback.OverallScore)
}

func TestGet_OtherUsersResumeIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Upload(ctx, f.request())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, "someone-else", res.ResumeID)
	requireType(t, err, apperror.TypeNotFound)

	err = f.svc.Delete(ctx, "someone-else", res.ResumeID)
	requireType(t, err, apperror.TypeNotFound)

	_, err = f.svc.Get(ctx, f.userID, "missing")
	requireType(t, err, apperror.TypeNotFound)
}

func TestDelete_RemovesFilesAndRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Upload(ctx, f.request())
	require.NoError(t, err)
	r, err := f.svc.Get(ctx, f.userID, res.ResumeID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.userID, res.ResumeID))

	_, err = f.bucket.Download(ctx, r.ResumePath)
	assert.ErrorIs(t, err, objectstore.ErrObjectNotFound)
	_, err = f.bucket.Download(ctx, r.ImagePath)
	assert.ErrorIs(t, err, objectstore.ErrObjectNotFound)

	_, err = f.svc.Get(ctx, f.userID, res.ResumeID)
	requireType(t, err, apperror.TypeNotFound)
}

func TestFeedbackOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Upload(ctx, f.request())
	require.NoError(t, err)

	err = f.svc.CreateFeedback(ctx, f.userID, res.ResumeID, llm.FallbackFeedback())
	requireType(t, err, apperror.TypeConflict)

	require.NoError(t, f.svc.DeleteFeedback(ctx, f.userID, res.ResumeID))
	rec, err := f.db.GetResumeRecord(ctx, res.ResumeID)
	require.NoError(t, err)
	assert.Nil(t, rec.OverallScore)

	err = f.svc.DeleteFeedback(ctx, f.userID, res.ResumeID)
	requireType(t, err, apperror.TypeNotFound)

	bad := llm.FallbackFeedback()
	bad.OverallScore = 140
	err = f.svc.CreateFeedback(ctx, f.userID, res.ResumeID, bad)
	requireType(t, err, apperror.TypeValidation)

	require.NoError(t, f.svc.CreateFeedback(ctx, f.userID, res.ResumeID, llm.FallbackFeedback()))
	r, err := f.svc.Get(ctx, f.userID, res.ResumeID)
	require.NoError(t, err)
	assert.Equal(t, 75, *r.OverallScore)
}

func TestFileAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Upload(ctx, f.request())
	require.NoError(t, err)
	r, err := f.svc.Get(ctx, f.userID, res.ResumeID)
	require.NoError(t, err)

	url, err := f.svc.FileURL(ctx, f.userID, r.ImagePath)
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:8080/files/"+f.userID+"/")
	assert.Contains(t, url, "signature=")

	rc, ct, err := f.svc.OpenFile(ctx, f.userID, r.ResumePath)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "application/pdf", ct)

	_, err = f.svc.FileURL(ctx, "intruder", r.ImagePath)
	requireType(t, err, apperror.TypeForbidden)

	_, _, err = f.svc.OpenFile(ctx, f.userID, f.userID+"/../other/x.pdf")
	requireType(t, err, apperror.TypeValidation)

	_, _, err = f.svc.OpenFile(ctx, f.userID, f.userID+"/missing.pdf")
	requireType(t, err, apperror.TypeNotFound)
}
