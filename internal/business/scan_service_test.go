package business

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdp/scansvc/internal/catalog"
	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/logger"
)

// stubStore 可编程的图片存储桩
type stubStore struct {
	url   string
	err   error
	calls int
}

func (s *stubStore) Store(ctx context.Context, image []byte, filename string) (string, error) {
	s.calls++
	return s.url, s.err
}

// stubRepo 内存版扫描记录仓储
type stubRepo struct {
	created []*model.ScanRecord
	updated []*model.ScanRecord
}

func (r *stubRepo) Create(ctx context.Context, rec *model.ScanRecord) error {
	r.created = append(r.created, rec)
	return nil
}

func (r *stubRepo) UpdateResult(ctx context.Context, rec *model.ScanRecord) error {
	r.updated = append(r.updated, rec)
	return nil
}

// stubDiagnoser 固定返回的诊断桩
type stubDiagnoser struct {
	diag *model.Diagnosis
	err  error
}

func (d *stubDiagnoser) Diagnose(ctx context.Context, image []byte) (*model.Diagnosis, error) {
	return d.diag, d.err
}

func newTestService(diag *model.Diagnosis, store *stubStore, repo *stubRepo) *ScanService {
	return NewScanService(&stubDiagnoser{diag: diag}, store, catalog.New(), repo, logger.NopLogger{})
}

func TestProcessSuccess(t *testing.T) {
	store := &stubStore{url: "http://img.example.com/scan.jpg"}
	repo := &stubRepo{}
	diag := goodDiagnosis()
	diag.Source = model.SourcePrimary
	svc := newTestService(diag, store, repo)

	rec, err := svc.Process(context.Background(), []byte("image"), "leaf.jpg", "user-1")
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, "user-1", rec.OwnerID)
	assert.Equal(t, "http://img.example.com/scan.jpg", rec.ImageURL)
	assert.Equal(t, model.ScanStatusDiseased, rec.Status)
	assert.Equal(t, "Tomato", rec.Plant)
	assert.Equal(t, "Early blight", rec.Condition)
	require.NotNil(t, rec.FullReport)
	assert.Equal(t, "Tomato___Early_blight", rec.FullReport.Detection.DiseaseKey)
	assert.NotEmpty(t, rec.FullReport.Solution.Organic)
	require.Len(t, repo.created, 1)
}

func TestProcessStorageFailureIsFatal(t *testing.T) {
	store := &stubStore{err: errorutil.StorageFailure("image upload request failed", "")}
	repo := &stubRepo{}
	diag := goodDiagnosis()
	diag.Source = model.SourcePrimary
	svc := newTestService(diag, store, repo)

	_, err := svc.Process(context.Background(), []byte("image"), "leaf.jpg", "user-1")
	require.Error(t, err)

	assert.Equal(t, errorutil.CodeStorageFailure, errorutil.CodeOf(err))
	// 诊断结果直接丢弃，不落库
	assert.Empty(t, repo.created)
}

func TestProcessFallbackErrorPersistsAsFailed(t *testing.T) {
	store := &stubStore{url: "http://img.example.com/scan.jpg"}
	repo := &stubRepo{}
	diag := &model.Diagnosis{
		Crop:       "Unknown",
		DiseaseKey: "Analysis Error",
		Disease:    "Analysis Error",
		Source:     model.SourceFallbackError,
	}
	svc := newTestService(diag, store, repo)

	rec, err := svc.Process(context.Background(), []byte("image"), "leaf.jpg", "user-1")
	require.NoError(t, err)

	// 降级终态也要留痕
	assert.Equal(t, model.ScanStatusFailed, rec.Status)
	require.Len(t, repo.created, 1)
}

func TestProcessHealthyStatus(t *testing.T) {
	store := &stubStore{url: "http://img.example.com/scan.jpg"}
	repo := &stubRepo{}
	diag := &model.Diagnosis{
		Crop:       "Tomato",
		DiseaseKey: "Tomato___healthy",
		Disease:    "healthy",
		Confidence: 0.98,
		IsHealthy:  true,
		Source:     model.SourcePrimary,
	}
	svc := newTestService(diag, store, repo)

	rec, err := svc.Process(context.Background(), []byte("image"), "leaf.jpg", "user-1")
	require.NoError(t, err)

	assert.Equal(t, model.ScanStatusHealthy, rec.Status)
	assert.Equal(t, model.SeverityNone, rec.FullReport.Solution.Severity)
}

func TestCompleteUpdatesPendingRecord(t *testing.T) {
	store := &stubStore{url: "http://img.example.com/scan.jpg"}
	repo := &stubRepo{}
	diag := goodDiagnosis()
	diag.Source = model.SourceSecondary
	svc := newTestService(diag, store, repo)

	rec, err := svc.Complete(context.Background(), 42, []byte("image"), "leaf.jpg")
	require.NoError(t, err)

	assert.Equal(t, int64(42), rec.ID)
	assert.Empty(t, repo.created)
	require.Len(t, repo.updated, 1)
	assert.Equal(t, int64(42), repo.updated[0].ID)
}

func TestCreatePending(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(goodDiagnosis(), &stubStore{}, repo)

	rec, err := svc.CreatePending(context.Background(), "user-1")
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, model.ScanStatusPending, rec.Status)
	require.Len(t, repo.created, 1)
}
