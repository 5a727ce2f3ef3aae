package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdp/scansvc/internal/business"
	"cdp/scansvc/internal/catalog"
	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/ginx"
	"cdp/scansvc/pkg/infra/mysql"
	"cdp/scansvc/pkg/logger"
)

// ---- 业务桩 ----

type stubDiagnoser struct{ diag *model.Diagnosis }

func (d *stubDiagnoser) Diagnose(ctx context.Context, image []byte) (*model.Diagnosis, error) {
	return d.diag, nil
}

type stubImageStore struct{}

func (stubImageStore) Store(ctx context.Context, image []byte, filename string) (string, error) {
	return "http://img.example.com/scan.jpg", nil
}

type stubRepo struct {
	records map[int64]*model.ScanRecord
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[int64]*model.ScanRecord)}
}

func (r *stubRepo) Create(ctx context.Context, rec *model.ScanRecord) error {
	r.records[rec.ID] = rec
	return nil
}

func (r *stubRepo) UpdateResult(ctx context.Context, rec *model.ScanRecord) error {
	r.records[rec.ID] = rec
	return nil
}

func (r *stubRepo) GetByID(ctx context.Context, id int64) (*model.ScanRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, mysql.ErrScanNotFound
	}
	return rec, nil
}

func (r *stubRepo) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]*model.ScanRecord, int64, error) {
	var out []*model.ScanRecord
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubRepo) Delete(ctx context.Context, id int64, ownerID string) error {
	rec, ok := r.records[id]
	if !ok || rec.OwnerID != ownerID {
		return mysql.ErrScanNotFound
	}
	delete(r.records, id)
	return nil
}

type stubPublisher struct{ published [][]byte }

func (p *stubPublisher) Publish(queue string, data []byte, ttl, delay uint32) error {
	p.published = append(p.published, data)
	return nil
}

type stubWaiter struct {
	notification *model.ScanNotification
	err          error
}

func (w *stubWaiter) WaitForScanResult(ctx context.Context, channel string, scanID int64, timeout time.Duration) (*model.ScanNotification, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.notification, nil
}

// ---- 测试脚手架 ----

func newTestRouter(repo *stubRepo, publisher *stubPublisher, waiter *stubWaiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	diag := &model.Diagnosis{
		Crop:       "Tomato",
		DiseaseKey: "Tomato___Early_blight",
		Disease:    "Early blight",
		Confidence: 0.93,
		Source:     model.SourcePrimary,
	}
	svc := business.NewScanService(&stubDiagnoser{diag: diag}, stubImageStore{}, catalog.New(), repo, logger.NopLogger{})

	h := NewScanHandler(svc, repo, publisher, waiter, Options{
		ScanQueue:     "leaf_scan",
		NotifyChannel: "leaf_scan_complete",
		MaxWait:       time.Second,
	}, logger.NopLogger{})

	r := gin.New()
	r.POST("/api/v1/scans", h.Create)
	r.POST("/api/v1/scans/async", h.CreateAsync)
	r.GET("/api/v1/scans", h.List)
	r.GET("/api/v1/scans/:id", h.Get)
	r.DELETE("/api/v1/scans/:id", h.Delete)
	return r
}

func multipartImage(t *testing.T, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fw, err := writer.CreateFormFile("image", "leaf.jpg")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) ginx.Response {
	t.Helper()
	var resp ginx.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ---- 用例 ----

func TestCreateScanSync(t *testing.T) {
	repo := newStubRepo()
	r := newTestRouter(repo, &stubPublisher{}, &stubWaiter{})

	body, contentType := multipartImage(t, []byte("fake-jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Owner-ID", "user-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 201, resp.Meta.Code)
	require.Len(t, repo.records, 1)
}

func TestCreateScanMissingImage(t *testing.T) {
	r := newTestRouter(newStubRepo(), &stubPublisher{}, &stubWaiter{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateScanAsyncSmartWaitTimeout(t *testing.T) {
	repo := newStubRepo()
	publisher := &stubPublisher{}
	// 等待超时：Worker 还没处理完
	waiter := &stubWaiter{err: fmt.Errorf("wait for scan result timed out")}
	r := newTestRouter(repo, publisher, waiter)

	body, contentType := multipartImage(t, []byte("fake-jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/async?wait=1", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 3001, resp.Meta.Code)

	// PENDING 记录已落库，Job 已投递
	require.Len(t, repo.records, 1)
	require.Len(t, publisher.published, 1)

	// Job 是标准信封结构，action_type 正确
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(publisher.published[0], &envelope))
	payload := envelope["payload"].(map[string]interface{})
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, model.ActionLeafScan, data["action_type"])
}

func TestGetScan(t *testing.T) {
	repo := newStubRepo()
	repo.records[42] = &model.ScanRecord{ID: 42, OwnerID: "user-1", Status: model.ScanStatusHealthy}
	r := newTestRouter(repo, &stubPublisher{}, &stubWaiter{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetScanNotFound(t *testing.T) {
	r := newTestRouter(newStubRepo(), &stubPublisher{}, &stubWaiter{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetScanInvalidID(t *testing.T) {
	r := newTestRouter(newStubRepo(), &stubPublisher{}, &stubWaiter{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteScanOwnership(t *testing.T) {
	repo := newStubRepo()
	repo.records[42] = &model.ScanRecord{ID: 42, OwnerID: "user-1"}
	r := newTestRouter(repo, &stubPublisher{}, &stubWaiter{})

	// 别人的记录表现为不存在
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/scans/42", nil)
	req.Header.Set("X-Owner-ID", "user-2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 本人删除成功
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/scans/42", nil)
	req.Header.Set("X-Owner-ID", "user-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.records)
}
