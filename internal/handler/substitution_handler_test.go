package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/service"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
)

type fakeSubstitutionSrv struct {
	scanRecords []models.SubstitutionRecord
	scanErr     error
	listRecords []models.SubstitutionRecord
	lastFilter  models.SubstitutionFilter
	commit      *models.SubstitutionRecord
	commitErr   error
	lastCommit  struct {
		vacancyID string
		teacherID string
	}
	candidates []models.Candidate
	outcomes   []service.ProposalOutcome
}

func (f *fakeSubstitutionSrv) Scan(context.Context, service.ScanRequest) ([]models.SubstitutionRecord, error) {
	return f.scanRecords, f.scanErr
}

func (f *fakeSubstitutionSrv) List(_ context.Context, filter models.SubstitutionFilter) ([]models.SubstitutionRecord, error) {
	f.lastFilter = filter
	return f.listRecords, nil
}

func (f *fakeSubstitutionSrv) Candidates(context.Context, string) ([]models.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeSubstitutionSrv) Commit(_ context.Context, vacancyID string, req service.CommitRequest) (*models.SubstitutionRecord, error) {
	f.lastCommit.vacancyID = vacancyID
	f.lastCommit.teacherID = req.TeacherID
	return f.commit, f.commitErr
}

func (f *fakeSubstitutionSrv) ApplyProposals(context.Context, service.ApplyProposalsRequest) ([]service.ProposalOutcome, error) {
	return f.outcomes, nil
}

func testContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestSubstitutionHandlerScan(t *testing.T) {
	srv := &fakeSubstitutionSrv{scanRecords: []models.SubstitutionRecord{{ID: "vac-1"}}}
	handler := NewSubstitutionHandler(srv)

	c, rec := testContext(t, http.MethodPost, "/substitutions/scan", `{"date":"2026-01-05"}`)
	handler.Scan(c)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data []models.SubstitutionRecord `json:"data"`
		Meta map[string]interface{}      `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "vac-1", envelope.Data[0].ID)
	assert.Equal(t, float64(1), envelope.Meta["created"])
}

func TestSubstitutionHandlerScanBadPayload(t *testing.T) {
	handler := NewSubstitutionHandler(&fakeSubstitutionSrv{})

	c, rec := testContext(t, http.MethodPost, "/substitutions/scan", `{`)
	handler.Scan(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubstitutionHandlerListFilters(t *testing.T) {
	srv := &fakeSubstitutionSrv{}
	handler := NewSubstitutionHandler(srv)

	c, rec := testContext(t, http.MethodGet, "/substitutions?date=2026-01-05&section=Boys&pending=true", "")
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Boys", srv.lastFilter.Section)
	assert.True(t, srv.lastFilter.OnlyPending)
	require.NotNil(t, srv.lastFilter.Date)
	assert.Equal(t, "2026-01-05", srv.lastFilter.Date.Format("2006-01-02"))
}

func TestSubstitutionHandlerListBadDate(t *testing.T) {
	handler := NewSubstitutionHandler(&fakeSubstitutionSrv{})

	c, rec := testContext(t, http.MethodGet, "/substitutions?date=05-01-2026", "")
	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubstitutionHandlerCommit(t *testing.T) {
	srv := &fakeSubstitutionSrv{commit: &models.SubstitutionRecord{ID: "vac-1", SubstituteTeacherID: "t-dina"}}
	handler := NewSubstitutionHandler(srv)

	c, rec := testContext(t, http.MethodPost, "/substitutions/vac-1/commit", `{"teacher_id":"t-dina"}`)
	c.Params = gin.Params{{Key: "id", Value: "vac-1"}}
	handler.Commit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vac-1", srv.lastCommit.vacancyID)
	assert.Equal(t, "t-dina", srv.lastCommit.teacherID)
}

func TestSubstitutionHandlerCommitRejection(t *testing.T) {
	srv := &fakeSubstitutionSrv{commitErr: appErrors.ErrSlotConflict}
	handler := NewSubstitutionHandler(srv)

	c, rec := testContext(t, http.MethodPost, "/substitutions/vac-1/commit", `{"teacher_id":"t-dina"}`)
	c.Params = gin.Params{{Key: "id", Value: "vac-1"}}
	handler.Commit(c)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrSlotConflict.Code, envelope.Error.Code)
}
