package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-proxy-api/internal/service"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
)

type fakeLifecycleSrv struct {
	result      *service.ArchiveResult
	archiveErr  error
	purgeErr    error
	lastPurge   string
	lastConfirm bool
}

func (f *fakeLifecycleSrv) Archive(context.Context, service.ArchiveRequest) (*service.ArchiveResult, error) {
	return f.result, f.archiveErr
}

func (f *fakeLifecycleSrv) Purge(_ context.Context, id string, confirm bool) error {
	f.lastPurge = id
	f.lastConfirm = confirm
	return f.purgeErr
}

func TestLifecycleHandlerArchiveConfirmationRequired(t *testing.T) {
	handler := NewLifecycleHandler(&fakeLifecycleSrv{archiveErr: appErrors.ErrConfirmationRequired})

	c, rec := testContext(t, http.MethodPost, "/substitutions/archive", `{"date":"2026-01-05"}`)
	handler.Archive(c)

	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
}

func TestLifecycleHandlerArchive(t *testing.T) {
	handler := NewLifecycleHandler(&fakeLifecycleSrv{result: &service.ArchiveResult{Count: 2, ArchivedIDs: []string{"vac-1", "vac-2"}}})

	c, rec := testContext(t, http.MethodPost, "/substitutions/archive", `{"date":"2026-01-05","confirm":true}`)
	handler.Archive(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLifecycleHandlerPurge(t *testing.T) {
	srv := &fakeLifecycleSrv{}
	handler := NewLifecycleHandler(srv)

	c, rec := testContext(t, http.MethodDelete, "/substitutions/vac-1?confirm=true", "")
	c.Params = gin.Params{{Key: "id", Value: "vac-1"}}
	handler.Purge(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "vac-1", srv.lastPurge)
	assert.True(t, srv.lastConfirm)
}

func TestLifecycleHandlerPurgeWithoutConfirm(t *testing.T) {
	srv := &fakeLifecycleSrv{purgeErr: appErrors.ErrConfirmationRequired}
	handler := NewLifecycleHandler(srv)

	c, rec := testContext(t, http.MethodDelete, "/substitutions/vac-1", "")
	c.Params = gin.Params{{Key: "id", Value: "vac-1"}}
	handler.Purge(c)

	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.False(t, srv.lastConfirm)
}
