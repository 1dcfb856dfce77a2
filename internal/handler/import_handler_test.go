package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type fakeImportSrv struct {
	lastReq         dto.ImportRequest
	lastBody        string
	lastContentType string
	called          string
	err             error
}

func (f *fakeImportSrv) record(kind string, req dto.ImportRequest) (*models.ImportSummary, error) {
	f.called = kind
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ImportSummary{Inserted: 1, DryRun: req.DryRun, Source: models.ImportSource(kind), Campus: req.Campus}, nil
}

func (f *fakeImportSrv) ImportLive(_ context.Context, req dto.ImportRequest) (*models.ImportSummary, error) {
	return f.record("live", req)
}

func (f *fakeImportSrv) ImportStatic(_ context.Context, req dto.ImportRequest) (*models.ImportSummary, error) {
	return f.record("static", req)
}

func (f *fakeImportSrv) ImportUpload(_ context.Context, req dto.ImportRequest, r io.Reader, contentType string) (*models.ImportSummary, error) {
	body, _ := io.ReadAll(r)
	f.lastBody = string(body)
	f.lastContentType = contentType
	return f.record("upload", req)
}

func (f *fakeImportSrv) ImportCSV(_ context.Context, req dto.ImportRequest, r io.Reader) (*models.ImportSummary, error) {
	body, _ := io.ReadAll(r)
	f.lastBody = string(body)
	return f.record("csv", req)
}

type summaryEnvelope struct {
	Data  models.ImportSummary `json:"data"`
	Error *appErrors.Error     `json:"error"`
}

func multipartRequest(t *testing.T, target, contentType, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="schedule"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("campus", "okanagan"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportHandlerDefaultsToLiveDryRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeImportSrv{}
	handler := NewImportHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/import/exams?campus=V&subject=CPSC&term=2025W", nil)

	handler.Import(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live", srv.called)
	assert.True(t, srv.lastReq.DryRun)
	assert.Equal(t, "CPSC", srv.lastReq.Subject)
	assert.Equal(t, "2025W", srv.lastReq.Term)

	var envelope summaryEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Inserted)
	assert.True(t, envelope.Data.DryRun)
}

func TestImportHandlerStaticCommit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeImportSrv{}
	handler := NewImportHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/import/exams?source=STATIC&dryRun=false", nil)

	handler.Import(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "static", srv.called)
	assert.False(t, srv.lastReq.DryRun)
}

func TestImportHandlerRejectsBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]string{
		"unknown source": "/admin/import/exams?source=ftp",
		"bad dryRun":     "/admin/import/exams?dryRun=maybe",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			srv := &fakeImportSrv{}
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, target, nil)

			NewImportHandler(srv).Import(c)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, srv.called)
		})
	}
}

func TestImportHandlerFetchFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeImportSrv{err: appErrors.Clone(appErrors.ErrFetchFailed, "")}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/import/exams", nil)

	NewImportHandler(srv).Import(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var envelope summaryEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "FETCH_FAILED", envelope.Error.Code)
}

func TestImportHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeImportSrv{}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, "/admin/import/exams/upload?dryRun=false", "text/html", "<table></table>")

	NewImportHandler(srv).Upload(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "upload", srv.called)
	assert.Equal(t, "<table></table>", srv.lastBody)
	assert.Equal(t, "text/html", srv.lastContentType)
	assert.Equal(t, "okanagan", srv.lastReq.Campus)
	assert.False(t, srv.lastReq.DryRun)
}

func TestImportHandlerCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeImportSrv{}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, "/admin/import/exams/csv", "text/csv", "subject,course\n")

	NewImportHandler(srv).CSV(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.called)
	assert.Equal(t, "subject,course\n", srv.lastBody)
	assert.True(t, srv.lastReq.DryRun)
}

func TestImportHandlerUploadRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeImportSrv{}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/import/exams/upload", nil)

	NewImportHandler(srv).Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.called)
}
