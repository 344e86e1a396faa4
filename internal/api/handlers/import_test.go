package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-cleanse/internal/domain"
	"org-cleanse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type memUpsertOrgRepo struct {
	orgs []*domain.Organization
}

func (m *memUpsertOrgRepo) Upsert(_ context.Context, org *domain.Organization) (*domain.Organization, error) {
	org.ID = uuid.New()
	m.orgs = append(m.orgs, org)
	return org, nil
}

type memUpsertContactRepo struct{}

func (memUpsertContactRepo) Upsert(_ context.Context, c *domain.ContactPerson) (*domain.ContactPerson, error) {
	return c, nil
}

type memUpsertFormRepo struct{}

func (memUpsertFormRepo) Upsert(_ context.Context, r *domain.FormRecord) (*domain.FormRecord, error) {
	return r, nil
}

func newImportRouter(orgs *memUpsertOrgRepo) *gin.Engine {
	importService := service.NewImportService(orgs, memUpsertContactRepo{}, memUpsertFormRepo{})
	handler := NewImportHandler(importService)

	router := gin.New()
	router.POST("/import/detect", handler.DetectColumns)
	router.POST("/import/organizations", handler.ImportOrganizations)
	return router
}

func uploadCSV(t *testing.T, router *gin.Engine, path, csvBody string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDetectColumnsEndpoint(t *testing.T) {
	router := newImportRouter(&memUpsertOrgRepo{})

	w := uploadCSV(t, router, "/import/detect", "Bezeichnung;PLZ;Ort\nHaus Linde;28195;Bremen\n", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool                  `json:"success"`
		Data    DetectColumnsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, []string{"Bezeichnung", "PLZ", "Ort"}, envelope.Data.Headers)
	assert.Equal(t, "Bezeichnung", envelope.Data.Organizations.Name)
	assert.Equal(t, 1, envelope.Data.RowCount)
}

func TestImportOrganizationsEndpoint(t *testing.T) {
	orgs := &memUpsertOrgRepo{}
	router := newImportRouter(orgs)

	body := "Einrichtung;PLZ;Ort\nHaus Linde;28195;Bremen\n;28195;Bremen\n"
	w := uploadCSV(t, router, "/import/organizations", body, map[string]string{
		"name_column": "Einrichtung",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Imported)
	assert.Equal(t, 1, envelope.Data.Skipped)
	require.Len(t, orgs.orgs, 1)
	assert.Equal(t, "Haus Linde", orgs.orgs[0].Name)
	assert.Equal(t, "28195", orgs.orgs[0].ZipCode)
}

func TestImportOrganizationsMissingFile(t *testing.T) {
	router := newImportRouter(&memUpsertOrgRepo{})

	req := httptest.NewRequest(http.MethodPost, "/import/organizations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
