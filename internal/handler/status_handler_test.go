package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/service"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error map[string]interface{} `json:"error"`
}

type fakeStatusRepo struct {
	statuses   []models.Status
	created    *models.Status
	protocolos int
	deleted    string
}

func (f *fakeStatusRepo) List(ctx context.Context) ([]models.Status, error) {
	return f.statuses, nil
}

func (f *fakeStatusRepo) FindByID(ctx context.Context, id string) (*models.Status, error) {
	for i := range f.statuses {
		if f.statuses[i].ID == id {
			return &f.statuses[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStatusRepo) FindInicial(ctx context.Context) (*models.Status, error) {
	for i := range f.statuses {
		if f.statuses[i].Inicial {
			return &f.statuses[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStatusRepo) Create(ctx context.Context, status *models.Status) error {
	status.ID = "st-novo"
	f.created = status
	return nil
}

func (f *fakeStatusRepo) Update(ctx context.Context, status *models.Status) error {
	return nil
}

func (f *fakeStatusRepo) Delete(ctx context.Context, id string) error {
	f.deleted = id
	return nil
}

func (f *fakeStatusRepo) CountProtocolos(ctx context.Context, statusID string) (int, error) {
	return f.protocolos, nil
}

func TestStatusHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStatusRepo{statuses: []models.Status{
		{ID: "st1", Nome: "Aberto", Cor: "#22C55E", Ordem: 1, Inicial: true},
		{ID: "st2", Nome: "Concluído", Cor: "#0EA5E9", Ordem: 2, Final: true},
	}}
	handler := NewStatusHandler(service.NewStatusService(repo, nil, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/status", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var statuses []models.Status
	require.NoError(t, json.Unmarshal(envelope.Data, &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, "Aberto", statuses[0].Nome)
}

func TestStatusHandlerCreateInvalidColor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStatusHandler(service.NewStatusService(&fakeStatusRepo{}, nil, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"nome":"Em análise","cor":"verde","ordem":1}`
	c.Request = httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusHandlerDeleteInUse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStatusRepo{
		statuses:   []models.Status{{ID: "st1", Nome: "Aberto"}},
		protocolos: 3,
	}
	handler := NewStatusHandler(service.NewStatusService(repo, nil, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/status/st1", nil)
	c.Params = gin.Params{{Key: "id", Value: "st1"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, repo.deleted)
}
