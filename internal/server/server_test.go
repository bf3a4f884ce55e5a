package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/pkg/authz"
	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/core/services"
	"github.com/jakechorley/flightguard/pkg/memstore"
)

func newTestServer(t *testing.T) (*Server, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	auth := authz.NewAllowList(
		[]string{"ops@example.com"},
		[]string{"admin@example.com"},
	)
	return New(store, auth, nil, zap.NewNop(), nil), store
}

func doJSON(t *testing.T, s *Server, method, path, actor string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echoContentType, "application/json")
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func createDataset(t *testing.T, s *Server) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/datasets", "admin@example.com", map[string]string{"name": "test"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dataset model.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dataset))
	return dataset.ID
}

func TestAPI_MissingActor(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/datasets", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_AssignmentFlow(t *testing.T) {
	s, store := newTestServer(t)
	datasetID := createDataset(t, s)

	flights := make([]model.Flight, 10)
	for i := range flights {
		flights[i] = model.Flight{
			ID:            fmt.Sprintf("f-%02d", i),
			FlightKey:     fmt.Sprintf("10/03/2025|08:%02d|amx|%d|A", i, i),
			Category:      "A",
			ScheduledDate: "10/03/2025",
		}
	}
	_, err := store.InsertFlights(context.Background(), datasetID, flights)
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodPut, "/api/datasets/"+datasetID+"/targets", "admin@example.com",
		map[string]interface{}{"targets": []map[string]interface{}{{"category": "A", "targetPercent": 35}}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/api/datasets/"+datasetID+"/assign", "ops@example.com",
		map[string]string{"workDate": "2025-03-10"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result services.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 10, result.UpdatedFlightCount)
	require.Len(t, result.Summary, 1)
	assert.Equal(t, 4, result.Summary[0].RequiredCount)
	assert.Equal(t, 4, result.Summary[0].AssignedCount)
}

func TestAPI_AssignmentErrors(t *testing.T) {
	s, _ := newTestServer(t)
	datasetID := createDataset(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/datasets/"+datasetID+"/assign", "stranger@example.com",
		map[string]string{"workDate": "2025-03-10"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/datasets/"+datasetID+"/assign", "ops@example.com",
		map[string]string{"workDate": "31/02/2025"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/datasets/missing/assign", "ops@example.com",
		map[string]string{"workDate": "2025-03-10"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_OperateFlight(t *testing.T) {
	s, store := newTestServer(t)
	datasetID := createDataset(t, s)

	_, err := store.InsertFlights(context.Background(), datasetID, []model.Flight{
		{ID: "f-1", FlightKey: "k1", Category: "A", ScheduledDate: "10/03/2025"},
	})
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodPost, "/api/flights/f-1/operate", "ops@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Flight *model.Flight `json:"flight"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Flight)
	assert.True(t, resp.Flight.Operated)

	// Concurrent-loser outcome: 200 with a null flight.
	rec = doJSON(t, s, http.MethodPost, "/api/flights/f-1/operate", "admin@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp.Flight = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Flight)

	// Un-marking is an integrity violation.
	operated := false
	rec = doJSON(t, s, http.MethodPost, "/api/flights/f-1/operate", "ops@example.com",
		map[string]interface{}{"operated": operated})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_ImportManifest(t *testing.T) {
	s, _ := newTestServer(t)
	datasetID := createDataset(t, s)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("manifest", "manifest.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(
		"category,type,date,time,carrier_code,carrier_name,doc_code,flight_number\n" +
			"5.3,INT,10/03/2025,08:30,AM,Aeromexico,AMX,404\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+datasetID+"/import", &buf)
	req.Header.Set(echoContentType, w.FormDataContentType())
	req.Header.Set("X-Actor", "admin@example.com")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result services.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.InsertedCount)
}
