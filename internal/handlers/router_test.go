package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/railstack/layoutd/internal/config"
	"github.com/railstack/layoutd/internal/hardware"
	"github.com/railstack/layoutd/internal/models"
	"github.com/railstack/layoutd/internal/services/control"
	"github.com/railstack/layoutd/internal/services/layout"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Accessory{},
		&models.TrackLine{},
		&models.Section{},
		&models.Switch{},
		&models.SectionConnection{},
		&models.TrainAsset{},
		&models.AssetLocationEvent{},
	))

	zl := zaptest.NewLogger(t)
	dispatcher := control.NewDispatcher(hardware.NewMockProvider("mock", zl), zl)
	cfg := &config.Config{Env: "test", CORSOrigins: []string{"http://localhost:5173"}}
	return NewRouter(db, layout.NewService(db, zl), dispatcher, nil, zl, cfg)
}

func do(t *testing.T, rt *Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, rec, &body)
	return body["detail"]
}

// seedCategory inserts a category and returns its id.
func seedCategory(t *testing.T, rt *Router, name string) uint {
	t.Helper()
	rec := do(t, rt, "POST", "/categories", map[string]interface{}{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var row models.Category
	decode(t, rec, &row)
	return row.ID
}

func seedAccessory(t *testing.T, rt *Router, payload map[string]interface{}) models.Accessory {
	t.Helper()
	rec := do(t, rt, "POST", "/accessories", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var row models.Accessory
	decode(t, rec, &row)
	return row
}

func seedTrackLine(t *testing.T, rt *Router, name string) uint {
	t.Helper()
	rec := do(t, rt, "POST", "/trackLines", map[string]interface{}{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var row models.TrackLine
	decode(t, rec, &row)
	return row.ID
}

func seedSection(t *testing.T, rt *Router, name string, trackLineID uint) models.Section {
	t.Helper()
	rec := do(t, rt, "POST", "/sections", map[string]interface{}{
		"name":        name,
		"trackLineId": trackLineID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var row models.Section
	decode(t, rec, &row)
	return row
}

func TestHealthAndVersion(t *testing.T) {
	rt := newTestRouter(t)

	rec := do(t, rt, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	decode(t, rec, &health)
	assert.Equal(t, "ok", health["status"])

	rec = do(t, rt, "GET", "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var version map[string]string
	decode(t, rec, &version)
	assert.NotEmpty(t, version["startedAt"])
}

func TestCategoryLifecycle(t *testing.T) {
	rt := newTestRouter(t)

	rec := do(t, rt, "POST", "/categories", map[string]interface{}{
		"name":        "Signals",
		"description": "Track-side signals",
		"sortOrder":   2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Category
	decode(t, rec, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Signals", created.Name)

	// Duplicate names are rejected
	rec = do(t, rt, "POST", "/categories", map[string]interface{}{"name": "Signals"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category name already exists", detail(t, rec))

	rec = do(t, rt, "PUT", fmt.Sprintf("/categories/%d", created.ID), map[string]interface{}{
		"name":      "Signals",
		"sortOrder": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Category
	decode(t, rec, &updated)
	assert.Equal(t, 1, updated.SortOrder)

	seedCategory(t, rt, "Lights")
	rec = do(t, rt, "GET", "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Category
	decode(t, rec, &all)
	require.Len(t, all, 2)
	// sort_order wins over name
	assert.Equal(t, "Lights", all[0].Name)

	rec = do(t, rt, "GET", "/categories/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", detail(t, rec))
}

func TestCategoryDeleteGuard(t *testing.T) {
	rt := newTestRouter(t)

	catID := seedCategory(t, rt, "Signals")
	acc := seedAccessory(t, rt, map[string]interface{}{
		"name":        "Main Signal",
		"categoryId":  catID,
		"controlType": "onOff",
		"address":     "relay:1",
	})

	rec := do(t, rt, "DELETE", fmt.Sprintf("/categories/%d", catID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category has accessories; reassign or delete them first", detail(t, rec))

	rec = do(t, rt, "DELETE", fmt.Sprintf("/accessories/%d", acc.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, rt, "DELETE", fmt.Sprintf("/categories/%d", catID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, rt, "GET", fmt.Sprintf("/categories/%d", catID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccessoryValidation(t *testing.T) {
	rt := newTestRouter(t)
	catID := seedCategory(t, rt, "Signals")

	cases := []struct {
		name    string
		payload map[string]interface{}
		detail  string
	}{
		{
			name:    "missing name",
			payload: map[string]interface{}{"categoryId": catID, "controlType": "onOff", "address": "relay:1"},
			detail:  "name is required",
		},
		{
			name:    "missing address",
			payload: map[string]interface{}{"name": "X", "categoryId": catID, "controlType": "onOff"},
			detail:  "address is required",
		},
		{
			name:    "bad control type",
			payload: map[string]interface{}{"name": "X", "categoryId": catID, "controlType": "blink", "address": "relay:1"},
			detail:  `invalid controlType "blink"`,
		},
		{
			name:    "unknown category",
			payload: map[string]interface{}{"name": "X", "categoryId": 9999, "controlType": "onOff", "address": "relay:1"},
			detail:  "categoryId does not exist",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, rt, "POST", "/accessories", tc.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.detail, detail(t, rec))
		})
	}
}

func TestAccessoryApplyOnOff(t *testing.T) {
	rt := newTestRouter(t)
	catID := seedCategory(t, rt, "Signals")
	acc := seedAccessory(t, rt, map[string]interface{}{
		"name":        "Main Signal",
		"categoryId":  catID,
		"controlType": "onOff",
		"address":     "relay:1",
	})

	// No body defaults to "on"
	rec := do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/apply", acc.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result control.ApplyResult
	decode(t, rec, &result)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, models.ControlOnOff, result.Action)
	assert.Equal(t, "on", result.State)

	rec = do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/apply", acc.ID), map[string]interface{}{"state": "off"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &result)
	assert.Equal(t, "off", result.State)

	rec = do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/apply", acc.ID), map[string]interface{}{"state": "sideways"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, rt, "POST", "/actions/accessories/9999/apply", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Accessory not found", detail(t, rec))
}

func TestInactiveAccessoryControl(t *testing.T) {
	rt := newTestRouter(t)
	catID := seedCategory(t, rt, "Signals")
	inactive := false
	acc := seedAccessory(t, rt, map[string]interface{}{
		"name":        "Yard Lamp",
		"categoryId":  catID,
		"controlType": "onOff",
		"address":     "relay:7",
		"isActive":    inactive,
	})

	// Dispatch refuses inactive accessories
	rec := do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/apply", acc.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Explicit commands are the maintenance override
	rec = do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/on", acc.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/off", acc.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessoryPulseBounds(t *testing.T) {
	rt := newTestRouter(t)
	catID := seedCategory(t, rt, "Turnout Motors")
	acc := seedAccessory(t, rt, map[string]interface{}{
		"name":        "W1 Motor",
		"categoryId":  catID,
		"controlType": "toggle",
		"address":     "relay:3",
	})

	rec := do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/pulse/50", acc.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/pulse/0", acc.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, rt, "POST", fmt.Sprintf("/actions/accessories/%d/pulse/999999", acc.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectionSelfLoopRejected(t *testing.T) {
	rt := newTestRouter(t)
	lineID := seedTrackLine(t, rt, "Mainline")
	a := seedSection(t, rt, "A", lineID)
	b := seedSection(t, rt, "B", lineID)

	rec := do(t, rt, "POST", "/sectionConnections", map[string]interface{}{
		"fromSectionId": a.ID,
		"toSectionId":   a.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot connect section to itself", detail(t, rec))

	rec = do(t, rt, "POST", "/sectionConnections", map[string]interface{}{
		"fromSectionId": a.ID,
		"toSectionId":   b.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var conn models.SectionConnection
	decode(t, rec, &conn)
	assert.Equal(t, models.ConnectionDirect, conn.ConnectionType)
	assert.True(t, conn.Bidirectional)

	// Connected sections cannot be deleted
	rec = do(t, rt, "DELETE", fmt.Sprintf("/sections/%d", a.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Section has connections; delete them first", detail(t, rec))
}

func TestConnectionUnknownEndpoints(t *testing.T) {
	rt := newTestRouter(t)
	lineID := seedTrackLine(t, rt, "Mainline")
	a := seedSection(t, rt, "A", lineID)
	b := seedSection(t, rt, "B", lineID)

	rec := do(t, rt, "POST", "/sectionConnections", map[string]interface{}{
		"fromSectionId": a.ID,
		"toSectionId":   9999,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "toSectionId does not exist", detail(t, rec))

	rec = do(t, rt, "POST", "/sectionConnections", map[string]interface{}{
		"fromSectionId": a.ID,
		"toSectionId":   b.ID,
		"switchId":      9999,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "switchId does not exist", detail(t, rec))
}

func TestSectionFilters(t *testing.T) {
	rt := newTestRouter(t)
	lineID := seedTrackLine(t, rt, "Mainline")
	yardID := seedTrackLine(t, rt, "Yard")

	seedSection(t, rt, "North Curve", lineID)
	south := seedSection(t, rt, "South Curve", lineID)
	seedSection(t, rt, "Yard Lead", yardID)

	rec := do(t, rt, "PUT", fmt.Sprintf("/sections/%d", south.ID), map[string]interface{}{
		"name":        south.Name,
		"trackLineId": south.TrackLineID,
		"isOccupied":  true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, rt, "GET", fmt.Sprintf("/sections?trackLineId=%d", lineID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []models.Section
	decode(t, rec, &rows)
	assert.Len(t, rows, 2)

	rec = do(t, rt, "GET", "/sections?occupied=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "South Curve", rows[0].Name)

	rec = do(t, rt, "GET", "/sections?q=curve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &rows)
	assert.Len(t, rows, 2)

	rec = do(t, rt, "GET", "/sections?occupied=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSwitchLifecycle(t *testing.T) {
	rt := newTestRouter(t)
	catID := seedCategory(t, rt, "Turnout Motors")
	lineID := seedTrackLine(t, rt, "Mainline")
	section := seedSection(t, rt, "Throat", lineID)
	acc := seedAccessory(t, rt, map[string]interface{}{
		"name":        "W1 Motor",
		"categoryId":  catID,
		"controlType": "toggle",
		"address":     "relay:3",
	})

	rec := do(t, rt, "POST", "/switches", map[string]interface{}{
		"accessoryId": acc.ID,
		"sectionId":   section.ID,
		"kind":        "turnout",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sw models.Switch
	decode(t, rec, &sw)
	assert.Equal(t, models.PositionUnknown, sw.Position)

	rec = do(t, rt, "PUT", fmt.Sprintf("/switches/%d", sw.ID), map[string]interface{}{
		"accessoryId": acc.ID,
		"sectionId":   section.ID,
		"kind":        "turnout",
		"position":    "divergent",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &sw)
	assert.Equal(t, models.PositionDivergent, sw.Position)

	// The actuating accessory cannot be deleted while the switch exists
	rec = do(t, rt, "DELETE", fmt.Sprintf("/accessories/%d", acc.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Accessory is used by switches; remove them first", detail(t, rec))

	rec = do(t, rt, "DELETE", fmt.Sprintf("/switches/%d", sw.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, rt, "DELETE", fmt.Sprintf("/accessories/%d", acc.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrainAssetDuplicateTag(t *testing.T) {
	rt := newTestRouter(t)

	rec := do(t, rt, "POST", "/trainAssets", map[string]interface{}{
		"rfidTagId":  "TAG-0001",
		"type":       "Engine",
		"roadNumber": "4014",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, rt, "POST", "/trainAssets", map[string]interface{}{
		"rfidTagId": "TAG-0001",
		"type":      "Car",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RFID Tag ID already exists", detail(t, rec))
}

func TestLocationEventFlow(t *testing.T) {
	rt := newTestRouter(t)

	rec := do(t, rt, "POST", "/trainAssets", map[string]interface{}{
		"rfidTagId": "TAG-0002",
		"type":      "Engine",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var asset models.TrainAsset
	decode(t, rec, &asset)

	// Tag falls back to the asset's registered tag
	rec = do(t, rt, "POST", "/assetLocationEvents", map[string]interface{}{
		"assetId":  asset.ID,
		"location": "Yard Lead",
		"readerId": "reader-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var event models.AssetLocationEvent
	decode(t, rec, &event)
	assert.Equal(t, "TAG-0002", event.RfidTagID)
	assert.False(t, event.Timestamp.IsZero())

	rec = do(t, rt, "POST", "/assetLocationEvents", map[string]interface{}{
		"assetId":  9999,
		"location": "Nowhere",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "assetId does not exist", detail(t, rec))

	// Assets with sightings cannot be deleted
	rec = do(t, rt, "DELETE", fmt.Sprintf("/trainAssets/%d", asset.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, rt, "GET", fmt.Sprintf("/assetLocationEvents?assetId=%d", asset.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []models.AssetLocationEvent
	decode(t, rec, &events)
	assert.Len(t, events, 1)
}

func TestTrackLayoutSnapshot(t *testing.T) {
	rt := newTestRouter(t)
	catID := seedCategory(t, rt, "Signals")
	lineID := seedTrackLine(t, rt, "Mainline")
	a := seedSection(t, rt, "A", lineID)
	b := seedSection(t, rt, "B", lineID)
	seedAccessory(t, rt, map[string]interface{}{
		"name":        "Main Signal",
		"categoryId":  catID,
		"controlType": "onOff",
		"address":     "relay:1",
	})

	rec := do(t, rt, "POST", "/sectionConnections", map[string]interface{}{
		"fromSectionId": a.ID,
		"toSectionId":   b.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, rt, "GET", "/track-layout", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var snapshot layout.Snapshot
	decode(t, rec, &snapshot)
	assert.Len(t, snapshot.Sections, 2)
	assert.Len(t, snapshot.Accessories, 1)
	assert.Len(t, snapshot.Connections, 1)
}

func TestSubmitLogs(t *testing.T) {
	rt := newTestRouter(t)

	rec := do(t, rt, "POST", "/logging/submit", map[string]interface{}{
		"logs": []map[string]interface{}{
			{"level": "info", "message": "layout loaded", "source": "webapp"},
			{"level": "error", "message": "render failed", "errorStack": "TypeError: ..."},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, float64(2), body["count"])

	rec = do(t, rt, "GET", "/logging/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	decode(t, rec, &health)
	assert.Equal(t, false, health["sinkConfigured"])
}
