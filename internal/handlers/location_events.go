package handlers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
)

// Location events are append-only: they are created by RFID readers and
// occasionally deleted during cleanup, never updated.

type locationEventPayload struct {
	AssetID   uint           `json:"assetId"`
	RfidTagID string         `json:"rfidTagId"`
	Location  string         `json:"location"`
	ReaderID  string         `json:"readerId"`
	Timestamp *time.Time     `json:"timestamp"`
	Details   datatypes.JSON `json:"details"`
}

func (rt *Router) createLocationEvent(w http.ResponseWriter, req *http.Request) {
	var payload locationEventPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}

	var asset models.TrainAsset
	if err := rt.db.First(&asset, payload.AssetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.Validation("assetId does not exist"))
			return
		}
		rt.respondError(w, err)
		return
	}

	tag := payload.RfidTagID
	if tag == "" {
		// Readers may omit the tag; fall back to the asset's registered one
		tag = asset.RfidTagID
	}

	timestamp := time.Now().UTC()
	if payload.Timestamp != nil {
		timestamp = payload.Timestamp.UTC()
	}

	row := models.AssetLocationEvent{
		AssetID:   payload.AssetID,
		RfidTagID: tag,
		Location:  payload.Location,
		ReaderID:  payload.ReaderID,
		Timestamp: timestamp,
		Details:   payload.Details,
	}
	if err := rt.db.Create(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

// listLocationEvents returns newest sightings first.
func (rt *Router) listLocationEvents(w http.ResponseWriter, req *http.Request) {
	qry := rt.db.Model(&models.AssetLocationEvent{})

	assetID, err := uintQuery(req, "assetId")
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if assetID != nil {
		qry = qry.Where("asset_id = ?", *assetID)
	}

	if readerID := req.URL.Query().Get("readerId"); readerID != "" {
		qry = qry.Where("reader_id = ?", readerID)
	}
	if tag := req.URL.Query().Get("rfidTagId"); tag != "" {
		qry = qry.Where("rfid_tag_id = ?", tag)
	}

	for name, op := range map[string]string{"since": ">=", "until": "<="} {
		raw := req.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			rt.respondError(w, apperrors.Validationf("invalid timestamp %q for %s", raw, name))
			return
		}
		qry = qry.Where("timestamp "+op+" ?", t)
	}

	limit, offset := limitOffset(req)
	var rows []models.AssetLocationEvent
	if err := qry.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (rt *Router) getLocationEvent(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.AssetLocationEvent
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Location event not found"))
			return
		}
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) deleteLocationEvent(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	res := rt.db.Delete(&models.AssetLocationEvent{}, id)
	if res.Error != nil {
		rt.respondError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		rt.respondError(w, apperrors.NotFound("Location event not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
