package handlers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
)

type trainAssetPayload struct {
	AssetID     *string          `json:"assetId"`
	RfidTagID   string           `json:"rfidTagId"`
	Type        models.AssetType `json:"type"`
	RoadNumber  string           `json:"roadNumber"`
	Description string           `json:"description"`
	Active      *bool            `json:"active"`
}

func (p *trainAssetPayload) validate() error {
	if p.RfidTagID == "" {
		return apperrors.Validation("rfidTagId is required")
	}
	if !p.Type.Valid() {
		return apperrors.Validationf("invalid type %q", p.Type)
	}
	return nil
}

func (rt *Router) createTrainAsset(w http.ResponseWriter, req *http.Request) {
	var payload trainAssetPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}

	var count int64
	if err := rt.db.Model(&models.TrainAsset{}).Where("rfid_tag_id = ?", payload.RfidTagID).Count(&count).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	if count > 0 {
		rt.respondError(w, apperrors.Conflict("RFID Tag ID already exists"))
		return
	}

	row := models.TrainAsset{
		AssetID:     payload.AssetID,
		RfidTagID:   payload.RfidTagID,
		Type:        payload.Type,
		RoadNumber:  payload.RoadNumber,
		Description: payload.Description,
		Active:      payload.Active == nil || *payload.Active,
		DateAdded:   time.Now().UTC(),
	}
	if err := rt.db.Create(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

// listTrainAssets searches road number, client asset id and description.
func (rt *Router) listTrainAssets(w http.ResponseWriter, req *http.Request) {
	qry := rt.db.Model(&models.TrainAsset{})

	active, err := boolQuery(req, "active")
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if active != nil {
		qry = qry.Where("active = ?", *active)
	}

	if assetType := req.URL.Query().Get("type"); assetType != "" {
		qry = qry.Where("type = ?", assetType)
	}
	if q := req.URL.Query().Get("q"); q != "" {
		like := "%" + q + "%"
		qry = qry.Where(
			"LOWER(road_number) LIKE LOWER(?) OR LOWER(asset_id) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)",
			like, like, like,
		)
	}
	if flagQuery(req, "includeEvents") {
		qry = qry.Preload("LocationEvents")
	}

	limit, offset := limitOffset(req)
	var rows []models.TrainAsset
	if err := qry.Order("road_number").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (rt *Router) getTrainAsset(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.TrainAsset
	if err := rt.db.Preload("LocationEvents").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Train asset not found"))
			return
		}
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) updateTrainAsset(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.TrainAsset
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Train asset not found"))
			return
		}
		rt.respondError(w, err)
		return
	}

	var payload trainAssetPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}

	var count int64
	if err := rt.db.Model(&models.TrainAsset{}).Where("rfid_tag_id = ? AND id <> ?", payload.RfidTagID, id).Count(&count).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	if count > 0 {
		rt.respondError(w, apperrors.Conflict("RFID Tag ID already exists"))
		return
	}

	row.AssetID = payload.AssetID
	row.RfidTagID = payload.RfidTagID
	row.Type = payload.Type
	row.RoadNumber = payload.RoadNumber
	row.Description = payload.Description
	if payload.Active != nil {
		row.Active = *payload.Active
	}
	if err := rt.db.Save(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) deleteTrainAsset(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.DeleteTrainAsset(id); err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
