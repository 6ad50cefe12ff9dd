package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
)

type trackLinePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (p *trackLinePayload) validate() error {
	if p.Name == "" {
		return apperrors.Validation("name is required")
	}
	return nil
}

func (rt *Router) createTrackLine(w http.ResponseWriter, req *http.Request) {
	var payload trackLinePayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}

	var count int64
	if err := rt.db.Model(&models.TrackLine{}).Where("name = ?", payload.Name).Count(&count).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	if count > 0 {
		rt.respondError(w, apperrors.Conflict("Track line name already exists"))
		return
	}

	row := models.TrackLine{
		Name:        payload.Name,
		Description: payload.Description,
		IsActive:    payload.IsActive == nil || *payload.IsActive,
	}
	if err := rt.db.Create(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

func (rt *Router) listTrackLines(w http.ResponseWriter, req *http.Request) {
	qry := rt.db.Model(&models.TrackLine{})

	active, err := boolQuery(req, "active")
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if active != nil {
		qry = qry.Where("is_active = ?", *active)
	}
	if flagQuery(req, "includeSections") {
		qry = qry.Preload("Sections")
	}

	limit, offset := limitOffset(req)
	var rows []models.TrackLine
	if err := qry.Order("name").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (rt *Router) getTrackLine(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.TrackLine
	if err := rt.db.Preload("Sections").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Track line not found"))
			return
		}
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) updateTrackLine(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.TrackLine
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Track line not found"))
			return
		}
		rt.respondError(w, err)
		return
	}

	var payload trackLinePayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}

	var count int64
	if err := rt.db.Model(&models.TrackLine{}).Where("name = ? AND id <> ?", payload.Name, id).Count(&count).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	if count > 0 {
		rt.respondError(w, apperrors.Conflict("Track line name already exists"))
		return
	}

	row.Name = payload.Name
	row.Description = payload.Description
	if payload.IsActive != nil {
		row.IsActive = *payload.IsActive
	}
	if err := rt.db.Save(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) deleteTrackLine(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.DeleteTrackLine(id); err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
