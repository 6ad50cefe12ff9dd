package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
	"github.com/railstack/layoutd/internal/ws"
)

type sectionPayload struct {
	Name          string   `json:"name"`
	TrackLineID   uint     `json:"trackLineId"`
	StartPosition *float64 `json:"startPosition"`
	EndPosition   *float64 `json:"endPosition"`
	Length        *float64 `json:"length"`
	PositionX     *float64 `json:"positionX"`
	PositionY     *float64 `json:"positionY"`
	PositionZ     *float64 `json:"positionZ"`
	IsOccupied    *bool    `json:"isOccupied"`
	IsActive      *bool    `json:"isActive"`
}

func (p *sectionPayload) validate() error {
	if p.Name == "" {
		return apperrors.Validation("name is required")
	}
	if p.Length != nil && *p.Length < 0 {
		return apperrors.Validation("length must not be negative")
	}
	return nil
}

func (rt *Router) createSection(w http.ResponseWriter, req *http.Request) {
	var payload sectionPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.ValidateSectionRefs(payload.TrackLineID); err != nil {
		rt.respondError(w, err)
		return
	}

	row := models.Section{
		Name:          payload.Name,
		TrackLineID:   payload.TrackLineID,
		StartPosition: payload.StartPosition,
		EndPosition:   payload.EndPosition,
		Length:        payload.Length,
		PositionX:     payload.PositionX,
		PositionY:     payload.PositionY,
		PositionZ:     payload.PositionZ,
		IsOccupied:    payload.IsOccupied != nil && *payload.IsOccupied,
		IsActive:      payload.IsActive == nil || *payload.IsActive,
	}
	if err := rt.db.Create(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

func (rt *Router) listSections(w http.ResponseWriter, req *http.Request) {
	qry := rt.db.Model(&models.Section{})

	trackLineID, err := uintQuery(req, "trackLineId")
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if trackLineID != nil {
		qry = qry.Where("track_line_id = ?", *trackLineID)
	}

	for name, column := range map[string]string{"occupied": "is_occupied", "active": "is_active"} {
		val, err := boolQuery(req, name)
		if err != nil {
			rt.respondError(w, err)
			return
		}
		if val != nil {
			qry = qry.Where(column+" = ?", *val)
		}
	}

	if q := req.URL.Query().Get("q"); q != "" {
		qry = qry.Where("LOWER(name) LIKE LOWER(?)", "%"+q+"%")
	}
	if flagQuery(req, "includeTrackLine") {
		qry = qry.Preload("TrackLine")
	}

	limit, offset := limitOffset(req)
	var rows []models.Section
	if err := qry.Order("name").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (rt *Router) getSection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.Section
	if err := rt.db.Preload("TrackLine").Preload("Switches").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Section not found"))
			return
		}
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) updateSection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.Section
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Section not found"))
			return
		}
		rt.respondError(w, err)
		return
	}

	var payload sectionPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.ValidateSectionRefs(payload.TrackLineID); err != nil {
		rt.respondError(w, err)
		return
	}

	wasOccupied := row.IsOccupied

	row.Name = payload.Name
	row.TrackLineID = payload.TrackLineID
	row.StartPosition = payload.StartPosition
	row.EndPosition = payload.EndPosition
	row.Length = payload.Length
	row.PositionX = payload.PositionX
	row.PositionY = payload.PositionY
	row.PositionZ = payload.PositionZ
	if payload.IsOccupied != nil {
		row.IsOccupied = *payload.IsOccupied
	}
	if payload.IsActive != nil {
		row.IsActive = *payload.IsActive
	}
	if err := rt.db.Save(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}

	if row.IsOccupied != wasOccupied {
		rt.broadcast(ws.Event{Type: "sectionOccupancy", SectionID: row.ID, Payload: map[string]bool{"isOccupied": row.IsOccupied}})
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) deleteSection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.DeleteSection(id); err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
