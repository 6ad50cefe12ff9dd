package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
)

type connectionPayload struct {
	FromSectionID  uint                  `json:"fromSectionId"`
	ToSectionID    uint                  `json:"toSectionId"`
	ConnectionType models.ConnectionType `json:"connectionType"`
	SwitchID       *uint                 `json:"switchId"`
	Bidirectional  *bool                 `json:"bidirectional"`
	IsActive       *bool                 `json:"isActive"`
}

func (p *connectionPayload) validate() error {
	if p.ConnectionType == "" {
		p.ConnectionType = models.ConnectionDirect
	}
	if !p.ConnectionType.Valid() {
		return apperrors.Validationf("invalid connectionType %q", p.ConnectionType)
	}
	return nil
}

func (rt *Router) createConnection(w http.ResponseWriter, req *http.Request) {
	var payload connectionPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.ValidateConnection(payload.FromSectionID, payload.ToSectionID, payload.SwitchID); err != nil {
		rt.respondError(w, err)
		return
	}

	row := models.SectionConnection{
		FromSectionID:  payload.FromSectionID,
		ToSectionID:    payload.ToSectionID,
		ConnectionType: payload.ConnectionType,
		SwitchID:       payload.SwitchID,
		Bidirectional:  payload.Bidirectional == nil || *payload.Bidirectional,
		IsActive:       payload.IsActive == nil || *payload.IsActive,
	}
	if err := rt.db.Create(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

func (rt *Router) listConnections(w http.ResponseWriter, req *http.Request) {
	qry := rt.db.Model(&models.SectionConnection{})

	for name, column := range map[string]string{
		"fromSectionId": "from_section_id",
		"toSectionId":   "to_section_id",
		"switchId":      "switch_id",
	} {
		val, err := uintQuery(req, name)
		if err != nil {
			rt.respondError(w, err)
			return
		}
		if val != nil {
			qry = qry.Where(column+" = ?", *val)
		}
	}

	if ct := req.URL.Query().Get("connectionType"); ct != "" {
		qry = qry.Where("connection_type = ?", ct)
	}

	active, err := boolQuery(req, "active")
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if active != nil {
		qry = qry.Where("is_active = ?", *active)
	}

	if flagQuery(req, "includeRelations") {
		qry = qry.Preload("FromSection").Preload("ToSection").Preload("Switch")
	}

	limit, offset := limitOffset(req)
	var rows []models.SectionConnection
	if err := qry.Order("id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (rt *Router) getConnection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.SectionConnection
	if err := rt.db.Preload("FromSection").Preload("ToSection").Preload("Switch").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Section connection not found"))
			return
		}
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) updateConnection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.SectionConnection
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Section connection not found"))
			return
		}
		rt.respondError(w, err)
		return
	}

	var payload connectionPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.ValidateConnection(payload.FromSectionID, payload.ToSectionID, payload.SwitchID); err != nil {
		rt.respondError(w, err)
		return
	}

	row.FromSectionID = payload.FromSectionID
	row.ToSectionID = payload.ToSectionID
	row.ConnectionType = payload.ConnectionType
	row.SwitchID = payload.SwitchID
	if payload.Bidirectional != nil {
		row.Bidirectional = *payload.Bidirectional
	}
	if payload.IsActive != nil {
		row.IsActive = *payload.IsActive
	}
	if err := rt.db.Save(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) deleteConnection(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	res := rt.db.Delete(&models.SectionConnection{}, id)
	if res.Error != nil {
		rt.respondError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		rt.respondError(w, apperrors.NotFound("Section connection not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
