package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
	"github.com/railstack/layoutd/internal/ws"
)

type switchPayload struct {
	Name         *string               `json:"name"`
	AccessoryID  uint                  `json:"accessoryId"`
	SectionID    uint                  `json:"sectionId"`
	Kind         models.SwitchKind     `json:"kind"`
	DefaultRoute string                `json:"defaultRoute"`
	Orientation  *float64              `json:"orientation"`
	PositionX    *float64              `json:"positionX"`
	PositionY    *float64              `json:"positionY"`
	PositionZ    *float64              `json:"positionZ"`
	Position     models.SwitchPosition `json:"position"`
	IsActive     *bool                 `json:"isActive"`
}

func (p *switchPayload) validate() error {
	if p.Kind == "" {
		p.Kind = models.KindTurnout
	}
	if !p.Kind.Valid() {
		return apperrors.Validationf("invalid kind %q", p.Kind)
	}
	if p.Position == "" {
		p.Position = models.PositionUnknown
	}
	if !p.Position.Valid() {
		return apperrors.Validationf("invalid position %q", p.Position)
	}
	return nil
}

func (rt *Router) createSwitch(w http.ResponseWriter, req *http.Request) {
	var payload switchPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.ValidateSwitchRefs(payload.AccessoryID, payload.SectionID); err != nil {
		rt.respondError(w, err)
		return
	}

	row := models.Switch{
		Name:         payload.Name,
		AccessoryID:  payload.AccessoryID,
		SectionID:    payload.SectionID,
		Kind:         payload.Kind,
		DefaultRoute: payload.DefaultRoute,
		Orientation:  payload.Orientation,
		PositionX:    payload.PositionX,
		PositionY:    payload.PositionY,
		PositionZ:    payload.PositionZ,
		Position:     payload.Position,
		IsActive:     payload.IsActive == nil || *payload.IsActive,
	}
	if err := rt.db.Create(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

func (rt *Router) listSwitches(w http.ResponseWriter, req *http.Request) {
	qry := rt.db.Model(&models.Switch{})

	for name, column := range map[string]string{"sectionId": "section_id", "accessoryId": "accessory_id"} {
		val, err := uintQuery(req, name)
		if err != nil {
			rt.respondError(w, err)
			return
		}
		if val != nil {
			qry = qry.Where(column+" = ?", *val)
		}
	}

	if position := req.URL.Query().Get("position"); position != "" {
		qry = qry.Where("position = ?", position)
	}

	active, err := boolQuery(req, "active")
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if active != nil {
		qry = qry.Where("is_active = ?", *active)
	}

	if q := req.URL.Query().Get("q"); q != "" {
		qry = qry.Where("LOWER(name) LIKE LOWER(?)", "%"+q+"%")
	}
	if flagQuery(req, "includeRelations") {
		qry = qry.Preload("Accessory").Preload("Section")
	}

	limit, offset := limitOffset(req)
	var rows []models.Switch
	if err := qry.Order("name").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (rt *Router) getSwitch(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.Switch
	if err := rt.db.Preload("Accessory").Preload("Section").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Switch not found"))
			return
		}
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) updateSwitch(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.Switch
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Switch not found"))
			return
		}
		rt.respondError(w, err)
		return
	}

	var payload switchPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.ValidateSwitchRefs(payload.AccessoryID, payload.SectionID); err != nil {
		rt.respondError(w, err)
		return
	}

	previousPosition := row.Position

	row.Name = payload.Name
	row.AccessoryID = payload.AccessoryID
	row.SectionID = payload.SectionID
	row.Kind = payload.Kind
	row.DefaultRoute = payload.DefaultRoute
	row.Orientation = payload.Orientation
	row.PositionX = payload.PositionX
	row.PositionY = payload.PositionY
	row.PositionZ = payload.PositionZ
	row.Position = payload.Position
	if payload.IsActive != nil {
		row.IsActive = *payload.IsActive
	}
	if err := rt.db.Save(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}

	if row.Position != previousPosition {
		rt.broadcast(ws.Event{Type: "switchPosition", SwitchID: row.ID, Payload: map[string]models.SwitchPosition{"position": row.Position}})
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) deleteSwitch(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.DeleteSwitch(id); err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
