package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
)

type accessoryPayload struct {
	Name        string             `json:"name"`
	CategoryID  uint               `json:"categoryId"`
	ControlType models.ControlType `json:"controlType"`
	Address     string             `json:"address"`
	IsActive    *bool              `json:"isActive"`
	TimedMs     *int               `json:"timedMs"`
	SectionID   *uint              `json:"sectionId"`
}

func (p *accessoryPayload) validate() error {
	if p.Name == "" {
		return apperrors.Validation("name is required")
	}
	if p.Address == "" {
		return apperrors.Validation("address is required")
	}
	if !p.ControlType.Valid() {
		return apperrors.Validationf("invalid controlType %q", p.ControlType)
	}
	if p.TimedMs != nil && *p.TimedMs <= 0 {
		return apperrors.Validation("timedMs must be positive")
	}
	return nil
}

func (p *accessoryPayload) active() bool {
	return p.IsActive == nil || *p.IsActive
}

func (rt *Router) createAccessory(w http.ResponseWriter, req *http.Request) {
	var payload accessoryPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.ValidateAccessoryRefs(payload.CategoryID, payload.SectionID); err != nil {
		rt.respondError(w, err)
		return
	}

	row := models.Accessory{
		Name:        payload.Name,
		CategoryID:  payload.CategoryID,
		ControlType: payload.ControlType,
		Address:     payload.Address,
		IsActive:    payload.active(),
		TimedMs:     payload.TimedMs,
		SectionID:   payload.SectionID,
	}
	if err := rt.db.Create(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

// listAccessories supports filtering by category, active flag and a
// free-text name search, with pagination.
func (rt *Router) listAccessories(w http.ResponseWriter, req *http.Request) {
	qry := rt.db.Model(&models.Accessory{})

	categoryID, err := uintQuery(req, "categoryId")
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if categoryID != nil {
		qry = qry.Where("category_id = ?", *categoryID)
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

	if flagQuery(req, "includeCategory") {
		qry = qry.Preload("Category")
	}

	limit, offset := limitOffset(req)
	var rows []models.Accessory
	if err := qry.Order("name").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (rt *Router) getAccessory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.Accessory
	if err := rt.db.Preload("Category").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Accessory not found"))
			return
		}
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) updateAccessory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.Accessory
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Accessory not found"))
			return
		}
		rt.respondError(w, err)
		return
	}

	var payload accessoryPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.ValidateAccessoryRefs(payload.CategoryID, payload.SectionID); err != nil {
		rt.respondError(w, err)
		return
	}

	row.Name = payload.Name
	row.CategoryID = payload.CategoryID
	row.ControlType = payload.ControlType
	row.Address = payload.Address
	row.IsActive = payload.active()
	row.TimedMs = payload.TimedMs
	row.SectionID = payload.SectionID
	if err := rt.db.Save(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) deleteAccessory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.DeleteAccessory(id); err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
