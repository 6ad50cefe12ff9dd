package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
)

type categoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}

func (p *categoryPayload) validate() error {
	if p.Name == "" {
		return apperrors.Validation("name is required")
	}
	return nil
}

// createCategory creates a new category; names are unique.
func (rt *Router) createCategory(w http.ResponseWriter, req *http.Request) {
	var payload categoryPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}

	var count int64
	if err := rt.db.Model(&models.Category{}).Where("name = ?", payload.Name).Count(&count).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	if count > 0 {
		rt.respondError(w, apperrors.Conflict("Category name already exists"))
		return
	}

	row := models.Category{
		Name:        payload.Name,
		Description: payload.Description,
		SortOrder:   payload.SortOrder,
	}
	if err := rt.db.Create(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

// listCategories returns all categories ordered for display.
func (rt *Router) listCategories(w http.ResponseWriter, req *http.Request) {
	var rows []models.Category
	if err := rt.db.Order("sort_order, name").Find(&rows).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (rt *Router) getCategory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.Category
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Category not found"))
			return
		}
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) updateCategory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}

	var row models.Category
	if err := rt.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rt.respondError(w, apperrors.NotFound("Category not found"))
			return
		}
		rt.respondError(w, err)
		return
	}

	var payload categoryPayload
	if err := decodeBody(req, &payload); err != nil {
		rt.respondError(w, err)
		return
	}
	if err := payload.validate(); err != nil {
		rt.respondError(w, err)
		return
	}

	var count int64
	if err := rt.db.Model(&models.Category{}).Where("name = ? AND id <> ?", payload.Name, id).Count(&count).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	if count > 0 {
		rt.respondError(w, apperrors.Conflict("Category name already exists"))
		return
	}

	row.Name = payload.Name
	row.Description = payload.Description
	row.SortOrder = payload.SortOrder
	if err := rt.db.Save(&row).Error; err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (rt *Router) deleteCategory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if err := rt.layout.DeleteCategory(id); err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
