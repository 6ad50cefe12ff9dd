// Package layout enforces the referential and structural rules of the
// section/switch/connection graph. The database schema carries no cascades;
// every guard here is an application-level pre-condition, run inside one
// transaction with the mutation it protects.
package layout

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
)

// Service validates graph mutations and performs guarded deletes.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService builds a layout service on the given connection.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Accessory loads an accessory or reports not-found.
func (s *Service) Accessory(id uint) (*models.Accessory, error) {
	var acc models.Accessory
	if err := s.db.First(&acc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Accessory not found")
		}
		return nil, err
	}
	return &acc, nil
}

// ValidateAccessoryRefs checks that the category (and optional section) an
// accessory points at exist.
func (s *Service) ValidateAccessoryRefs(categoryID uint, sectionID *uint) error {
	if err := s.exists(&models.Category{}, categoryID, "categoryId does not exist"); err != nil {
		return err
	}
	if sectionID != nil {
		return s.exists(&models.Section{}, *sectionID, "sectionId does not exist")
	}
	return nil
}

// ValidateSectionRefs checks that a section's track line exists.
func (s *Service) ValidateSectionRefs(trackLineID uint) error {
	return s.exists(&models.TrackLine{}, trackLineID, "trackLineId does not exist")
}

// ValidateSwitchRefs checks that a switch's accessory and section exist.
func (s *Service) ValidateSwitchRefs(accessoryID, sectionID uint) error {
	if err := s.exists(&models.Accessory{}, accessoryID, "accessoryId does not exist"); err != nil {
		return err
	}
	return s.exists(&models.Section{}, sectionID, "sectionId does not exist")
}

// ValidateConnection checks both endpoints and the optional switch of a
// section connection, and rejects self-loops.
func (s *Service) ValidateConnection(fromID, toID uint, switchID *uint) error {
	if err := s.exists(&models.Section{}, fromID, "fromSectionId does not exist"); err != nil {
		return err
	}
	if err := s.exists(&models.Section{}, toID, "toSectionId does not exist"); err != nil {
		return err
	}
	if switchID != nil {
		if err := s.exists(&models.Switch{}, *switchID, "switchId does not exist"); err != nil {
			return err
		}
	}
	if fromID == toID {
		return apperrors.Validation("Cannot connect section to itself")
	}
	return nil
}

// DeleteCategory removes a category unless accessories still reference it.
func (s *Service) DeleteCategory(id uint) error {
	return s.guardedDelete(&models.Category{}, id, "Category not found", []guard{
		{&models.Accessory{}, "category_id = ?", "Category has accessories; reassign or delete them first"},
	})
}

// DeleteAccessory removes an accessory unless a switch uses it as actuator.
func (s *Service) DeleteAccessory(id uint) error {
	return s.guardedDelete(&models.Accessory{}, id, "Accessory not found", []guard{
		{&models.Switch{}, "accessory_id = ?", "Accessory is used by switches; remove them first"},
	})
}

// DeleteTrackLine removes a track line unless sections still reference it.
func (s *Service) DeleteTrackLine(id uint) error {
	return s.guardedDelete(&models.TrackLine{}, id, "Track line not found", []guard{
		{&models.Section{}, "track_line_id = ?", "Track line has sections; reassign or delete them first"},
	})
}

// DeleteSection removes a section unless switches or connections reference it.
func (s *Service) DeleteSection(id uint) error {
	return s.guardedDelete(&models.Section{}, id, "Section not found", []guard{
		{&models.Switch{}, "section_id = ?", "Section has switches; reassign or delete them first"},
		{&models.SectionConnection{}, "from_section_id = ? OR to_section_id = ?", "Section has connections; delete them first"},
	})
}

// DeleteSwitch removes a switch unless connections route through it.
func (s *Service) DeleteSwitch(id uint) error {
	return s.guardedDelete(&models.Switch{}, id, "Switch not found", []guard{
		{&models.SectionConnection{}, "switch_id = ?", "Switch is used in section connections; remove them first"},
	})
}

// DeleteTrainAsset removes an asset unless location events reference it.
func (s *Service) DeleteTrainAsset(id uint) error {
	return s.guardedDelete(&models.TrainAsset{}, id, "Train asset not found", []guard{
		{&models.AssetLocationEvent{}, "asset_id = ?", "Train asset has location events; delete them first or set asset as inactive"},
	})
}

type guard struct {
	dependent interface{}
	where     string
	message   string
}

// guardedDelete runs the dependency checks and the delete in one
// transaction, closing the check-then-delete race the checks would
// otherwise have against concurrent inserts.
func (s *Service) guardedDelete(model interface{}, id uint, notFound string, guards []guard) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.First(model, id)
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(notFound)
		}
		if res.Error != nil {
			return res.Error
		}

		for _, g := range guards {
			var count int64
			args := whereArgs(g.where, id)
			if err := tx.Model(g.dependent).Where(g.where, args...).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperrors.Conflict(g.message)
			}
		}

		if err := tx.Delete(model, id).Error; err != nil {
			return err
		}
		s.logger.Debug("deleted row", zap.Uint("id", id))
		return nil
	})
}

func (s *Service) exists(model interface{}, id uint, message string) error {
	var count int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.Validation(message)
	}
	return nil
}

// whereArgs repeats id once per placeholder so a guard can match either
// endpoint of a connection.
func whereArgs(where string, id uint) []interface{} {
	n := 0
	for _, r := range where {
		if r == '?' {
			n++
		}
	}
	args := make([]interface{}, n)
	for i := range args {
		args[i] = id
	}
	return args
}
