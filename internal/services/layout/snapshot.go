package layout

import "github.com/railstack/layoutd/internal/models"

// Snapshot is the aggregate read view backing /track-layout: everything a
// client needs to render the full layout in one request.
type Snapshot struct {
	Sections    []models.Section           `json:"sections"`
	Switches    []models.Switch            `json:"switches"`
	Accessories []models.Accessory         `json:"accessories"`
	Connections []models.SectionConnection `json:"connections"`
}

// Snapshot assembles the aggregate view. Inactive rows are excluded unless
// includeInactive is set.
func (s *Service) Snapshot(includeInactive bool) (*Snapshot, error) {
	snap := &Snapshot{
		Sections:    []models.Section{},
		Switches:    []models.Switch{},
		Accessories: []models.Accessory{},
		Connections: []models.SectionConnection{},
	}

	sections := s.db.Order("name")
	switches := s.db.Order("name")
	accessories := s.db.Preload("Category").Order("name")
	connections := s.db.Order("id")

	if !includeInactive {
		sections = sections.Where("is_active = ?", true)
		switches = switches.Where("is_active = ?", true)
		accessories = accessories.Where("is_active = ?", true)
		connections = connections.Where("is_active = ?", true)
	}

	if err := sections.Find(&snap.Sections).Error; err != nil {
		return nil, err
	}
	if err := switches.Find(&snap.Switches).Error; err != nil {
		return nil, err
	}
	if err := accessories.Find(&snap.Accessories).Error; err != nil {
		return nil, err
	}
	if err := connections.Find(&snap.Connections).Error; err != nil {
		return nil, err
	}
	return snap, nil
}
