package layout

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Accessory{},
		&models.TrackLine{},
		&models.Section{},
		&models.Switch{},
		&models.SectionConnection{},
		&models.TrainAsset{},
		&models.AssetLocationEvent{},
	))
	return NewService(db, zaptest.NewLogger(t)), db
}

func seedGraph(t *testing.T, db *gorm.DB) (line models.TrackLine, a, b models.Section) {
	t.Helper()
	line = models.TrackLine{Name: "Mainline", IsActive: true}
	require.NoError(t, db.Create(&line).Error)
	a = models.Section{Name: "A", TrackLineID: line.ID, IsActive: true}
	b = models.Section{Name: "B", TrackLineID: line.ID, IsActive: true}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)
	return line, a, b
}

func TestValidateConnectionSelfLoop(t *testing.T) {
	svc, db := newTestService(t)
	_, a, _ := seedGraph(t, db)

	err := svc.ValidateConnection(a.ID, a.ID, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "Cannot connect section to itself", err.Error())
}

func TestValidateConnectionMissingEndpoints(t *testing.T) {
	svc, db := newTestService(t)
	_, a, b := seedGraph(t, db)

	err := svc.ValidateConnection(9999, b.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "fromSectionId does not exist", err.Error())

	err = svc.ValidateConnection(a.ID, 9999, nil)
	require.Error(t, err)
	assert.Equal(t, "toSectionId does not exist", err.Error())

	missing := uint(9999)
	err = svc.ValidateConnection(a.ID, b.ID, &missing)
	require.Error(t, err)
	assert.Equal(t, "switchId does not exist", err.Error())
}

func TestDeleteCategoryBlockedByAccessories(t *testing.T) {
	svc, db := newTestService(t)

	cat := models.Category{Name: "Signals", SortOrder: 1}
	require.NoError(t, db.Create(&cat).Error)
	acc := models.Accessory{Name: "Main Signal", CategoryID: cat.ID, ControlType: models.ControlOnOff, Address: "101", IsActive: true}
	require.NoError(t, db.Create(&acc).Error)

	err := svc.DeleteCategory(cat.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "category row must survive a blocked delete")

	// Remove the dependent, then the delete goes through.
	require.NoError(t, db.Delete(&acc).Error)
	require.NoError(t, svc.DeleteCategory(cat.ID))
}

func TestDeleteSectionBlockedByConnections(t *testing.T) {
	svc, db := newTestService(t)
	_, a, b := seedGraph(t, db)

	conn := models.SectionConnection{FromSectionID: a.ID, ToSectionID: b.ID, ConnectionType: models.ConnectionDirect, IsActive: true}
	require.NoError(t, db.Create(&conn).Error)

	// Blocked as "from" endpoint
	err := svc.DeleteSection(a.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// Blocked as "to" endpoint
	err = svc.DeleteSection(b.ID)
	require.Error(t, err)

	require.NoError(t, db.Delete(&conn).Error)
	require.NoError(t, svc.DeleteSection(a.ID))
}

func TestDeleteSwitchBlockedByConnections(t *testing.T) {
	svc, db := newTestService(t)
	_, a, b := seedGraph(t, db)

	cat := models.Category{Name: "Turnouts"}
	require.NoError(t, db.Create(&cat).Error)
	acc := models.Accessory{Name: "Motor 1", CategoryID: cat.ID, ControlType: models.ControlToggle, Address: "301", IsActive: true}
	require.NoError(t, db.Create(&acc).Error)
	sw := models.Switch{AccessoryID: acc.ID, SectionID: a.ID, Kind: models.KindTurnout, Position: models.PositionUnknown, IsActive: true}
	require.NoError(t, db.Create(&sw).Error)

	conn := models.SectionConnection{FromSectionID: a.ID, ToSectionID: b.ID, ConnectionType: models.ConnectionSwitch, SwitchID: &sw.ID, IsActive: true}
	require.NoError(t, db.Create(&conn).Error)

	err := svc.DeleteSwitch(sw.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	require.NoError(t, db.Delete(&conn).Error)
	require.NoError(t, svc.DeleteSwitch(sw.ID))
}

func TestDeleteTrackLineBlockedBySections(t *testing.T) {
	svc, db := newTestService(t)
	line, a, b := seedGraph(t, db)

	err := svc.DeleteTrackLine(line.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	require.NoError(t, db.Delete(&a).Error)
	require.NoError(t, db.Delete(&b).Error)
	require.NoError(t, svc.DeleteTrackLine(line.ID))
}

func TestDeleteTrainAssetBlockedByEvents(t *testing.T) {
	svc, db := newTestService(t)

	asset := models.TrainAsset{RfidTagID: "TAG-1", Type: models.AssetEngine, RoadNumber: "4014", Active: true, DateAdded: time.Now().UTC()}
	require.NoError(t, db.Create(&asset).Error)
	event := models.AssetLocationEvent{AssetID: asset.ID, RfidTagID: "TAG-1", Location: "Yard", ReaderID: "R1", Timestamp: time.Now().UTC()}
	require.NoError(t, db.Create(&event).Error)

	err := svc.DeleteTrainAsset(asset.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	require.NoError(t, db.Delete(&event).Error)
	require.NoError(t, svc.DeleteTrainAsset(asset.ID))
}

func TestDeleteNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	for name, err := range map[string]error{
		"category":  svc.DeleteCategory(42),
		"trackLine": svc.DeleteTrackLine(42),
		"section":   svc.DeleteSection(42),
		"switch":    svc.DeleteSwitch(42),
		"asset":     svc.DeleteTrainAsset(42),
	} {
		require.Error(t, err, name)
		assert.True(t, apperrors.IsNotFound(err), name)
	}
}

func TestSnapshotFiltersInactive(t *testing.T) {
	svc, db := newTestService(t)
	_, a, b := seedGraph(t, db)

	cat := models.Category{Name: "Signals"}
	require.NoError(t, db.Create(&cat).Error)
	active := models.Accessory{Name: "Active Signal", CategoryID: cat.ID, ControlType: models.ControlOnOff, Address: "1", IsActive: true}
	inactive := models.Accessory{Name: "Dead Signal", CategoryID: cat.ID, ControlType: models.ControlOnOff, Address: "2", IsActive: false}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&inactive).Error)

	conn := models.SectionConnection{FromSectionID: a.ID, ToSectionID: b.ID, ConnectionType: models.ConnectionDirect, IsActive: true}
	require.NoError(t, db.Create(&conn).Error)

	snap, err := svc.Snapshot(false)
	require.NoError(t, err)
	assert.Len(t, snap.Sections, 2)
	assert.Len(t, snap.Accessories, 1)
	assert.Len(t, snap.Connections, 1)
	require.NotNil(t, snap.Accessories[0].Category)
	assert.Equal(t, "Signals", snap.Accessories[0].Category.Name)

	snap, err = svc.Snapshot(true)
	require.NoError(t, err)
	assert.Len(t, snap.Accessories, 2)
}
