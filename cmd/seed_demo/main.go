package main

import (
	"fmt"
	"log"
	"time"

	"github.com/railstack/layoutd/internal/config"
	"github.com/railstack/layoutd/internal/database"
	"github.com/railstack/layoutd/internal/models"
)

// Seeds a small demo layout: an oval mainline with a passing siding and a
// yard spur, three turnouts and a handful of signals and lights.
func main() {
	fmt.Println("🌱 Layout Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	// Check if data already exists
	var sectionCount int64
	db.Model(&models.Section{}).Count(&sectionCount)
	if sectionCount > 0 {
		fmt.Printf("⚠️  Database already has %d sections. Clear it first? (y/N): ", sectionCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE asset_location_events CASCADE")
		db.Exec("TRUNCATE TABLE train_assets CASCADE")
		db.Exec("TRUNCATE TABLE section_connections CASCADE")
		db.Exec("TRUNCATE TABLE switches CASCADE")
		db.Exec("TRUNCATE TABLE accessories CASCADE")
		db.Exec("TRUNCATE TABLE sections CASCADE")
		db.Exec("TRUNCATE TABLE track_lines CASCADE")
		db.Exec("TRUNCATE TABLE categories CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println("📦 Creating demo layout...")

	// 1. Categories
	fmt.Println("🏷️  Creating categories...")
	signals := models.Category{Name: "Signals", Description: "Track-side signals", SortOrder: 1}
	lights := models.Category{Name: "Lights", Description: "Scenery and building lights", SortOrder: 2}
	motors := models.Category{Name: "Turnout Motors", Description: "Switch machine motors", SortOrder: 3}
	for _, c := range []*models.Category{&signals, &lights, &motors} {
		if err := db.Create(c).Error; err != nil {
			log.Fatalf("❌ Failed to create category %s: %v", c.Name, err)
		}
	}

	// 2. Track lines
	fmt.Println("🛤️  Creating track lines...")
	mainline := models.TrackLine{Name: "Mainline", Description: "Oval mainline", IsActive: true}
	yard := models.TrackLine{Name: "Yard", Description: "Yard spur", IsActive: true}
	for _, l := range []*models.TrackLine{&mainline, &yard} {
		if err := db.Create(l).Error; err != nil {
			log.Fatalf("❌ Failed to create track line %s: %v", l.Name, err)
		}
	}

	// 3. Sections. Positions are rough plan coordinates in centimetres.
	fmt.Println("📍 Creating sections...")
	north := section("North Curve", mainline.ID, 0, 120, 180, 0)
	east := section("East Straight", mainline.ID, 120, 280, 360, 90)
	south := section("South Curve", mainline.ID, 280, 400, 180, 180)
	west := section("West Straight", mainline.ID, 400, 560, 0, 90)
	siding := section("Passing Siding", mainline.ID, 130, 270, 340, 110)
	lead := section("Yard Lead", yard.ID, 0, 80, 250, 60)
	for _, s := range []*models.Section{&north, &east, &south, &west, &siding, &lead} {
		if err := db.Create(s).Error; err != nil {
			log.Fatalf("❌ Failed to create section %s: %v", s.Name, err)
		}
	}

	// 4. Accessories
	fmt.Println("💡 Creating accessories...")
	timedMs := 30000
	mainSignal := models.Accessory{Name: "Main Signal", CategoryID: signals.ID, ControlType: models.ControlOnOff, Address: "relay:1", IsActive: true, SectionID: &north.ID}
	yardSignal := models.Accessory{Name: "Yard Signal", CategoryID: signals.ID, ControlType: models.ControlOnOff, Address: "relay:2", IsActive: true, SectionID: &lead.ID}
	stationLights := models.Accessory{Name: "Station Lights", CategoryID: lights.ID, ControlType: models.ControlTimed, Address: "relay:3", IsActive: true, TimedMs: &timedMs}
	motorEast := models.Accessory{Name: "W1 East Motor", CategoryID: motors.ID, ControlType: models.ControlToggle, Address: "relay:4", IsActive: true}
	motorWest := models.Accessory{Name: "W2 West Motor", CategoryID: motors.ID, ControlType: models.ControlToggle, Address: "relay:5", IsActive: true}
	motorYard := models.Accessory{Name: "W3 Yard Motor", CategoryID: motors.ID, ControlType: models.ControlToggle, Address: "relay:6", IsActive: true}
	for _, a := range []*models.Accessory{&mainSignal, &yardSignal, &stationLights, &motorEast, &motorWest, &motorYard} {
		if err := db.Create(a).Error; err != nil {
			log.Fatalf("❌ Failed to create accessory %s: %v", a.Name, err)
		}
	}

	// 5. Switches
	fmt.Println("🔀 Creating switches...")
	w1 := switchRow("W1 East", motorEast.ID, east.ID)
	w2 := switchRow("W2 West", motorWest.ID, west.ID)
	w3 := switchRow("W3 Yard", motorYard.ID, south.ID)
	for _, sw := range []*models.Switch{&w1, &w2, &w3} {
		if err := db.Create(sw).Error; err != nil {
			log.Fatalf("❌ Failed to create switch: %v", err)
		}
	}

	// 6. Connections: the oval, the siding through W1/W2, the yard off W3
	fmt.Println("🔗 Creating section connections...")
	connections := []models.SectionConnection{
		connect(north.ID, east.ID, models.ConnectionDirect, nil),
		connect(east.ID, south.ID, models.ConnectionDirect, nil),
		connect(south.ID, west.ID, models.ConnectionDirect, nil),
		connect(west.ID, north.ID, models.ConnectionDirect, nil),
		connect(east.ID, siding.ID, models.ConnectionSwitch, &w1.ID),
		connect(siding.ID, west.ID, models.ConnectionSwitch, &w2.ID),
		connect(south.ID, lead.ID, models.ConnectionSwitch, &w3.ID),
	}
	for i := range connections {
		if err := db.Create(&connections[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create connection: %v", err)
		}
	}

	// 7. Rolling stock
	fmt.Println("🚂 Creating train assets...")
	engineID := "LOCO-01"
	assets := []models.TrainAsset{
		{AssetID: &engineID, RfidTagID: "TAG-0001", Type: models.AssetEngine, RoadNumber: "4014", Description: "Demo engine", Active: true, DateAdded: time.Now().UTC()},
		{RfidTagID: "TAG-0002", Type: models.AssetCar, RoadNumber: "88112", Description: "Boxcar", Active: true, DateAdded: time.Now().UTC()},
		{RfidTagID: "TAG-0003", Type: models.AssetCaboose, RoadNumber: "907", Active: true, DateAdded: time.Now().UTC()},
	}
	for i := range assets {
		if err := db.Create(&assets[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create train asset: %v", err)
		}
	}

	// A first sighting so the events list is not empty
	event := models.AssetLocationEvent{
		AssetID:   assets[0].ID,
		RfidTagID: assets[0].RfidTagID,
		Location:  lead.Name,
		ReaderID:  "reader-1",
		Timestamp: time.Now().UTC(),
	}
	if err := db.Create(&event).Error; err != nil {
		log.Fatalf("❌ Failed to create location event: %v", err)
	}

	fmt.Println()
	fmt.Println("✅ Demo layout seeded:")
	fmt.Printf("   %d categories, %d track lines, %d sections\n", 3, 2, 6)
	fmt.Printf("   %d accessories, %d switches, %d connections, %d assets\n", 6, 3, len(connections), len(assets))
}

func section(name string, lineID uint, start, end, x, y float64) models.Section {
	length := end - start
	return models.Section{
		Name:          name,
		TrackLineID:   lineID,
		StartPosition: &start,
		EndPosition:   &end,
		Length:        &length,
		PositionX:     &x,
		PositionY:     &y,
		IsActive:      true,
	}
}

func switchRow(name string, accessoryID, sectionID uint) models.Switch {
	return models.Switch{
		Name:         &name,
		AccessoryID:  accessoryID,
		SectionID:    sectionID,
		Kind:         models.KindTurnout,
		DefaultRoute: "straight",
		Position:     models.PositionUnknown,
		IsActive:     true,
	}
}

func connect(from, to uint, kind models.ConnectionType, switchID *uint) models.SectionConnection {
	return models.SectionConnection{
		FromSectionID:  from,
		ToSectionID:    to,
		ConnectionType: kind,
		SwitchID:       switchID,
		Bidirectional:  true,
		IsActive:       true,
	}
}
