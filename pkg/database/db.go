package database

import (
	"fmt"
	"time"

	"github.com/arnavshah/crew-planner-api/pkg/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	KeyID             uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date              string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount      int    `gorm:"default:0" json:"request_count"`
	TotalParticipants int    `gorm:"default:0" json:"total_participants"`
	TotalTeams        int    `gorm:"default:0" json:"total_teams"`
	TotalUnassigned   int    `gorm:"default:0" json:"total_unassigned"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Boat represents the boats table: one catalog entry and how many are on the rack
type Boat struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Slug        string    `gorm:"unique;not null" json:"id"`
	Label       string    `json:"label"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	IsStable    bool      `json:"is_stable"`
	MinSkippers int       `gorm:"default:0" json:"min_skippers"`
	Available   int       `gorm:"default:0" json:"available"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Definition converts the row to the planner's catalog type
func (b Boat) Definition() models.BoatDefinition {
	return models.BoatDefinition{
		ID:          b.Slug,
		Label:       b.Label,
		Capacity:    b.Capacity,
		IsStable:    b.IsStable,
		MinSkippers: b.MinSkippers,
	}
}

// Open connects to Postgres when dsn is set, otherwise to the SQLite file at dataPath,
// and migrates the schema
func Open(dsn, dataPath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
			Logger:      logger.Default.LogMode(logger.Warn),
		})
	} else {
		if dataPath == "" {
			dataPath = "crew_planner.db"
		}
		db, err = gorm.Open(sqlite.Open(dataPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &Boat{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// LoadFleet returns the stored boat catalog and today's inventory
func LoadFleet(db *gorm.DB) ([]models.BoatDefinition, models.BoatInventory, error) {
	var boats []Boat
	if err := db.Order("id asc").Find(&boats).Error; err != nil {
		return nil, nil, err
	}

	defs := make([]models.BoatDefinition, 0, len(boats))
	inv := make(models.BoatInventory, len(boats))
	for _, b := range boats {
		defs = append(defs, b.Definition())
		inv[b.Slug] = b.Available
	}
	return defs, inv, nil
}
