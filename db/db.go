package db

import (
	"fmt"
	"log"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	DB *gorm.DB
}

func GetDB(c *config.Config) *GormDB {
	gormDB := &GormDB{}
	gormDB.Init(c)
	return gormDB
}

func (g *GormDB) Init(c *config.Config) {
	g.DB = getPostgresDB(c)

	if err := migrate(g.DB); err != nil {
		log.Fatalf("unable to run migrations: %v", err)
	}
}

// Available reports whether the database can currently be reached. The draft
// flow degrades to snapshot-only writes when it cannot.
func (g *GormDB) Available() bool {
	if g == nil || g.DB == nil {
		return false
	}
	sqlDB, err := g.DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

func getPostgresDB(c *config.Config) *gorm.DB {
	log.Printf("Connecting to postgres: %s@%s:%d/%s", c.PostgresUser, c.PostgresHost, c.PostgresPort, c.PostgresDB)
	postgresDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d TimeZone=Australia/Sydney",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort)

	gormConfig := &gorm.Config{}
	if c.Env != "prod" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: postgresDSN,
	}), gormConfig)
	if err != nil {
		log.Fatal(err)
	}

	return gormDB
}

func SeedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{ID: uuid.New(), Name: models.RoleAdmin},
		{ID: uuid.New(), Name: models.RoleStaff},
	}

	for _, role := range roles {
		if err := db.FirstOrCreate(&role, models.Role{Name: role.Name}).Error; err != nil {
			return err
		}
	}

	return nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Blacklist{},
		&models.DraftReport{},
		&models.IncidentReport{},
		&models.Participant{},
		&models.Medication{},
		&models.MedicationLog{},
		&models.Shift{},
		&models.WaitlistEntry{},
		&models.SurveyResponse{},
	)
	if err != nil {
		return fmt.Errorf("migrations error: %v", err)
	}

	if err := SeedRoles(db); err != nil {
		return fmt.Errorf("seeding roles error: %v", err)
	}

	return nil
}
