package config

import (
	"fmt"
	"log"
	"os"

	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	sslmode := os.Getenv("DB_SSLMODE")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Erro ao conectar ao banco de dados:", err)
	}

	DB = database

	if err := MigrateModels(DB); err != nil {
		log.Fatal("Erro ao migrar o banco de dados:", err)
	}

	log.Println("Banco de dados conectado e migrado com sucesso")
}

// MigrateModels runs the gorm auto-migration for every model. Tests call it
// against an in-memory database, production goes through ConnectDatabase.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LedgerEntry{},
		&models.PointAssignment{},
		&models.Reward{},
		&models.Redemption{},
	)
}
