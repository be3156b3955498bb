package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upSeedRewardCatalog, downSeedRewardCatalog)
}

type seedReward struct {
	name        string
	description string
	costPoints  int
}

var defaultRewards = []seedReward{
	{"Vale-café", "Um café na cafeteria do laboratório", 50},
	{"Meio dia de folga", "Meio período de folga a combinar com o gestor", 300},
	{"Vale-presente R$50", "Vale-presente de cinquenta reais", 500},
	{"Dia de folga", "Um dia inteiro de folga a combinar com o gestor", 600},
	{"Vale-presente R$100", "Vale-presente de cem reais", 1000},
}

func upSeedRewardCatalog(tx *sql.Tx) error {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM rewards").Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing rewards: %w", err)
	}

	// Only seed on an empty catalog
	if count > 0 {
		return nil
	}

	query := `
		INSERT INTO rewards (name, description, cost_points, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, true, NOW(), NOW())
	`
	for _, r := range defaultRewards {
		if _, err := tx.Exec(query, r.name, r.description, r.costPoints); err != nil {
			return fmt.Errorf("failed to seed reward %q: %w", r.name, err)
		}
	}

	return nil
}

func downSeedRewardCatalog(tx *sql.Tx) error {
	for _, r := range defaultRewards {
		if _, err := tx.Exec("DELETE FROM rewards WHERE name = $1", r.name); err != nil {
			return fmt.Errorf("failed to remove reward %q: %w", r.name, err)
		}
	}
	return nil
}
