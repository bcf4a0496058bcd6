package cli

import (
	"fmt"
	"log"

	"github.com/Ifihan/briefen-me/cmd"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// MigrateCmd represents the 'migrate' command
// This command handles database schema creation and updates
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database (SQLite)
and executes GORM automatic migrations to create the 'links', 'clicks',
'users', 'bio_pages' and 'bio_links' tables based on the Go models.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		db, sqlDB := openDB()
		defer sqlDB.Close()

		if err := db.AutoMigrate(
			&models.Link{},
			&models.Click{},
			&models.User{},
			&models.BioPage{},
			&models.BioLink{},
		); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

// openDB connecte la base configurée et retourne aussi la connexion SQL
// sous-jacente pour la fermeture.
func openDB() (*gorm.DB, interface{ Close() error }) {
	cfg := cmd.Cfg
	if cfg == nil {
		log.Fatal("Configuration non chargée")
	}

	db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Échec de la connexion à la base de données : %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Échec de l'obtention de la base de données SQL sous-jacente: %v", err)
	}
	return db, sqlDB
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
