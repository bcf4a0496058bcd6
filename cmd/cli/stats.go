package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/Ifihan/briefen-me/cmd"
	apperrors "github.com/Ifihan/briefen-me/internal/errors"
	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/Ifihan/briefen-me/internal/services"
	"github.com/spf13/cobra"
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats [slug]",
	Short: "Get statistics for a short URL",
	Long:  `Get click statistics for the provided slug.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats exécute la logique pour la commande stats
func runStats(cobraCmd *cobra.Command, args []string) {
	slug := args[0]

	db, sqlDB := openDB()
	defer sqlDB.Close()

	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	linkService := services.NewLinkService(linkRepo)

	link, err := linkService.GetLinkBySlug(slug)
	if err != nil {
		if errors.Is(err, apperrors.ErrSlugNotFound) {
			fmt.Printf("Error: Slug '%s' not found\n", slug)
		} else {
			fmt.Printf("Error retrieving statistics: %v\n", err)
		}
		os.Exit(1)
	}

	totalClicks, err := clickRepo.CountClicksByLinkID(link.ID)
	if err != nil {
		fmt.Printf("Error retrieving statistics: %v\n", err)
		os.Exit(1)
	}

	// Afficher les résultats
	fmt.Printf("Statistiques pour le slug: %s\n", slug)
	fmt.Printf("URL longue: %s\n", link.OriginalURL)
	fmt.Printf("Total de clics: %d\n", totalClicks)
	fmt.Printf("Date de création: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
}
