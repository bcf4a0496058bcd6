package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/Ifihan/briefen-me/cmd"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/Ifihan/briefen-me/internal/services"
	"github.com/spf13/cobra"
)

var (
	longURLFlag string
	slugFlag    string
)

// CreateCmd représente la commande 'create'
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crée une URL courte à partir d'une URL longue.",
	Long: `Cette commande raccourcit une URL longue sous le slug choisi.
Sans --slug, un slug aléatoire est généré.

Exemples:
  briefen create --url="https://www.google.com/search?q=go+lang" --slug="go-search"
  briefen create --url="https://www.google.com/search?q=go+lang"`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		if longURLFlag == "" {
			fmt.Println("Error: --url flag is required")
			os.Exit(1)
		}

		db, sqlDB := openDB()
		defer sqlDB.Close()

		linkRepo := repository.NewLinkRepository(db)
		linkService := services.NewLinkService(linkRepo)

		// La validation et la normalisation de l'URL sont faites par le
		// service, comme pour l'API.
		var link *models.Link
		var err error
		if slugFlag != "" {
			link, err = linkService.CreateLink(longURLFlag, slugFlag, nil)
		} else {
			link, err = linkService.CreateLinkWithGeneratedSlug(longURLFlag, nil)
		}
		if err != nil {
			log.Fatalf("Failed to create short link: %v", err)
		}

		fullShortURL := fmt.Sprintf("%s/%s", cmd.Cfg.Server.BaseURL, link.Slug)
		fmt.Printf("URL courte créée avec succès:\n")
		fmt.Printf("Slug: %s\n", link.Slug)
		fmt.Printf("URL complète: %s\n", fullShortURL)
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&slugFlag, "slug", "", "The slug to register (random when omitted)")

	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
