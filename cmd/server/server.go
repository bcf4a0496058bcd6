package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ifihan/briefen-me/cmd"
	"github.com/Ifihan/briefen-me/internal/ai"
	"github.com/Ifihan/briefen-me/internal/api"
	"github.com/Ifihan/briefen-me/internal/auth"
	"github.com/Ifihan/briefen-me/internal/config"
	"github.com/Ifihan/briefen-me/internal/geo"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/monitor"
	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/Ifihan/briefen-me/internal/scrape"
	"github.com/Ifihan/briefen-me/internal/services"
	"github.com/Ifihan/briefen-me/internal/storage"
	"github.com/Ifihan/briefen-me/internal/workers"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur API de raccourcissement d'URLs et les processus de fond.",
	Long: `Cette commande initialise la base de données, configure les APIs,
démarre les workers de géolocalisation et le moniteur d'URLs,
puis lance le serveur HTTP.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg := cmd.Cfg
		if cfg == nil {
			log.Fatal("Configuration non chargée")
		}

		// Initialiser la base de données
		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{
			TranslateError: true,
		})
		if err != nil {
			log.Fatalf("Échec de la connexion à la base de données : %v", err)
		}

		// Migration automatique des modèles
		if err := db.AutoMigrate(
			&models.Link{},
			&models.Click{},
			&models.User{},
			&models.BioPage{},
			&models.BioLink{},
		); err != nil {
			log.Fatalf("Échec de la migration de la base de données : %v", err)
		}

		// Initialiser les repositories
		linkRepo := repository.NewLinkRepository(db)
		clickRepo := repository.NewClickRepository(db)
		userRepo := repository.NewUserRepository(db)
		bioRepo := repository.NewBioRepository(db)
		analyticsRepo := repository.NewAnalyticsRepository(db)

		log.Println("Repositories initialisés.")

		// Workers de géolocalisation : les clics sont enregistrés de
		// manière synchrone, seul l'enrichissement géographique passe
		// par le channel.
		geoJobs := make(chan models.GeoJob, cfg.Analytics.BufferSize)
		geoClient := geo.New(cfg.Analytics.GeoEndpoint, cfg.GeoTimeout(), slog.Default())
		workers.StartGeoWorkers(cfg.Analytics.WorkerCount, geoJobs, geoClient, clickRepo)
		log.Printf("Channel de géolocalisation initialisé avec un buffer de %d. %d worker(s) démarré(s).",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		// Initialiser les services métiers
		scraper := scrape.New(scrape.Config{
			Timeout:        cfg.ScrapeTimeout(),
			UserAgent:      cfg.Scraper.UserAgent,
			MirrorHosts:    cfg.Scraper.MirrorHosts,
			TextProxyURL:   cfg.Scraper.TextProxyURL,
			OEmbedEndpoint: scrape.DefaultConfig().OEmbedEndpoint,
		}, slog.Default())
		generator := ai.New(cfg.AI.Endpoint, cfg.AI.Model, cfg.AI.APIKey)

		linkService := services.NewLinkService(linkRepo)
		clickService := services.NewClickService(clickRepo, cfg.Analytics.IPHashSalt, geoJobs)
		suggestionService := services.NewSlugSuggestionService(scraper, generator, linkRepo, services.SlugSuggestionConfig{
			Batches:         cfg.AI.Batches,
			OptionsPerBatch: cfg.AI.OptionsPerBatch,
			Reasoning:       cfg.AI.Mode == "reasoning",
		})
		analyticsService := services.NewAnalyticsService(analyticsRepo)
		bioService := services.NewBioService(bioRepo)
		userService := services.NewUserService(userRepo)
		authManager := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

		log.Println("Services métiers initialisés.")

		avatarStore, err := buildAvatarStore(cfg)
		if err != nil {
			log.Fatalf("Échec de l'initialisation du stockage des avatars : %v", err)
		}

		// Initialiser et lancer le moniteur d'URLs.
		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		urlMonitor := monitor.NewUrlMonitor(linkRepo, monitorInterval)
		go urlMonitor.Start()
		log.Printf("Moniteur d'URLs démarré avec un intervalle de %v.", monitorInterval)

		// Configurer le routeur Gin et les handlers API.
		router := gin.Default()
		api.SetupRoutes(router, &api.Handlers{
			BaseURL:     cfg.Server.BaseURL,
			Links:       linkService,
			Clicks:      clickService,
			Suggestions: suggestionService,
			Analytics:   analyticsService,
			Bio:         bioService,
			Users:       userService,
			Auth:        authManager,
			Avatars:     avatarStore,
		})

		log.Println("Routes API configurées.")

		// Créer le serveur HTTP Gin
		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		// Démarrer le serveur Gin dans une goroutine anonyme pour ne pas bloquer.
		go func() {
			log.Printf("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		// Gére l'arrêt propre du serveur (graceful shutdown).
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		<-quit
		log.Println("Signal d'arrêt reçu. Arrêt du serveur...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Arrêt forcé du serveur : %v", err)
		}

		// Laisser les workers de géolocalisation drainer le channel.
		close(geoJobs)
		time.Sleep(2 * time.Second)

		log.Println("Serveur arrêté proprement.")
	},
}

func buildAvatarStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3Store(context.Background(), storage.S3Config{
			Endpoint:        cfg.Storage.S3.Endpoint,
			Region:          cfg.Storage.S3.Region,
			Bucket:          cfg.Storage.S3.Bucket,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			UsePathStyle:    cfg.Storage.S3.UsePathStyle,
			MaxAvatarBytes:  cfg.Storage.MaxAvatarBytes,
		})
	default:
		return storage.NewLocalStore(cfg.Storage.LocalPath, cfg.Storage.MaxAvatarBytes)
	}
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
