package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crowdmarks/core/loader"
	"crowdmarks/core/logger"
	"crowdmarks/core/middleware/auth"
	"crowdmarks/core/middleware/rayid"
	"crowdmarks/core/storage"
	"crowdmarks/feature/board"
	"crowdmarks/feature/integrity"
	"crowdmarks/feature/mapview"
	"crowdmarks/feature/pins"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "crowdmarks/docs/swagger"
)

// @title CrowdMarks API
// @version 1.0
// @description Crowd-sourced map: live pins, pin submission and discussion board.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the CrowdMarks server",
	Long:  `Starts the HTTP server, subscribes to the pin collection and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration + Logger
		cfg, logg, err := loadRuntime()
		if err != nil {
			log.Fatal(err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := context.WithCancel(context.Background())
		defer stop()

		// 2. Connect to Database (Optional)
		db := connectJournal(cfg, logg)

		// 3. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		// 4. Connect to the Document Store
		fs, err := connectDocstore(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("Document store unavailable", zap.Error(err))
		}
		defer fs.Close()

		// 5. Map Sync
		var journal *mapview.Journal
		if db != nil {
			journal = mapview.NewJournal(db, logg)
			if err := journal.Migrate(); err != nil {
				logg.Warn("Anomaly journal disabled", zap.Error(err))
				journal = nil
			}
		}
		source := mapview.NewFirestoreSource(fs, cfg.Docstore.PinsCollection, logg)
		mapSvc, err := mapview.NewService(source, cfg.Map, journal, logg)
		if err != nil {
			logg.Fatal("Failed to create map service", zap.Error(err))
		}

		syncDone := make(chan struct{})
		go func() {
			defer close(syncDone)
			if err := mapSvc.Start(ctx); err != nil {
				// The last known annotations stay served.
				logg.Error("Map sync stopped", zap.Error(err))
			}
		}()

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		// 7. Register Features
		mgr := loader.NewManager()
		mgr.Register(mapview.NewFeature(mapSvc))
		mgr.Register(pins.NewFeature(pins.NewFirestoreStore(fs, cfg.Docstore.PinsCollection), store, cfg.Storage, logg))
		mgr.Register(board.NewFeature(board.NewFirestoreStore(fs, cfg.Docstore.MessagesCollection), logg))
		mgr.Register(integrity.NewFeature(store, cfg.Storage, logg, db))

		// Middleware: RayID first so every log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			l.Info("Request handled",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		// Stopping the sync closes live streams so Shutdown can drain them.
		stop()
		<-syncDone
		_ = app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
