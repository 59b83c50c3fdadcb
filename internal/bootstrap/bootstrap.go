package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/deptce/mentorship/internal/app/controllers"
	appMigrations "github.com/deptce/mentorship/internal/app/migrations"
	appRepos "github.com/deptce/mentorship/internal/app/repositories"
	appRoutes "github.com/deptce/mentorship/internal/app/routes"
	appServices "github.com/deptce/mentorship/internal/app/services"
	"github.com/deptce/mentorship/internal/config"
	"github.com/deptce/mentorship/internal/db"
	appMiddleware "github.com/deptce/mentorship/internal/middleware"
	pkgAuth "github.com/deptce/mentorship/internal/pkg/auth"
	"github.com/deptce/mentorship/internal/pkg/events"
	"github.com/deptce/mentorship/internal/pkg/filestorage"
	"github.com/deptce/mentorship/internal/pkg/logger"
	"github.com/deptce/mentorship/internal/pkg/websocket"
	"github.com/deptce/mentorship/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthService    appServices.AuthService
	StudentService appServices.StudentService
	MentorService  appServices.MentorService
	AdminService   appServices.AdminService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Hub            *websocket.Hub
	Kafka          *events.KafkaPublisher
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// CONFIG_PATH overrides the default configs/config.yaml.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: logger.ParseFormat(cfg.Logging.Format),
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to Postgres, applies migrations and seeds the
// default mentor.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(pingCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, appRepos.NewMentorRepository(database.Pool), cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// SetupDocumentStore connects to the Mongo database holding mirrored records
func SetupDocumentStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.MongoDB, error) {
	lgr.Info().Str("database", cfg.Mongo.Database).Msg("Connecting to document store...")
	mongoDB, err := db.NewMongoDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create document store client")
		return nil, err
	}
	return mongoDB, nil
}

// BuildDependencies initializes repositories, services and controllers
func BuildDependencies(cfg *config.Config, pg *db.PostgresDB, mongoDB *db.MongoDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	appMiddleware.RegisterValidators()

	deps.Repos = appRepos.NewRepositories(pg, mongoDB.Collection(cfg.Mongo.Collection))

	photos, err := newPhotoStorage(cfg, lgr)
	if err != nil {
		return nil, err
	}

	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	deps.Kafka = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.Component("kafka"))
	publisher := events.Multi{deps.Kafka, deps.Hub}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	var provider pkgAuth.OAuthProvider
	if cfg.OAuthEnabled() {
		provider = pkgAuth.NewGoogleProvider(pkgAuth.GoogleConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
		})
		lgr.Info().Str("allowedDomain", cfg.OAuth.AllowedDomain).Msg("Google sign-in enabled")
	} else {
		lgr.Warn().Msg("Google sign-in not configured, students cannot log in")
	}

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.MentorRepository,
		deps.Repos.StudentRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		provider,
		appServices.AuthConfig{AllowedDomain: cfg.OAuth.AllowedDomain},
		logger.Component("auth"),
	)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.RecordDocumentRepository,
		photos,
		publisher,
		appServices.StudentServiceConfig{PhotoFolder: cfg.Cloudinary.Folder, Department: cfg.Server.Department},
		logger.Component("student"),
	)
	deps.MentorService = appServices.NewMentorService(
		deps.Repos.MentorRepository,
		deps.Repos.StudentRepository,
		publisher,
		logger.Component("mentor"),
	)
	deps.AdminService = appServices.NewAdminService(
		deps.Repos.RecordDocumentRepository,
		publisher,
		cfg.Server.Department,
		logger.Component("admin"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthService)

	wsHandler := websocket.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, logger.Component("websocket"))
	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.AuthService, openerOrigin(cfg), isProduction(cfg), logger.Component("auth")),
		Student: appControllers.NewStudentController(deps.StudentService, logger.Component("student")),
		Mentor:  appControllers.NewMentorController(deps.MentorService, logger.Component("mentor")),
		Admin:   appControllers.NewAdminController(deps.AdminService, logger.Component("admin")),
		Health: appControllers.NewHealthController(map[string]appControllers.Pinger{
			"postgres": appControllers.PingerFunc(pg.Pool.Ping),
			"mongo": appControllers.PingerFunc(func(ctx context.Context) error {
				return mongoDB.Client.Ping(ctx, nil)
			}),
		}),
		Feed: wsHandler.HandleConnection,
	}

	return deps, nil
}

func newPhotoStorage(cfg *config.Config, lgr zerolog.Logger) (filestorage.PhotoStorage, error) {
	if cfg.Cloudinary.URL != "" {
		storage, err := filestorage.NewCloudinaryStorage(cfg.Cloudinary.URL, cfg.Server.MaxUploadBytes, logger.Component("cloudinary"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary storage: %w", err)
		}
		lgr.Info().Msg("Photos are stored on Cloudinary")
		return storage, nil
	}

	baseURL := strings.TrimRight(cfg.Server.PublicURL, "/") + "/uploads"
	storage, err := filestorage.NewLocalStorage(cfg.Server.UploadDir, baseURL, cfg.Server.MaxUploadBytes, logger.Component("filestorage"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	lgr.Info().Str("path", cfg.Server.UploadDir).Msg("Photos are stored on local disk")
	return storage, nil
}

// SetupRouter configures the Gin engine with middleware and routes
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if isProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))
	// multipart overhead on top of the photo itself
	router.Use(appMiddleware.MaxBodySize(cfg.Server.MaxUploadBytes + 1<<20))
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	appRoutes.SetupSwagger(router, swaggerHost(cfg))
	if cfg.Cloudinary.URL == "" {
		router.Static("/uploads", cfg.Server.UploadDir)
	}
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}

// WithCORS restricts cross-origin access to the configured origins
func WithCORS(cfg *config.Config, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler(h)
}

func isProduction(cfg *config.Config) bool {
	return strings.EqualFold(cfg.Server.Mode, "production")
}

// openerOrigin falls back to the first allowed origin, which is where the
// sign-in popup is opened from in the default setup
func openerOrigin(cfg *config.Config) string {
	if cfg.OAuth.OpenerOrigin != "" {
		return cfg.OAuth.OpenerOrigin
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		return cfg.Server.AllowedOrigins[0]
	}
	return ""
}

func swaggerHost(cfg *config.Config) string {
	u, err := url.Parse(cfg.Server.PublicURL)
	if err != nil {
		return ""
	}
	return u.Host
}
