package main

import (
	"context"
	"time"

	"rationdist/beneficiary"
	"rationdist/config"
	"rationdist/distribution"
	"rationdist/intake"
	"rationdist/inventory"
	"rationdist/pkg/archive"
	"rationdist/pkg/notify"
	"rationdist/pkg/receipt"
	"rationdist/pkg/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type server struct {
	cfg       *config.Config
	db        *gorm.DB
	logger    *zap.Logger
	secret    []byte
	views     *viewRenderer
	hub       *socket.Hub
	publisher notify.Publisher
	webhook   *notify.Async
	recorder  *distribution.Recorder
	inventory *inventory.Manager
	registry  *beneficiary.Registry
	intake    *intake.Intake
	exporter  *receipt.Exporter
	archive   *archive.Uploader
}

// newServer wires every component from cfg. Optional integrations (logo,
// S3 archive, webhook) are enabled only when configured.
func newServer(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	views, err := newViewRenderer(cfg.Templates.Dir, logger.Named("views"))
	if err != nil {
		return nil, err
	}

	hub := socket.NewHub(logger.Named("socket"))
	publishers := notify.Fanout{hub}
	var webhook *notify.Async
	if cfg.Webhook.URL != "" {
		webhook = notify.NewAsync(notify.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Timeout), cfg.Webhook.Timeout, logger.Named("webhook"))
		publishers = append(publishers, webhook)
		logger.Info("webhook notifications enabled")
	}

	exporter := &receipt.Exporter{Compress: cfg.Receipt.Compress}
	if cfg.Receipt.LogoPath != "" {
		logo, err := receipt.LoadLogo(cfg.Receipt.LogoPath)
		if err != nil {
			return nil, err
		}
		exporter.Logo = logo
	}

	uploader, err := archive.NewUploader(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	if uploader != nil {
		logger.Info("receipt archive enabled", zap.String("bucket", uploader.Bucket))
	}

	return &server{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		secret:    []byte(cfg.Session.Secret),
		views:     views,
		hub:       hub,
		publisher: publishers,
		webhook:   webhook,
		recorder:  distribution.NewRecorder(db, receipt.NewSynthesizer(), publishers, logger.Named("distribution")),
		inventory: inventory.NewManager(db, logger.Named("inventory")),
		registry:  beneficiary.NewRegistry(db, logger.Named("beneficiary")),
		intake:    intake.New(db, logger.Named("intake")),
		exporter:  exporter,
		archive:   uploader,
	}, nil
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(s.logger.Named("http")))
	if len(s.cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.HTMLRender = s.views
	r.Use(s.loadSession())

	r.GET("/", s.indexPage)
	r.POST("/", s.login)
	r.GET("/logout", s.logout)
	r.GET("/healthz", s.healthz)

	g := r.Group("")
	g.Use(s.requireDistributor())
	g.GET("/dashboard_page", s.dashboardPage)

	g.GET("/add_ration", s.addRationPage)
	g.POST("/add_ration", s.addRation)
	g.GET("/view_ration", s.viewRation)
	g.GET("/edit_ration/:id", s.editRationPage)
	g.POST("/edit_ration/:id", s.editRation)
	g.GET("/delete_ration/:id", s.deleteRation)

	g.GET("/ration_distribution", s.distributionPage)
	g.POST("/ration_distribution", s.recordDistribution)
	g.GET("/receipt", s.showReceipt)
	g.GET("/download_receipt", s.downloadReceipt)
	g.GET("/view_distributions", s.viewDistributions)

	g.GET("/ration_requests", s.requestsPage)
	g.POST("/ration_requests", s.submitRequest)
	g.GET("/view_beneficiary_list", s.beneficiaryList)
	g.POST("/update_status", s.updateStatus)

	g.GET("/reports/daily", s.dailyReport)
	g.GET("/ws", s.serveWs)
	return r
}
