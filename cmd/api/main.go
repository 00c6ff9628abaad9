package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/viralacademy/academy-api/internal/config"
	"github.com/viralacademy/academy-api/internal/logging"
	"github.com/viralacademy/academy-api/internal/media"
	miniostore "github.com/viralacademy/academy-api/internal/repository/minio"
	"github.com/viralacademy/academy-api/internal/repository/postgres"
	"github.com/viralacademy/academy-api/internal/service"
	"github.com/viralacademy/academy-api/internal/transport/http"
	"github.com/viralacademy/academy-api/internal/transport/mail"
	"github.com/viralacademy/academy-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr, 0, 0, 0)
		if err != nil {
			log.Printf("logstash writer disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	minioClient, err := miniostore.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}
	storage := miniostore.NewStorage(minioClient)

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		log.Printf("invalid SESSION_TTL %q, using 24h", cfg.SessionTTL)
		sessionTTL = 24 * time.Hour
	}
	jwtManager := util.NewJWTManager(cfg.JWTSecret, sessionTTL)

	userRepo := postgres.NewUserRepo(db)
	courseRepo := postgres.NewCourseRepo(db)
	enrollmentRepo := postgres.NewEnrollmentRepo(db)
	certificateRepo := postgres.NewCertificateRepo(db)
	subscriptionRepo := postgres.NewSubscriptionRepo(db)
	importRepo := postgres.NewCourseImportRepo(db)

	var mailer service.CertificateMailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewCertificateMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	authService := service.NewAuthService(userRepo, jwtManager, cfg.GoogleAudience)
	courseService := service.NewCourseService(courseRepo)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, subscriptionRepo)
	certificateService := service.NewCertificateService(certificateRepo, enrollmentRepo, courseRepo, storage, mailer, cfg.MinIOBucketAcademy)
	billingService := service.NewBillingService(subscriptionRepo, userRepo, cfg.StripeWebhookSecret)
	importService := service.NewCourseImportService(courseRepo, userRepo, importRepo, storage, service.CourseImportServiceConfig{
		Bucket:              cfg.MinIOBucketUploads,
		MaxFileBytes:        cfg.ImportMaxFileBytes,
		OwnerPolicyOverride: service.OwnerPolicy(cfg.ImportOwnerPolicy),
	})

	processor := media.NewFFMPEGProcessor(cfg.FFMPEGPath, cfg.SignatureImageMaxDim)

	e := http.NewRouter(cfg.AllowOrigins)
	http.RegisterPages(e, cfg.FrontendBaseURL)
	http.RegisterSwagger(e)
	http.RegisterAuth(e, authService)
	http.RegisterCourses(e, authService, courseService)
	http.RegisterCourseImports(e, authService, importService, cfg.ImportMaxFileBytes)
	http.RegisterProgress(e, authService, enrollmentService)
	http.RegisterCertificates(e, authService, certificateService, processor)
	http.RegisterBilling(e, authService, billingService)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
