package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	GoogleAudience  string
	AllowOrigins    []string
	LogstashTCPAddr string
	FrontendBaseURL string
	SessionTTL      string

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOBucketUploads string
	MinIOBucketAcademy string

	StripeWebhookSecret string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// ImportOwnerPolicy overrides who imported courses are assigned to:
	// "uploader" or "first-mentor". Empty keeps each variant's default.
	ImportOwnerPolicy  string
	ImportMaxFileBytes int64

	SignatureImageMaxDim int
	FFMPEGPath           string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	importMax := int64(8 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("IMPORT_MAX_FILE_BYTES", "8388608"), 10, 64); err == nil && v > 0 {
		importMax = v
	}

	signatureMaxDim := 1024
	if v, err := strconv.Atoi(getenv("SIGNATURE_IMAGE_MAX_DIM", "1024")); err == nil && v > 0 {
		signatureMaxDim = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", ""),
		SessionTTL:      getenv("SESSION_TTL", "24h"),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),

		MinIOEndpoint:      must("MINIO_ENDPOINT"),
		MinIOAccessKey:     must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:     must("MINIO_SECRET_KEY"),
		MinIOUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketUploads: getenv("MINIO_BUCKET_UPLOADS", "academy-uploads"),
		MinIOBucketAcademy: getenv("MINIO_BUCKET_ACADEMY", "academy-assets"),

		StripeWebhookSecret: getenv("STRIPE_WEBHOOK_SECRET", ""),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", ""),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),

		ImportOwnerPolicy:  getenv("IMPORT_OWNER_POLICY", ""),
		ImportMaxFileBytes: importMax,

		SignatureImageMaxDim: signatureMaxDim,
		FFMPEGPath:           getenv("FFMPEG_PATH", "ffmpeg"),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
