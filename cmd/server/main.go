package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"gopkg.in/yaml.v3"

	"github.com/subtrans/subtrans/internal/cleanup"
	"github.com/subtrans/subtrans/internal/extraction"
	"github.com/subtrans/subtrans/internal/handlers"
	"github.com/subtrans/subtrans/internal/jobs"
	"github.com/subtrans/subtrans/internal/storage"
	"github.com/subtrans/subtrans/internal/translation"
	"github.com/subtrans/subtrans/internal/vision"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Workers struct {
		Count     int `yaml:"count"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"workers"`

	Extraction extraction.Config `yaml:"extraction"`

	Detector struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"detector"`

	Recognizer struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"recognizer"`

	Translator struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		SourceLanguage string `yaml:"source_language"`
		TargetLanguage string `yaml:"target_language"`
		ContextLabel   string `yaml:"context_label"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"translator"`

	Storage struct {
		UploadDir  string `yaml:"upload_dir"`
		ResultsDir string `yaml:"results_dir"`
		Database   string `yaml:"database"`
	} `yaml:"storage"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
		JobTTLHours     int `yaml:"job_ttl_hours"`
	} `yaml:"cleanup"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

func main() {
	config, err := loadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cleanup.EnsureDirExists(config.Storage.UploadDir); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}
	if err := cleanup.EnsureDirExists(config.Storage.ResultsDir); err != nil {
		log.Fatalf("Failed to create results directory: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	log.Println("Initializing components...")

	detector := vision.NewHTTPDetector(config.Detector.BaseURL,
		time.Duration(config.Detector.TimeoutSeconds)*time.Second)
	recognizer := vision.NewHTTPRecognizer(config.Recognizer.BaseURL,
		time.Duration(config.Recognizer.TimeoutSeconds)*time.Second)
	extractor := extraction.New(detector, recognizer, config.Extraction)

	apiKey := config.Translator.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	translator := translation.NewClient(
		config.Translator.BaseURL,
		apiKey,
		config.Translator.Model,
		config.Translator.SourceLanguage,
		config.Translator.TargetLanguage,
		time.Duration(config.Translator.TimeoutSeconds)*time.Second,
	)

	localStorage := storage.NewLocalStorage(config.Storage.ResultsDir)

	// Google Drive mirror (optional - may fail if credentials not set up)
	var driveClient *storage.DriveClient
	if _, err := os.Stat(config.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err = storage.NewDriveClient(
			config.GoogleDrive.CredentialsFile,
			config.GoogleDrive.TokenFile,
			config.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Printf("WARNING: Google Drive not available: %v", err)
			log.Println("Transcripts will only be saved locally")
			driveClient = nil
		} else {
			log.Println("Google Drive mirror enabled")
		}
	} else {
		log.Println("Google Drive credentials not found - saving locally only")
	}

	db, err := storage.NewMetadataDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	registry := jobs.NewRegistry()
	pipeline := jobs.NewPipeline(registry, extractor, translator,
		localStorage, db, driveClient, config.Translator.ContextLabel)
	workerPool := jobs.NewWorkerPool(config.Workers.Count, config.Workers.QueueSize, pipeline, registry)
	workerPool.Start()

	retention := cleanup.NewScheduler(
		[]string{config.Storage.UploadDir, config.Storage.ResultsDir},
		registry,
		time.Duration(config.Cleanup.IntervalMinutes)*time.Minute,
		time.Duration(config.Cleanup.MaxAgeHours)*time.Hour,
		time.Duration(config.Cleanup.JobTTLHours)*time.Hour,
	)
	retention.Start()
	defer retention.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	uploadHandler := handlers.NewUploadHandler(workerPool, registry, config.Storage.UploadDir, config.Limits.MaxFileSizeMB)
	statusHandler := handlers.NewStatusHandler(registry)
	resultHandler := handlers.NewResultHandler(registry)
	progressHandler := handlers.NewProgressHandler(registry)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/upload", uploadHandler.Handle)
	app.Get("/status/:id", statusHandler.Handle)
	app.Get("/result/:id", resultHandler.Handle)
	app.Get("/ws/progress/:id", websocket.New(progressHandler.Handle))

	// Durable transcript index
	app.Get("/transcripts", func(c *fiber.Ctx) error {
		limit := 50
		transcripts, err := db.ListTranscripts(limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(transcripts)
	})

	app.Get("/transcripts/:id", func(c *fiber.Ctx) error {
		row, err := db.GetTranscript(c.Params("id"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Transcript not found"})
		}
		path, ok := row["result_path"].(string)
		if !ok || path == "" {
			return c.Status(404).JSON(fiber.Map{"error": "Transcript file path not found"})
		}
		return c.SendFile(path)
	})

	app.Get("/transcripts/:id/text", func(c *fiber.Ctx) error {
		row, err := db.GetTranscript(c.Params("id"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Transcript not found"})
		}
		path, ok := row["result_path"].(string)
		if !ok || path == "" {
			return c.Status(404).JSON(fiber.Map{"error": "Transcript file path not found"})
		}
		records, err := storage.ReadTranscript(path)
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Transcript file not readable"})
		}
		c.Set("Content-Type", "text/plain; charset=utf-8")
		return c.SendString(storage.RenderText(records))
	})

	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /upload           - Upload a video for subtitle extraction")
	log.Println("   GET  /status/:id       - Poll job status")
	log.Println("   GET  /result/:id       - Fetch finished transcript")
	log.Println("   GET  /ws/progress/:id  - Live progress feed")
	log.Println("   GET  /transcripts      - List finished transcripts")
	log.Println("   GET  /transcripts/:id  - Fetch transcript from the index")
	log.Println("   GET  /transcripts/:id/text - Fetch bilingual text rendering")
	log.Println("   GET  /logs             - View server logs")
	log.Println("   GET  /health           - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
