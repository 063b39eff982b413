package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"quizreport/internal/config"
)

// Health statuses
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusAlive    = "alive"
)

// HealthService reports whether the service can accept uploads
type HealthService struct {
	version   string
	buildTime string
	limits    UploadLimits
	spoolDir  string
	startTime time.Time
	logger    *slog.Logger
}

// UploadLimits are the per-request limits clients need to know about
type UploadLimits struct {
	MaxFiles       int   `json:"max_files"`
	MaxUploadBytes int64 `json:"max_upload_bytes"`
}

// HealthStatus is the body of the health endpoints
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
	Limits    *UploadLimits     `json:"limits,omitempty"`
	Uptime    float64           `json:"uptime_seconds,omitempty"`
}

// VersionInfo is the body of the version endpoint
type VersionInfo struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	BuildTime string    `json:"build_time,omitempty"`
	GoVersion string    `json:"go_version"`
	OS        string    `json:"os"`
	Arch      string    `json:"arch"`
	StartTime time.Time `json:"start_time"`
}

// NewHealthService creates a health service. Multipart uploads spool to
// os.TempDir, so that is the directory the readiness check probes.
func NewHealthService(version, buildTime string, cfg config.ReportConfig, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		limits:    UploadLimits{MaxFiles: cfg.MaxFiles, MaxUploadBytes: cfg.MaxUploadBytes},
		spoolDir:  os.TempDir(),
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck reports "degraded" when uploads could not be spooled to disk
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
		Checks:    map[string]string{"upload_spool": StatusOK},
		Limits:    &hs.limits,
	}

	if err := probeWritable(hs.spoolDir); err != nil {
		hs.logger.WarnContext(ctx, "upload spool directory not writable",
			slog.String("directory", hs.spoolDir),
			slog.String("error", err.Error()))
		status.Status = StatusDegraded
		status.Checks["upload_spool"] = err.Error()
	}

	return status
}

// LivenessCheck only reports that the process is serving
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Seconds(),
	}
}

// Version returns build information
func (hs *HealthService) Version() VersionInfo {
	return VersionInfo{
		Name:      config.AppName,
		Version:   hs.version,
		BuildTime: hs.buildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		StartTime: hs.startTime,
	}
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, "quizreport-health-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
