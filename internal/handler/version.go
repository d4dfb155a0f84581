package handler

import (
	"net/http"
	"runtime"
)

// VersionInfo reports which authority build is serving
type VersionInfo struct {
	Version       string `json:"version"`
	GoVersion     string `json:"go_version"`
	BuildTime     string `json:"build_time,omitempty"`
	GitCommit     string `json:"git_commit,omitempty"`
	SchemaVersion int64  `json:"schema_version,omitempty"`
}

// Build-time variables (injected via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unset"
)

// HandleVersion returns build information. configured is the VERSION
// setting and wins over the ldflags default of "dev"; schemaVersion is the
// migration level applied at startup, zero without a database.
// @Summary Build information
// @Tags health
// @Produce json
// @Success 200 {object} VersionInfo
// @Router /version [get]
func HandleVersion(configured string, schemaVersion int64) http.HandlerFunc {
	info := VersionInfo{
		Version:       resolveVersion(configured),
		GoVersion:     runtime.Version(),
		BuildTime:     BuildTime,
		GitCommit:     GitCommit,
		SchemaVersion: schemaVersion,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}

func resolveVersion(configured string) string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if configured != "" {
		return configured
	}
	return "dev"
}
