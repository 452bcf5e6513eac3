package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config application-wide settings
type Config struct {
	Server     ServerConfig
	CORS       CORSConfig
	Graph      GraphConfig
	SharePoint SharePointConfig
	Calendar   CalendarConfig
	Templates  TemplateConfig
	Defaults   DefaultsConfig
	Redis      RedisConfig
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CORSConfig CORS settings
type CORSConfig struct {
	AllowOrigins string
	AllowHeaders string
}

// GraphConfig Microsoft Graph app credentials
type GraphConfig struct {
	AuthorityHost string
	TenantID      string
	ClientID      string
	ClientSecret  string
}

// SharePointConfig site, drive and well-known folder identifiers
type SharePointConfig struct {
	SiteID                 string
	MeetingsDriveID        string
	MeetingsRootFolderID   string
	UnassignedTopsFolderID string
	AssetsDriveID          string
}

// CalendarConfig the shared mailbox owning all invites
type CalendarConfig struct {
	EventMailbox string
	// OnlineMeetingHosts are fixed attendees of the main invite and become
	// co-organizers of the Teams meeting. Semicolon-delimited UPNs.
	OnlineMeetingHosts string
}

// TemplateConfig drive item ids of the DOCX templates
type TemplateConfig struct {
	ProtocolFileIDDe string
	ProtocolFileIDEn string
	AgendaFileIDDe   string
	AgendaFileIDEn   string
}

// DefaultsConfig pick lists served to the client from config
type DefaultsConfig struct {
	Rooms             []string
	ParticipantGroups []string
}

// RedisConfig optional display-name cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads settings from the environment
func Load() *Config {
	// .env file is optional
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ No .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
			AllowHeaders: getEnv("CORS_ALLOW_HEADERS", "Origin, Content-Type, Accept, Authorization"),
		},
		Graph: GraphConfig{
			AuthorityHost: getRequiredEnv("M365_AUTHORITY_HOST"),
			TenantID:      getRequiredEnv("M365_TENANT_ID"),
			ClientID:      getRequiredEnv("M365_CLIENT_ID"),
			ClientSecret:  getRequiredEnv("M365_CLIENT_SECRET"),
		},
		SharePoint: SharePointConfig{
			SiteID:                 getEnv("SHAREPOINT_WEBSITE", ""),
			MeetingsDriveID:        getEnv("SHAREPOINT_MEETINGS_DRIVE_ID", ""),
			MeetingsRootFolderID:   getEnv("SHAREPOINT_MEETING_FOLDER_ID", ""),
			UnassignedTopsFolderID: getEnv("SHAREPOINT_UNASSIGNED_TOPS_FOLDER_ID", ""),
			AssetsDriveID:          getEnv("ASSETS_DRIVE_ID", ""),
		},
		Calendar: CalendarConfig{
			EventMailbox:       getEnv("EVENT_MAILBOX", ""),
			OnlineMeetingHosts: getEnv("ONLINE_MEETING_HOSTS", ""),
		},
		Templates: TemplateConfig{
			ProtocolFileIDDe: getEnv("PROTOCOL_TEMPLATE_FILE_ID_DE", ""),
			ProtocolFileIDEn: getEnv("PROTOCOL_TEMPLATE_FILE_ID_EN", ""),
			AgendaFileIDDe:   getEnv("AGENDA_PDF_TEMPLATE_FILE_ID_DE", ""),
			AgendaFileIDEn:   getEnv("AGENDA_PDF_TEMPLATE_FILE_ID_EN", ""),
		},
		Defaults: DefaultsConfig{
			Rooms:             getList("DEFAULT_ROOMS", nil),
			ParticipantGroups: getList("DEFAULT_PARTICIPANT_GROUPS", nil),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
	}
}

// getRequiredEnv fetches a required variable (Fatal when missing)
func getRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("🚨 CRITICAL: Required environment variable %s is not set!", key)
	}
	return value
}

// getEnv fetches a variable with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt fetches an integer variable
func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getDuration fetches a duration variable (bare numbers are seconds)
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if !strings.ContainsAny(value, "smh") {
			if secs, err := strconv.Atoi(value); err == nil {
				return time.Duration(secs) * time.Second
			}
		}
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getList fetches a semicolon-delimited list variable
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
