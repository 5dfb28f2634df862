// Package config provides configuration loading, validation and defaults for
// the relay bot. Values come from an optional YAML file, a .env file and
// BOT_* environment variables.
package config

import (
	"errors"
	"time"
)

// ErrInvalidConfig is returned when the configuration cannot be loaded or
// fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config defines the application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Commands  CommandsConfig  `mapstructure:"commands"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the administrator ids.
type TelegramConfig struct {
	Token          string        `mapstructure:"token"           validate:"required"`
	AdminIDs       []int64       `mapstructure:"admin_ids"       validate:"required,min=1,dive,gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=5m"`
}

// DatabaseConfig holds the SQLite profile database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// MessagesConfig holds the user-facing texts.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"         validate:"required"`
	ReplyNotFound string `mapstructure:"reply_not_found" validate:"required"`
	ListEmpty     string `mapstructure:"list_empty"      validate:"required"`
	GeneralError  string `mapstructure:"general_error"   validate:"required"`
	ListCaption   string `mapstructure:"list_caption"    validate:"required"`
}

// CommandsConfig holds the command descriptions published in the bot menu.
type CommandsConfig struct {
	Start string `mapstructure:"start"`
	List  string `mapstructure:"list"`
}

// SchedulerConfig holds the periodic task configuration keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

var defaults = map[string]any{
	"logger.level": "info",
	"logger.json":  false,

	"telegram.request_timeout": 30 * time.Second,

	"database.path": "users.db",

	"messages.welcome":         "Hello! Send me a message and I will pass it on to the administrators.",
	"messages.reply_not_found": "Could not find the user for this reply.",
	"messages.list_empty":      "The user list is empty.",
	"messages.general_error":   "An error occurred. Please try again later.",
	"messages.list_caption":    "Users: %s",

	"commands.start": "Start a conversation with the administrators",
	"commands.list":  "Export the user list (admin only)",

	"scheduler.tasks.sql_maintenance.enabled":  true,
	"scheduler.tasks.sql_maintenance.schedule": "0 0 4 * * *",
	"scheduler.tasks.routing_stats.enabled":    true,
	"scheduler.tasks.routing_stats.schedule":   "0 0 * * * *",
}
