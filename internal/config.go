package internal

import (
	"cam-guard/errors"
	goerrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

const (
	DefaultNotification = "You were disconnected from **{{.Channel}}** because your camera was not turned on " +
		"within {{.GracePeriod}}. Cameras are required in this channel: turn yours on right after joining."
	DefaultDisconnectReason = "Camera required in this voice channel"
)

var validate = validator.New()

type Config struct {
	DiscordToken         string        `env:"DISCORD_TOKEN,required=true" validate:"required"`
	Port                 int           `env:"PORT,default=3000" validate:"min=1,max=65535"`
	MonitoredChannelIDs  string        `env:"MONITORED_CHANNEL_IDS,required=true" validate:"required"`
	GracePeriod          time.Duration `env:"GRACE_PERIOD,default=10s" validate:"gt=0s"`
	ExemptRoles          string        `env:"EXEMPT_ROLES"`
	NotificationTemplate string        `env:"NOTIFICATION_TEMPLATE"`
	DisconnectReason     string        `env:"DISCONNECT_REASON"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	EventBufferSize      int           `env:"EVENT_BUFFER_SIZE,default=256" validate:"gt=0"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=1m" validate:"gt=0s"`
	MetricsPort          *int          `env:"METRICS_PORT" validate:"omitempty,min=1,max=65535"`
}

// LoadConfig reads the configuration from the environment, after loading an
// optional .env file from the working directory. Variables already set win over the file.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !goerrors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: loading env file: %v", errors.ErrInvalidConfig, err)
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	config.LogLevel = strings.ToUpper(strings.TrimSpace(config.LogLevel))

	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	if len(config.ChannelIDs()) == 0 {
		return Config{}, fmt.Errorf("%w: MONITORED_CHANNEL_IDS holds no channel id", errors.ErrInvalidConfig)
	}
	return config, nil
}

func (c Config) ChannelIDs() []string {
	return splitList(c.MonitoredChannelIDs)
}

func (c Config) ExemptRoleNames() []string {
	return splitList(c.ExemptRoles)
}

func (c Config) Notification() string {
	return lo.CoalesceOrEmpty(c.NotificationTemplate, DefaultNotification)
}

func (c Config) Reason() string {
	return lo.CoalesceOrEmpty(strings.TrimSpace(c.DisconnectReason), DefaultDisconnectReason)
}

// splitList parses a comma separated list, dropping blanks and duplicates.
func splitList(raw string) []string {
	items := lo.Map(strings.Split(raw, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return lo.Uniq(lo.Compact(items))
}
