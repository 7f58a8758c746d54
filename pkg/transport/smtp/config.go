package smtp

import "time"

// TLS modes.
const (
	TLSModeStartTLS = "starttls"
	TLSModeTLS      = "tls"
	TLSModePlain    = "plain"
)

// Config holds SMTP server configuration.
// Username and Password are optional; authentication is skipped without them.
type Config struct {
	Host      string        `env:"SMTP_HOST"`
	Port      int           `env:"SMTP_PORT" envDefault:"587"`
	Username  string        `env:"SMTP_USERNAME"`
	Password  string        `env:"SMTP_PASSWORD"`
	TLSMode   string        `env:"SMTP_TLS_MODE" envDefault:"starttls"` // starttls, tls, or plain
	Timeout   time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	LocalName string        `env:"SMTP_LOCAL_NAME"` // HELO name, "localhost" when empty
}
