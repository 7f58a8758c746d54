// Package environment names the deployment stages of mailify.
//
// APP_ENV is decoded straight into an Environment by the config loader:
//
//	type Config struct {
//		Env environment.Environment `env:"APP_ENV" envDefault:"development"`
//	}
//
// Short aliases (dev, stage, prod) are accepted. The logger picks its output
// format and level from the environment.
package environment
