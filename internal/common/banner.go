package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved runtime settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Fundscope", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("provider", config.Market.Provider).
		Str("local_currency", config.Market.LocalCurrency).
		Bool("mail_dev_mode", config.Mail.DevMode).
		Msg("Fundscope starting")
}
