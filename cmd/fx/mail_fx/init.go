package mail_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"gladiadores/config"
	"gladiadores/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config, log *zap.Logger) services.IMailService {
	return services.NewMailService(services.SMTPConfig{
		MailConfig: cfg.Mail,
		AppName:    cfg.App.Name,
		AppBaseURL: cfg.App.BaseURL,
	}, log)
}
