package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/datingassistent/payments/internal/config"
)

// Module exposes the notifier implementation to the fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) Notifier {
	if p.Config.NotificationURL == "" {
		p.Logger.Warn("notification endpoint not configured, welcome emails and staff alerts disabled")
		return NopNotifier{}
	}
	return NewHTTPNotifier(p.Config.NotificationURL, p.Logger)
}
