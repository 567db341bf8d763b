package psp

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/datingassistent/payments/internal/config"
)

// Module exposes the payment provider client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.PSPAddress, p.Config.PSPAPIToken, p.Config.PSPTimeout, p.Logger)
}
