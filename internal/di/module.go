package di

import (
	"go.uber.org/fx"

	"github.com/datingassistent/payments/internal/adapter/notify"
	"github.com/datingassistent/payments/internal/adapter/psp"
	"github.com/datingassistent/payments/internal/app"
	"github.com/datingassistent/payments/internal/config"
	"github.com/datingassistent/payments/internal/logger"
	"github.com/datingassistent/payments/internal/pkg/auth"
	"github.com/datingassistent/payments/internal/server/http/handlers"
	"github.com/datingassistent/payments/internal/server/http/router"
	"github.com/datingassistent/payments/internal/storage/postgres"
	"github.com/datingassistent/payments/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		psp.Module,
		notify.Module,
		usecase.Module,
		fx.Provide(func(client psp.Client) usecase.CheckoutProvider { return client }),
		fx.Provide(func(client psp.Client) usecase.TransactionProvider { return client }),
		fx.Provide(func(facade *app.PaymentFacade) handlers.PaymentsFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
