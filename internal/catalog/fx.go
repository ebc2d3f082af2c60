package catalog

import (
	"github.com/smallbiznis/rechargemock/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(Load),
	fx.Provide(service.New),
)
