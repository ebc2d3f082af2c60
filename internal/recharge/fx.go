package recharge

import (
	"github.com/smallbiznis/rechargemock/internal/recharge/repository"
	"github.com/smallbiznis/rechargemock/internal/recharge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recharge.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
