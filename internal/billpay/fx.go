package billpay

import (
	"github.com/smallbiznis/rechargemock/internal/billpay/repository"
	"github.com/smallbiznis/rechargemock/internal/billpay/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billpay.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
