package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargemock/internal/apistatus"
	"github.com/smallbiznis/rechargemock/internal/billpay"
	"github.com/smallbiznis/rechargemock/internal/catalog"
	"github.com/smallbiznis/rechargemock/internal/clock"
	"github.com/smallbiznis/rechargemock/internal/config"
	"github.com/smallbiznis/rechargemock/internal/observability"
	"github.com/smallbiznis/rechargemock/internal/ratelimit"
	"github.com/smallbiznis/rechargemock/internal/recharge"
	"github.com/smallbiznis/rechargemock/internal/scheduler"
	"github.com/smallbiznis/rechargemock/internal/server"
	"github.com/smallbiznis/rechargemock/internal/simulation"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,

		// Simulation and deferred resolution
		simulation.Module,
		scheduler.Module,
		ratelimit.Module,

		// Domains
		catalog.Module,
		recharge.Module,
		billpay.Module,
		apistatus.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
