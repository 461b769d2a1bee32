package controllers_fx

import (
	"go.uber.org/fx"

	"wayfare/internal/api/controllers"
)

var Module = fx.Provide(
	controllers.NewItineraryController,
	controllers.NewRulesController,
	controllers.NewVenuesController,
)
