package controllers_fx

import (
	"go.uber.org/fx"

	"gladiadores/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewRegistrationController),
	fx.Provide(controllers.NewStaircaseController),
	fx.Provide(controllers.NewPassportController),
	fx.Provide(controllers.NewDonationController),
	fx.Provide(controllers.NewVoteController),
	fx.Provide(controllers.NewProvincesController),
	fx.Provide(controllers.NewCommunicationController),
	fx.Provide(controllers.NewRoleController),
	fx.Provide(controllers.NewInterestController),
	fx.Provide(controllers.NewDashboardController),
	fx.Provide(controllers.NewRealtimeController),
	fx.Provide(controllers.NewPWAController))
