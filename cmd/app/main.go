package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"wayfare/cmd/fx/ai_fx"
	"wayfare/cmd/fx/cache_fx"
	"wayfare/cmd/fx/controllers_fx"
	"wayfare/cmd/fx/db_fx"
	"wayfare/cmd/fx/matrix_fx"
	"wayfare/cmd/fx/pipeline_fx"
	"wayfare/cmd/fx/places_fx"
	"wayfare/cmd/fx/rules_fx"
	"wayfare/cmd/fx/telemetry_fx"
	"wayfare/internal/api/controllers"
	"wayfare/internal/services"
	"wayfare/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := fx.New(
		db_fx.Module,
		cache_fx.Module,
		telemetry_fx.Module,
		ai_fx.Module,
		matrix_fx.Module,
		places_fx.Module,
		rules_fx.Module,
		pipeline_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(PrimeRuleSnapshot),
		fx.Invoke(StartServer),
	)

	app.Run()
}

// PrimeRuleSnapshot loads the persisted rule set into memory so the first
// requests can use the boost stage. A failure here is non-fatal; the boost
// stage retries lazily.
func PrimeRuleSnapshot(lc fx.Lifecycle, miner services.RuleMinerServiceInterface) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := miner.LoadSnapshot(ctx); err != nil {
				log.Printf("Rule snapshot not primed: %v", err)
			}
			return nil
		},
	})
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	itineraryController *controllers.ItineraryController,
	rulesController *controllers.RulesController,
	venuesController *controllers.VenuesController,
) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, itineraryController, rulesController, venuesController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	itineraryController *controllers.ItineraryController,
	rulesController *controllers.RulesController,
	venuesController *controllers.VenuesController) {

	itineraries := r.Group("/itineraries")
	itineraries.POST("", itineraryController.GenerateItinerary)

	rules := r.Group("/rules")
	rules.POST("/mine", rulesController.MineRules)

	venues := r.Group("/venues")
	venues.GET("/:slug", venuesController.GetVenueBySlug)
}
