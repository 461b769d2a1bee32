package rules_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"wayfare/internal/repositories"
	"wayfare/internal/services"
)

var Module = fx.Provide(provideRuleRepo, provideRuleMinerService)

func provideRuleRepo(db *gorm.DB) repositories.IRuleRepository {
	return repositories.NewRuleRepository(db)
}

func provideRuleMinerService(ruleRepo repositories.IRuleRepository) services.RuleMinerServiceInterface {
	return services.NewRuleMinerService(ruleRepo, services.DefaultMiningConfig())
}
