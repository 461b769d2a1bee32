package controllers

import (
	"github.com/gin-gonic/gin"

	"wayfare/internal/services"
	"wayfare/pkg/utils"
)

type RulesController struct {
	minerService services.RuleMinerServiceInterface
}

func NewRulesController(minerService services.RuleMinerServiceInterface) *RulesController {
	return &RulesController{minerService: minerService}
}

func (rc *RulesController) MineRules(c *gin.Context) {
	count, err := rc.minerService.GenerateRules(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"rule_count": count}, "Association rules regenerated")
}
