package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfare/internal/models/response_models"
	"wayfare/internal/repositories"
	"wayfare/pkg/utils"
)

type VenuesController struct {
	venueRepo repositories.IVenueRepository
}

func NewVenuesController(venueRepo repositories.IVenueRepository) *VenuesController {
	return &VenuesController{venueRepo: venueRepo}
}

func (vc *VenuesController) GetVenueBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		utils.RespondError(c, http.StatusBadRequest, "Venue slug is required")
		return
	}

	venue, err := vc.venueRepo.GetVenueBySlug(c.Request.Context(), slug)
	if err != nil {
		utils.HandleServiceError(c, utils.NewDependencyUnavailable("venues", err))
		return
	}
	if venue == nil {
		utils.RespondError(c, http.StatusNotFound, "Venue not found")
		return
	}

	utils.RespondSuccess(c, response_models.VenueResponse{
		Slug:          venue.Slug,
		Name:          venue.Name,
		Latitude:      venue.Latitude,
		Longitude:     venue.Longitude,
		Categories:    venue.Categories,
		OpeningHours:  venue.OpeningHours,
		PriceTier:     venue.PriceTier,
		Accessibility: venue.Accessibility,
		ContactInfo:   venue.ContactInfo,
		Status:        venue.Status,
		Partner:       venue.Partner,
		Rating:        venue.Rating,
		Description:   venue.Description,
	}, "Venue fetched successfully")
}
