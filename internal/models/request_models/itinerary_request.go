package request_models

import "wayfare/internal/models/pipeline_models"

type GenerateItineraryRequest struct {
	Interests         []string `json:"interests" binding:"required"`
	Budget            string   `json:"budget" binding:"required"`
	TimeWindowMinutes int      `json:"time_window_minutes" binding:"required"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Accessibility     []string `json:"accessibility"`
	PartySize         int      `json:"party_size"`
}

func (r GenerateItineraryRequest) ToProfile() pipeline_models.RequestProfile {
	return pipeline_models.RequestProfile{
		Interests:         r.Interests,
		Budget:            r.Budget,
		TimeWindowMinutes: r.TimeWindowMinutes,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Accessibility:     r.Accessibility,
		PartySize:         r.PartySize,
	}
}
