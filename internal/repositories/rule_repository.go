package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"wayfare/internal/models/db_models"
)

type IRuleRepository interface {
	// LoadSessions returns historical visits grouped by session, duplicates
	// within a session collapsed.
	LoadSessions(ctx context.Context) ([][]string, error)
	// ReplaceRules swaps the entire persisted rule set in one transaction.
	ReplaceRules(ctx context.Context, rules []db_models.AssociationRule) error
	LoadRules(ctx context.Context) ([]db_models.AssociationRule, error)
}

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) IRuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) LoadSessions(ctx context.Context) ([][]string, error) {
	var rows []db_models.VisitSession
	err := r.db.WithContext(ctx).Order("session_id").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]map[string]bool)
	order := make([]string, 0)
	for _, row := range rows {
		if _, ok := grouped[row.SessionID]; !ok {
			grouped[row.SessionID] = make(map[string]bool)
			order = append(order, row.SessionID)
		}
		grouped[row.SessionID][row.VenueSlug] = true
	}

	sessions := make([][]string, 0, len(order))
	for _, sid := range order {
		venues := make([]string, 0, len(grouped[sid]))
		for slug := range grouped[sid] {
			venues = append(venues, slug)
		}
		sessions = append(sessions, venues)
	}
	return sessions, nil
}

func (r *RuleRepository) ReplaceRules(ctx context.Context, rules []db_models.AssociationRule) error {
	version := time.Now().UnixNano()
	for i := range rules {
		rules[i].Version = version
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&db_models.AssociationRule{}).Error; err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}
		return tx.CreateInBatches(rules, 500).Error
	})
}

func (r *RuleRepository) LoadRules(ctx context.Context) ([]db_models.AssociationRule, error) {
	var rules []db_models.AssociationRule
	err := r.db.WithContext(ctx).Order("lift DESC").Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
