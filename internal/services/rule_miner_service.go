package services

import (
	"context"
	"log"
	"sort"
	"sync/atomic"

	"wayfare/internal/models/db_models"
	"wayfare/internal/models/pipeline_models"
	"wayfare/internal/repositories"
	"wayfare/pkg/utils"
)

// MiningConfig holds the thresholds a rule must satisfy to be kept.
type MiningConfig struct {
	MinSupport    float64
	MinConfidence float64
	MinLift       float64
	MaxRules      int
}

func DefaultMiningConfig() MiningConfig {
	return MiningConfig{
		MinSupport:    0.05,
		MinConfidence: 0.3,
		MinLift:       1.0,
		MaxRules:      500,
	}
}

// BoostSeedCount is how many top-scoring candidates anchor the boost stage.
const BoostSeedCount = 5

type RuleMinerServiceInterface interface {
	// GenerateRules recomputes the rule set from historical sessions,
	// atomically replaces the persisted set and refreshes the in-memory
	// snapshot. Returns the number of rules kept.
	GenerateRules(ctx context.Context) (int, error)
	// BoostCandidates re-weights candidates using the current snapshot.
	// Failures are non-fatal; the input is returned unchanged.
	BoostCandidates(ctx context.Context, candidates []pipeline_models.Candidate) []pipeline_models.Candidate
	// LoadSnapshot primes the in-memory snapshot from the persisted set.
	LoadSnapshot(ctx context.Context) error
}

// ruleSnapshot is an immutable rule-set view. Readers bind to one snapshot
// per run; the miner swaps the pointer atomically so no reader ever sees a
// partial mix of two mining runs.
type ruleSnapshot struct {
	version int64
	bySeed  map[string][]pipeline_models.AssociationRule
}

type RuleMinerService struct {
	ruleRepo repositories.IRuleRepository
	config   MiningConfig
	snapshot atomic.Pointer[ruleSnapshot]
}

func NewRuleMinerService(ruleRepo repositories.IRuleRepository, config MiningConfig) RuleMinerServiceInterface {
	return &RuleMinerService{ruleRepo: ruleRepo, config: config}
}

func (s *RuleMinerService) GenerateRules(ctx context.Context) (int, error) {
	sessions, err := s.ruleRepo.LoadSessions(ctx)
	if err != nil {
		return 0, utils.NewDependencyUnavailable("mining", err)
	}

	mined := MineRules(sessions, s.config)

	rows := make([]db_models.AssociationRule, 0, len(mined))
	for _, rule := range mined {
		rows = append(rows, db_models.AssociationRule{
			Seed:        rule.Seed,
			Recommended: rule.Recommended,
			Support:     rule.Support,
			Confidence:  rule.Confidence,
			Lift:        rule.Lift,
		})
	}
	if err := s.ruleRepo.ReplaceRules(ctx, rows); err != nil {
		return 0, utils.NewDependencyUnavailable("mining", err)
	}

	s.installSnapshot(mined)
	return len(mined), nil
}

// LoadSnapshot primes the in-memory snapshot from the persisted rule set,
// typically at startup.
func (s *RuleMinerService) LoadSnapshot(ctx context.Context) error {
	rows, err := s.ruleRepo.LoadRules(ctx)
	if err != nil {
		return utils.NewDependencyUnavailable("mining", err)
	}
	rules := make([]pipeline_models.AssociationRule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, pipeline_models.AssociationRule{
			Seed:        row.Seed,
			Recommended: row.Recommended,
			Support:     row.Support,
			Confidence:  row.Confidence,
			Lift:        row.Lift,
		})
	}
	s.installSnapshot(rules)
	return nil
}

func (s *RuleMinerService) installSnapshot(rules []pipeline_models.AssociationRule) {
	snap := &ruleSnapshot{bySeed: make(map[string][]pipeline_models.AssociationRule)}
	for _, rule := range rules {
		snap.bySeed[rule.Seed] = append(snap.bySeed[rule.Seed], rule)
	}
	for seed := range snap.bySeed {
		group := snap.bySeed[seed]
		sort.Slice(group, func(i, j int) bool { return group[i].Lift > group[j].Lift })
	}
	s.snapshot.Store(snap)
}

func (s *RuleMinerService) BoostCandidates(ctx context.Context, candidates []pipeline_models.Candidate) []pipeline_models.Candidate {
	snap := s.snapshot.Load()
	if snap == nil {
		if err := s.LoadSnapshot(ctx); err != nil {
			log.Printf("boost stage: rule store unavailable, skipping: %v", err)
			return candidates
		}
		snap = s.snapshot.Load()
	}
	if len(snap.bySeed) == 0 {
		return candidates
	}

	seeds := topSeeds(candidates, BoostSeedCount)
	inRun := make(map[string]int, len(candidates))
	for i, c := range candidates {
		inRun[c.Slug] = i
	}

	// Track the best lift applied per candidate so only the single
	// highest-lift matching rule takes effect.
	applied := make(map[string]float64)

	for _, seed := range seeds {
		for _, rule := range snap.bySeed[seed] {
			idx, ok := inRun[rule.Recommended]
			if !ok || rule.Recommended == seed {
				continue
			}
			if prev, done := applied[rule.Recommended]; done && prev >= rule.Lift {
				continue
			}
			c := &candidates[idx]
			if c.Score == nil {
				continue
			}
			base := *c.Score
			if prev, done := applied[rule.Recommended]; done {
				// Undo the weaker rule before applying the stronger one.
				base = base / prev
			}
			boosted := base * rule.Lift
			c.Score = &boosted
			c.SetMeta("boost_seed", seed)
			c.SetMeta("boost_lift", rule.Lift)
			c.SetMeta("boost_confidence", rule.Confidence)
			applied[rule.Recommended] = rule.Lift
		}
	}
	return candidates
}

// topSeeds returns the slugs of the K highest-scoring candidates.
func topSeeds(candidates []pipeline_models.Candidate, k int) []string {
	sorted := make([]pipeline_models.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScoreOrZero() > sorted[j].ScoreOrZero()
	})
	if k > len(sorted) {
		k = len(sorted)
	}
	seeds := make([]string, 0, k)
	for _, c := range sorted[:k] {
		seeds = append(seeds, c.Slug)
	}
	return seeds
}

// MineRules computes pairwise association rules from sessions. Each session
// is a set of visited venue identities with duplicates already collapsed.
func MineRules(sessions [][]string, config MiningConfig) []pipeline_models.AssociationRule {
	total := len(sessions)
	if total == 0 {
		return nil
	}

	// Per-item support.
	itemCounts := make(map[string]int)
	for _, session := range sessions {
		for _, item := range dedupe(session) {
			itemCounts[item]++
		}
	}
	support := make(map[string]float64, len(itemCounts))
	frequent := make(map[string]bool)
	for item, count := range itemCounts {
		s := float64(count) / float64(total)
		support[item] = s
		if s >= config.MinSupport {
			frequent[item] = true
		}
	}

	// Pair counts over frequent items co-occurring within a session.
	type pair struct{ a, b string }
	pairCounts := make(map[pair]int)
	for _, session := range sessions {
		items := dedupe(session)
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				a, b := items[i], items[j]
				if !frequent[a] || !frequent[b] {
					continue
				}
				if b < a {
					a, b = b, a
				}
				pairCounts[pair{a, b}]++
			}
		}
	}

	rules := make([]pipeline_models.AssociationRule, 0, len(pairCounts)*2)
	for p, count := range pairCounts {
		pairSupport := float64(count) / float64(total)
		for _, dir := range [][2]string{{p.a, p.b}, {p.b, p.a}} {
			antecedent, consequent := dir[0], dir[1]
			confidence := pairSupport / support[antecedent]
			lift := confidence / support[consequent]
			if confidence < config.MinConfidence || lift < config.MinLift {
				continue
			}
			rules = append(rules, pipeline_models.AssociationRule{
				Seed:        antecedent,
				Recommended: consequent,
				Support:     pairSupport,
				Confidence:  confidence,
				Lift:        lift,
			})
		}
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Lift != rules[j].Lift {
			return rules[i].Lift > rules[j].Lift
		}
		if rules[i].Seed != rules[j].Seed {
			return rules[i].Seed < rules[j].Seed
		}
		return rules[i].Recommended < rules[j].Recommended
	})
	if config.MaxRules > 0 && len(rules) > config.MaxRules {
		rules = rules[:config.MaxRules]
	}
	return rules
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
