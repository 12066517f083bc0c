package service

import (
	"context"
	"time"

	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"
	"Omamori/internal/modules/monitoring/domain/risk"

	"gorm.io/datatypes"
)

// Assessment is what one evaluation of a safety log produced.
type Assessment struct {
	Record           *entity.RiskAssessment
	Score            int
	RiskLevel        entity.RiskLevel
	RiskReasons      []string
	Factors          map[string]int
	NextPollInterval time.Duration
}

// RiskAssessor turns a safety log into its assessment row.
type RiskAssessor struct {
	cfg    risk.Config
	scorer *risk.Scorer
}

func NewRiskAssessor(cfg risk.Config) *RiskAssessor {
	return &RiskAssessor{cfg: cfg, scorer: risk.NewScorer(cfg)}
}

// Evaluate has no side effects.
func (a *RiskAssessor) Evaluate(log *entity.SafetyLog) Assessment {
	f := a.scorer.Score(log)
	score := f.Total()
	level := a.cfg.Level(score, f.Reasons)
	return Assessment{
		Score:            score,
		RiskLevel:        level,
		RiskReasons:      f.Reasons,
		Factors:          f.Points,
		NextPollInterval: a.cfg.PollInterval(level),
	}
}

// Assess evaluates the log and upserts the single assessment row bound to it.
// Pass a transaction-bound repository to make the write part of the caller's transaction.
func (a *RiskAssessor) Assess(ctx context.Context, repo repository.RiskAssessmentRepository, log *entity.SafetyLog) (*Assessment, error) {
	res := a.Evaluate(log)

	rec, err := repo.FindOrInit(ctx, log.Id)
	if err != nil {
		return nil, err
	}
	rec.Score = res.Score
	rec.Level = res.RiskLevel
	rec.Details = datatypes.NewJSONType(entity.AssessmentDetails{
		Reasons: res.RiskReasons,
		Factors: res.Factors,
	})
	if err := repo.Save(ctx, rec); err != nil {
		return nil, err
	}

	res.Record = rec
	return &res, nil
}
