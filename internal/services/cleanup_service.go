package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"incubapp/internal/models"
	"incubapp/internal/monitoring"
	"incubapp/internal/repositories"
	"incubapp/internal/schema"
)

// ErrUnknownCleanupTable is returned when a rule targets a table outside the
// known set. Rules carry admin-authored SQL conditions, so the table name is
// the part that must never be interpolated unchecked.
var ErrUnknownCleanupTable = errors.New("cleanup rule targets an unknown table")

type CleanupService interface {
	CreateRule(ctx context.Context, rule *models.CleanupRule) error
	UpdateRule(ctx context.Context, rule *models.CleanupRule) error
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ListRules(ctx context.Context, onlyActive bool) ([]*models.CleanupRule, error)
	RunRule(ctx context.Context, id uuid.UUID) (*models.CleanupLog, error)
	RunActiveRules(ctx context.Context) ([]*models.CleanupLog, error)
}

type cleanupService struct {
	repo repositories.CleanupRepository
	db   repositories.Database
}

func NewCleanupService(repo repositories.CleanupRepository, db repositories.Database) CleanupService {
	return &cleanupService{repo: repo, db: db}
}

func validateRule(rule *models.CleanupRule) error {
	if !schema.ValidTableName(rule.TableName) {
		return ErrUnknownCleanupTable
	}
	allowed := map[string]bool{"archives": true, "cleanup_logs": true}
	for _, t := range schema.Tables() {
		allowed[t] = true
	}
	if !allowed[rule.TableName] {
		return ErrUnknownCleanupTable
	}
	if rule.Condition == "" {
		return errors.New("cleanup rule condition is required")
	}
	return nil
}

func (s *cleanupService) CreateRule(ctx context.Context, rule *models.CleanupRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	return s.repo.CreateRule(ctx, rule)
}

func (s *cleanupService) UpdateRule(ctx context.Context, rule *models.CleanupRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.repo.UpdateRule(ctx, rule)
}

func (s *cleanupService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRule(ctx, id)
}

func (s *cleanupService) ListRules(ctx context.Context, onlyActive bool) ([]*models.CleanupRule, error) {
	return s.repo.ListRules(ctx, onlyActive)
}

// RunRule executes one rule and records the outcome. Failures are logged as
// cleanup_logs rows with success=false; the error is returned as well.
func (s *cleanupService) RunRule(ctx context.Context, id uuid.UUID) (*models.CleanupLog, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, rule)
}

func (s *cleanupService) execute(ctx context.Context, rule *models.CleanupRule) (*models.CleanupLog, error) {
	entry := &models.CleanupLog{
		ID:     uuid.New(),
		RuleID: rule.ID,
	}

	if err := validateRule(rule); err != nil {
		msg := err.Error()
		entry.Error = &msg
		if logErr := s.repo.CreateLog(ctx, entry); logErr != nil {
			log.Error().Err(logErr).Str("rule", rule.ID.String()).Msg("Failed to write cleanup log")
		}
		return entry, err
	}

	start := time.Now()
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s", pgx.Identifier{rule.TableName}.Sanitize(), rule.Condition)
	tag, err := s.db.Exec(ctx, stmt)
	entry.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		msg := err.Error()
		entry.Error = &msg
		log.Error().Err(err).Str("table", rule.TableName).Msg("Cleanup rule execution failed")
	} else {
		entry.RowsDeleted = tag.RowsAffected()
		entry.Success = true
		monitoring.CleanupRowsDeleted.WithLabelValues(rule.TableName).Add(float64(entry.RowsDeleted))
	}

	if logErr := s.repo.CreateLog(ctx, entry); logErr != nil {
		log.Error().Err(logErr).Str("rule", rule.ID.String()).Msg("Failed to write cleanup log")
	}
	return entry, err
}

// RunActiveRules executes every active rule. One failing rule does not stop
// the others.
func (s *cleanupService) RunActiveRules(ctx context.Context) ([]*models.CleanupLog, error) {
	rules, err := s.repo.ListRules(ctx, true)
	if err != nil {
		return nil, err
	}

	var logs []*models.CleanupLog
	for _, rule := range rules {
		entry, err := s.execute(ctx, rule)
		if err != nil {
			log.Warn().Err(err).Str("rule", rule.ID.String()).Msg("Cleanup rule skipped after failure")
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
