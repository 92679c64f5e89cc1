package repositories

import (
	"context"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

type CleanupRepository interface {
	CreateRule(ctx context.Context, rule *models.CleanupRule) error
	GetRule(ctx context.Context, id uuid.UUID) (*models.CleanupRule, error)
	UpdateRule(ctx context.Context, rule *models.CleanupRule) error
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ListRules(ctx context.Context, onlyActive bool) ([]*models.CleanupRule, error)
	CreateLog(ctx context.Context, entry *models.CleanupLog) error
	ListLogs(ctx context.Context, ruleID uuid.UUID, limit int) ([]*models.CleanupLog, error)
}

type cleanupRepo struct {
	db Database
}

func NewCleanupRepo(db Database) CleanupRepository {
	return &cleanupRepo{db: db}
}

func (r *cleanupRepo) CreateRule(ctx context.Context, rule *models.CleanupRule) error {
	query := `
		INSERT INTO cleanup_rules (id, table_name, condition, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, rule.ID, rule.TableName, rule.Condition, rule.Active)
	return err
}

func (r *cleanupRepo) GetRule(ctx context.Context, id uuid.UUID) (*models.CleanupRule, error) {
	rule := &models.CleanupRule{}
	query := `
		SELECT id, table_name, condition, active, created_at, updated_at
		FROM cleanup_rules
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&rule.ID, &rule.TableName, &rule.Condition, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *cleanupRepo) UpdateRule(ctx context.Context, rule *models.CleanupRule) error {
	query := `
		UPDATE cleanup_rules
		SET table_name = $1, condition = $2, active = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, rule.TableName, rule.Condition, rule.Active, rule.ID)
	return err
}

func (r *cleanupRepo) DeleteRule(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cleanup_rules WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *cleanupRepo) ListRules(ctx context.Context, onlyActive bool) ([]*models.CleanupRule, error) {
	query := `
		SELECT id, table_name, condition, active, created_at, updated_at
		FROM cleanup_rules
		WHERE active = TRUE OR $1 = FALSE
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.CleanupRule
	for rows.Next() {
		rule := &models.CleanupRule{}
		if err := rows.Scan(&rule.ID, &rule.TableName, &rule.Condition, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *cleanupRepo) CreateLog(ctx context.Context, entry *models.CleanupLog) error {
	query := `
		INSERT INTO cleanup_logs (id, rule_id, rows_deleted, duration_ms, success, error, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.RuleID, entry.RowsDeleted, entry.DurationMs, entry.Success, entry.Error)
	return err
}

func (r *cleanupRepo) ListLogs(ctx context.Context, ruleID uuid.UUID, limit int) ([]*models.CleanupLog, error) {
	query := `
		SELECT id, rule_id, rows_deleted, duration_ms, success, error, executed_at
		FROM cleanup_logs
		WHERE rule_id = $1
		ORDER BY executed_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, ruleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.CleanupLog
	for rows.Next() {
		entry := &models.CleanupLog{}
		if err := rows.Scan(&entry.ID, &entry.RuleID, &entry.RowsDeleted, &entry.DurationMs, &entry.Success, &entry.Error, &entry.ExecutedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
