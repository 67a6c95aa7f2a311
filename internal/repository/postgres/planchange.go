package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/planchange"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	"github.com/liyaqa/membership/internal/types"
)

type scheduledPlanChangeRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewScheduledPlanChangeRepository(db *postgres.DB, logger *logger.Logger) planchange.Repository {
	return &scheduledPlanChangeRepository{db: db, logger: logger}
}

type scheduledPlanChangeRow struct {
	ID             string `db:"id"`
	SubscriptionID string `db:"subscription_id"`
	MemberID       string `db:"member_id"`

	FromPlanID string `db:"from_plan_id"`
	ToPlanID   string `db:"to_plan_id"`

	ChangeType    types.PlanChangeType        `db:"change_type"`
	ProrationMode types.ProrationMode         `db:"proration_mode"`
	Status        types.ScheduledChangeStatus `db:"status"`

	EffectiveDate time.Time  `db:"effective_date"`
	ProcessedAt   *time.Time `db:"processed_at"`

	PlanChangeHistoryID *string `db:"plan_change_history_id"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toScheduledPlanChangeRow(c *planchange.ScheduledPlanChange) scheduledPlanChangeRow {
	return scheduledPlanChangeRow{
		ID:             c.ID,
		SubscriptionID: c.SubscriptionID,
		MemberID:       c.MemberID,
		FromPlanID:     c.FromPlanID,
		ToPlanID:       c.ToPlanID,
		ChangeType:     c.ChangeType,
		ProrationMode:  c.ProrationMode,
		Status:         c.Status,
		EffectiveDate:  c.EffectiveDate,
		ProcessedAt:    c.ProcessedAt,
		PlanChangeHistoryID: c.PlanChangeHistoryID,
		TenantID:       c.TenantID,
		RowStatus:      c.BaseModel.Status,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		CreatedBy:      c.CreatedBy,
		UpdatedBy:      c.UpdatedBy,
	}
}

func (r scheduledPlanChangeRow) toDomain() *planchange.ScheduledPlanChange {
	return &planchange.ScheduledPlanChange{
		ID:             r.ID,
		SubscriptionID: r.SubscriptionID,
		MemberID:       r.MemberID,
		FromPlanID:     r.FromPlanID,
		ToPlanID:       r.ToPlanID,
		ChangeType:     r.ChangeType,
		ProrationMode:  r.ProrationMode,
		Status:         r.Status,
		EffectiveDate:  r.EffectiveDate,
		ProcessedAt:    r.ProcessedAt,
		PlanChangeHistoryID: r.PlanChangeHistoryID,
		BaseModel: types.BaseModel{
			TenantID:  r.TenantID,
			Status:    r.RowStatus,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

const scheduledPlanChangeColumns = `id, subscription_id, member_id, from_plan_id, to_plan_id,
	change_type, proration_mode, status, effective_date, processed_at, plan_change_history_id,
	tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *scheduledPlanChangeRepository) Create(ctx context.Context, change *planchange.ScheduledPlanChange) error {
	query := `INSERT INTO scheduled_plan_changes (` + scheduledPlanChangeColumns + `) VALUES (
		:id, :subscription_id, :member_id, :from_plan_id, :to_plan_id,
		:change_type, :proration_mode, :status, :effective_date, :processed_at, :plan_change_history_id,
		:tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toScheduledPlanChangeRow(change))
	return translateErr(err, "scheduled plan change", map[string]any{
		"change_id":       change.ID,
		"subscription_id": change.SubscriptionID,
	})
}

func (r *scheduledPlanChangeRepository) Get(ctx context.Context, id string) (*planchange.ScheduledPlanChange, error) {
	var row scheduledPlanChangeRow
	query := `SELECT ` + scheduledPlanChangeColumns + ` FROM scheduled_plan_changes
	WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "scheduled plan change", map[string]any{"change_id": id})
	}
	return row.toDomain(), nil
}

func (r *scheduledPlanChangeRepository) Update(ctx context.Context, change *planchange.ScheduledPlanChange) error {
	change.Touch(ctx)
	query := `UPDATE scheduled_plan_changes SET
		status = :status, effective_date = :effective_date, processed_at = :processed_at,
		plan_change_history_id = :plan_change_history_id,
		updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, toScheduledPlanChangeRow(change))
	return translateErr(err, "scheduled plan change", map[string]any{"change_id": change.ID})
}

func (r *scheduledPlanChangeRepository) ListDueForProcessing(ctx context.Context, date time.Time, limit int) ([]*planchange.ScheduledPlanChange, error) {
	var rows []scheduledPlanChangeRow
	query := `SELECT ` + scheduledPlanChangeColumns + ` FROM scheduled_plan_changes
	WHERE status = $1 AND effective_date <= $2 AND tenant_id = $3
	ORDER BY effective_date ASC
	LIMIT $4`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query,
		types.ScheduledChangeStatusPending, date, types.GetTenantID(ctx), limit)
	if err != nil {
		return nil, translateErr(err, "scheduled plan changes", nil)
	}

	changes := make([]*planchange.ScheduledPlanChange, len(rows))
	for i, row := range rows {
		changes[i] = row.toDomain()
	}
	return changes, nil
}

type planChangeHistoryRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanChangeHistoryRepository(db *postgres.DB, logger *logger.Logger) planchange.HistoryRepository {
	return &planChangeHistoryRepository{db: db, logger: logger}
}

type planChangeHistoryRow struct {
	ID             string `db:"id"`
	SubscriptionID string `db:"subscription_id"`
	MemberID       string `db:"member_id"`

	FromPlanID string `db:"from_plan_id"`
	ToPlanID   string `db:"to_plan_id"`

	ChangeType    types.PlanChangeType `db:"change_type"`
	ProrationMode types.ProrationMode  `db:"proration_mode"`

	CreditAmount decimal.Decimal `db:"credit_amount"`
	ChargeAmount decimal.Decimal `db:"charge_amount"`
	NetAmount    decimal.Decimal `db:"net_amount"`
	Currency     string          `db:"currency"`

	EffectiveDate time.Time `db:"effective_date"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toPlanChangeHistoryRow(h *planchange.PlanChangeHistory) planChangeHistoryRow {
	return planChangeHistoryRow{
		ID:             h.ID,
		SubscriptionID: h.SubscriptionID,
		MemberID:       h.MemberID,
		FromPlanID:     h.FromPlanID,
		ToPlanID:       h.ToPlanID,
		ChangeType:     h.ChangeType,
		ProrationMode:  h.ProrationMode,
		CreditAmount:   h.CreditAmount,
		ChargeAmount:   h.ChargeAmount,
		NetAmount:      h.NetAmount,
		Currency:       h.Currency,
		EffectiveDate:  h.EffectiveDate,
		TenantID:       h.TenantID,
		RowStatus:      h.BaseModel.Status,
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
		CreatedBy:      h.CreatedBy,
		UpdatedBy:      h.UpdatedBy,
	}
}

func (r planChangeHistoryRow) toDomain() *planchange.PlanChangeHistory {
	return &planchange.PlanChangeHistory{
		ID:             r.ID,
		SubscriptionID: r.SubscriptionID,
		MemberID:       r.MemberID,
		FromPlanID:     r.FromPlanID,
		ToPlanID:       r.ToPlanID,
		ChangeType:     r.ChangeType,
		ProrationMode:  r.ProrationMode,
		CreditAmount:   r.CreditAmount,
		ChargeAmount:   r.ChargeAmount,
		NetAmount:      r.NetAmount,
		Currency:       r.Currency,
		EffectiveDate:  r.EffectiveDate,
		BaseModel: types.BaseModel{
			TenantID:  r.TenantID,
			Status:    r.RowStatus,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

const planChangeHistoryColumns = `id, subscription_id, member_id, from_plan_id, to_plan_id,
	change_type, proration_mode, credit_amount, charge_amount, net_amount, currency,
	effective_date, tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *planChangeHistoryRepository) Create(ctx context.Context, history *planchange.PlanChangeHistory) error {
	query := `INSERT INTO plan_change_history (` + planChangeHistoryColumns + `) VALUES (
		:id, :subscription_id, :member_id, :from_plan_id, :to_plan_id,
		:change_type, :proration_mode, :credit_amount, :charge_amount, :net_amount, :currency,
		:effective_date, :tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toPlanChangeHistoryRow(history))
	return translateErr(err, "plan change history", map[string]any{
		"history_id":      history.ID,
		"subscription_id": history.SubscriptionID,
	})
}

func (r *planChangeHistoryRepository) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*planchange.PlanChangeHistory, error) {
	var rows []planChangeHistoryRow
	query := `SELECT ` + planChangeHistoryColumns + ` FROM plan_change_history
	WHERE subscription_id = $1 AND tenant_id = $2
	ORDER BY created_at DESC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, subscriptionID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "plan change history", map[string]any{"subscription_id": subscriptionID})
	}

	entries := make([]*planchange.PlanChangeHistory, len(rows))
	for i, row := range rows {
		entries[i] = row.toDomain()
	}
	return entries, nil
}
