package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/subscription"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	"github.com/liyaqa/membership/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

type subscriptionRow struct {
	ID       string `db:"id"`
	MemberID string `db:"member_id"`
	PlanID   string `db:"plan_id"`

	Status types.SubscriptionStatus `db:"status"`

	StartDate          time.Time  `db:"start_date"`
	CurrentPeriodStart time.Time  `db:"current_period_start"`
	CurrentPeriodEnd   time.Time  `db:"current_period_end"`
	EndDate            *time.Time `db:"end_date"`

	RecurringAmount decimal.Decimal `db:"recurring_amount"`
	Currency        string          `db:"currency"`

	FrozenAt    *time.Time        `db:"frozen_at"`
	FrozenUntil *time.Time        `db:"frozen_until"`
	FreezeType  *types.FreezeType `db:"freeze_type"`

	CancellationRequestedAt   *time.Time `db:"cancellation_requested_at"`
	CancellationEffectiveDate *time.Time `db:"cancellation_effective_date"`
	CancelledAt               *time.Time `db:"cancelled_at"`
	ReactivationDeadline      *time.Time `db:"reactivation_deadline"`

	ScheduledPlanChangeID *string `db:"scheduled_plan_change_id"`

	ClassesUsed     int  `db:"classes_used"`
	GuestPassesUsed int  `db:"guest_passes_used"`
	AutoRenew       bool `db:"auto_renew"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toSubscriptionRow(s *subscription.Subscription) subscriptionRow {
	return subscriptionRow{
		ID:                        s.ID,
		MemberID:                  s.MemberID,
		PlanID:                    s.PlanID,
		Status:                    s.Status,
		StartDate:                 s.StartDate,
		CurrentPeriodStart:        s.CurrentPeriodStart,
		CurrentPeriodEnd:          s.CurrentPeriodEnd,
		EndDate:                   s.EndDate,
		RecurringAmount:           s.RecurringAmount,
		Currency:                  s.Currency,
		FrozenAt:                  s.FrozenAt,
		FrozenUntil:               s.FrozenUntil,
		FreezeType:                s.FreezeType,
		CancellationRequestedAt:   s.CancellationRequestedAt,
		CancellationEffectiveDate: s.CancellationEffectiveDate,
		CancelledAt:               s.CancelledAt,
		ReactivationDeadline:      s.ReactivationDeadline,
		ScheduledPlanChangeID:     s.ScheduledPlanChangeID,
		ClassesUsed:               s.ClassesUsed,
		GuestPassesUsed:           s.GuestPassesUsed,
		AutoRenew:                 s.AutoRenew,
		TenantID:                  s.TenantID,
		RowStatus:                 s.BaseModel.Status,
		CreatedAt:                 s.CreatedAt,
		UpdatedAt:                 s.UpdatedAt,
		CreatedBy:                 s.CreatedBy,
		UpdatedBy:                 s.UpdatedBy,
	}
}

func (r subscriptionRow) toDomain() *subscription.Subscription {
	return &subscription.Subscription{
		ID:                        r.ID,
		MemberID:                  r.MemberID,
		PlanID:                    r.PlanID,
		Status:                    r.Status,
		StartDate:                 r.StartDate,
		CurrentPeriodStart:        r.CurrentPeriodStart,
		CurrentPeriodEnd:          r.CurrentPeriodEnd,
		EndDate:                   r.EndDate,
		RecurringAmount:           r.RecurringAmount,
		Currency:                  r.Currency,
		FrozenAt:                  r.FrozenAt,
		FrozenUntil:               r.FrozenUntil,
		FreezeType:                r.FreezeType,
		CancellationRequestedAt:   r.CancellationRequestedAt,
		CancellationEffectiveDate: r.CancellationEffectiveDate,
		CancelledAt:               r.CancelledAt,
		ReactivationDeadline:      r.ReactivationDeadline,
		ScheduledPlanChangeID:     r.ScheduledPlanChangeID,
		ClassesUsed:               r.ClassesUsed,
		GuestPassesUsed:           r.GuestPassesUsed,
		AutoRenew:                 r.AutoRenew,
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

const subscriptionColumns = `id, member_id, plan_id, status,
	start_date, current_period_start, current_period_end, end_date,
	recurring_amount, currency, frozen_at, frozen_until, freeze_type,
	cancellation_requested_at, cancellation_effective_date, cancelled_at,
	reactivation_deadline, scheduled_plan_change_id,
	classes_used, guest_passes_used, auto_renew,
	tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *subscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `INSERT INTO subscriptions (` + subscriptionColumns + `) VALUES (
		:id, :member_id, :plan_id, :status,
		:start_date, :current_period_start, :current_period_end, :end_date,
		:recurring_amount, :currency, :frozen_at, :frozen_until, :freeze_type,
		:cancellation_requested_at, :cancellation_effective_date, :cancelled_at,
		:reactivation_deadline, :scheduled_plan_change_id,
		:classes_used, :guest_passes_used, :auto_renew,
		:tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toSubscriptionRow(s))
	return translateErr(err, "subscription", map[string]any{"subscription_id": s.ID})
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	var row subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "subscription", map[string]any{"subscription_id": id})
	}
	return row.toDomain(), nil
}

func (r *subscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	s.Touch(ctx)
	query := `UPDATE subscriptions SET
		plan_id = :plan_id, status = :status,
		current_period_start = :current_period_start, current_period_end = :current_period_end,
		end_date = :end_date, recurring_amount = :recurring_amount,
		frozen_at = :frozen_at, frozen_until = :frozen_until, freeze_type = :freeze_type,
		cancellation_requested_at = :cancellation_requested_at,
		cancellation_effective_date = :cancellation_effective_date,
		cancelled_at = :cancelled_at, reactivation_deadline = :reactivation_deadline,
		scheduled_plan_change_id = :scheduled_plan_change_id,
		classes_used = :classes_used, guest_passes_used = :guest_passes_used,
		auto_renew = :auto_renew, updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, toSubscriptionRow(s))
	return translateErr(err, "subscription", map[string]any{"subscription_id": s.ID})
}

func (r *subscriptionRepository) ListByMemberID(ctx context.Context, memberID string) ([]*subscription.Subscription, error) {
	var rows []subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
	WHERE member_id = $1 AND tenant_id = $2
	ORDER BY created_at DESC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, memberID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "subscriptions", map[string]any{"member_id": memberID})
	}
	return subscriptionsFromRows(rows), nil
}

func (r *subscriptionRepository) ListByStatus(ctx context.Context, status types.SubscriptionStatus, limit int) ([]*subscription.Subscription, error) {
	var rows []subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
	WHERE status = $1 AND tenant_id = $2
	ORDER BY created_at ASC
	LIMIT $3`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, status, types.GetTenantID(ctx), limit)
	if err != nil {
		return nil, translateErr(err, "subscriptions", map[string]any{"status": status})
	}
	return subscriptionsFromRows(rows), nil
}

// ListFreezesExpiringBy returns frozen subscriptions whose freeze window ends
// on or before the given date.
func (r *subscriptionRepository) ListFreezesExpiringBy(ctx context.Context, date time.Time, limit int) ([]*subscription.Subscription, error) {
	var rows []subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
	WHERE status = $1 AND frozen_until IS NOT NULL AND frozen_until <= $2 AND tenant_id = $3
	ORDER BY frozen_until ASC
	LIMIT $4`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query,
		types.SubscriptionStatusFrozen, date, types.GetTenantID(ctx), limit)
	if err != nil {
		return nil, translateErr(err, "subscriptions", nil)
	}
	return subscriptionsFromRows(rows), nil
}

func subscriptionsFromRows(rows []subscriptionRow) []*subscription.Subscription {
	subs := make([]*subscription.Subscription, len(rows))
	for i, row := range rows {
		subs[i] = row.toDomain()
	}
	return subs
}
