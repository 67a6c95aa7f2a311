package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/plan"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	"github.com/liyaqa/membership/internal/types"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

type planRow struct {
	ID                   string          `db:"id"`
	NameEn               string          `db:"name_en"`
	NameAr               string          `db:"name_ar"`
	MembershipFeeAmount  decimal.Decimal `db:"membership_fee_amount"`
	MembershipFeeTaxRate decimal.Decimal `db:"membership_fee_tax_rate"`
	AdminFeeAmount       decimal.Decimal `db:"admin_fee_amount"`
	AdminFeeTaxRate      decimal.Decimal `db:"admin_fee_tax_rate"`
	JoinFeeAmount        decimal.Decimal `db:"join_fee_amount"`
	JoinFeeTaxRate       decimal.Decimal `db:"join_fee_tax_rate"`
	Currency             string          `db:"currency"`
	DurationMonths       int             `db:"duration_months"`
	FreezeDaysAllowed    int             `db:"freeze_days_allowed"`
	ClassesAllowed       *int            `db:"classes_allowed"`
	GuestPassesAllowed   int             `db:"guest_passes_allowed"`
	TenantID             string          `db:"tenant_id"`
	Status               types.Status    `db:"status"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
	CreatedBy            string          `db:"created_by"`
	UpdatedBy            string          `db:"updated_by"`
}

func toPlanRow(p *plan.MembershipPlan) planRow {
	return planRow{
		ID:                   p.ID,
		NameEn:               p.Name.En,
		NameAr:               p.Name.Ar,
		MembershipFeeAmount:  p.MembershipFee.Amount,
		MembershipFeeTaxRate: p.MembershipFee.TaxRate,
		AdminFeeAmount:       p.AdminFee.Amount,
		AdminFeeTaxRate:      p.AdminFee.TaxRate,
		JoinFeeAmount:        p.JoinFee.Amount,
		JoinFeeTaxRate:       p.JoinFee.TaxRate,
		Currency:             p.MembershipFee.Currency,
		DurationMonths:       p.DurationMonths,
		FreezeDaysAllowed:    p.FreezeDaysAllowed,
		ClassesAllowed:       p.ClassesAllowed,
		GuestPassesAllowed:   p.GuestPassesAllowed,
		TenantID:             p.TenantID,
		Status:               p.Status,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		CreatedBy:            p.CreatedBy,
		UpdatedBy:            p.UpdatedBy,
	}
}

func (r planRow) toDomain() *plan.MembershipPlan {
	return &plan.MembershipPlan{
		ID:                 r.ID,
		Name:               types.LocalizedText{En: r.NameEn, Ar: r.NameAr},
		MembershipFee:      types.TaxableFee{Amount: r.MembershipFeeAmount, Currency: r.Currency, TaxRate: r.MembershipFeeTaxRate},
		AdminFee:           types.TaxableFee{Amount: r.AdminFeeAmount, Currency: r.Currency, TaxRate: r.AdminFeeTaxRate},
		JoinFee:            types.TaxableFee{Amount: r.JoinFeeAmount, Currency: r.Currency, TaxRate: r.JoinFeeTaxRate},
		DurationMonths:     r.DurationMonths,
		FreezeDaysAllowed:  r.FreezeDaysAllowed,
		ClassesAllowed:     r.ClassesAllowed,
		GuestPassesAllowed: r.GuestPassesAllowed,
		BaseModel: types.BaseModel{
			TenantID:  r.TenantID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

const planColumns = `id, name_en, name_ar,
	membership_fee_amount, membership_fee_tax_rate,
	admin_fee_amount, admin_fee_tax_rate,
	join_fee_amount, join_fee_tax_rate,
	currency, duration_months, freeze_days_allowed, classes_allowed,
	guest_passes_allowed, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *planRepository) Create(ctx context.Context, p *plan.MembershipPlan) error {
	query := `INSERT INTO membership_plans (` + planColumns + `) VALUES (
		:id, :name_en, :name_ar,
		:membership_fee_amount, :membership_fee_tax_rate,
		:admin_fee_amount, :admin_fee_tax_rate,
		:join_fee_amount, :join_fee_tax_rate,
		:currency, :duration_months, :freeze_days_allowed, :classes_allowed,
		:guest_passes_allowed, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toPlanRow(p))
	return translateErr(err, "plan", map[string]any{"plan_id": p.ID})
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.MembershipPlan, error) {
	var row planRow
	query := `SELECT ` + planColumns + ` FROM membership_plans WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "plan", map[string]any{"plan_id": id})
	}
	return row.toDomain(), nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.MembershipPlan) error {
	p.Touch(ctx)
	query := `UPDATE membership_plans SET
		name_en = :name_en, name_ar = :name_ar,
		membership_fee_amount = :membership_fee_amount, membership_fee_tax_rate = :membership_fee_tax_rate,
		admin_fee_amount = :admin_fee_amount, admin_fee_tax_rate = :admin_fee_tax_rate,
		join_fee_amount = :join_fee_amount, join_fee_tax_rate = :join_fee_tax_rate,
		currency = :currency, duration_months = :duration_months,
		freeze_days_allowed = :freeze_days_allowed, classes_allowed = :classes_allowed,
		guest_passes_allowed = :guest_passes_allowed, status = :status,
		updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, toPlanRow(p))
	return translateErr(err, "plan", map[string]any{"plan_id": p.ID})
}

func (r *planRepository) List(ctx context.Context) ([]*plan.MembershipPlan, error) {
	var rows []planRow
	query := `SELECT ` + planColumns + ` FROM membership_plans
	WHERE tenant_id = $1 AND status != $2
	ORDER BY membership_fee_amount ASC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, translateErr(err, "plans", nil)
	}

	plans := make([]*plan.MembershipPlan, len(rows))
	for i, row := range rows {
		plans[i] = row.toDomain()
	}
	return plans, nil
}

// ListCheaperThan returns active plans whose recurring gross total is strictly
// below the reference plan's, most expensive first. The comparison happens on
// computed gross amounts, so it is done in Go rather than SQL.
func (r *planRepository) ListCheaperThan(ctx context.Context, planID string) ([]*plan.MembershipPlan, error) {
	reference, err := r.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var cheaper []*plan.MembershipPlan
	for _, p := range all {
		if p.Status != types.StatusActive || p.ID == reference.ID {
			continue
		}
		if p.RecurringTotal().LessThan(reference.RecurringTotal()) {
			cheaper = append(cheaper, p)
		}
	}
	sort.Slice(cheaper, func(i, j int) bool {
		return cheaper[i].RecurringTotal().GreaterThan(cheaper[j].RecurringTotal())
	})
	return cheaper, nil
}
