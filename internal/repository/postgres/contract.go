package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/contract"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	"github.com/liyaqa/membership/internal/types"
)

type contractRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewContractRepository(db *postgres.DB, logger *logger.Logger) contract.Repository {
	return &contractRepository{db: db, logger: logger}
}

type contractRow struct {
	ID             string `db:"id"`
	ContractNumber string `db:"contract_number"`
	MemberID       string `db:"member_id"`
	SubscriptionID string `db:"subscription_id"`
	PlanID         string `db:"plan_id"`

	ContractType types.ContractType   `db:"contract_type"`
	ContractTerm types.ContractTerm   `db:"contract_term"`
	Status       types.ContractStatus `db:"status"`

	StartDate time.Time  `db:"start_date"`
	EndDate   *time.Time `db:"end_date"`

	SignedAt   *time.Time `db:"signed_at"`
	ApprovedAt *time.Time `db:"approved_at"`
	ApprovedBy *string    `db:"approved_by"`

	CoolingOffEndDate time.Time  `db:"cooling_off_end_date"`
	CommitmentMonths  int        `db:"commitment_months"`
	CommitmentEndDate *time.Time `db:"commitment_end_date"`
	NoticePeriodDays  int        `db:"notice_period_days"`

	MembershipFeeAmount  decimal.Decimal `db:"membership_fee_amount"`
	MembershipFeeTaxRate decimal.Decimal `db:"membership_fee_tax_rate"`
	AdminFeeAmount       decimal.Decimal `db:"admin_fee_amount"`
	AdminFeeTaxRate      decimal.Decimal `db:"admin_fee_tax_rate"`
	JoinFeeAmount        decimal.Decimal `db:"join_fee_amount"`
	JoinFeeTaxRate       decimal.Decimal `db:"join_fee_tax_rate"`
	Currency             string          `db:"currency"`

	TerminationFeeType    types.TerminationFeeType `db:"termination_fee_type"`
	TerminationFeeAmount  decimal.Decimal          `db:"termination_fee_amount"`
	TerminationFeePercent decimal.Decimal          `db:"termination_fee_percent"`

	CancellationRequestedAt   *time.Time                      `db:"cancellation_requested_at"`
	CancellationEffectiveDate *time.Time                      `db:"cancellation_effective_date"`
	CancelledAt               *time.Time                      `db:"cancelled_at"`
	CancellationType          *types.ContractCancellationType `db:"cancellation_type"`
	CancellationReason        *string                         `db:"cancellation_reason"`

	AutoRenew bool `db:"auto_renew"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toContractRow(c *contract.MembershipContract) contractRow {
	return contractRow{
		ID:                        c.ID,
		ContractNumber:            c.ContractNumber,
		MemberID:                  c.MemberID,
		SubscriptionID:            c.SubscriptionID,
		PlanID:                    c.PlanID,
		ContractType:              c.ContractType,
		ContractTerm:              c.ContractTerm,
		Status:                    c.Status,
		StartDate:                 c.StartDate,
		EndDate:                   c.EndDate,
		SignedAt:                  c.SignedAt,
		ApprovedAt:                c.ApprovedAt,
		ApprovedBy:                c.ApprovedBy,
		CoolingOffEndDate:         c.CoolingOffEndDate,
		CommitmentMonths:          c.CommitmentMonths,
		CommitmentEndDate:         c.CommitmentEndDate,
		NoticePeriodDays:          c.NoticePeriodDays,
		MembershipFeeAmount:       c.LockedMembershipFee.Amount,
		MembershipFeeTaxRate:      c.LockedMembershipFee.TaxRate,
		AdminFeeAmount:            c.LockedAdminFee.Amount,
		AdminFeeTaxRate:           c.LockedAdminFee.TaxRate,
		JoinFeeAmount:             c.LockedJoinFee.Amount,
		JoinFeeTaxRate:            c.LockedJoinFee.TaxRate,
		Currency:                  c.Currency,
		TerminationFeeType:        c.TerminationFeeType,
		TerminationFeeAmount:      c.TerminationFeeAmount,
		TerminationFeePercent:     c.TerminationFeePercent,
		CancellationRequestedAt:   c.CancellationRequestedAt,
		CancellationEffectiveDate: c.CancellationEffectiveDate,
		CancelledAt:               c.CancelledAt,
		CancellationType:          c.CancellationType,
		CancellationReason:        c.CancellationReason,
		AutoRenew:                 c.AutoRenew,
		TenantID:                  c.TenantID,
		RowStatus:                 c.BaseModel.Status,
		CreatedAt:                 c.CreatedAt,
		UpdatedAt:                 c.UpdatedAt,
		CreatedBy:                 c.CreatedBy,
		UpdatedBy:                 c.UpdatedBy,
	}
}

func (r contractRow) toDomain() *contract.MembershipContract {
	return &contract.MembershipContract{
		ID:                        r.ID,
		ContractNumber:            r.ContractNumber,
		MemberID:                  r.MemberID,
		SubscriptionID:            r.SubscriptionID,
		PlanID:                    r.PlanID,
		ContractType:              r.ContractType,
		ContractTerm:              r.ContractTerm,
		Status:                    r.Status,
		StartDate:                 r.StartDate,
		EndDate:                   r.EndDate,
		SignedAt:                  r.SignedAt,
		ApprovedAt:                r.ApprovedAt,
		ApprovedBy:                r.ApprovedBy,
		CoolingOffEndDate:         r.CoolingOffEndDate,
		CommitmentMonths:          r.CommitmentMonths,
		CommitmentEndDate:         r.CommitmentEndDate,
		NoticePeriodDays:          r.NoticePeriodDays,
		LockedMembershipFee:       types.TaxableFee{Amount: r.MembershipFeeAmount, Currency: r.Currency, TaxRate: r.MembershipFeeTaxRate},
		LockedAdminFee:            types.TaxableFee{Amount: r.AdminFeeAmount, Currency: r.Currency, TaxRate: r.AdminFeeTaxRate},
		LockedJoinFee:             types.TaxableFee{Amount: r.JoinFeeAmount, Currency: r.Currency, TaxRate: r.JoinFeeTaxRate},
		Currency:                  r.Currency,
		TerminationFeeType:        r.TerminationFeeType,
		TerminationFeeAmount:      r.TerminationFeeAmount,
		TerminationFeePercent:     r.TerminationFeePercent,
		CancellationRequestedAt:   r.CancellationRequestedAt,
		CancellationEffectiveDate: r.CancellationEffectiveDate,
		CancelledAt:               r.CancelledAt,
		CancellationType:          r.CancellationType,
		CancellationReason:        r.CancellationReason,
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

const contractColumns = `id, contract_number, member_id, subscription_id, plan_id,
	contract_type, contract_term, status, start_date, end_date,
	signed_at, approved_at, approved_by,
	cooling_off_end_date, commitment_months, commitment_end_date, notice_period_days,
	membership_fee_amount, membership_fee_tax_rate,
	admin_fee_amount, admin_fee_tax_rate,
	join_fee_amount, join_fee_tax_rate, currency,
	termination_fee_type, termination_fee_amount, termination_fee_percent,
	cancellation_requested_at, cancellation_effective_date, cancelled_at,
	cancellation_type, cancellation_reason, auto_renew,
	tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *contractRepository) Create(ctx context.Context, c *contract.MembershipContract) error {
	query := `INSERT INTO membership_contracts (` + contractColumns + `) VALUES (
		:id, :contract_number, :member_id, :subscription_id, :plan_id,
		:contract_type, :contract_term, :status, :start_date, :end_date,
		:signed_at, :approved_at, :approved_by,
		:cooling_off_end_date, :commitment_months, :commitment_end_date, :notice_period_days,
		:membership_fee_amount, :membership_fee_tax_rate,
		:admin_fee_amount, :admin_fee_tax_rate,
		:join_fee_amount, :join_fee_tax_rate, :currency,
		:termination_fee_type, :termination_fee_amount, :termination_fee_percent,
		:cancellation_requested_at, :cancellation_effective_date, :cancelled_at,
		:cancellation_type, :cancellation_reason, :auto_renew,
		:tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toContractRow(c))
	return translateErr(err, "contract", map[string]any{"contract_id": c.ID})
}

func (r *contractRepository) Get(ctx context.Context, id string) (*contract.MembershipContract, error) {
	var row contractRow
	query := `SELECT ` + contractColumns + ` FROM membership_contracts WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "contract", map[string]any{"contract_id": id})
	}
	return row.toDomain(), nil
}

func (r *contractRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*contract.MembershipContract, error) {
	var row contractRow
	query := `SELECT ` + contractColumns + ` FROM membership_contracts
	WHERE subscription_id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, subscriptionID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "contract", map[string]any{"subscription_id": subscriptionID})
	}
	return row.toDomain(), nil
}

func (r *contractRepository) GetByNumber(ctx context.Context, contractNumber string) (*contract.MembershipContract, error) {
	var row contractRow
	query := `SELECT ` + contractColumns + ` FROM membership_contracts
	WHERE contract_number = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, contractNumber, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "contract", map[string]any{"contract_number": contractNumber})
	}
	return row.toDomain(), nil
}

func (r *contractRepository) Update(ctx context.Context, c *contract.MembershipContract) error {
	c.Touch(ctx)
	query := `UPDATE membership_contracts SET
		status = :status, end_date = :end_date,
		signed_at = :signed_at, approved_at = :approved_at, approved_by = :approved_by,
		cancellation_requested_at = :cancellation_requested_at,
		cancellation_effective_date = :cancellation_effective_date,
		cancelled_at = :cancelled_at, cancellation_type = :cancellation_type,
		cancellation_reason = :cancellation_reason, auto_renew = :auto_renew,
		updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, toContractRow(c))
	return translateErr(err, "contract", map[string]any{"contract_id": c.ID})
}

func (r *contractRepository) ListByMemberID(ctx context.Context, memberID string) ([]*contract.MembershipContract, error) {
	var rows []contractRow
	query := `SELECT ` + contractColumns + ` FROM membership_contracts
	WHERE member_id = $1 AND tenant_id = $2
	ORDER BY created_at DESC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, memberID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "contracts", map[string]any{"member_id": memberID})
	}

	contracts := make([]*contract.MembershipContract, len(rows))
	for i, row := range rows {
		contracts[i] = row.toDomain()
	}
	return contracts, nil
}

func (r *contractRepository) ListByStatus(ctx context.Context, status types.ContractStatus, limit int) ([]*contract.MembershipContract, error) {
	var rows []contractRow
	query := `SELECT ` + contractColumns + ` FROM membership_contracts
	WHERE status = $1 AND tenant_id = $2
	ORDER BY created_at ASC
	LIMIT $3`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, status, types.GetTenantID(ctx), limit)
	if err != nil {
		return nil, translateErr(err, "contracts", map[string]any{"status": status})
	}

	contracts := make([]*contract.MembershipContract, len(rows))
	for i, row := range rows {
		contracts[i] = row.toDomain()
	}
	return contracts, nil
}

// NextContractSequence advances the per-tenant yearly sequence inside the
// caller's transaction, so two concurrent contract creations never share a
// number.
func (r *contractRepository) NextContractSequence(ctx context.Context, tenantID string, year int) (int64, error) {
	var seq int64
	query := `INSERT INTO contract_sequences (tenant_id, year, value)
	VALUES ($1, $2, 1)
	ON CONFLICT (tenant_id, year) DO UPDATE SET value = contract_sequences.value + 1
	RETURNING value`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &seq, query, tenantID, year)
	if err != nil {
		return 0, translateErr(err, "contract sequence", map[string]any{"tenant_id": tenantID, "year": year})
	}
	return seq, nil
}
