package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/freeze"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	"github.com/liyaqa/membership/internal/types"
)

type freezeBalanceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewFreezeBalanceRepository(db *postgres.DB, logger *logger.Logger) freeze.BalanceRepository {
	return &freezeBalanceRepository{db: db, logger: logger}
}

type freezeBalanceRow struct {
	ID       string `db:"id"`
	MemberID string `db:"member_id"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

type freezeBalanceEntryRow struct {
	ID        string                 `db:"id"`
	BalanceID string                 `db:"balance_id"`
	Source    types.FreezeDaysSource `db:"source"`
	Granted   int                    `db:"granted"`
	Used      int                    `db:"used"`
	GrantedAt time.Time              `db:"granted_at"`
	TenantID  string                 `db:"tenant_id"`
}

const freezeBalanceColumns = `id, member_id, tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *freezeBalanceRepository) Create(ctx context.Context, balance *freeze.MemberFreezeBalance) error {
	query := `INSERT INTO member_freeze_balances (` + freezeBalanceColumns + `) VALUES (
		:id, :member_id, :tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	row := freezeBalanceRow{
		ID:        balance.ID,
		MemberID:  balance.MemberID,
		TenantID:  balance.TenantID,
		RowStatus: balance.BaseModel.Status,
		CreatedAt: balance.CreatedAt,
		UpdatedAt: balance.UpdatedAt,
		CreatedBy: balance.CreatedBy,
		UpdatedBy: balance.UpdatedBy,
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return translateErr(err, "freeze balance", map[string]any{
			"balance_id": balance.ID,
			"member_id":  balance.MemberID,
		})
	}
	return r.upsertEntries(ctx, balance)
}

func (r *freezeBalanceRepository) GetByMemberID(ctx context.Context, memberID string) (*freeze.MemberFreezeBalance, error) {
	var row freezeBalanceRow
	query := `SELECT ` + freezeBalanceColumns + ` FROM member_freeze_balances
	WHERE member_id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, memberID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "freeze balance", map[string]any{"member_id": memberID})
	}

	var entryRows []freezeBalanceEntryRow
	entryQuery := `SELECT id, balance_id, source, granted, used, granted_at, tenant_id
	FROM freeze_balance_entries
	WHERE balance_id = $1 AND tenant_id = $2
	ORDER BY granted_at ASC`
	err = r.db.GetQuerier(ctx).SelectContext(ctx, &entryRows, entryQuery, row.ID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "freeze balance entries", map[string]any{"balance_id": row.ID})
	}

	entries := make([]freeze.BalanceEntry, len(entryRows))
	for i, e := range entryRows {
		entries[i] = freeze.BalanceEntry{
			ID:        e.ID,
			BalanceID: e.BalanceID,
			Source:    e.Source,
			Granted:   e.Granted,
			Used:      e.Used,
			GrantedAt: e.GrantedAt,
		}
	}

	return &freeze.MemberFreezeBalance{
		ID:       row.ID,
		MemberID: row.MemberID,
		Entries:  entries,
		BaseModel: types.BaseModel{
			TenantID:  row.TenantID,
			Status:    row.RowStatus,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			CreatedBy: row.CreatedBy,
			UpdatedBy: row.UpdatedBy,
		},
	}, nil
}

func (r *freezeBalanceRepository) Update(ctx context.Context, balance *freeze.MemberFreezeBalance) error {
	balance.Touch(ctx)
	query := `UPDATE member_freeze_balances SET
		updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	row := freezeBalanceRow{
		ID:        balance.ID,
		TenantID:  balance.TenantID,
		UpdatedAt: balance.UpdatedAt,
		UpdatedBy: balance.UpdatedBy,
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return translateErr(err, "freeze balance", map[string]any{"balance_id": balance.ID})
	}
	return r.upsertEntries(ctx, balance)
}

// upsertEntries writes new grants and refreshes used counts on existing ones.
func (r *freezeBalanceRepository) upsertEntries(ctx context.Context, balance *freeze.MemberFreezeBalance) error {
	query := `INSERT INTO freeze_balance_entries (id, balance_id, source, granted, used, granted_at, tenant_id)
	VALUES (:id, :balance_id, :source, :granted, :used, :granted_at, :tenant_id)
	ON CONFLICT (id) DO UPDATE SET used = EXCLUDED.used`

	for _, e := range balance.Entries {
		row := freezeBalanceEntryRow{
			ID:        e.ID,
			BalanceID: e.BalanceID,
			Source:    e.Source,
			Granted:   e.Granted,
			Used:      e.Used,
			GrantedAt: e.GrantedAt,
			TenantID:  balance.TenantID,
		}
		if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
			return translateErr(err, "freeze balance entry", map[string]any{
				"balance_id": balance.ID,
				"entry_id":   e.ID,
			})
		}
	}
	return nil
}

type freezeHistoryRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewFreezeHistoryRepository(db *postgres.DB, logger *logger.Logger) freeze.HistoryRepository {
	return &freezeHistoryRepository{db: db, logger: logger}
}

type freezeHistoryRow struct {
	ID             string `db:"id"`
	SubscriptionID string `db:"subscription_id"`
	MemberID       string `db:"member_id"`

	FreezeType  types.FreezeType `db:"freeze_type"`
	Reason      *string          `db:"reason"`
	DocumentRef *string          `db:"document_ref"`

	StartDate     time.Time `db:"start_date"`
	EndDate       time.Time `db:"end_date"`
	DaysRequested int       `db:"days_requested"`
	DaysConsumed  int       `db:"days_consumed"`

	OriginalEndDate  time.Time `db:"original_end_date"`
	NewEndDate       time.Time `db:"new_end_date"`
	ContractExtended bool      `db:"contract_extended"`

	ClosedAt *time.Time `db:"closed_at"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toFreezeHistoryRow(h *freeze.FreezeHistory) freezeHistoryRow {
	return freezeHistoryRow{
		ID:               h.ID,
		SubscriptionID:   h.SubscriptionID,
		MemberID:         h.MemberID,
		FreezeType:       h.FreezeType,
		Reason:           h.Reason,
		DocumentRef:      h.DocumentRef,
		StartDate:        h.StartDate,
		EndDate:          h.EndDate,
		DaysRequested:    h.DaysRequested,
		DaysConsumed:     h.DaysConsumed,
		OriginalEndDate:  h.OriginalEndDate,
		NewEndDate:       h.NewEndDate,
		ContractExtended: h.ContractExtended,
		ClosedAt:         h.ClosedAt,
		TenantID:         h.TenantID,
		RowStatus:        h.BaseModel.Status,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
		CreatedBy:        h.CreatedBy,
		UpdatedBy:        h.UpdatedBy,
	}
}

func (r freezeHistoryRow) toDomain() *freeze.FreezeHistory {
	return &freeze.FreezeHistory{
		ID:               r.ID,
		SubscriptionID:   r.SubscriptionID,
		MemberID:         r.MemberID,
		FreezeType:       r.FreezeType,
		Reason:           r.Reason,
		DocumentRef:      r.DocumentRef,
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		DaysRequested:    r.DaysRequested,
		DaysConsumed:     r.DaysConsumed,
		OriginalEndDate:  r.OriginalEndDate,
		NewEndDate:       r.NewEndDate,
		ContractExtended: r.ContractExtended,
		ClosedAt:         r.ClosedAt,
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

const freezeHistoryColumns = `id, subscription_id, member_id, freeze_type, reason, document_ref,
	start_date, end_date, days_requested, days_consumed,
	original_end_date, new_end_date, contract_extended, closed_at,
	tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *freezeHistoryRepository) Create(ctx context.Context, history *freeze.FreezeHistory) error {
	query := `INSERT INTO freeze_history (` + freezeHistoryColumns + `) VALUES (
		:id, :subscription_id, :member_id, :freeze_type, :reason, :document_ref,
		:start_date, :end_date, :days_requested, :days_consumed,
		:original_end_date, :new_end_date, :contract_extended, :closed_at,
		:tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toFreezeHistoryRow(history))
	return translateErr(err, "freeze record", map[string]any{
		"freeze_id":       history.ID,
		"subscription_id": history.SubscriptionID,
	})
}

func (r *freezeHistoryRepository) Get(ctx context.Context, id string) (*freeze.FreezeHistory, error) {
	var row freezeHistoryRow
	query := `SELECT ` + freezeHistoryColumns + ` FROM freeze_history
	WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "freeze record", map[string]any{"freeze_id": id})
	}
	return row.toDomain(), nil
}

func (r *freezeHistoryRepository) Update(ctx context.Context, history *freeze.FreezeHistory) error {
	history.Touch(ctx)
	query := `UPDATE freeze_history SET
		end_date = :end_date, closed_at = :closed_at,
		updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, toFreezeHistoryRow(history))
	return translateErr(err, "freeze record", map[string]any{"freeze_id": history.ID})
}

func (r *freezeHistoryRepository) FindActiveBySubscriptionID(ctx context.Context, subscriptionID string) (*freeze.FreezeHistory, error) {
	var row freezeHistoryRow
	query := `SELECT ` + freezeHistoryColumns + ` FROM freeze_history
	WHERE subscription_id = $1 AND closed_at IS NULL AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, subscriptionID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "freeze record", map[string]any{"subscription_id": subscriptionID})
	}
	return row.toDomain(), nil
}

func (r *freezeHistoryRepository) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*freeze.FreezeHistory, error) {
	var rows []freezeHistoryRow
	query := `SELECT ` + freezeHistoryColumns + ` FROM freeze_history
	WHERE subscription_id = $1 AND tenant_id = $2
	ORDER BY start_date DESC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, subscriptionID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "freeze records", map[string]any{"subscription_id": subscriptionID})
	}

	records := make([]*freeze.FreezeHistory, len(rows))
	for i, row := range rows {
		records[i] = row.toDomain()
	}
	return records, nil
}

type freezePackageRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewFreezePackageRepository(db *postgres.DB, logger *logger.Logger) freeze.PackageRepository {
	return &freezePackageRepository{db: db, logger: logger}
}

type freezePackageRow struct {
	ID     string `db:"id"`
	NameEn string `db:"name_en"`
	NameAr string `db:"name_ar"`
	Days   int    `db:"days"`

	PriceAmount  decimal.Decimal `db:"price_amount"`
	PriceTaxRate decimal.Decimal `db:"price_tax_rate"`
	Currency     string          `db:"currency"`

	TenantID  string       `db:"tenant_id"`
	Status    types.Status `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toFreezePackageRow(p *freeze.FreezePackage) freezePackageRow {
	return freezePackageRow{
		ID:           p.ID,
		NameEn:       p.Name.En,
		NameAr:       p.Name.Ar,
		Days:         p.Days,
		PriceAmount:  p.Price.Amount,
		PriceTaxRate: p.Price.TaxRate,
		Currency:     p.Price.Currency,
		TenantID:     p.TenantID,
		Status:       p.BaseModel.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		CreatedBy:    p.CreatedBy,
		UpdatedBy:    p.UpdatedBy,
	}
}

func (r freezePackageRow) toDomain() *freeze.FreezePackage {
	return &freeze.FreezePackage{
		ID:   r.ID,
		Name: types.LocalizedText{En: r.NameEn, Ar: r.NameAr},
		Days: r.Days,
		Price: types.TaxableFee{
			Amount:   r.PriceAmount,
			Currency: r.Currency,
			TaxRate:  r.PriceTaxRate,
		},
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

const freezePackageColumns = `id, name_en, name_ar, days, price_amount, price_tax_rate, currency,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *freezePackageRepository) Create(ctx context.Context, pkg *freeze.FreezePackage) error {
	query := `INSERT INTO freeze_packages (` + freezePackageColumns + `) VALUES (
		:id, :name_en, :name_ar, :days, :price_amount, :price_tax_rate, :currency,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toFreezePackageRow(pkg))
	return translateErr(err, "freeze package", map[string]any{"package_id": pkg.ID})
}

func (r *freezePackageRepository) Get(ctx context.Context, id string) (*freeze.FreezePackage, error) {
	var row freezePackageRow
	query := `SELECT ` + freezePackageColumns + ` FROM freeze_packages
	WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "freeze package", map[string]any{"package_id": id})
	}
	return row.toDomain(), nil
}

func (r *freezePackageRepository) List(ctx context.Context) ([]*freeze.FreezePackage, error) {
	var rows []freezePackageRow
	query := `SELECT ` + freezePackageColumns + ` FROM freeze_packages
	WHERE tenant_id = $1 AND status != $2
	ORDER BY days ASC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, translateErr(err, "freeze packages", nil)
	}

	packages := make([]*freeze.FreezePackage, len(rows))
	for i, row := range rows {
		packages[i] = row.toDomain()
	}
	return packages, nil
}
