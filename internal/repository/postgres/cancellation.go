package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/cancellation"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	"github.com/liyaqa/membership/internal/types"
)

type cancellationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCancellationRepository(db *postgres.DB, logger *logger.Logger) cancellation.Repository {
	return &cancellationRepository{db: db, logger: logger}
}

type cancellationRequestRow struct {
	ID             string `db:"id"`
	MemberID       string `db:"member_id"`
	SubscriptionID string `db:"subscription_id"`
	ContractID     string `db:"contract_id"`

	Status         types.CancellationRequestStatus  `db:"status"`
	ReasonCategory types.CancellationReasonCategory `db:"reason_category"`
	ReasonDetails  *string                          `db:"reason_details"`

	RequestedAt         time.Time  `db:"requested_at"`
	WithinCoolingOff    bool       `db:"within_cooling_off"`
	NoticePeriodEndDate *time.Time `db:"notice_period_end_date"`
	EffectiveDate       time.Time  `db:"effective_date"`

	EarlyTerminationFee decimal.Decimal `db:"early_termination_fee"`
	FeeWaived           bool            `db:"fee_waived"`
	FeeWaivedBy         *string         `db:"fee_waived_by"`
	FeeWaiverReason     *string         `db:"fee_waiver_reason"`

	AcceptedOfferID *string    `db:"accepted_offer_id"`
	ExitSurveyID    *string    `db:"exit_survey_id"`
	ResolvedAt      *time.Time `db:"resolved_at"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toCancellationRequestRow(req *cancellation.CancellationRequest) cancellationRequestRow {
	return cancellationRequestRow{
		ID:                  req.ID,
		MemberID:            req.MemberID,
		SubscriptionID:      req.SubscriptionID,
		ContractID:          req.ContractID,
		Status:              req.Status,
		ReasonCategory:      req.ReasonCategory,
		ReasonDetails:       req.ReasonDetails,
		RequestedAt:         req.RequestedAt,
		WithinCoolingOff:    req.WithinCoolingOff,
		NoticePeriodEndDate: req.NoticePeriodEndDate,
		EffectiveDate:       req.EffectiveDate,
		EarlyTerminationFee: req.EarlyTerminationFee,
		FeeWaived:           req.FeeWaived,
		FeeWaivedBy:         req.FeeWaivedBy,
		FeeWaiverReason:     req.FeeWaiverReason,
		AcceptedOfferID:     req.AcceptedOfferID,
		ExitSurveyID:        req.ExitSurveyID,
		ResolvedAt:          req.ResolvedAt,
		TenantID:            req.TenantID,
		RowStatus:           req.BaseModel.Status,
		CreatedAt:           req.CreatedAt,
		UpdatedAt:           req.UpdatedAt,
		CreatedBy:           req.CreatedBy,
		UpdatedBy:           req.UpdatedBy,
	}
}

func (r cancellationRequestRow) toDomain() *cancellation.CancellationRequest {
	return &cancellation.CancellationRequest{
		ID:                  r.ID,
		MemberID:            r.MemberID,
		SubscriptionID:      r.SubscriptionID,
		ContractID:          r.ContractID,
		Status:              r.Status,
		ReasonCategory:      r.ReasonCategory,
		ReasonDetails:       r.ReasonDetails,
		RequestedAt:         r.RequestedAt,
		WithinCoolingOff:    r.WithinCoolingOff,
		NoticePeriodEndDate: r.NoticePeriodEndDate,
		EffectiveDate:       r.EffectiveDate,
		EarlyTerminationFee: r.EarlyTerminationFee,
		FeeWaived:           r.FeeWaived,
		FeeWaivedBy:         r.FeeWaivedBy,
		FeeWaiverReason:     r.FeeWaiverReason,
		AcceptedOfferID:     r.AcceptedOfferID,
		ExitSurveyID:        r.ExitSurveyID,
		ResolvedAt:          r.ResolvedAt,
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

const cancellationRequestColumns = `id, member_id, subscription_id, contract_id,
	status, reason_category, reason_details,
	requested_at, within_cooling_off, notice_period_end_date, effective_date,
	early_termination_fee, fee_waived, fee_waived_by, fee_waiver_reason,
	accepted_offer_id, exit_survey_id, resolved_at,
	tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *cancellationRepository) Create(ctx context.Context, req *cancellation.CancellationRequest) error {
	query := `INSERT INTO cancellation_requests (` + cancellationRequestColumns + `) VALUES (
		:id, :member_id, :subscription_id, :contract_id,
		:status, :reason_category, :reason_details,
		:requested_at, :within_cooling_off, :notice_period_end_date, :effective_date,
		:early_termination_fee, :fee_waived, :fee_waived_by, :fee_waiver_reason,
		:accepted_offer_id, :exit_survey_id, :resolved_at,
		:tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toCancellationRequestRow(req))
	return translateErr(err, "cancellation request", map[string]any{
		"request_id":      req.ID,
		"subscription_id": req.SubscriptionID,
	})
}

func (r *cancellationRepository) Get(ctx context.Context, id string) (*cancellation.CancellationRequest, error) {
	var row cancellationRequestRow
	query := `SELECT ` + cancellationRequestColumns + ` FROM cancellation_requests
	WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "cancellation request", map[string]any{"request_id": id})
	}
	return row.toDomain(), nil
}

func (r *cancellationRepository) Update(ctx context.Context, req *cancellation.CancellationRequest) error {
	req.Touch(ctx)
	query := `UPDATE cancellation_requests SET
		status = :status, notice_period_end_date = :notice_period_end_date,
		effective_date = :effective_date,
		early_termination_fee = :early_termination_fee,
		fee_waived = :fee_waived, fee_waived_by = :fee_waived_by,
		fee_waiver_reason = :fee_waiver_reason,
		accepted_offer_id = :accepted_offer_id, exit_survey_id = :exit_survey_id,
		resolved_at = :resolved_at,
		updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, toCancellationRequestRow(req))
	return translateErr(err, "cancellation request", map[string]any{"request_id": req.ID})
}

func (r *cancellationRepository) FindPendingBySubscriptionID(ctx context.Context, subscriptionID string) (*cancellation.CancellationRequest, error) {
	var row cancellationRequestRow
	query := `SELECT ` + cancellationRequestColumns + ` FROM cancellation_requests
	WHERE subscription_id = $1 AND tenant_id = $2 AND status IN ($3, $4)`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query,
		subscriptionID, types.GetTenantID(ctx),
		types.CancellationRequestStatusPending, types.CancellationRequestStatusInNoticePeriod)
	if err != nil {
		return nil, translateErr(err, "cancellation request", map[string]any{"subscription_id": subscriptionID})
	}
	return row.toDomain(), nil
}

func (r *cancellationRepository) ListDueForCompletion(ctx context.Context, date time.Time, limit int) ([]*cancellation.CancellationRequest, error) {
	var rows []cancellationRequestRow
	query := `SELECT ` + cancellationRequestColumns + ` FROM cancellation_requests
	WHERE status = $1 AND effective_date <= $2 AND tenant_id = $3
	ORDER BY effective_date ASC
	LIMIT $4`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query,
		types.CancellationRequestStatusInNoticePeriod, date, types.GetTenantID(ctx), limit)
	if err != nil {
		return nil, translateErr(err, "cancellation requests", nil)
	}

	requests := make([]*cancellation.CancellationRequest, len(rows))
	for i, row := range rows {
		requests[i] = row.toDomain()
	}
	return requests, nil
}

func (r *cancellationRepository) CountResolvedSince(ctx context.Context, since time.Time) (int64, int64, error) {
	var counts struct {
		Total    int64 `db:"total"`
		Retained int64 `db:"retained"`
	}
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status IN ($1, $2)) AS retained
	FROM cancellation_requests
	WHERE resolved_at >= $3 AND tenant_id = $4`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &counts, query,
		types.CancellationRequestStatusSaved, types.CancellationRequestStatusWithdrawn,
		since, types.GetTenantID(ctx))
	if err != nil {
		return 0, 0, translateErr(err, "cancellation requests", nil)
	}
	return counts.Total, counts.Retained, nil
}

type retentionOfferRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewRetentionOfferRepository(db *postgres.DB, logger *logger.Logger) cancellation.OfferRepository {
	return &retentionOfferRepository{db: db, logger: logger}
}

type retentionOfferRow struct {
	ID                    string `db:"id"`
	CancellationRequestID string `db:"cancellation_request_id"`
	SubscriptionID        string `db:"subscription_id"`
	MemberID              string `db:"member_id"`

	OfferType types.RetentionOfferType   `db:"offer_type"`
	Status    types.RetentionOfferStatus `db:"status"`

	DescriptionEn string `db:"description_en"`
	DescriptionAr string `db:"description_ar"`

	FreezeDays      *int             `db:"freeze_days"`
	DiscountPercent *decimal.Decimal `db:"discount_percent"`
	DiscountMonths  *int             `db:"discount_months"`
	DowngradePlanID *string          `db:"downgrade_plan_id"`

	ExpiresAt   time.Time  `db:"expires_at"`
	RespondedAt *time.Time `db:"responded_at"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toRetentionOfferRow(o *cancellation.RetentionOffer) retentionOfferRow {
	return retentionOfferRow{
		ID:                    o.ID,
		CancellationRequestID: o.CancellationRequestID,
		SubscriptionID:        o.SubscriptionID,
		MemberID:              o.MemberID,
		OfferType:             o.OfferType,
		Status:                o.Status,
		DescriptionEn:         o.Description.En,
		DescriptionAr:         o.Description.Ar,
		FreezeDays:            o.FreezeDays,
		DiscountPercent:       o.DiscountPercent,
		DiscountMonths:        o.DiscountMonths,
		DowngradePlanID:       o.DowngradePlanID,
		ExpiresAt:             o.ExpiresAt,
		RespondedAt:           o.RespondedAt,
		TenantID:              o.TenantID,
		RowStatus:             o.BaseModel.Status,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
		CreatedBy:             o.CreatedBy,
		UpdatedBy:             o.UpdatedBy,
	}
}

func (r retentionOfferRow) toDomain() *cancellation.RetentionOffer {
	return &cancellation.RetentionOffer{
		ID:                    r.ID,
		CancellationRequestID: r.CancellationRequestID,
		SubscriptionID:        r.SubscriptionID,
		MemberID:              r.MemberID,
		OfferType:             r.OfferType,
		Status:                r.Status,
		Description:           types.LocalizedText{En: r.DescriptionEn, Ar: r.DescriptionAr},
		FreezeDays:            r.FreezeDays,
		DiscountPercent:       r.DiscountPercent,
		DiscountMonths:        r.DiscountMonths,
		DowngradePlanID:       r.DowngradePlanID,
		ExpiresAt:             r.ExpiresAt,
		RespondedAt:           r.RespondedAt,
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

const retentionOfferColumns = `id, cancellation_request_id, subscription_id, member_id,
	offer_type, status, description_en, description_ar,
	freeze_days, discount_percent, discount_months, downgrade_plan_id,
	expires_at, responded_at,
	tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *retentionOfferRepository) Create(ctx context.Context, o *cancellation.RetentionOffer) error {
	query := `INSERT INTO retention_offers (` + retentionOfferColumns + `) VALUES (
		:id, :cancellation_request_id, :subscription_id, :member_id,
		:offer_type, :status, :description_en, :description_ar,
		:freeze_days, :discount_percent, :discount_months, :downgrade_plan_id,
		:expires_at, :responded_at,
		:tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toRetentionOfferRow(o))
	return translateErr(err, "retention offer", map[string]any{"offer_id": o.ID})
}

func (r *retentionOfferRepository) Get(ctx context.Context, id string) (*cancellation.RetentionOffer, error) {
	var row retentionOfferRow
	query := `SELECT ` + retentionOfferColumns + ` FROM retention_offers
	WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "retention offer", map[string]any{"offer_id": id})
	}
	return row.toDomain(), nil
}

func (r *retentionOfferRepository) Update(ctx context.Context, o *cancellation.RetentionOffer) error {
	o.Touch(ctx)
	query := `UPDATE retention_offers SET
		status = :status, expires_at = :expires_at, responded_at = :responded_at,
		updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	_, err := r.db.NamedExecContext(ctx, query, toRetentionOfferRow(o))
	return translateErr(err, "retention offer", map[string]any{"offer_id": o.ID})
}

func (r *retentionOfferRepository) ListByRequestID(ctx context.Context, requestID string) ([]*cancellation.RetentionOffer, error) {
	var rows []retentionOfferRow
	query := `SELECT ` + retentionOfferColumns + ` FROM retention_offers
	WHERE cancellation_request_id = $1 AND tenant_id = $2
	ORDER BY created_at ASC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, requestID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "retention offers", map[string]any{"request_id": requestID})
	}
	return offersFromRows(rows), nil
}

func (r *retentionOfferRepository) ListPendingBySubscriptionID(ctx context.Context, subscriptionID string) ([]*cancellation.RetentionOffer, error) {
	var rows []retentionOfferRow
	query := `SELECT ` + retentionOfferColumns + ` FROM retention_offers
	WHERE subscription_id = $1 AND status = $2 AND tenant_id = $3
	ORDER BY created_at ASC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query,
		subscriptionID, types.RetentionOfferStatusPending, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "retention offers", map[string]any{"subscription_id": subscriptionID})
	}
	return offersFromRows(rows), nil
}

func offersFromRows(rows []retentionOfferRow) []*cancellation.RetentionOffer {
	offers := make([]*cancellation.RetentionOffer, len(rows))
	for i, row := range rows {
		offers[i] = row.toDomain()
	}
	return offers
}

type exitSurveyRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewExitSurveyRepository(db *postgres.DB, logger *logger.Logger) cancellation.SurveyRepository {
	return &exitSurveyRepository{db: db, logger: logger}
}

type exitSurveyRow struct {
	ID                    string  `db:"id"`
	SubscriptionID        string  `db:"subscription_id"`
	MemberID              string  `db:"member_id"`
	CancellationRequestID *string `db:"cancellation_request_id"`

	Rating          int     `db:"rating"`
	WouldRecommend  bool    `db:"would_recommend"`
	Feedback        *string `db:"feedback"`
	ImprovementArea *string `db:"improvement_area"`

	TenantID  string       `db:"tenant_id"`
	RowStatus types.Status `db:"row_status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	CreatedBy string       `db:"created_by"`
	UpdatedBy string       `db:"updated_by"`
}

func toExitSurveyRow(s *cancellation.ExitSurvey) exitSurveyRow {
	return exitSurveyRow{
		ID:                    s.ID,
		SubscriptionID:        s.SubscriptionID,
		MemberID:              s.MemberID,
		CancellationRequestID: s.CancellationRequestID,
		Rating:                s.Rating,
		WouldRecommend:        s.WouldRecommend,
		Feedback:              s.Feedback,
		ImprovementArea:       s.ImprovementArea,
		TenantID:              s.TenantID,
		RowStatus:             s.BaseModel.Status,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
		CreatedBy:             s.CreatedBy,
		UpdatedBy:             s.UpdatedBy,
	}
}

func (r exitSurveyRow) toDomain() *cancellation.ExitSurvey {
	return &cancellation.ExitSurvey{
		ID:                    r.ID,
		SubscriptionID:        r.SubscriptionID,
		MemberID:              r.MemberID,
		CancellationRequestID: r.CancellationRequestID,
		Rating:                r.Rating,
		WouldRecommend:        r.WouldRecommend,
		Feedback:              r.Feedback,
		ImprovementArea:       r.ImprovementArea,
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

const exitSurveyColumns = `id, subscription_id, member_id, cancellation_request_id,
	rating, would_recommend, feedback, improvement_area,
	tenant_id, row_status, created_at, updated_at, created_by, updated_by`

func (r *exitSurveyRepository) Create(ctx context.Context, s *cancellation.ExitSurvey) error {
	query := `INSERT INTO exit_surveys (` + exitSurveyColumns + `) VALUES (
		:id, :subscription_id, :member_id, :cancellation_request_id,
		:rating, :would_recommend, :feedback, :improvement_area,
		:tenant_id, :row_status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.db.NamedExecContext(ctx, query, toExitSurveyRow(s))
	return translateErr(err, "exit survey", map[string]any{
		"survey_id":       s.ID,
		"subscription_id": s.SubscriptionID,
	})
}

func (r *exitSurveyRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*cancellation.ExitSurvey, error) {
	var row exitSurveyRow
	query := `SELECT ` + exitSurveyColumns + ` FROM exit_surveys
	WHERE subscription_id = $1 AND tenant_id = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, subscriptionID, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "exit survey", map[string]any{"subscription_id": subscriptionID})
	}
	return row.toDomain(), nil
}

func (r *exitSurveyRepository) List(ctx context.Context) ([]*cancellation.ExitSurvey, error) {
	var rows []exitSurveyRow
	query := `SELECT ` + exitSurveyColumns + ` FROM exit_surveys
	WHERE tenant_id = $1
	ORDER BY created_at DESC`
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, types.GetTenantID(ctx))
	if err != nil {
		return nil, translateErr(err, "exit surveys", nil)
	}

	surveys := make([]*cancellation.ExitSurvey, len(rows))
	for i, row := range rows {
		surveys[i] = row.toDomain()
	}
	return surveys, nil
}
