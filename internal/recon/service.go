package recon

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tsaitung/Orderly-sub008/internal/organizations"
	"github.com/Tsaitung/Orderly-sub008/pkg/config"
	"github.com/Tsaitung/Orderly-sub008/pkg/db/models"
	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
	pkgerrors "github.com/Tsaitung/Orderly-sub008/pkg/errors"
	"github.com/Tsaitung/Orderly-sub008/pkg/logger"
	"github.com/Tsaitung/Orderly-sub008/pkg/metrics"
	pkgpagination "github.com/Tsaitung/Orderly-sub008/pkg/pagination"
)

const (
	runOutcomeCommitted = "committed"
	runOutcomeFailed    = "failed"
)

// Service runs reconciliations and reads back committed results.
type Service interface {
	Process(ctx context.Context, input ProcessInput) (*Result, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.Reconciliation, error)
	ListRuns(ctx context.Context, params ListParams) (*ListResult, error)
}

// TxRunner executes fn inside a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the service dependencies.
type ServiceParams struct {
	Organizations organizations.Repository
	Lines         LineReader
	Repo          Repository
	Tx            TxRunner
	Locker        Locker
	Config        config.ReconConfig
	Logger        *logger.Logger
	Metrics       *metrics.ReconMetrics
}

type service struct {
	orgs        organizations.Repository
	lines       LineReader
	repo        Repository
	tx          TxRunner
	locker      Locker
	classifier  *Classifier
	tolerances  Tolerances
	loadTimeout time.Duration
	logg        *logger.Logger
	metrics     *metrics.ReconMetrics
	validate    *validator.Validate
}

// NewService builds the reconciliation service. Metrics may be nil; every
// other dependency is required.
func NewService(params ServiceParams) (Service, error) {
	if params.Organizations == nil {
		return nil, errors.New("recon: organizations repository is required")
	}
	if params.Lines == nil {
		return nil, errors.New("recon: line reader is required")
	}
	if params.Repo == nil {
		return nil, errors.New("recon: repository is required")
	}
	if params.Tx == nil {
		return nil, errors.New("recon: transaction runner is required")
	}
	if params.Locker == nil {
		return nil, errors.New("recon: locker is required")
	}
	if params.Logger == nil {
		return nil, errors.New("recon: logger is required")
	}

	return &service{
		orgs:   params.Organizations,
		lines:  params.Lines,
		repo:   params.Repo,
		tx:     params.Tx,
		locker: params.Locker,
		classifier: NewClassifier(
			params.Config.MediumSeverityCents,
			params.Config.HighSeverityCents,
		),
		tolerances: Tolerances{
			PriceCents: params.Config.PriceToleranceCents,
			Quantity:   params.Config.QuantityToleranceDecimal(),
		},
		loadTimeout: params.Config.LoadTimeout,
		logg:        params.Logger,
		metrics:     params.Metrics,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Process runs one reconciliation for the given pairing and period and
// commits the result atomically. The run is rejected when another run for
// the same pairing and period is already in flight.
func (s *service) Process(ctx context.Context, input ProcessInput) (*Result, error) {
	if err := s.validateInput(input); err != nil {
		return nil, s.fail(err)
	}

	ctx = s.logg.WithRestaurantOrgID(ctx, input.RestaurantOrgID.String())
	ctx = s.logg.WithSupplierOrgID(ctx, input.SupplierOrgID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"period_start": input.PeriodStart.Format("2006-01-02"),
		"period_end":   input.PeriodEnd.Format("2006-01-02"),
	})

	if err := s.verifyOrg(ctx, input.RestaurantOrgID, enums.OrgTypeRestaurant); err != nil {
		return nil, s.fail(err)
	}
	if err := s.verifyOrg(ctx, input.SupplierOrgID, enums.OrgTypeSupplier); err != nil {
		return nil, s.fail(err)
	}

	lease, err := s.locker.Acquire(ctx, RunKey{
		RestaurantOrgID: input.RestaurantOrgID,
		SupplierOrgID:   input.SupplierOrgID,
		PeriodStart:     input.PeriodStart,
		PeriodEnd:       input.PeriodEnd,
	})
	if err != nil {
		return nil, s.fail(err)
	}
	defer func() {
		if releaseErr := lease.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			s.logg.Warn(ctx, "failed to release reconciliation run lock")
		}
	}()

	started := time.Now()

	orders, invoices, err := s.loadSides(ctx, input)
	if err != nil {
		s.observeRun(runOutcomeFailed, started)
		return nil, s.fail(err)
	}

	pairs := MatchLines(orders, invoices, s.tolerances)

	var disputes []models.DisputeRecord
	for _, pair := range pairs {
		if record := s.classifier.Classify(pair); record != nil {
			disputes = append(disputes, *record)
		}
	}

	rec := Aggregate(
		input.RestaurantOrgID,
		input.SupplierOrgID,
		input.PeriodStart,
		input.PeriodEnd,
		pairs,
		disputes,
		time.Since(started),
	)
	if rec.MatchedItems+rec.DisputedItems != len(pairs) {
		s.observeRun(runOutcomeFailed, started)
		return nil, s.fail(pkgerrors.New(pkgerrors.CodeInternal, "match pair counts do not add up"))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, rec)
	})
	if err != nil {
		s.observeRun(runOutcomeFailed, started)
		wrapped := pkgerrors.Wrap(pkgerrors.CodePersistenceFailure, err, "committing reconciliation result")

		dump := pkgerrors.Dump(wrapped)
		errCtx := s.logg.WithFields(ctx, map[string]any{
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_detail":     dump.PGDetail,
			"pg_message":    dump.PGMessage,
			"pg_table":      dump.PGTable,
			"pg_column":     dump.PGColumn,
			"pg_constraint": dump.PGConstraint,
		})
		s.logg.Error(errCtx, "failed to commit reconciliation result", err)
		return nil, s.fail(wrapped)
	}

	s.observeRun(runOutcomeCommitted, started)
	if s.metrics != nil {
		s.metrics.AddMatched(input.SupplierOrgID.String(), rec.MatchedItems)
		s.metrics.AddDisputed(input.SupplierOrgID.String(), rec.DisputedItems)
	}

	ctx = s.logg.WithReconciliationID(ctx, rec.ID.String())
	s.logg.Info(ctx, "reconciliation committed")

	return &Result{
		Reconciliation: rec,
		Performance: Performance{
			ProcessingTimeMs:  rec.ProcessingTimeMs,
			EfficiencyPercent: Efficiency(rec.MatchedItems, rec.DisputedItems),
		},
	}, nil
}

// GetRun returns one committed run with its dispute records.
func (s *service) GetRun(ctx context.Context, id uuid.UUID) (*models.Reconciliation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reconciliation id is required")
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reconciliation not found").
				WithDetails(map[string]string{"reconciliation_id": id.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataUnavailable, err, "loading reconciliation")
	}
	return rec, nil
}

// ListRuns returns a page of committed runs for one restaurant/supplier
// pairing, newest first.
func (s *service) ListRuns(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.RestaurantOrgID == uuid.Nil || params.SupplierOrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant and supplier organization ids are required")
	}

	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing cursor")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, ListQuery{
		RestaurantOrgID: params.RestaurantOrgID,
		SupplierOrgID:   params.SupplierOrgID,
		Limit:           pkgpagination.LimitWithBuffer(params.Limit),
		Cursor:          cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataUnavailable, err, "listing reconciliations")
	}

	result := &ListResult{Items: make([]ListItem, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for _, row := range rows {
		result.Items = append(result.Items, toListItem(row))
	}
	return result, nil
}

func (s *service) validateInput(input ProcessInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reconciliation input")
	}
	if input.PeriodEnd.Before(input.PeriodStart) {
		return pkgerrors.New(pkgerrors.CodeValidation, "period end must not precede period start")
	}
	return nil
}

func (s *service) verifyOrg(ctx context.Context, id uuid.UUID, want enums.OrgType) error {
	org, err := s.orgs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeOrganizationNotFound, "organization does not exist").
				WithDetails(map[string]string{"organization_id": id.String()})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDataUnavailable, err, "looking up organization")
	}
	if org.Type != want {
		return pkgerrors.New(pkgerrors.CodeOrganizationNotFound, "organization has the wrong type").
			WithDetails(map[string]string{
				"organization_id": id.String(),
				"expected_type":   want.String(),
				"actual_type":     org.Type.String(),
			})
	}
	if !org.Active {
		return pkgerrors.New(pkgerrors.CodeOrganizationNotFound, "organization is inactive").
			WithDetails(map[string]string{"organization_id": id.String()})
	}
	return nil
}

func (s *service) loadSides(ctx context.Context, input ProcessInput) ([]Line, []Line, error) {
	loadCtx := ctx
	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}

	orders, err := s.lines.LoadLines(loadCtx, input.RestaurantOrgID, enums.LineRoleOrder, input.PeriodStart, input.PeriodEnd)
	if err != nil {
		return nil, nil, err
	}
	invoices, err := s.lines.LoadLines(loadCtx, input.SupplierOrgID, enums.LineRoleInvoice, input.PeriodStart, input.PeriodEnd)
	if err != nil {
		return nil, nil, err
	}
	return orders, invoices, nil
}

func (s *service) observeRun(outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRun(outcome, time.Since(started))
}

func (s *service) fail(err error) error {
	if s.metrics != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFailure(string(code))
	}
	return err
}
