// Package service orchestrates validation, pricing and persistence for the
// registration use cases. Handlers stay thin and talk to this layer only.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Johnhpure/meet/internal/cache"
	"github.com/Johnhpure/meet/internal/domain/registration"
	"github.com/Johnhpure/meet/internal/validate"
)

const statsCacheKey = "meet:stats:snapshot"

// RegistrationStore is the persistence surface the service needs. The
// postgres repo implements it; tests substitute fakes.
type RegistrationStore interface {
	Create(ctx context.Context, reg registration.Registration) (registration.Registration, error)
	List(ctx context.Context, filter registration.ListFilter) ([]registration.Registration, int, error)
	GetByID(ctx context.Context, id int64) (registration.Registration, error)
	Update(ctx context.Context, id int64, patch registration.UpdateRegistrationRequest) (registration.Registration, error)
	Delete(ctx context.Context, id int64) error
	ExistsByIDCard(ctx context.Context, idCard string) (bool, error)
	Statistics(ctx context.Context) (registration.Statistics, error)
}

type RegistrationService struct {
	store RegistrationStore
	cache cache.Cache
	log   *slog.Logger
}

func NewRegistrationService(store RegistrationStore, statsCache cache.Cache, log *slog.Logger) *RegistrationService {
	return &RegistrationService{
		store: store,
		cache: statsCache,
		log:   log,
	}
}

// Create validates the submission, rejects duplicate ID cards, computes the
// authoritative fee server-side and persists the record. Nothing is written
// when any check fails.
func (s *RegistrationService) Create(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
	err := validateCreate(req)

	if err != nil {
		return registration.Registration{}, err
	}

	exists, err := s.store.ExistsByIDCard(ctx, req.IDCard)

	if err != nil {
		return registration.Registration{}, err
	}

	if exists {
		return registration.Registration{}, registration.ErrDuplicateIDCard
	}

	fee := registration.Quote(req.AttendanceType, req.HasPlusOnes, req.Companions)

	// The client form displays its own total; it is never trusted, only
	// reconciled in the logs when it disagrees.
	if req.DeclaredFee != 0 && req.DeclaredFee != fee {
		s.log.Warn("declared fee mismatch",
			"idCard", req.IDCard,
			"declared", req.DeclaredFee,
			"computed", fee,
		)
	}

	reg, err := s.store.Create(ctx, registration.NewFromCreateRequest(req, fee))

	if err != nil {
		return registration.Registration{}, err
	}

	s.invalidateStats(ctx)

	return reg, nil
}

func validateCreate(req registration.CreateRegistrationRequest) error {
	if req.Name == "" || req.IDCard == "" || req.Phone == "" || req.Email == "" {
		return registration.ValidationError{Field: "required", Message: "please fill in all required fields"}
	}

	if !validate.IDCard(req.IDCard) {
		return registration.ValidationError{Field: "idCard", Message: "ID card number format is invalid"}
	}

	if !validate.Phone(req.Phone) {
		return registration.ValidationError{Field: "phone", Message: "phone number format is invalid"}
	}

	if !validate.Email(req.Email) {
		return registration.ValidationError{Field: "email", Message: "email format is invalid"}
	}

	switch req.AttendanceType {
	case registration.Option1, registration.Option2, registration.Option3:
	default:
		return registration.ValidationError{Field: "attendanceType", Message: "attendance option is invalid"}
	}

	if req.HasPlusOnes {
		if len(req.Companions) > registration.MaxCompanions {
			return registration.ValidationError{Field: "companions", Message: "at most 2 companions are allowed"}
		}

		if req.PlusOnesCount != len(req.Companions) {
			return registration.ValidationError{Field: "plusOnesCount", Message: "companion count does not match the companion list"}
		}
	}

	return nil
}

// List applies the paging defaults and returns one page, newest first.
func (s *RegistrationService) List(ctx context.Context, filter registration.ListFilter) (registration.Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	list, total, err := s.store.List(ctx, filter)

	if err != nil {
		return registration.Page{}, err
	}

	return registration.Page{
		List:       list,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
	}, nil
}

func (s *RegistrationService) GetByID(ctx context.Context, id int64) (registration.Registration, error) {
	return s.store.GetByID(ctx, id)
}

// Update is an administrative patch: changed fields are persisted as given,
// with no format re-validation and no fee recomputation.
func (s *RegistrationService) Update(ctx context.Context, id int64, patch registration.UpdateRegistrationRequest) (registration.Registration, error) {
	reg, err := s.store.Update(ctx, id, patch)

	if err != nil {
		return registration.Registration{}, err
	}

	s.invalidateStats(ctx)

	return reg, nil
}

func (s *RegistrationService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)

	if err != nil {
		return err
	}

	s.invalidateStats(ctx)

	return nil
}

func (s *RegistrationService) ExistsByIDCard(ctx context.Context, idCard string) (bool, error) {
	return s.store.ExistsByIDCard(ctx, idCard)
}

// invalidateStats drops the snapshot after a mutation so the next read
// recomputes instead of serving pre-mutation counts for the rest of the TTL.
func (s *RegistrationService) invalidateStats(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, statsCacheKey)
	}
}

// Statistics returns the aggregate snapshot, cached for a short TTL so a
// dashboard polling the endpoint does not hammer the table.
func (s *RegistrationService) Statistics(ctx context.Context) (registration.Statistics, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, statsCacheKey); ok {
			var stats registration.Statistics

			if err := json.Unmarshal(raw, &stats); err == nil {
				return stats, nil
			}
			// fall through to a fresh computation on a corrupt entry
		}
	}

	stats, err := s.store.Statistics(ctx)

	if err != nil {
		return registration.Statistics{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			s.cache.Set(ctx, statsCacheKey, raw)
		}
	}

	return stats, nil
}
