package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Johnhpure/meet/internal/cache"
	"github.com/Johnhpure/meet/internal/domain/registration"
	"github.com/Johnhpure/meet/internal/service"
)

type fakeStore struct {
	createFn     func(ctx context.Context, reg registration.Registration) (registration.Registration, error)
	listFn       func(ctx context.Context, filter registration.ListFilter) ([]registration.Registration, int, error)
	getFn        func(ctx context.Context, id int64) (registration.Registration, error)
	updateFn     func(ctx context.Context, id int64, patch registration.UpdateRegistrationRequest) (registration.Registration, error)
	deleteFn     func(ctx context.Context, id int64) error
	existsFn     func(ctx context.Context, idCard string) (bool, error)
	statisticsFn func(ctx context.Context) (registration.Statistics, error)

	createCalls     int
	statisticsCalls int
}

func (f *fakeStore) Create(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(ctx, reg)
	}

	reg.ID = 1
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = reg.CreatedAt
	return reg, nil
}

func (f *fakeStore) List(ctx context.Context, filter registration.ListFilter) ([]registration.Registration, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (registration.Registration, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return registration.Registration{}, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, patch registration.UpdateRegistrationRequest) (registration.Registration, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return registration.Registration{}, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeStore) ExistsByIDCard(ctx context.Context, idCard string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, idCard)
	}
	return false, nil
}

func (f *fakeStore) Statistics(ctx context.Context) (registration.Statistics, error) {
	f.statisticsCalls++
	if f.statisticsFn != nil {
		return f.statisticsFn(ctx)
	}
	return registration.Statistics{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validRequest() registration.CreateRegistrationRequest {
	return registration.CreateRegistrationRequest{
		Name:            "Zhang Wei",
		IDCard:          "110101199003071234",
		Gender:          "male",
		Phone:           "13800138000",
		Email:           "zhang@example.com",
		City:            "Beijing",
		Position:        "Engineer",
		AttendanceType:  registration.Option2,
		PaymentImageURL: "/uploads/payment.png",
	}
}

func TestCreateComputesFeeServerSide(t *testing.T) {
	store := &fakeStore{}
	svc := service.NewRegistrationService(store, nil, testLogger())

	req := validRequest()
	req.HasPlusOnes = true
	req.PlusOnesCount = 1
	req.Companions = []registration.CompanionInfo{
		{Name: "Li Na", IDCard: "11010119920101123X", BedType: registration.BedShare},
	}
	// client declared something else entirely; the server total must win
	req.DeclaredFee = 99

	reg, err := svc.Create(context.Background(), req)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reg.TotalFee != 1800+1600 {
		t.Fatalf("TotalFee = %d, want %d", reg.TotalFee, 1800+1600)
	}

	if reg.ID == 0 {
		t.Fatalf("expected the store-assigned id to be returned")
	}

	if len(reg.Companions) != 1 {
		t.Fatalf("companions were dropped on the way to the store")
	}
}

func TestCreateZeroesCountWithoutPlusOnesFlag(t *testing.T) {
	var stored registration.Registration

	store := &fakeStore{
		createFn: func(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
			stored = reg
			return reg, nil
		},
	}
	svc := service.NewRegistrationService(store, nil, testLogger())

	req := validRequest()
	req.HasPlusOnes = false
	req.PlusOnesCount = 7

	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.PlusOnesCount != 0 {
		t.Fatalf("PlusOnesCount = %d persisted without the flag, want 0", stored.PlusOnesCount)
	}

	if stored.Companions != nil {
		t.Fatalf("companions persisted without the flag: %+v", stored.Companions)
	}
}

func TestCreateRejectsDuplicateIDCard(t *testing.T) {
	store := &fakeStore{
		existsFn: func(ctx context.Context, idCard string) (bool, error) {
			return true, nil
		},
	}
	svc := service.NewRegistrationService(store, nil, testLogger())

	_, err := svc.Create(context.Background(), validRequest())

	if !errors.Is(err, registration.ErrDuplicateIDCard) {
		t.Fatalf("got %v, want ErrDuplicateIDCard", err)
	}

	if store.createCalls != 0 {
		t.Fatalf("store.Create was called despite the duplicate")
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*registration.CreateRegistrationRequest)
	}{
		{"missing_name", func(r *registration.CreateRegistrationRequest) { r.Name = "" }},
		{"missing_id_card", func(r *registration.CreateRegistrationRequest) { r.IDCard = "" }},
		{"missing_phone", func(r *registration.CreateRegistrationRequest) { r.Phone = "" }},
		{"missing_email", func(r *registration.CreateRegistrationRequest) { r.Email = "" }},
		{"bad_id_card", func(r *registration.CreateRegistrationRequest) { r.IDCard = "not-an-id-card-no" }},
		{"bad_phone", func(r *registration.CreateRegistrationRequest) { r.Phone = "23800138000" }},
		{"bad_email", func(r *registration.CreateRegistrationRequest) { r.Email = "zhang@example" }},
		{"bad_attendance_type", func(r *registration.CreateRegistrationRequest) { r.AttendanceType = "option4" }},
		{"too_many_companions", func(r *registration.CreateRegistrationRequest) {
			r.HasPlusOnes = true
			r.PlusOnesCount = 3
			r.Companions = []registration.CompanionInfo{
				{BedType: registration.BedShare},
				{BedType: registration.BedShare},
				{BedType: registration.BedShare},
			}
		}},
		{"count_mismatch", func(r *registration.CreateRegistrationRequest) {
			r.HasPlusOnes = true
			r.PlusOnesCount = 2
			r.Companions = []registration.CompanionInfo{{BedType: registration.BedShare}}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := service.NewRegistrationService(store, nil, testLogger())

			req := validRequest()
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), req)

			var verr registration.ValidationError

			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want a ValidationError", err)
			}

			if store.createCalls != 0 {
				t.Fatalf("store.Create was called for an invalid request")
			}
		})
	}
}

func TestListAppliesDefaultsAndTotalPages(t *testing.T) {
	var seen registration.ListFilter

	store := &fakeStore{
		listFn: func(ctx context.Context, filter registration.ListFilter) ([]registration.Registration, int, error) {
			seen = filter
			return make([]registration.Registration, 10), 15, nil
		},
	}
	svc := service.NewRegistrationService(store, nil, testLogger())

	page, err := svc.List(context.Background(), registration.ListFilter{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen.Page != 1 || seen.PageSize != 10 {
		t.Fatalf("defaults not applied: page=%d pageSize=%d", seen.Page, seen.PageSize)
	}

	if page.Total != 15 || page.TotalPages != 2 {
		t.Fatalf("total=%d totalPages=%d, want 15 and 2", page.Total, page.TotalPages)
	}
}

func TestDeletePropagatesNotFound(t *testing.T) {
	store := &fakeStore{
		deleteFn: func(ctx context.Context, id int64) error {
			return registration.ErrNotFound
		},
	}
	svc := service.NewRegistrationService(store, nil, testLogger())

	err := svc.Delete(context.Background(), 42)

	if !errors.Is(err, registration.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestStatisticsUsesCache(t *testing.T) {
	store := &fakeStore{
		statisticsFn: func(ctx context.Context) (registration.Statistics, error) {
			return registration.Statistics{Total: 7, Option2Count: 3, TotalPlusOnes: 2}, nil
		},
	}
	svc := service.NewRegistrationService(store, cache.NewMemory(time.Minute), testLogger())

	first, err := svc.Statistics(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.Statistics(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("cached snapshot differs: %+v vs %+v", first, second)
	}

	if store.statisticsCalls != 1 {
		t.Fatalf("store.Statistics called %d times, want 1", store.statisticsCalls)
	}
}

func TestStatisticsInvalidatedByMutation(t *testing.T) {
	store := &fakeStore{}
	svc := service.NewRegistrationService(store, cache.NewMemory(time.Minute), testLogger())

	ctx := context.Background()

	if _, err := svc.Statistics(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Create(ctx, validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Statistics(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the create must have dropped the cached snapshot
	if store.statisticsCalls != 2 {
		t.Fatalf("store.Statistics called %d times across a mutation, want 2", store.statisticsCalls)
	}

	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Statistics(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.statisticsCalls != 3 {
		t.Fatalf("store.Statistics called %d times after delete, want 3", store.statisticsCalls)
	}
}
