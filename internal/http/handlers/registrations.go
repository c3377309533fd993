package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/Johnhpure/meet/internal/config"
	"github.com/Johnhpure/meet/internal/domain/registration"
	"github.com/gin-gonic/gin"
)

// RegistrationService is the slice of the service layer these handlers use.
type RegistrationService interface {
	Create(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error)
	List(ctx context.Context, filter registration.ListFilter) (registration.Page, error)
	GetByID(ctx context.Context, id int64) (registration.Registration, error)
	Update(ctx context.Context, id int64, patch registration.UpdateRegistrationRequest) (registration.Registration, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (registration.Statistics, error)
}

type RegistrationsHandler struct {
	svc RegistrationService
	log *slog.Logger
}

func NewRegistrationsHandler(svc RegistrationService, log *slog.Logger) *RegistrationsHandler {
	return &RegistrationsHandler{svc: svc, log: log}
}

// Create is the public submission endpoint.
func (h *RegistrationsHandler) Create(ctx *gin.Context) {
	var req registration.CreateRegistrationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	reg, err := h.svc.Create(cctx, req)

	if err != nil {
		h.respondError(ctx, err, "could not submit registration")
		return
	}

	RespondOK(ctx, reg, "registration submitted")
}

func (h *RegistrationsHandler) List(ctx *gin.Context) {
	filter := registration.ListFilter{
		Page:           intQuery(ctx, "page", 1),
		PageSize:       intQuery(ctx, "pageSize", 10),
		Keyword:        ctx.Query("keyword"),
		AttendanceType: ctx.Query("attendanceType"),
	}

	if from, ok := parseDateQuery(ctx.Query("startDate"), false); ok {
		filter.From = &from
	}

	if to, ok := parseDateQuery(ctx.Query("endDate"), true); ok {
		filter.To = &to
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	page, err := h.svc.List(cctx, filter)

	if err != nil {
		h.respondError(ctx, err, "could not list registrations")
		return
	}

	RespondOK(ctx, page, "")
}

func (h *RegistrationsHandler) Detail(ctx *gin.Context) {
	id, ok := idParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	reg, err := h.svc.GetByID(cctx, id)

	if err != nil {
		h.respondError(ctx, err, "could not fetch registration")
		return
	}

	RespondOK(ctx, reg, "")
}

func (h *RegistrationsHandler) Update(ctx *gin.Context) {
	id, ok := idParam(ctx)

	if !ok {
		return
	}

	var patch registration.UpdateRegistrationRequest

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	reg, err := h.svc.Update(cctx, id, patch)

	if err != nil {
		h.respondError(ctx, err, "could not update registration")
		return
	}

	RespondOK(ctx, reg, "registration updated")
}

func (h *RegistrationsHandler) Delete(ctx *gin.Context) {
	id, ok := idParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.svc.Delete(cctx, id)

	if err != nil {
		h.respondError(ctx, err, "could not delete registration")
		return
	}

	RespondOK(ctx, nil, "registration deleted")
}

func (h *RegistrationsHandler) Statistics(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	stats, err := h.svc.Statistics(cctx)

	if err != nil {
		h.respondError(ctx, err, "could not compute statistics")
		return
	}

	RespondOK(ctx, stats, "")
}

// respondError maps domain errors onto the envelope; anything unexpected is
// logged with detail and answered with a generic 500.
func (h *RegistrationsHandler) respondError(ctx *gin.Context, err error, internalMsg string) {
	var verr registration.ValidationError

	switch {
	case errors.As(err, &verr):
		RespondBadRequest(ctx, verr.Message)
	case errors.Is(err, registration.ErrDuplicateIDCard):
		RespondBadRequest(ctx, "this ID card number has already been registered")
	case errors.Is(err, registration.ErrNotFound):
		RespondNotFound(ctx, "registration not found")
	default:
		h.log.Error(internalMsg, "err", err)
		RespondInternal(ctx, internalMsg)
	}
}

func idParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id < 1 {
		RespondBadRequest(ctx, "id must be a positive integer")
		return 0, false
	}

	return id, true
}

func intQuery(ctx *gin.Context, key string, fallback int) int {
	v := ctx.Query(key)

	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)

	if err != nil || n < 1 {
		return fallback
	}

	return n
}

// parseDateQuery accepts a bare date or a full RFC 3339 timestamp. A bare
// endDate is widened to the last instant of that day so the range stays
// inclusive.
func parseDateQuery(v string, endOfDay bool) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse("2006-01-02", v); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, true
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}

	return time.Time{}, false
}
