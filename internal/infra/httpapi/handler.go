package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"septic_reminder_service/internal/app"
	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/schedule"
	"septic_reminder_service/internal/infra/csvimport"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const maxImportBytes = 5 << 20

type Handler struct {
	customers     *app.CustomerService
	settings      *app.SettingsService
	notifications app.NotificationService
	validator     *validator.Validate
	logger        *logrus.Entry
	clock         func() time.Time
}

func NewHandler(
	customers *app.CustomerService,
	settings *app.SettingsService,
	notifications app.NotificationService,
	v *validator.Validate,
	logger *logrus.Entry,
	clock func() time.Time,
) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		customers:     customers,
		settings:      settings,
		notifications: notifications,
		validator:     v,
		logger:        logger,
		clock:         clock,
	}
}

// --- Customers ---

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.customers.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, err)
		return
	}

	now := h.clock()
	views := make([]CustomerView, 0, len(list))
	for _, c := range list {
		var info *schedule.Info
		if computed, err := c.Schedule(now); err == nil {
			info = &computed
		}
		views = append(views, newCustomerView(c, info))
	}
	JSON(w, http.StatusOK, views)
}

func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	list, err := h.customers.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, list)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	c, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	c, ok := h.decodeCustomer(w, r)
	if !ok {
		return
	}
	created, err := h.customers.AddCustomer(r.Context(), c)
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	c, ok := h.decodeCustomer(w, r)
	if !ok {
		return
	}
	updated, err := h.customers.UpdateCustomer(r.Context(), id, c)
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	if err := h.customers.RemoveCustomer(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	Message(w, http.StatusOK, "customer deleted", nil)
}

func (h *Handler) CustomerSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	cs, err := h.customers.CustomerSchedule(r.Context(), id, h.clock())
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, cs)
}

func (h *Handler) SendReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	if err := h.notifications.SendManualReminder(r.Context(), id, h.clock()); err != nil {
		h.fail(w, err)
		return
	}
	Message(w, http.StatusOK, "reminder sent", nil)
}

func (h *Handler) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	report, err := h.customers.ImportCSV(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes), dryRun)
	if err != nil {
		h.fail(w, err)
		return
	}
	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}
	Message(w, status, report.Status, report)
}

func (h *Handler) ImportTemplate(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="customer_template.csv"`)
	_, _ = w.Write([]byte(csvimport.Template()))
}

// --- Settings ---

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, s)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.settings.Update(r.Context(), req.toSettings())
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, s)
}

// --- Notifications ---

func (h *Handler) RunPass(w http.ResponseWriter, r *http.Request) {
	result, err := h.notifications.RunPass(r.Context(), h.clock())
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, result)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	events, err := h.notifications.History(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, events)
}

func (h *Handler) Digest(w http.ResponseWriter, r *http.Request) {
	d, err := h.notifications.Digest(r.Context(), h.clock())
	if err != nil {
		h.fail(w, err)
		return
	}
	Message(w, http.StatusOK, d.Summary(), d)
}

// --- helpers ---

func (h *Handler) customerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		Error(w, http.StatusBadRequest, fmt.Sprintf("invalid customer id %q", raw))
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeCustomer(w http.ResponseWriter, r *http.Request) (*customer.Customer, bool) {
	var req CustomerRequest
	if !h.decode(w, r, &req) {
		return nil, false
	}
	c, err := req.toCustomer()
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return c, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WithError(err).Warn("Failed to decode request body")
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.logger.WithError(err).Warn("Failed to validate request body")
		Error(w, http.StatusBadRequest, fmt.Sprintf("validation error: %s", err.Error()))
		return false
	}
	return true
}

// fail maps service errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var (
		missing *csvimport.MissingColumnsError
		rowErr  *csvimport.RowError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, customer.ErrCustomerNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrInvalidCustomer),
		errors.Is(err, app.ErrInvalidSettings),
		errors.Is(err, app.ErrNoEmail),
		errors.Is(err, csvimport.ErrEmptyFile),
		errors.As(err, &missing),
		errors.As(err, &rowErr):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &tooBig):
		Error(w, http.StatusRequestEntityTooLarge, "file too large")
	default:
		h.logger.WithError(err).Error("Request failed")
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
