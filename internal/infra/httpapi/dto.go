package httpapi

import (
	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/domain/schedule"
)

// CustomerRequest is the body of POST and PUT /api/customers.
type CustomerRequest struct {
	Name            string  `json:"customer_name" validate:"required"`
	Address         string  `json:"address" validate:"required"`
	Lat             float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng             float64 `json:"lng" validate:"gte=-180,lte=180"`
	Phone           string  `json:"phone" validate:"required"`
	Email           string  `json:"email" validate:"omitempty,email"`
	TankSize        string  `json:"tank_size"`
	LastServiceDate string  `json:"last_service_date" validate:"omitempty,datetime=2006-01-02"`
	ServiceInterval int     `json:"service_interval" validate:"gte=0,lte=600"` // 0 selects the default
	Notes           string  `json:"notes"`
}

func (r CustomerRequest) toCustomer() (*customer.Customer, error) {
	c := &customer.Customer{
		Name:            r.Name,
		Address:         r.Address,
		Lat:             r.Lat,
		Lng:             r.Lng,
		Phone:           r.Phone,
		Email:           r.Email,
		TankSize:        r.TankSize,
		ServiceInterval: r.ServiceInterval,
		Notes:           r.Notes,
	}
	if r.LastServiceDate != "" {
		d, err := schedule.ParseDate(r.LastServiceDate)
		if err != nil {
			return nil, err
		}
		c.LastServiceDate = d
	}
	return c, nil
}

// SettingsRequest is the body of PUT /api/settings.
type SettingsRequest struct {
	Enabled      bool                    `json:"enabled"`
	ReminderDays []int                   `json:"reminder_days" validate:"dive,gt=0"`
	FromEmail    string                  `json:"from_email" validate:"omitempty,email"`
	CompanyName  string                  `json:"company_name"`
	Business     BusinessSettingsRequest `json:"business_notifications"`
}

type BusinessSettingsRequest struct {
	Enabled        bool   `json:"enabled"`
	Email          string `json:"business_email" validate:"omitempty,email"`
	NotifyDays     []int  `json:"notify_days" validate:"dive,gt=0"`
	IncludeOverdue bool   `json:"include_overdue"`
	OverdueMode    string `json:"overdue_mode" validate:"omitempty,oneof=as_written independent"`
	WeeklyDigest   bool   `json:"weekly_digest"`
	DigestDay      string `json:"digest_day" validate:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	DigestTime     string `json:"digest_time" validate:"omitempty,datetime=15:04"`
}

func (r SettingsRequest) toSettings() *notification.Settings {
	return &notification.Settings{
		Enabled:      r.Enabled,
		ReminderDays: r.ReminderDays,
		FromEmail:    r.FromEmail,
		CompanyName:  r.CompanyName,
		Business: notification.BusinessSettings{
			Enabled:        r.Business.Enabled,
			Email:          r.Business.Email,
			NotifyDays:     r.Business.NotifyDays,
			IncludeOverdue: r.Business.IncludeOverdue,
			OverdueMode:    notification.OverdueMode(r.Business.OverdueMode),
			WeeklyDigest:   r.Business.WeeklyDigest,
			DigestDay:      r.Business.DigestDay,
			DigestTime:     r.Business.DigestTime,
		},
	}
}

// CustomerView is a customer with its schedule as of the request time.
type CustomerView struct {
	*customer.Customer
	Schedule    *schedule.Info `json:"schedule,omitempty"`
	Description string         `json:"status,omitempty"`
}

func newCustomerView(c *customer.Customer, info *schedule.Info) CustomerView {
	v := CustomerView{Customer: c}
	if info != nil {
		v.Schedule = info
		v.Description = info.Describe()
	}
	return v
}
