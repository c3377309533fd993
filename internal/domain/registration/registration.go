package registration

import (
	"errors"
	"fmt"
	"time"
)

// Attendance options offered on the signup form.
const (
	Option1 = "option1"
	Option2 = "option2"
	Option3 = "option3"
)

// Companion bed choices.
const (
	BedShare  = "share"
	BedSingle = "single"
)

// MaxCompanions is the most plus-ones a single attendee may bring.
const MaxCompanions = 2

type CompanionInfo struct {
	Name           string `json:"name"`
	IDCard         string `json:"idCard"`
	BedType        string `json:"bedType"`
	PermitImageURL string `json:"permitImageUrl,omitempty"`
}

type Registration struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	IDCard          string          `json:"idCard"`
	Gender          string          `json:"gender"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	Wechat          string          `json:"wechat,omitempty"`
	City            string          `json:"city"`
	Position        string          `json:"position"`
	AttendanceType  string          `json:"attendanceType"`
	HasPlusOnes     bool            `json:"hasPlusOnes"`
	PlusOnesCount   int             `json:"plusOnesCount"`
	Companions      []CompanionInfo `json:"companions,omitempty"`
	PermitImageURL  string          `json:"permitImageUrl,omitempty"`
	PaymentImageURL string          `json:"paymentImageUrl"`
	TotalFee        int             `json:"totalFee"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

var ErrNotFound = errors.New("registration not found")

// ErrDuplicateIDCard is returned when the submitted ID card is already registered.
var ErrDuplicateIDCard = errors.New("id card already registered")

// ValidationError reports a submission field that failed a format or
// presence check. It is a user-facing error, never an internal one.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type CreateRegistrationRequest struct {
	Name            string          `json:"name"`
	IDCard          string          `json:"idCard"`
	Gender          string          `json:"gender"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	Wechat          string          `json:"wechat"`
	City            string          `json:"city"`
	Position        string          `json:"position"`
	AttendanceType  string          `json:"attendanceType"`
	HasPlusOnes     bool            `json:"hasPlusOnes"`
	PlusOnesCount   int             `json:"plusOnesCount"`
	Companions      []CompanionInfo `json:"companions"`
	PermitImageURL  string          `json:"permitImageUrl"`
	PaymentImageURL string          `json:"paymentImageUrl"`
	// DeclaredFee is whatever total the client form displayed. The server
	// recomputes the authoritative fee and only logs a mismatch.
	DeclaredFee int `json:"totalFee"`
}

// UpdateRegistrationRequest is a partial patch: nil fields are left untouched.
// Admin edits skip format validation and fee recomputation on purpose.
type UpdateRegistrationRequest struct {
	Name            *string          `json:"name"`
	IDCard          *string          `json:"idCard"`
	Gender          *string          `json:"gender"`
	Phone           *string          `json:"phone"`
	Email           *string          `json:"email"`
	Wechat          *string          `json:"wechat"`
	City            *string          `json:"city"`
	Position        *string          `json:"position"`
	AttendanceType  *string          `json:"attendanceType"`
	HasPlusOnes     *bool            `json:"hasPlusOnes"`
	PlusOnesCount   *int             `json:"plusOnesCount"`
	Companions      *[]CompanionInfo `json:"companions"`
	PermitImageURL  *string          `json:"permitImageUrl"`
	PaymentImageURL *string          `json:"paymentImageUrl"`
	TotalFee        *int             `json:"totalFee"`
}

// ListFilter narrows the admin listing. Pointer fields are optional;
// the store turns each set field into a parameterized SQL condition.
type ListFilter struct {
	Page           int
	PageSize       int
	Keyword        string
	AttendanceType string
	From           *time.Time
	To             *time.Time
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type Page struct {
	List       []Registration `json:"list"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type Statistics struct {
	Total               int `json:"total"`
	Option1Count        int `json:"option1Count"`
	Option2Count        int `json:"option2Count"`
	Option3Count        int `json:"option3Count"`
	TotalPlusOnes       int `json:"totalPlusOnes"`
	RecentRegistrations int `json:"recentRegistrations"`
}

// NewFromCreateRequest builds a Registration from the submission DTO with the
// server-computed fee. ID and timestamps are assigned by the store on insert.
func NewFromCreateRequest(req CreateRegistrationRequest, fee int) Registration {
	companions := req.Companions
	plusOnes := req.PlusOnesCount

	// without the flag, any submitted count or list is meaningless
	if !req.HasPlusOnes {
		companions = nil
		plusOnes = 0
	}

	return Registration{
		Name:            req.Name,
		IDCard:          req.IDCard,
		Gender:          req.Gender,
		Phone:           req.Phone,
		Email:           req.Email,
		Wechat:          req.Wechat,
		City:            req.City,
		Position:        req.Position,
		AttendanceType:  req.AttendanceType,
		HasPlusOnes:     req.HasPlusOnes,
		PlusOnesCount:   plusOnes,
		Companions:      companions,
		PermitImageURL:  req.PermitImageURL,
		PaymentImageURL: req.PaymentImageURL,
		TotalFee:        fee,
	}
}
