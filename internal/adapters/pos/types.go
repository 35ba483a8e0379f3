package pos

import "time"

// Wire shapes for the point-of-sale API. Optional upstream fields are
// pointers; every fallback chain over them is an explicit resolution
// function rather than optimistic field access.

type authRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	GrantType    string `json:"grantType"`
}

type authResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type orderDTO struct {
	GUID          string     `json:"guid"`
	DisplayNumber string     `json:"displayNumber"`
	OpenedDate    *time.Time `json:"openedDate"`
	ClosedDate    *time.Time `json:"closedDate"`
	Voided        bool       `json:"voided"`
	GuestCount    int        `json:"guestCount"`
	Checks        []checkDTO `json:"checks"`
}

type checkDTO struct {
	GUID          string       `json:"guid"`
	Amount        float64      `json:"amount"` // pre-tax
	TaxAmount     float64      `json:"taxAmount"`
	PaymentStatus string       `json:"paymentStatus"`
	Voided        bool         `json:"voided"`
	OpenedDate    *time.Time   `json:"openedDate"`
	ClosedDate    *time.Time   `json:"closedDate"`
	Payments      []paymentDTO `json:"payments"`
}

type paymentDTO struct {
	GUID   string  `json:"guid"`
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
}

type timeEntryDTO struct {
	GUID              string          `json:"guid"`
	EmployeeReference *employeeRefDTO `json:"employeeReference"`
	JobReference      *jobRefDTO      `json:"jobReference"`
	InDate            *time.Time      `json:"inDate"`
	OutDate           *time.Time      `json:"outDate"`
	Deleted           bool            `json:"deleted"`
}

type employeeRefDTO struct {
	GUID       string  `json:"guid"`
	ChosenName *string `json:"chosenName"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
}

type jobRefDTO struct {
	GUID  string  `json:"guid"`
	Title *string `json:"title"`
}

type jobDTO struct {
	GUID  string `json:"guid"`
	Title string `json:"title"`
}
