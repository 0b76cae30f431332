package model

import "time"

// PaymentEvent is what a successful gateway verification yields. It is
// ephemeral: relevant fields are merged into the Farmer, nothing else is
// stored durably.
type PaymentEvent struct {
	Reference string
	Email     string
	Plan      PlanType // empty when metadata carried no plan
	Amount    int64    // minor currency units
	PaidAt    time.Time
}

// VerifyOutcome is the state the verification bridge reports back to the
// caller after (best-effort) updating the farmer.
type VerifyOutcome struct {
	Email           string     `json:"email"`
	Plan            PlanType   `json:"plan,omitempty"`
	PaidAt          time.Time  `json:"paidAt"`
	ReferenceID     string     `json:"referenceId"`
	FarmerUID       string     `json:"farmerUid,omitempty"`
	ProrateDiscount int64      `json:"prorateDiscount"`
	FinalCharge     int64      `json:"finalCharge"`
	NextPaymentDate *time.Time `json:"nextPaymentDate,omitempty"`
	Replayed        bool       `json:"replayed,omitempty"`
}
