package enums

// PaymentEvent is a gateway webhook event name.
type PaymentEvent string

const (
	PaymentEventAuthorized PaymentEvent = "payment.authorized"
	PaymentEventCaptured   PaymentEvent = "payment.captured"
)

// String implements fmt.Stringer.
func (e PaymentEvent) String() string {
	return string(e)
}

// Handled reports whether the pipeline acts on the event.
func (e PaymentEvent) Handled() bool {
	return e == PaymentEventAuthorized || e == PaymentEventCaptured
}
