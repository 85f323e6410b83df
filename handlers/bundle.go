package handlers

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	Booking      *BookingHandler
	Payment      *PaymentHandler
	Messaging    *MessagingHandler
	Notification *NotificationHandler
}
