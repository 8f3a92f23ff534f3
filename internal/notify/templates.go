package notify

import "fmt"

// Guest-facing copy lives here so every channel speaks with one voice and
// the services stay free of string formatting.

// BookingReceived acknowledges a new booking request.
func BookingReceived(guestName, eventDate, eventTime string) (subject, body string) {
	return "Booking request received",
		fmt.Sprintf("Thanks %s, we received your booking request for %s at %s. We will confirm shortly.",
			guestName, eventDate, eventTime)
}

// BookingConfirmed tells the guest their slot is locked in.
func BookingConfirmed(eventDate, eventTime string) (subject, body string) {
	return "Booking confirmed",
		fmt.Sprintf("Your booking for %s at %s is confirmed. See you in the kitchen!", eventDate, eventTime)
}

// BookingCancelled notifies the guest of a cancellation.
func BookingCancelled(eventDate, eventTime string) (subject, body string) {
	return "Booking cancelled",
		fmt.Sprintf("Your booking for %s at %s has been cancelled.", eventDate, eventTime)
}
