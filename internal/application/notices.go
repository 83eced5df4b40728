package application

import (
	"fmt"
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/loan"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
)

const dateLayout = "02/01/2006"

func reservationRef(id string) string { return "reservation:" + id }

func loanRef(id string) string { return "loan:" + id }

func confirmedNotice(r *reservation.Reservation, seatLabel string, now time.Time) *notification.Notification {
	return notification.NewNotification(r.UserID, notification.KindReservationConfirmed,
		"Prenotazione confermata",
		fmt.Sprintf("Posto %s prenotato per il %s dalle %s alle %s.", seatLabel, r.Date.Format(dateLayout), r.Start, r.End),
		reservationRef(r.ID), now)
}

func cancelledNotice(r *reservation.Reservation, now time.Time) *notification.Notification {
	return notification.NewNotification(r.UserID, notification.KindReservationCancelled,
		"Prenotazione cancellata",
		fmt.Sprintf("La prenotazione del %s dalle %s alle %s è stata cancellata.", r.Date.Format(dateLayout), r.Start, r.End),
		reservationRef(r.ID), now)
}

func modifiedNotice(r *reservation.Reservation, seatLabel string, now time.Time) *notification.Notification {
	return notification.NewNotification(r.UserID, notification.KindReservationModified,
		"Prenotazione modificata",
		fmt.Sprintf("La prenotazione è stata spostata al posto %s il %s dalle %s alle %s.", seatLabel, r.Date.Format(dateLayout), r.Start, r.End),
		reservationRef(r.ID), now)
}

func reminderNotice(r *reservation.Reservation, window time.Duration, now time.Time) *notification.Notification {
	return notification.NewNotification(r.UserID, notification.KindCheckInReminder,
		"Promemoria check-in",
		fmt.Sprintf("La tua prenotazione inizia alle %s. Effettua il check-in entro %d minuti dall'inizio.", r.Start, int(window.Minutes())),
		reservationRef(r.ID), now)
}

func noShowNotice(r *reservation.Reservation, grace time.Duration, now time.Time) *notification.Notification {
	return notification.NewNotification(r.UserID, notification.KindNoShowReleased,
		"Prenotazione rilasciata",
		fmt.Sprintf("Check-in non effettuato entro %d minuti dalle %s: il posto è stato liberato.", int(grace.Minutes()), r.Start),
		reservationRef(r.ID), now)
}

// loanAlertTier は返却期限アラートの段階
type loanAlertTier struct {
	daysLeft int
	kind     notification.Kind
	title    string
}

var loanAlertTiers = []loanAlertTier{
	{daysLeft: loan.DueSoonDays, kind: notification.KindLoanDueSoon, title: "Prestito in scadenza tra 3 giorni"},
	{daysLeft: loan.DueTomorrowDays, kind: notification.KindLoanDueTomorrow, title: "Il prestito scade domani"},
}

func loanAlertNotice(l *loan.Loan, tier loanAlertTier, now time.Time) *notification.Notification {
	return notification.NewNotification(l.UserID, tier.kind, tier.title,
		fmt.Sprintf("Il prestito di \"%s\" scade il %s.", l.BookTitle, l.DueOn.Format(dateLayout)),
		loanRef(l.ID), now)
}
