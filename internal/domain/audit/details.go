package audit

import "time"

// Details は種別ごとの詳細ペイロード（このパッケージ内の型に閉じている）
type Details interface {
	Kind() Kind
	details()
}

// ReservationCreated は予約作成の詳細
type ReservationCreated struct {
	Date            string `json:"date"`
	Start           string `json:"start"`
	End             string `json:"end"`
	CommuterMargin  bool   `json:"commuterMargin"`
	CommuterMinutes int    `json:"commuterMinutes,omitempty"`
}

// CheckedIn はチェックインの詳細
type CheckedIn struct {
	CheckInAt    time.Time `json:"checkInAt"`
	MinutesEarly int       `json:"minutesEarly"`
}

// CheckedOut はチェックアウトの詳細
type CheckedOut struct {
	CheckOutAt    time.Time `json:"checkOutAt"`
	MinutesOnSeat int       `json:"minutesOnSeat"`
}

// ReservationCancelled はキャンセルの詳細
type ReservationCancelled struct {
	PreviousStatus string `json:"previousStatus"`
	ActorID        string `json:"actorId"`
	ActorRole      string `json:"actorRole"`
}

// ReservationExtended は延長の詳細
type ReservationExtended struct {
	PreviousEnd string `json:"previousEnd"`
	NewEnd      string `json:"newEnd"`
}

// ReservationModified は管理者による変更の詳細
type ReservationModified struct {
	PreviousSeatID string `json:"previousSeatId"`
	PreviousDate   string `json:"previousDate"`
	PreviousStart  string `json:"previousStart"`
	PreviousEnd    string `json:"previousEnd"`
	SeatID         string `json:"seatId"`
	Date           string `json:"date"`
	Start          string `json:"start"`
	End            string `json:"end"`
}

// NoShowReleased は無断欠席による座席解放の詳細
type NoShowReleased struct {
	Automatic    bool   `json:"automatic"`
	Start        string `json:"start"`
	GraceMinutes int    `json:"graceMinutes"`
}

// CheckInReminder はチェックインリマインダーの詳細
type CheckInReminder struct {
	Start         string `json:"start"`
	MinutesBefore int    `json:"minutesBefore"`
}

// LoanDueAlert は返却期限アラートの詳細
type LoanDueAlert struct {
	Tier      string `json:"tier"`
	DueOn     string `json:"dueOn"`
	DaysLeft  int    `json:"daysLeft"`
	BookTitle string `json:"bookTitle"`
}

func (*ReservationCreated) Kind() Kind   { return KindReservationCreated }
func (*CheckedIn) Kind() Kind            { return KindCheckIn }
func (*CheckedOut) Kind() Kind           { return KindCheckOut }
func (*ReservationCancelled) Kind() Kind { return KindReservationCancelled }
func (*ReservationExtended) Kind() Kind  { return KindReservationExtended }
func (*ReservationModified) Kind() Kind  { return KindReservationModified }
func (*NoShowReleased) Kind() Kind       { return KindNoShowReleased }
func (*CheckInReminder) Kind() Kind      { return KindCheckInReminder }
func (*LoanDueAlert) Kind() Kind         { return KindLoanDueAlert }

func (*ReservationCreated) details()   {}
func (*CheckedIn) details()            {}
func (*CheckedOut) details()           {}
func (*ReservationCancelled) details() {}
func (*ReservationExtended) details()  {}
func (*ReservationModified) details()  {}
func (*NoShowReleased) details()       {}
func (*CheckInReminder) details()      {}
func (*LoanDueAlert) details()         {}
