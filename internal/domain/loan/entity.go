package loan

import "time"

// Status は貸出の状態を表す
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusRenewed  Status = "RENEWED"
	StatusReturned Status = "RETURNED"
	StatusOverdue  Status = "OVERDUE"
)

// 返却期限アラートを出す残り日数
const (
	DueSoonDays     = 3
	DueTomorrowDays = 1
)

// Loan は図書の貸出エンティティを表す（エンジンからは読み取り専用）
type Loan struct {
	ID         string
	UserID     string
	BookID     string
	BookTitle  string
	BorrowedOn time.Time
	DueOn      time.Time
	ReturnedOn *time.Time
	Status     Status
}

// IsActive は貸出中かを返す
func (l *Loan) IsActive() bool {
	return l.Status == StatusActive && l.ReturnedOn == nil
}

// DaysUntilDue は today から返却期限までの暦日数を返す
func (l *Loan) DaysUntilDue(today time.Time) int {
	return civilDays(l.DueOn.In(today.Location())) - civilDays(today)
}

func civilDays(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
