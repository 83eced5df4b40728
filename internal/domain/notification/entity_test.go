package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Matches(t *testing.T) {
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	n := NewNotification("user-1", KindLoanDueSoon, "t", "m", "loan-1", today.Add(8*time.Hour))

	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"全条件一致", Query{UserID: "user-1", Kind: KindLoanDueSoon, ActionRef: "loan-1", Since: today}, true},
		{"種別のみ", Query{Kind: KindLoanDueSoon, Since: today}, true},
		{"別の段階", Query{Kind: KindLoanDueTomorrow, ActionRef: "loan-1", Since: today}, false},
		{"別の貸出", Query{Kind: KindLoanDueSoon, ActionRef: "loan-2", Since: today}, false},
		{"翌日以降のみ", Query{Kind: KindLoanDueSoon, Since: today.AddDate(0, 0, 1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Matches(n))
		})
	}
}

func TestNotification_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Notification{Kind: KindCheckInReminder}).Validate(), ErrUserIDRequired)
	assert.ErrorIs(t, (&Notification{UserID: "u"}).Validate(), ErrKindRequired)
	assert.NoError(t, NewNotification("u", KindCheckInReminder, "", "", "", time.Now()).Validate())
}
