package slot

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange は開始時刻が終了時刻以上の区間を表す
var ErrInvalidRange = errors.New("開始時刻は終了時刻より前である必要があります")

// ErrInvalidTimeOfDay は時刻文字列が不正であることを表す
var ErrInvalidTimeOfDay = errors.New("時刻の形式が不正です（HH:MM）")

// MinutesPerDay は1日の分数
const MinutesPerDay = 24 * 60

// TimeOfDay は0時からの経過分で表す1日の中の時刻
type TimeOfDay int

// NewTimeOfDay は時・分から TimeOfDay を作成する
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay は "HH:MM" 形式の文字列を解析する（"24:00" は終了時刻としてのみ許可）
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' || !isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return 0, ErrInvalidTimeOfDay
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, ErrInvalidTimeOfDay
	}
	return NewTimeOfDay(h, m), nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// MustParse はテストや定数定義用の ParseTimeOfDay
func MustParse(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Of は時刻 t の時・分を TimeOfDay として返す
func Of(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On は日付 date 上の時刻を date のタイムゾーンの壁時計時刻として返す
// 夏時間の切り替え日も時・分がそのまま保たれる。24:00 は翌日の0時
func (t TimeOfDay) On(date time.Time) time.Time {
	y, mo, d := date.Date()
	if t >= MinutesPerDay {
		return time.Date(y, mo, d, 0, 0, 0, 0, date.Location()).AddDate(0, 0, 1)
	}
	return time.Date(y, mo, d, int(t)/60, int(t)%60, 0, 0, date.Location())
}

// Add は d を加算した時刻を返す（分未満は切り捨て）
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

// Sub は t - u を Duration で返す
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return time.Duration(t-u) * time.Minute
}

// Valid は 00:00〜24:00 の範囲内かを返す
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

// Interval は同一日付上の半開区間 [Start, End)
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewInterval は区間を作成する
func NewInterval(start, end TimeOfDay) (Interval, error) {
	if !start.Valid() || !end.Valid() || start >= end {
		return Interval{}, ErrInvalidRange
	}
	return Interval{Start: start, End: end}, nil
}

// Duration は区間の長さを返す
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Contains は other が i の内側に収まっているかを返す
func (i Interval) Contains(other Interval) bool {
	return i.Start <= other.Start && other.End <= i.End
}

func (i Interval) String() string {
	return "[" + i.Start.String() + "," + i.End.String() + ")"
}

// Overlaps は2つの半開区間が交差するかを返す（端点の接触は交差としない）
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && a.End > b.Start
}

// IsFree は candidate が busy のどの区間とも交差しないかを返す
func IsFree(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(candidate, b) {
			return false
		}
	}
	return true
}

// Blocks は from から until まで step 刻みで区間を列挙する
// 末尾の step 未満の端数は含めない
func Blocks(from, until TimeOfDay, step time.Duration) []Interval {
	if step < time.Minute || from >= until {
		return nil
	}
	n := TimeOfDay(step / time.Minute)
	var blocks []Interval
	for s := from; s+n <= until; s += n {
		blocks = append(blocks, Interval{Start: s, End: s + n})
	}
	return blocks
}
