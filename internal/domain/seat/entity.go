package seat

import "time"

// State は座席の状態を表す
type State string

const (
	StateAvailable   State = "AVAILABLE"
	StateOccupied    State = "OCCUPIED"
	StateMaintenance State = "MAINTENANCE"
)

// Features は座席の固定設備
type Features struct {
	PowerOutlet bool
	Window      bool
	Accessible  bool
}

// Seat は座席エンティティを表す
// State は予約状態から導出される射影であり、予約の状態遷移と同じトランザクション内でのみ更新する
type Seat struct {
	ID        string
	RoomID    string
	Label     string
	Features  Features
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StateChange は座席状態の変化通知（部屋単位でブロードキャストされる）
type StateChange struct {
	RoomID    string
	SeatID    string
	SeatLabel string
	NewState  State
}

// NewSeat は新しい座席を作成する
func NewSeat(roomID, label string, features Features) *Seat {
	now := time.Now()
	return &Seat{
		RoomID:    roomID,
		Label:     label,
		Features:  features,
		State:     StateAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAvailable は座席が利用可能かを返す
func (s *Seat) IsAvailable() bool {
	return s.State == StateAvailable
}

// IsUnderMaintenance はメンテナンス中かを返す
func (s *Seat) IsUnderMaintenance() bool {
	return s.State == StateMaintenance
}

// ApplyOccupancy は在席中の予約の有無から状態を導出する
// メンテナンス中の座席は運用者の操作でのみ解除されるため変更しない
// 状態が変化した場合 true を返す
func (s *Seat) ApplyOccupancy(occupied bool) bool {
	if s.State == StateMaintenance {
		return false
	}
	next := StateAvailable
	if occupied {
		next = StateOccupied
	}
	if s.State == next {
		return false
	}
	s.State = next
	s.UpdatedAt = time.Now()
	return true
}

// StartMaintenance は座席をメンテナンス状態にする
func (s *Seat) StartMaintenance() error {
	switch s.State {
	case StateOccupied:
		return ErrSeatOccupied
	case StateMaintenance:
		return ErrSeatUnderMaintenance
	}
	s.State = StateMaintenance
	s.UpdatedAt = time.Now()
	return nil
}

// EndMaintenance はメンテナンスを終了し座席を利用可能に戻す
func (s *Seat) EndMaintenance() error {
	if s.State != StateMaintenance {
		return ErrSeatNotUnderMaintenance
	}
	s.State = StateAvailable
	s.UpdatedAt = time.Now()
	return nil
}

// Change は現在の状態を StateChange として返す
func (s *Seat) Change() StateChange {
	return StateChange{RoomID: s.RoomID, SeatID: s.ID, SeatLabel: s.Label, NewState: s.State}
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.RoomID == "" {
		return ErrRoomIDRequired
	}
	if s.Label == "" {
		return ErrSeatLabelRequired
	}
	return nil
}
