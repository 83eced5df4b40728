package user

// Role は利用者の権限
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// ParseRole は文字列を Role に変換する
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleOperator, RoleAdmin:
		return r, nil
	}
	return "", ErrInvalidRole
}

// CanOperate は他人の予約や座席を操作できる権限かを返す
func (r Role) CanOperate() bool {
	return r == RoleOperator || r == RoleAdmin
}

// User は利用者を表す（認証は外部で行われる）
type User struct {
	ID       string
	Name     string
	Email    string
	Role     Role
	Commuter bool
}

// Actor は操作を行う主体
type Actor struct {
	UserID string
	Role   Role
}

// System は自動処理の主体
var System = Actor{UserID: "system", Role: RoleAdmin}

// CanActOn は ownerID の資源を操作できるかを返す
func (a Actor) CanActOn(ownerID string) bool {
	return a.Role.CanOperate() || a.UserID == ownerID
}
