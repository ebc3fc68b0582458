package domain

// Role роль уже аутентифицированного пользователя
// Сервис не выполняет аутентификацию: личность и роль приходят снаружи
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// CanManageSchedule возвращает true для ролей, управляющих расписанием
// Административная отмена чужого занятия доступна только им
func (r Role) CanManageSchedule() bool {
	return r == RoleTutor || r == RoleAdmin
}

// ValidRole парсит строку роли
func ValidRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleTutor, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}
