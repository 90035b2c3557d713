package models

// User - владелец токена, пришедшего от дашборда.
// Token пробрасывается в бэкенд без изменений.
type User struct {
	ID    string
	Token string
}
