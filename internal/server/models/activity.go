// Package models defines the server-side row types.
package models

import "time"

// Activity is one row of atividades. EndedAt and DurationHours are nil while
// the session is open.
type Activity struct {
	ID            int64      `db:"id"`
	ActivityType  string     `db:"tipo_atividade"`
	Description   string     `db:"descricao"`
	StartedAt     time.Time  `db:"inicio"`
	EndedAt       *time.Time `db:"fim"`
	UserID        string     `db:"user_id"`
	Year          int        `db:"ano"`
	Month         int        `db:"mes"`
	Day           int        `db:"dia"`
	DurationHours *float64   `db:"horas_trabalhadas"`
}

// IsOpen reports whether the session has not been closed yet.
func (a Activity) IsOpen() bool {
	return a.EndedAt == nil
}
