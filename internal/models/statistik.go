package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Statistik is one aggregate fact row. Every nullable column is a grouping
// dimension; NULL is its own value for matching purposes.
type Statistik struct {
	bun.BaseModel `bun:"table:statistik,alias:st"`

	ID            int64  `bun:"id,pk,autoincrement"`
	Datum         string `bun:"datum,type:date,notnull"`
	AufgussNameID *int64 `bun:"aufguss_name_id"`
	DuftmittelID  *int64 `bun:"duftmittel_id"`
	SaunaID       *int64 `bun:"sauna_id"`
	PlanID        *int64 `bun:"plan_id"`
	Staerke       *int   `bun:"staerke"`
	Anzahl        int    `bun:"anzahl,notnull,default:0"`
}

// StatistikLog records that a session was counted on a date.
type StatistikLog struct {
	bun.BaseModel `bun:"table:statistik_log,alias:sl"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AufgussID int64     `bun:"aufguss_id,notnull,unique:statistik_log_once"`
	Datum     string    `bun:"datum,type:date,notnull,unique:statistik_log_once"`
	GeloggtAm time.Time `bun:"geloggt_am,nullzero,notnull,default:current_timestamp"`
}

// StatistikLoggedEvent is published after a fact row was incremented.
type StatistikLoggedEvent struct {
	AufgussID int64     `json:"aufguss_id"`
	Datum     string    `json:"datum"`
	PlanID    *int64    `json:"plan_id"`
	LoggedAt  time.Time `json:"logged_at"`
}

const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// AufguesseChangedEvent tells displays to reload.
type AufguesseChangedEvent struct {
	Action    string    `json:"action"`
	AufgussID int64     `json:"aufguss_id,omitempty"`
	PlanID    *int64    `json:"plan_id,omitempty"`
	At        time.Time `json:"at"`
}
