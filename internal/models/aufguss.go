package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Aufguss is one scheduled infusion session. Dates are kept as "2006-01-02"
// strings and times as "15:04:05" strings, the way DATE and TIME columns scan.
type Aufguss struct {
	bun.BaseModel `bun:"table:aufguesse,alias:a"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name,nullzero" json:"name"`
	Datum         string    `bun:"datum,type:date" json:"datum"`
	Zeit          string    `bun:"zeit,type:time,nullzero" json:"zeit,omitempty"`
	ZeitAnfang    string    `bun:"zeit_anfang,type:time,nullzero" json:"zeit_anfang"`
	ZeitEnde      string    `bun:"zeit_ende,type:time,nullzero" json:"zeit_ende"`
	Staerke       *int      `bun:"staerke" json:"staerke"`
	PlanID        *int64    `bun:"plan_id" json:"plan_id"`
	DuftmittelID  *int64    `bun:"duftmittel_id" json:"duftmittel_id"`
	SaunaID       *int64    `bun:"sauna_id" json:"sauna_id"`
	MitarbeiterID *int64    `bun:"mitarbeiter_id" json:"mitarbeiter_id"`
	AufgussNameID *int64    `bun:"aufguss_name_id" json:"aufguss_name_id"`
	ErstelltAm    time.Time `bun:"erstellt_am,nullzero,notnull,default:current_timestamp" json:"erstellt_am"`
}

// AufgussDetail is an Aufguss joined with the names of everything it references.
type AufgussDetail struct {
	Aufguss `bun:",extend"`

	PlanName        string `bun:"plan_name" json:"plan_name"`
	AufgussName     string `bun:"aufguss_name" json:"aufguss_name"`
	DuftmittelName  string `bun:"duftmittel_name" json:"duftmittel_name"`
	SaunaName       string `bun:"sauna_name" json:"sauna_name"`
	SaunaBild       string `bun:"sauna_bild" json:"sauna_bild"`
	MitarbeiterName string `bun:"mitarbeiter_name" json:"mitarbeiter_name"`
	MitarbeiterBild string `bun:"mitarbeiter_bild" json:"mitarbeiter_bild"`
}

// AufgussName is the reusable title of a session ("Birke", "Eukalyptus-Zeremonie").
type AufgussName struct {
	bun.BaseModel `bun:"table:aufguss_namen,alias:an"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	Name         string `bun:"name,notnull,unique" json:"name"`
	Beschreibung string `bun:"beschreibung,nullzero" json:"beschreibung"`
}
