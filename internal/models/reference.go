package models

import "github.com/uptrace/bun"

type Mitarbeiter struct {
	bun.BaseModel `bun:"table:mitarbeiter,alias:m"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Name     string `bun:"name,notnull" json:"name"`
	Position string `bun:"position,nullzero" json:"position"`
	Aktiv    bool   `bun:"aktiv,notnull,default:true" json:"aktiv"`
	Bild     string `bun:"bild,nullzero" json:"bild,omitempty"`
}

type Duftmittel struct {
	bun.BaseModel `bun:"table:duftmittel,alias:d"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	Name         string `bun:"name,notnull" json:"name"`
	Beschreibung string `bun:"beschreibung,nullzero" json:"beschreibung"`
}

type Sauna struct {
	bun.BaseModel `bun:"table:saunen,alias:s"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	Name         string `bun:"name,notnull" json:"name"`
	Beschreibung string `bun:"beschreibung,nullzero" json:"beschreibung"`
	Temperatur   *int   `bun:"temperatur" json:"temperatur"`
	Bild         string `bun:"bild,nullzero" json:"bild,omitempty"`
}
