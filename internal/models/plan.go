package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type Plan struct {
	bun.BaseModel `bun:"table:plaene,alias:p"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Beschreibung string    `bun:"beschreibung,nullzero" json:"beschreibung"`
	ErstelltAm   time.Time `bun:"erstellt_am,nullzero,notnull,default:current_timestamp" json:"erstellt_am"`

	WerbungMedia           string `bun:"werbung_media,nullzero" json:"werbung_media"`
	WerbungMediaTyp        string `bun:"werbung_media_typ,nullzero" json:"werbung_media_typ"`
	WerbungMediaName       string `bun:"werbung_media_name,nullzero" json:"werbung_media_name"`
	WerbungIntervalMinuten int    `bun:"werbung_interval_minuten,notnull,default:10" json:"werbung_interval_minuten"`
	WerbungDauerSekunden   int    `bun:"werbung_dauer_sekunden,notnull,default:10" json:"werbung_dauer_sekunden"`
	WerbungAktiv           bool   `bun:"werbung_aktiv,notnull,default:false" json:"werbung_aktiv"`
}
