package models

import "time"

// Species is one catalog entry of the dex. CommonName is the local
// (French) name shown in the app, CommonNameEN the English one the
// recognizer tends to return.
type Species struct {
	ID             int64     `json:"id"`
	Slug           string    `json:"slug"`
	CommonName     string    `json:"common_name"`
	CommonNameEN   string    `json:"common_name_en"`
	ScientificName string    `json:"scientific_name"`
	Emoji          string    `json:"emoji"`
	Status         string    `json:"status"`
	Tip            string    `json:"tip"`
	Habitat        string    `json:"habitat"`
	CreatedAt      time.Time `json:"-"`
}

// Alias maps one recognizer label variant to a species. Many aliases
// point at the same species; matching is case-insensitive.
type Alias struct {
	ID        int64
	Label     string
	SpeciesID int64
}

// Observation is the persisted record of one identification attempt.
// SpeciesID, Score, Lat, Lng and PhotoURL are all optional: a partial
// record is preferred over a dropped one.
type Observation struct {
	ID        string    `json:"id"`
	SpeciesID *int64    `json:"species_id"`
	LabelRaw  string    `json:"label_raw"`
	Score     *float64  `json:"score"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	PhotoURL  *string   `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}
