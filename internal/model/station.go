package model

// Station is a fixed base agents launch from and return to.
type Station struct {
	Index    int      `json:"index"`
	Position Position `json:"position"`
}
