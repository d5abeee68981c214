package story

// Pin is one map location with its narrative text. Pins are static content;
// whether a gated pin is open for a given installation comes from the unlock
// registry, not from this struct.
type Pin struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	CoordsText  string  `json:"coords_text,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Gated       bool    `json:"gated,omitempty"` // requires a ticket purchase before the detail text is readable
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description"`
}

// Validate checks that a pin has the fields content files must provide.
func (p *Pin) Validate() []string {
	var errs []string
	if p.ID == "" {
		errs = append(errs, "story pin is missing id")
	}
	if p.Title == "" {
		errs = append(errs, "story pin "+p.ID+" is missing title")
	}
	if p.Description == "" {
		errs = append(errs, "story pin "+p.ID+" is missing description")
	}
	return errs
}
