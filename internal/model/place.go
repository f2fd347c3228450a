package model

// Place is an entry of the location catalog.
type Place struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
