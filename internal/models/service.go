package models

// Service is an entry of the services catalogue offered on the site.
type Service struct {
	ID          string   `mapstructure:"id"          json:"id"`
	Title       string   `mapstructure:"title"       json:"title"`
	Description string   `mapstructure:"description" json:"description"`
	Price       string   `mapstructure:"price"       json:"price"`
	Icon        string   `mapstructure:"icon"        json:"icon"`
	Features    []string `mapstructure:"features"    json:"features"`
}
