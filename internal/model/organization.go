// Package model defines the data types shared across the enrichment pipeline.
package model

import "strings"

// Organization is one input row: an investor, fund, or support program to enrich.
type Organization struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Website string `json:"website,omitempty"`
}

// WithWebsite returns a copy of the organization carrying the resolved website.
func (o Organization) WithWebsite(website string) Organization {
	o.Website = website
	return o
}

// SearchQuery is the query used to discover the organization's website.
func (o Organization) SearchQuery() string {
	return strings.TrimSpace(o.Name + " " + o.Country)
}

// SearchHit is a single web search result.
type SearchHit struct {
	Title string `json:"title"`
	Href  string `json:"href,omitempty"`
	Link  string `json:"link,omitempty"`
}

// URL returns the hit's raw link, preferring Href over Link.
func (h SearchHit) URL() string {
	if h.Href != "" {
		return h.Href
	}
	return h.Link
}
