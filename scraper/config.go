package scraper

import (
	"fmt"
	"net/url"
)

// Site describes where region listing pages live and how markers are
// embedded in them.
type Site struct {
	// Endpoint is the listing page; the region goes in the RegionParam
	// query parameter.
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	RegionParam string `yaml:"region_param" json:"region_param"`

	// Homepage carries the region selector used for region discovery.
	Homepage       string `yaml:"homepage" json:"homepage"`
	RegionSelector string `yaml:"region_selector" json:"region_selector"`

	// MarkerFunc is the script function that registers map markers.
	MarkerFunc string `yaml:"marker_func" json:"marker_func"`
}

// NewSite creates a site description with default values.
func NewSite() *Site {
	return &Site{
		Endpoint:       "https://www.roadsideamerica.com/map/attractionsByState.php",
		RegionParam:    "state",
		Homepage:       "https://www.roadsideamerica.com",
		RegionSelector: "div.tools.group form select option[value]",
		MarkerFunc:     "addMarkerById",
	}
}

// RegionURL returns the listing page URL for a region. Query parameters
// already present on Endpoint are kept.
func (s *Site) RegionURL(region string) (string, error) {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("endpoint URL must use http or https scheme")
	}

	q := u.Query()
	q.Set(s.RegionParam, region)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
