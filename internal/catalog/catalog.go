// Package catalog holds the site content that ships with the binary: the
// listing seed data and the copy, images and numbers of every landing-page
// section.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yourorg/estate-api/listing"
)

//go:embed content.yaml
var contentYAML []byte

//go:embed properties.yaml
var propertiesYAML []byte

type Company struct {
	Name     string `yaml:"name" json:"name"`
	Tagline  string `yaml:"tagline" json:"tagline"`
	Currency string `yaml:"currency" json:"currency"`
}

type Slide struct {
	URL   string `yaml:"url" json:"url"`
	Title string `yaml:"title" json:"title"`
	Alt   string `yaml:"alt" json:"alt"`
}

type Hero struct {
	AutoplayMS int     `yaml:"autoplay_ms" json:"autoplay_ms"`
	Slides     []Slide `yaml:"slides" json:"slides"`
}

type Counter struct {
	Key        string `yaml:"key" json:"key"`
	Label      string `yaml:"label" json:"label"`
	Value      int    `yaml:"value" json:"value"`
	DurationMS int    `yaml:"duration_ms" json:"duration_ms"`
	DelayMS    int    `yaml:"delay_ms" json:"delay_ms"`
}

type Stats struct {
	Heading  string    `yaml:"heading" json:"heading"`
	Counters []Counter `yaml:"counters" json:"counters"`
}

type ImageSet struct {
	Small  string `yaml:"small" json:"small"`
	Medium string `yaml:"medium" json:"medium"`
	Large  string `yaml:"large" json:"large"`
}

type Project struct {
	ID          int      `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Image       ImageSet `yaml:"image" json:"image"`
}

type Investment struct {
	Heading        string   `yaml:"heading" json:"heading"`
	Body           string   `yaml:"body" json:"body"`
	SharePrice     int      `yaml:"share_price" json:"share_price"`
	SharePriceUnit string   `yaml:"share_price_unit" json:"share_price_unit"`
	MinimumShares  int      `yaml:"minimum_shares" json:"minimum_shares"`
	Benefits       []string `yaml:"benefits" json:"benefits"`
}

type NavItem struct {
	Name       string `yaml:"name" json:"name"`
	Href       string `yaml:"href" json:"href"`
	PageSwitch bool   `yaml:"page_switch" json:"page_switch"`
}

type LinkGroup struct {
	Title string   `yaml:"title" json:"title"`
	Links []string `yaml:"links" json:"links"`
}

type Footer struct {
	Headline     string      `yaml:"headline" json:"headline"`
	CallToAction string      `yaml:"call_to_action" json:"call_to_action"`
	Background   string      `yaml:"background" json:"background"`
	Groups       []LinkGroup `yaml:"groups" json:"groups"`
	Copyright    string      `yaml:"copyright" json:"copyright"`
}

type Content struct {
	Company    Company            `yaml:"company"`
	Hero       Hero               `yaml:"hero"`
	Stats      Stats              `yaml:"stats"`
	Featured   []listing.Property `yaml:"featured"`
	Projects   []Project          `yaml:"projects"`
	Investment Investment         `yaml:"investment"`
	Navigation []NavItem          `yaml:"navigation"`
	Footer     Footer             `yaml:"footer"`
}

type Catalog struct {
	Content    Content
	Properties []listing.Property
}

// Parse decodes content and listing documents and checks them for the
// mistakes that would otherwise only show up in the browser.
func Parse(content, properties []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(content, &c.Content); err != nil {
		return nil, fmt.Errorf("catalog content: %w", err)
	}
	var doc struct {
		Properties []listing.Property `yaml:"properties"`
	}
	if err := yaml.Unmarshal(properties, &doc); err != nil {
		return nil, fmt.Errorf("catalog properties: %w", err)
	}
	c.Properties = doc.Properties
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Content.Hero.Slides) == 0 {
		return fmt.Errorf("catalog: hero has no slides")
	}
	seen := make(map[int64]bool, len(c.Properties))
	for _, p := range c.Properties {
		if seen[p.ID] {
			return fmt.Errorf("catalog: duplicate property id %d", p.ID)
		}
		seen[p.ID] = true
		if _, err := listing.ParsePropertyType(string(p.Type)); err != nil {
			return fmt.Errorf("catalog: property %d: %w", p.ID, err)
		}
		if p.Price < 0 {
			return fmt.Errorf("catalog: property %d: negative price", p.ID)
		}
	}
	return nil
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(contentYAML, propertiesYAML)
})

// Default returns the embedded catalog.
func Default() (*Catalog, error) { return defaultCatalog() }

// PropertiesCopy returns the seed listings in a slice the caller may modify.
func (c *Catalog) PropertiesCopy() []listing.Property {
	return append([]listing.Property(nil), c.Properties...)
}
