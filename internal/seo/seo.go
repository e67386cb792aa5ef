// Package seo computes routes, canonical URLs and page metadata, including the
// schema.org JSON-LD object for each page kind.
package seo

import (
	"strings"

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/content"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

const (
	RobotsIndex   = "index, follow"
	RobotsNoIndex = "noindex, follow"

	schemaContext = "https://schema.org"
)

// PageMetadata is everything the assembler injects into the shell for one page.
type PageMetadata struct {
	Title           string
	MetaDescription string
	CanonicalURL    string
	H1              string
	Content         string
	// Schema is marshaled to a single JSON-LD block; nil omits the block.
	Schema      any
	Robots      string
	Keywords    []string
	OGType      string
	Image       string
	SiteName    string
	TwitterSite string
}

// Route is where a page lives: its URL path and its file relative to the
// output directory.
type Route struct {
	URLPath string
	File    string
}

// Builder derives routes and metadata for a single site.
type Builder struct {
	site config.SiteConfig
}

func NewBuilder(site config.SiteConfig) *Builder {
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	return &Builder{site: site}
}

// RouteFor maps a content record to its route.
func RouteFor(rec content.Record) (Route, error) {
	base := rec.Common()
	switch c := rec.(type) {
	case *content.ServiceContent:
		return dirRoute("/services/" + c.Slug), nil
	case *content.SpecialtyContent:
		return dirRoute("/specialties/" + c.Slug), nil
	case *content.ResourceContent:
		return dirRoute("/resources/" + c.Slug), nil
	case *content.IntegrationContent:
		return dirRoute("/integrations/" + c.Slug), nil
	case *content.CollectionContent:
		return dirRoute("/" + c.Slug), nil
	case *content.LocationContent:
		if c.IsCity() {
			return dirRoute("/medical-billing-services/" + c.StateSlug + "/" + c.CitySlug), nil
		}
		return dirRoute("/medical-billing-services/" + c.StateSlug), nil
	case *content.StaticContent:
		switch c.Slug {
		case "home":
			return Route{URLPath: "/", File: "index.html"}, nil
		case "404":
			return Route{URLPath: "/404", File: "404.html"}, nil
		default:
			return dirRoute("/" + c.Slug), nil
		}
	}
	return Route{}, errors.AssemblyError("no route for content kind").
		WithContext("kind", string(base.Kind)).
		WithContext("slug", base.Slug).
		Build()
}

func dirRoute(urlPath string) Route {
	return Route{URLPath: urlPath, File: strings.TrimPrefix(urlPath, "/") + "/index.html"}
}

// Canonical returns the absolute URL of a route.
func (b *Builder) Canonical(r Route) string {
	return b.site.BaseURL + r.URLPath
}

// Metadata builds the page metadata for rec with its rendered body fragment.
func (b *Builder) Metadata(rec content.Record, body string) (PageMetadata, Route, error) {
	route, err := RouteFor(rec)
	if err != nil {
		return PageMetadata{}, Route{}, err
	}
	base := rec.Common()
	canonical := b.Canonical(route)

	m := PageMetadata{
		Title:           b.title(base.Title),
		MetaDescription: base.MetaDescription,
		CanonicalURL:    canonical,
		H1:              base.H1,
		Content:         body,
		Robots:          RobotsIndex,
		Keywords:        append([]string(nil), base.Keywords...),
		OGType:          "website",
		Image:           b.site.DefaultImage,
		SiteName:        b.site.Name,
		TwitterSite:     b.site.TwitterSite,
		Schema:          b.schema(rec, canonical),
	}
	if c, ok := rec.(*content.StaticContent); ok && c.NoIndex {
		m.Robots = RobotsNoIndex
	}
	if _, ok := rec.(*content.ResourceContent); ok {
		m.OGType = "article"
	}
	return m, route, nil
}

func (b *Builder) title(t string) string {
	if b.site.Name == "" || strings.Contains(t, b.site.Name) {
		return t
	}
	return t + " | " + b.site.Name
}

func (b *Builder) organization() map[string]any {
	return map[string]any{
		"@type": "Organization",
		"name":  b.site.Name,
		"url":   b.site.BaseURL + "/",
	}
}

func (b *Builder) schema(rec content.Record, canonical string) map[string]any {
	base := rec.Common()
	s := map[string]any{
		"@context":    schemaContext,
		"name":        base.Title,
		"url":         canonical,
		"description": base.MetaDescription,
	}

	switch c := rec.(type) {
	case *content.ServiceContent:
		s["@type"] = "Service"
		s["serviceType"] = "Medical Billing"
		s["provider"] = b.organization()
	case *content.SpecialtyContent:
		s["@type"] = "MedicalSpecialty"
		s["provider"] = b.organization()
	case *content.LocationContent:
		s["@type"] = "MedicalBusiness"
		s["name"] = b.site.Name
		area := map[string]any{"@type": "State", "name": c.StateName}
		address := map[string]any{"@type": "PostalAddress", "addressCountry": "US"}
		if c.StateAbbr != "" {
			address["addressRegion"] = c.StateAbbr
		} else {
			address["addressRegion"] = c.StateName
		}
		if c.IsCity() {
			area = map[string]any{"@type": "City", "name": c.CityName}
			address["addressLocality"] = c.CityName
		}
		s["areaServed"] = area
		s["address"] = address
	case *content.ResourceContent:
		s["@type"] = "WebPage"
		about := map[string]any{
			"@type":        "MedicalCode",
			"codeValue":    c.Code,
			"codingSystem": c.System,
			"name":         c.CodeDescription,
		}
		s["about"] = about
	case *content.IntegrationContent:
		s["@type"] = "SoftwareApplication"
		s["name"] = c.Name
		s["applicationCategory"] = "HealthApplication"
		if c.Vendor != "" {
			s["publisher"] = map[string]any{"@type": "Organization", "name": c.Vendor}
		}
	case *content.CollectionContent:
		s["@type"] = "CollectionPage"
		parts := make([]map[string]any, 0, len(c.Entries))
		for _, e := range c.Entries {
			parts = append(parts, map[string]any{"@type": "WebPage", "name": e.Title, "url": b.site.BaseURL + e.Href})
		}
		s["hasPart"] = parts
	default:
		s["@type"] = "WebPage"
		s["isPartOf"] = map[string]any{"@type": "WebSite", "name": b.site.Name, "url": b.site.BaseURL + "/"}
	}
	return s
}
