// Package content turns page definitions and store records into structured page
// content. Everything here is pure: no I/O, no clock, no randomness.
package content

import "html/template"

// Kind tags the variant of a Record.
type Kind string

const (
	KindService     Kind = "service"
	KindSpecialty   Kind = "specialty"
	KindResource    Kind = "resource"
	KindStatic      Kind = "static"
	KindLocation    Kind = "location"
	KindIntegration Kind = "integration"
	KindCollection  Kind = "collection"
)

// Record is implemented by every content variant through its embedded Base.
type Record interface {
	Common() *Base
}

type Benefit struct {
	Title       string
	Description string
}

type Step struct {
	Number      int
	Title       string
	Description string
}

type Challenge struct {
	Challenge string
	Solution  string
}

type FAQ struct {
	Question string
	Answer   string
}

type Metric struct {
	Label string
	Value string
}

// Procedure is a billable procedure listed on a specialty page. Code is empty for
// the generic placeholder.
type Procedure struct {
	Code        string
	Name        string
	Description string
}

// CTA is the closing call to action.
type CTA struct {
	Heading     string
	Text        string
	ButtonLabel string
	ButtonHref  string
}

// Entry links to another generated page.
type Entry struct {
	Title       string
	Href        string
	Description string
}

// Base holds the fields shared by every content variant.
type Base struct {
	Kind            Kind
	Title           string
	Slug            string
	MetaDescription string
	H1              string
	HeroDescription string
	Overview        string
	Keywords        []string
	Benefits        []Benefit
	Steps           []Step
	Challenges      []Challenge
	FAQs            []FAQ
	CTA             CTA
}

func (b *Base) Common() *Base { return b }

type ServiceContent struct {
	Base
	Metrics []Metric
}

type SpecialtyContent struct {
	Base
	Procedures []Procedure
	Compliance []string
	Metrics    []Metric
}

// ResourceContent describes one medical code.
type ResourceContent struct {
	Base
	Code            string
	System          string
	CodeDescription string
	CodeCategory    string
	Usage           string
}

// StaticContent is a hand-written page; BodyHTML is rendered from trusted markdown.
type StaticContent struct {
	Base
	BodyHTML template.HTML
	NoIndex  bool
}

// LocationContent is a state page, or a city page when CitySlug is set.
type LocationContent struct {
	Base
	StateSlug       string
	StateName       string
	StateAbbr       string
	CitySlug        string
	CityName        string
	Population      int
	MedicaidProgram string
	Payers          []string
	Specialties     []string
}

// IsCity reports whether the location is a city page.
func (l *LocationContent) IsCity() bool { return l.CitySlug != "" }

type IntegrationContent struct {
	Base
	Name     string
	Vendor   string
	Features []string
}

// CollectionContent is an index page listing other pages.
type CollectionContent struct {
	Base
	Entries []Entry
}
