// Package records reads the externally stored rows that drive the dynamic page
// categories. Every implementation is read-only and returns rows in a stable order.
package records

import (
	"context"
	"fmt"
)

// Table names a record source. Values double as SQL table names and snapshot keys.
type Table string

const (
	TableStatePages       Table = "state_pages"
	TableCityPages        Table = "city_pages"
	TableCPTCodes         Table = "cpt_codes"
	TableICD10Codes       Table = "icd10_codes"
	TableDentalCodes      Table = "dental_codes"
	TableBillingModifiers Table = "billing_modifiers"
	TableEMRIntegrations  Table = "emr_integrations"
)

// CodeTables lists the code tables in resource generation order.
var CodeTables = []Table{TableCPTCodes, TableICD10Codes, TableDentalCodes, TableBillingModifiers}

// CodeSystem identifies the code set a Code belongs to.
type CodeSystem string

const (
	SystemCPT      CodeSystem = "CPT"
	SystemICD10    CodeSystem = "ICD-10-CM"
	SystemCDT      CodeSystem = "CDT"
	SystemModifier CodeSystem = "HCPCS Modifier"
)

// SystemFor returns the code system stored in a code table.
func SystemFor(t Table) CodeSystem {
	switch t {
	case TableICD10Codes:
		return SystemICD10
	case TableDentalCodes:
		return SystemCDT
	case TableBillingModifiers:
		return SystemModifier
	default:
		return SystemCPT
	}
}

// State is a state-level location page row.
type State struct {
	Slug            string   `json:"slug" yaml:"slug"`
	Name            string   `json:"name" yaml:"name"`
	Abbreviation    string   `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
	TopPayers       []string `json:"top_payers,omitempty" yaml:"top_payers,omitempty"`
	MedicaidProgram string   `json:"medicaid_program,omitempty" yaml:"medicaid_program,omitempty"`
}

// City is a city-level location page row joined to its State by StateSlug.
type City struct {
	Slug           string   `json:"slug" yaml:"slug"`
	Name           string   `json:"name" yaml:"name"`
	StateSlug      string   `json:"state_slug" yaml:"state_slug"`
	Population     int      `json:"population,omitempty" yaml:"population,omitempty"`
	TopSpecialties []string `json:"top_specialties,omitempty" yaml:"top_specialties,omitempty"`
}

// Code is a CPT, ICD-10, CDT or modifier row.
type Code struct {
	Slug        string     `json:"slug" yaml:"slug"`
	Code        string     `json:"code" yaml:"code"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Usage       string     `json:"usage,omitempty" yaml:"usage,omitempty"`
	System      CodeSystem `json:"system,omitempty" yaml:"system,omitempty"`
}

// Integration is an EMR/practice-management integration row.
type Integration struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Name        string   `json:"name" yaml:"name"`
	Vendor      string   `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Features    []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// Provider is the read interface of the record store. An empty table yields an
// empty slice and a nil error.
type Provider interface {
	StatePages(ctx context.Context) ([]State, error)
	CityPages(ctx context.Context) ([]City, error)
	CPTCodes(ctx context.Context) ([]Code, error)
	ICD10Codes(ctx context.Context) ([]Code, error)
	DentalCodes(ctx context.Context) ([]Code, error)
	BillingModifiers(ctx context.Context) ([]Code, error)
	EMRIntegrations(ctx context.Context) ([]Integration, error)
}

// Pinger is implemented by providers backed by a remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Codes dispatches to the Provider method serving a code table.
func Codes(ctx context.Context, p Provider, t Table) ([]Code, error) {
	switch t {
	case TableCPTCodes:
		return p.CPTCodes(ctx)
	case TableICD10Codes:
		return p.ICD10Codes(ctx)
	case TableDentalCodes:
		return p.DentalCodes(ctx)
	case TableBillingModifiers:
		return p.BillingModifiers(ctx)
	default:
		return nil, fmt.Errorf("%s is not a code table", t)
	}
}
