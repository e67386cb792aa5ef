package content

import (
	"bytes"
	"html/template"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/records"
	"github.com/claimpilot/pagegen/internal/registry"
)

const maxMetaDescription = 160

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Synthesizer builds content records. It holds no mutable state and is safe for
// concurrent use.
type Synthesizer struct {
	siteName string
	markdown goldmark.Markdown
}

// NewSynthesizer returns a synthesizer that names siteName in generated copy.
func NewSynthesizer(siteName string) *Synthesizer {
	return &Synthesizer{siteName: siteName, markdown: goldmark.New()}
}

// Definition dispatches on the definition category.
func (s *Synthesizer) Definition(def registry.PageDefinition) (Record, error) {
	switch def.Category {
	case registry.CategoryService:
		return s.Service(def)
	case registry.CategorySpecialty:
		return s.Specialty(def)
	case registry.CategoryStatic:
		return s.Static(def)
	default:
		return nil, errors.ValidationError("unknown definition category").
			WithContext("category", string(def.Category)).
			WithContext("slug", def.Slug).
			Build()
	}
}

func (s *Synthesizer) Service(def registry.PageDefinition) (*ServiceContent, error) {
	if err := validate(def.Title, def.Slug); err != nil {
		return nil, err
	}
	r := s.replacer(def.Title, def.Keywords, "")
	c := &ServiceContent{
		Base: Base{
			Kind:            KindService,
			Title:           def.Title + " Services",
			Slug:            def.Slug,
			MetaDescription: meta(r.Replace("Professional {lower} services for medical practices. {site} reduces denials and accelerates reimbursement with certified billing specialists.")),
			H1:              def.Title + " Services",
			HeroDescription: r.Replace("{site} delivers end-to-end {lower} so your practice collects more and waits less."),
			Overview:        r.Replace("Our {lower} service combines certified coders, payer-specific claim rules and daily follow-up. Practices that outsource {keyword} to {site} see fewer denials and shorter A/R cycles."),
			Keywords:        keywords(def.Title, def.Keywords),
			Benefits:        benefits(r, serviceBenefits),
			Steps:           steps(r, defaultSteps),
			Challenges:      challenges(r, defaultChallenges),
			FAQs:            faqs(r, defaultFAQs),
			CTA:             cta(r, "Ready to improve your {lower}?"),
		},
		Metrics: append([]Metric(nil), defaultMetrics...),
	}
	return c, nil
}

func (s *Synthesizer) Specialty(def registry.PageDefinition) (*SpecialtyContent, error) {
	if err := validate(def.Title, def.Slug); err != nil {
		return nil, err
	}
	r := s.replacer(def.Title, def.Keywords, "")
	compliance := make([]string, len(specialtyCompliance))
	for i, line := range specialtyCompliance {
		compliance[i] = r.Replace(line)
	}
	c := &SpecialtyContent{
		Base: Base{
			Kind:            KindSpecialty,
			Title:           def.Title + " Medical Billing",
			Slug:            def.Slug,
			MetaDescription: meta(r.Replace("Specialized {lower} medical billing and coding. {site} maximizes {lower} reimbursements with certified specialty coders.")),
			H1:              def.Title + " Medical Billing Services",
			HeroDescription: r.Replace("Billing and coding built for {lower} practices."),
			Overview:        r.Replace("{title} billing has its own documentation rules, code sets and payer policies. {site} assigns coders who work exclusively on {keyword} so every claim is coded correctly the first time."),
			Keywords:        keywords(def.Title, def.Keywords),
			Benefits:        benefits(r, specialtyBenefits),
			Steps:           steps(r, defaultSteps),
			Challenges:      challenges(r, defaultChallenges),
			FAQs:            faqs(r, defaultFAQs),
			CTA:             cta(r, "Get expert {lower} billing support"),
		},
		Procedures: procedures(r, def.ExtraCodes),
		Compliance: compliance,
		Metrics:    append([]Metric(nil), defaultMetrics...),
	}
	return c, nil
}

// procedures lists one procedure per code in order. Without codes the page gets
// exactly one generic placeholder.
func procedures(r *strings.Replacer, codes []string) []Procedure {
	if len(codes) == 0 {
		return []Procedure{{
			Name:        r.Replace("{title} procedure coding"),
			Description: r.Replace("Every {lower} procedure is coded to the highest level of specificity supported by documentation."),
		}}
	}
	out := make([]Procedure, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		p := Procedure{Code: code, Name: "Procedure " + code, Description: r.Replace(genericProcedureDescription)}
		if known, ok := knownProcedures[code]; ok {
			p.Name = known.Name
			p.Description = known.Description
		}
		out = append(out, p)
	}
	return out
}

// Static builds a hand-written page. Pages marked noindex carry only their hero,
// body and call to action.
func (s *Synthesizer) Static(def registry.PageDefinition) (*StaticContent, error) {
	if err := validate(def.Title, def.Slug); err != nil {
		return nil, err
	}
	r := s.replacer(def.Title, def.Keywords, "")

	var body bytes.Buffer
	if def.Body != "" {
		if err := s.markdown.Convert([]byte(def.Body), &body); err != nil {
			return nil, errors.WrapError(err, errors.CategorySynthesis, "convert markdown body").
				WithContext("slug", def.Slug).
				Build()
		}
	}

	summary := def.Summary
	if summary == "" {
		summary = r.Replace("{title} from {site}.")
	}
	c := &StaticContent{
		Base: Base{
			Kind:            KindStatic,
			Title:           def.Title,
			Slug:            def.Slug,
			MetaDescription: meta(r.Replace(strings.TrimSuffix(summary, ".") + ". Learn about {lower} at {site}.")),
			H1:              def.Title,
			HeroDescription: summary,
			Keywords:        keywords(def.Title, def.Keywords),
			CTA:             cta(r, "Talk to a billing specialist"),
		},
		BodyHTML: template.HTML(body.String()), //nolint:gosec // rendered from embedded, trusted markdown
		NoIndex:  def.NoIndex,
	}
	if !def.NoIndex {
		c.Overview = r.Replace("{site} provides medical billing, coding and revenue cycle management for independent practices and groups.")
		c.Benefits = benefits(r, serviceBenefits)
		c.Steps = steps(r, defaultSteps)
		c.Challenges = challenges(r, defaultChallenges)
		c.FAQs = faqs(r, defaultFAQs)
	}
	return c, nil
}

// State builds a state location page.
func (s *Synthesizer) State(st records.State) (*LocationContent, error) {
	if err := validate(st.Name, st.Slug); err != nil {
		return nil, err
	}
	name := displayName(st.Name)
	r := s.replacer(name, []string{"medical billing services in " + name}, name)
	c := &LocationContent{
		Base:            s.locationBase(r, name, st.Slug),
		StateSlug:       st.Slug,
		StateName:       name,
		StateAbbr:       st.Abbreviation,
		MedicaidProgram: st.MedicaidProgram,
		Payers:          append([]string(nil), st.TopPayers...),
	}
	if st.MedicaidProgram != "" {
		c.Overview += " We bill " + st.MedicaidProgram + " alongside commercial plans and Medicare."
	}
	return c, nil
}

// City builds a city page under its parent state.
func (s *Synthesizer) City(city records.City, st records.State) (*LocationContent, error) {
	if err := validate(city.Name, city.Slug); err != nil {
		return nil, err
	}
	if err := validate(st.Name, st.Slug); err != nil {
		return nil, err
	}
	stateName := displayName(st.Name)
	region := stateName
	if st.Abbreviation != "" {
		region = st.Abbreviation
	}
	place := displayName(city.Name) + ", " + region
	r := s.replacer(place, []string{"medical billing services in " + displayName(city.Name)}, place)
	c := &LocationContent{
		Base:            s.locationBase(r, place, city.Slug),
		StateSlug:       st.Slug,
		StateName:       stateName,
		StateAbbr:       st.Abbreviation,
		CitySlug:        city.Slug,
		CityName:        displayName(city.Name),
		Population:      city.Population,
		MedicaidProgram: st.MedicaidProgram,
		Payers:          append([]string(nil), st.TopPayers...),
		Specialties:     append([]string(nil), city.TopSpecialties...),
	}
	if city.Population > 0 {
		c.Overview += " " + displayName(city.Name) + " is home to " + groupDigits(city.Population) + " residents served by practices we support."
	}
	return c, nil
}

func (s *Synthesizer) locationBase(r *strings.Replacer, place, slug string) Base {
	return Base{
		Kind:            KindLocation,
		Title:           "Medical Billing Services in " + place,
		Slug:            slug,
		MetaDescription: meta(r.Replace("Medical billing services in {place}. {site} helps {place} practices reduce denials and get paid faster.")),
		H1:              "Medical Billing Services in " + place,
		HeroDescription: r.Replace("Full-service medical billing for practices in {place}."),
		Overview:        r.Replace("{site} supports physicians, clinics and specialty groups across {place} with coding, claim submission and A/R follow-up."),
		Keywords:        keywords("Medical Billing "+place, []string{"medical billing " + strings.ToLower(place), "medical billing company " + strings.ToLower(place)}),
		Benefits:        benefits(r, locationBenefits),
		Steps:           steps(r, defaultSteps),
		Challenges:      challenges(r, defaultChallenges),
		FAQs:            faqs(r, locationFAQs),
		CTA:             cta(r, "Find out what we can do for your {place} practice"),
	}
}

// Resource builds a code reference page.
func (s *Synthesizer) Resource(code records.Code) (*ResourceContent, error) {
	if err := validate(code.Title, code.Slug); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code.Code) == "" {
		return nil, errors.ValidationError("code is empty").WithContext("slug", code.Slug).Build()
	}
	system := string(code.System)
	if system == "" {
		system = string(records.SystemCPT)
	}
	label := system + " " + code.Code
	r := s.replacer(code.Title, []string{label}, "")
	description := code.Description
	if description == "" {
		description = code.Title + "."
	}
	c := &ResourceContent{
		Base: Base{
			Kind:            KindResource,
			Title:           label + ": " + code.Title,
			Slug:            code.Slug,
			MetaDescription: meta(r.Replace(label + ": {lower}. Billing guidelines, documentation requirements and common denial reasons.")),
			H1:              label + ": " + code.Title,
			HeroDescription: r.Replace("Billing and documentation guide for {keyword}."),
			Overview:        r.Replace("{keyword} describes {lower}. Accurate reporting depends on documentation that supports medical necessity and payer-specific rules."),
			Keywords:        keywords(code.Title, []string{label, code.Code + " billing"}),
			Steps:           steps(r, defaultSteps),
			Challenges:      challenges(r, defaultChallenges),
			FAQs:            faqs(r, resourceFAQs),
			CTA:             cta(r, "Need help coding {keyword}?"),
		},
		Code:            code.Code,
		System:          system,
		CodeDescription: description,
		CodeCategory:    displayName(code.Category),
		Usage:           code.Usage,
	}
	c.Benefits = []Benefit{{Title: "Correct use of " + label, Description: description}}
	return c, nil
}

// Integration builds an EMR integration page.
func (s *Synthesizer) Integration(in records.Integration) (*IntegrationContent, error) {
	if err := validate(in.Name, in.Slug); err != nil {
		return nil, err
	}
	r := s.replacer(in.Name, []string{in.Name + " billing integration"}, "")
	overview := r.Replace("{site} works inside {title} to capture charges, submit claims and post payments without changing your workflow.")
	if in.Description != "" {
		overview = in.Description + " " + overview
	}
	return &IntegrationContent{
		Base: Base{
			Kind:            KindIntegration,
			Title:           in.Name + " Billing Integration",
			Slug:            in.Slug,
			MetaDescription: meta(r.Replace("{title} medical billing integration. {site} bills directly inside {title} for faster, cleaner claims.")),
			H1:              in.Name + " Medical Billing Integration",
			HeroDescription: r.Replace("Outsourced billing that works inside {title}."),
			Overview:        overview,
			Keywords:        keywords(in.Name, []string{in.Name + " billing", in.Name + " integration"}),
			Benefits:        benefits(r, integrationBenefits),
			Steps:           steps(r, defaultSteps),
			Challenges:      challenges(r, defaultChallenges),
			FAQs:            faqs(r, integrationFAQs),
			CTA:             cta(r, "Bill smarter with {title}"),
		},
		Name:     in.Name,
		Vendor:   in.Vendor,
		Features: append([]string(nil), in.Features...),
	}, nil
}

// IntegrationIndex builds the page listing every integration, in input order.
func (s *Synthesizer) IntegrationIndex(list []records.Integration) (*CollectionContent, error) {
	r := s.replacer("EMR Integrations", []string{"EMR billing integrations"}, "")
	entries := make([]Entry, 0, len(list))
	for _, in := range list {
		if in.Slug == "" || in.Name == "" {
			continue
		}
		desc := in.Description
		if desc == "" {
			desc = in.Name + " billing integration."
		}
		entries = append(entries, Entry{Title: in.Name, Href: "/integrations/" + in.Slug, Description: desc})
	}
	return &CollectionContent{
		Base: Base{
			Kind:            KindCollection,
			Title:           "EMR Integrations",
			Slug:            "integrations",
			MetaDescription: meta(r.Replace("EMR and practice management integrations supported by {site}. We bill inside the systems your practice already uses.")),
			H1:              "EMR and Practice Management Integrations",
			HeroDescription: r.Replace("{site} works inside " + strconv.Itoa(len(entries)) + " EMR and practice management systems."),
			Overview:        r.Replace("Choose your system to see how {site} handles billing without changing your workflow."),
			Keywords:        []string{"emr integrations", "ehr billing integration", "practice management integration"},
			FAQs:            faqs(r, collectionFAQs),
			CTA:             cta(r, "Don't see your system?"),
		},
		Entries: entries,
	}, nil
}

// replacer binds the placeholders used by the sub-templates.
func (s *Synthesizer) replacer(title string, kws []string, place string) *strings.Replacer {
	keyword := strings.ToLower(title)
	if len(kws) > 0 && strings.TrimSpace(kws[0]) != "" {
		keyword = strings.TrimSpace(kws[0])
	}
	return strings.NewReplacer(
		"{title}", title,
		"{lower}", strings.ToLower(title),
		"{keyword}", keyword,
		"{site}", s.siteName,
		"{place}", place,
	)
}

func validate(title, slug string) error {
	if strings.TrimSpace(title) == "" {
		return errors.ValidationError("title is empty").WithContext("slug", slug).Build()
	}
	if strings.TrimSpace(slug) == "" {
		return errors.ValidationError("slug is empty").WithContext("title", title).Build()
	}
	if !slugPattern.MatchString(slug) || strings.Contains(slug, "..") {
		return errors.ValidationError("slug is not URL safe").WithContext("slug", slug).Build()
	}
	return nil
}

func benefits(r *strings.Replacer, tpl []Benefit) []Benefit {
	out := make([]Benefit, len(tpl))
	for i, b := range tpl {
		out[i] = Benefit{Title: r.Replace(b.Title), Description: r.Replace(b.Description)}
	}
	return out
}

func steps(r *strings.Replacer, tpl []Step) []Step {
	out := make([]Step, len(tpl))
	for i, st := range tpl {
		out[i] = Step{Number: st.Number, Title: r.Replace(st.Title), Description: r.Replace(st.Description)}
	}
	return out
}

func challenges(r *strings.Replacer, tpl []Challenge) []Challenge {
	out := make([]Challenge, len(tpl))
	for i, c := range tpl {
		out[i] = Challenge{Challenge: r.Replace(c.Challenge), Solution: r.Replace(c.Solution)}
	}
	return out
}

func faqs(r *strings.Replacer, tpl []FAQ) []FAQ {
	out := make([]FAQ, len(tpl))
	for i, f := range tpl {
		out[i] = FAQ{Question: r.Replace(f.Question), Answer: r.Replace(f.Answer)}
	}
	return out
}

func cta(r *strings.Replacer, heading string) CTA {
	return CTA{
		Heading:     r.Replace(heading),
		Text:        r.Replace("Schedule a free billing assessment with {site}. We'll review your claims and show you where revenue is being lost."),
		ButtonLabel: "Get a Free Assessment",
		ButtonHref:  "/contact",
	}
}

// keywords returns the definition keywords, or one derived from the title.
func keywords(title string, kws []string) []string {
	out := make([]string, 0, len(kws)+1)
	for _, k := range kws {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		out = append(out, strings.ToLower(title)+" billing")
	}
	return out
}

// meta trims a description to the search-result length at a word boundary.
func meta(s string) string {
	if len(s) <= maxMetaDescription {
		return s
	}
	cut := strings.LastIndex(s[:maxMetaDescription-3], " ")
	if cut <= 0 {
		cut = maxMetaDescription - 3
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
	}
	return strings.TrimRight(s[:cut], " ,.;:") + "..."
}

// displayName title-cases names stored entirely in lower case.
func displayName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s != strings.ToLower(s) {
		return s
	}
	return cases.Title(language.English).String(s)
}

func groupDigits(n int) string {
	raw := strconv.Itoa(n)
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
