package content

// Sub-templates interpolated per page. Placeholders: {title} display title,
// {lower} lower-cased title, {keyword} primary keyword, {site} site name,
// {place} location name.

var serviceBenefits = []Benefit{
	{"Faster {title} reimbursements", "Claims are scrubbed against payer edits before submission, so {lower} revenue arrives in days instead of weeks."},
	{"Fewer denials", "Certified specialists review every {keyword} claim for coding and eligibility errors before it leaves the building."},
	{"Transparent reporting", "Monthly dashboards show collections, denial trends and days in A/R for your {lower} workflow."},
	{"More time for patients", "{site} handles {lower} follow-up with payers so your front desk can focus on care."},
}

var specialtyBenefits = []Benefit{
	{"{title} coding expertise", "Coders trained on {lower} documentation capture every billable service at the correct level."},
	{"Payer-specific rules", "We track {lower} coverage policies for commercial plans, Medicare and Medicaid."},
	{"Higher first-pass acceptance", "Claims for {keyword} are validated against NCCI edits and payer rules before submission."},
	{"Predictable cash flow", "Consistent {lower} billing shortens the revenue cycle and stabilizes monthly collections."},
}

var defaultSteps = []Step{
	{1, "Practice assessment", "We audit your current {lower} billing process, payer mix and open A/R."},
	{2, "Onboarding and credentialing", "Our team connects to your practice management system and confirms payer enrollment."},
	{3, "Claim submission", "Charges are coded, scrubbed and submitted daily with {keyword} best practices."},
	{4, "Follow-up and reporting", "Denials are worked within 48 hours and results are reported every month."},
}

var defaultChallenges = []Challenge{
	{"Rising {lower} claim denials", "Root-cause analysis on every denial and corrected resubmission within two business days."},
	{"Changing payer requirements", "Continuous monitoring of {lower} policy updates so claims follow current rules."},
	{"Staff turnover and training gaps", "A dedicated {site} billing team that scales with your practice."},
}

var defaultFAQs = []FAQ{
	{"How does {site} handle {lower} billing?", "A dedicated team codes, submits and follows up on every {lower} claim, and you receive monthly performance reports."},
	{"How long does onboarding take?", "Most practices are fully onboarded for {lower} billing within two to three weeks."},
	{"Do you work with my EHR?", "Yes. We work inside most major EHR and practice management systems, so no migration is required."},
	{"What does {keyword} cost?", "Pricing is a percentage of collections with no setup fees, so we only succeed when you do."},
}

var defaultMetrics = []Metric{
	{"Clean claim rate", "98%"},
	{"Average days in A/R", "under 30"},
	{"Net collection rate", "96%"},
}

var specialtyCompliance = []string{
	"HIPAA-compliant handling of {lower} patient data",
	"Documentation reviewed against {title} payer policies and NCCI edits",
	"Annual coding audits by certified {lower} coders",
}

var locationBenefits = []Benefit{
	{"Local payer knowledge", "We know the commercial plans and Medicaid rules that practices in {place} bill every day."},
	{"Remote, full-service billing", "Practices across {place} get a complete billing department without adding staff."},
	{"Faster payments", "Clean claims and daily follow-up shorten reimbursement times for {place} providers."},
}

var locationFAQs = []FAQ{
	{"Do you provide medical billing services in {place}?", "Yes. {site} supports independent practices and groups throughout {place}."},
	{"Which payers do you work with in {place}?", "We bill all major commercial payers, Medicare and the state Medicaid program."},
	{"Can you take over our existing A/R?", "Yes. We work aged claims in {place} alongside new submissions from day one."},
}

var resourceFAQs = []FAQ{
	{"When is {keyword} used?", "{keyword} is reported when documentation supports the service described by the code."},
	{"What causes denials for {keyword}?", "Missing documentation, incorrect modifiers and eligibility issues are the most common reasons."},
	{"Can {site} code {keyword} for my practice?", "Yes. Our certified coders review documentation and assign the correct codes on every claim."},
}

var integrationBenefits = []Benefit{
	{"Works inside {title}", "Our billers work directly in your {title} account, so your workflow does not change."},
	{"Automatic charge capture", "Encounters documented in {title} flow to billing without double entry."},
	{"Shared visibility", "Claim status and payments post back to {title} for your team to see."},
}

var integrationFAQs = []FAQ{
	{"Does {site} support {title}?", "Yes. We bill for practices using {title} every day."},
	{"Do we need to change systems?", "No. We work inside {title}, so there is nothing to migrate."},
}

var collectionFAQs = []FAQ{
	{"Which EHR systems do you support?", "{site} works inside every system listed on this page and most other major platforms."},
	{"What if my EHR is not listed?", "Contact us; we onboard new systems regularly."},
}
