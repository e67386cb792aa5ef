package content

// knownProcedure describes a procedure code referenced by specialty definitions.
type knownProcedure struct {
	Name        string
	Description string
}

var knownProcedures = map[string]knownProcedure{
	"D0120": {"Periodic oral evaluation", "Evaluation of an established patient to determine changes in dental and medical health since the last periodic or comprehensive evaluation."},
	"D0150": {"Comprehensive oral evaluation", "Thorough evaluation and recording of the extraoral and intraoral hard and soft tissues for a new or returning patient."},
	"D1110": {"Prophylaxis - adult", "Removal of plaque, calculus and stains from the tooth structures in the permanent and transitional dentition."},
	"D2740": {"Crown - porcelain/ceramic", "Single crown restoration; frequency limits and pre-authorization rules vary by plan."},
	"93000": {"Electrocardiogram, complete", "Routine ECG with at least 12 leads including interpretation and report."},
	"93306": {"Transthoracic echocardiography, complete", "Complete TTE with spectral and color flow Doppler; medical necessity documentation is required by most payers."},
	"90834": {"Psychotherapy, 45 minutes", "Individual psychotherapy of 38 to 52 minutes with the patient and/or family member."},
	"90837": {"Psychotherapy, 60 minutes", "Individual psychotherapy of 53 minutes or more; frequently reviewed for medical necessity."},
	"97110": {"Therapeutic exercise", "Timed code billed in 15-minute units to develop strength, endurance, range of motion and flexibility."},
	"99213": {"Office visit, established patient, low complexity", "Evaluation and management visit with low medical decision making or 20 to 29 minutes total time."},
	"99214": {"Office visit, established patient, moderate complexity", "Evaluation and management visit with moderate medical decision making or 30 to 39 minutes total time."},
}

// genericProcedureDescription is used for codes missing from knownProcedures.
const genericProcedureDescription = "Coded and documented according to current {title} payer guidelines."
