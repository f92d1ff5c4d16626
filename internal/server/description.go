package server

import (
	"github.com/sean-lockwood/crimson-ins-submit/schema"
	"github.com/sean-lockwood/crimson-ins-submit/submission"
	"gopkg.in/yaml.v3"
)

// descriptor is the wire shape of one form description entry.
type descriptor struct {
	Key      string   `yaml:"key"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Label    string   `yaml:"label"`
	HelpText string   `yaml:"help_text,omitempty"`
	Initial  any      `yaml:"initial,omitempty"`
	Choices  []string `yaml:"choices,omitempty,flow"`
}

var yesNoNA = []string{"Yes", "No", "N/A"}

// describeForm returns the delivery form served to clients of the given
// observatory. Order is significant and preserved end to end.
func describeForm(obs submission.Observatory) []descriptor {
	return []descriptor{
		{Key: "deliverer", Type: schema.TypeChar, Required: true,
			Label: "Name of deliverer"},
		{Key: "other_email", Type: schema.TypeChar,
			Label:    "Other e-mail addresses to notify",
			HelpText: "Comma-separated; the deliverer is always notified."},
		{Key: "delivery_date", Type: schema.TypeChar,
			Label:    "Date of delivery (YYYY-MM-DD)",
			HelpText: "Defaults to the date the submission is accepted."},
		{Key: "instrument", Type: schema.TypeTypedChoice, Required: true,
			Label:   "Instrument the delivery is for",
			Choices: submission.Instruments(obs)},
		{Key: "file_type", Type: schema.TypeChar, Required: true,
			Label: "Type of files being delivered (e.g. darkfile, biasfile)"},
		{Key: "history_updated", Type: schema.TypeBoolean, Required: true,
			Label: "Has the HISTORY section been updated?"},
		{Key: "keywords_checked", Type: schema.TypeBoolean, Required: true,
			Label: "Have the header keywords been checked?"},
		{Key: "descrip_updated", Type: schema.TypeBoolean, Required: true,
			Label: "Has the DESCRIP keyword been updated?"},
		{Key: "useafter_matches", Type: schema.TypeTypedChoice,
			Label:   "Does the USEAFTER date match the expected activation?",
			Choices: yesNoNA},
		{Key: "compliance_verified", Type: schema.TypeTypedChoice,
			Label:   "Has compliance with the data model been verified?",
			Choices: yesNoNA},
		{Key: "calpipe_version", Type: schema.TypeChar, Required: true,
			Label: "Calibration pipeline version used for testing"},
		{Key: "replacement_files", Type: schema.TypeBoolean, Required: true,
			Label: "Are these replacement files?"},
		{Key: "old_reference_files", Type: schema.TypeChar,
			Label: "Reference files being replaced, if any"},
		{Key: "replacing_badfiles", Type: schema.TypeTypedChoice,
			Label:   "Do the files replace currently bad files?",
			Choices: yesNoNA, Initial: "N/A"},
		{Key: "was_jira_issue_filed", Type: schema.TypeBoolean, Required: true,
			Label: "Was a JIRA issue filed for this delivery?"},
		{Key: "jira_issue", Type: schema.TypeChar,
			Label: "JIRA issue number, if filed"},
		{Key: "change_level", Type: schema.TypeTypedChoice, Required: true,
			Label:   "Degree to which the new files change calibration results",
			Choices: []string{"Severe", "Moderate", "Trivial"}, Initial: "Severe"},
		{Key: "table_rows_changed", Type: schema.TypeChar,
			Label: "Table rows changed, for table deliveries"},
		{Key: "modes_affected", Type: schema.TypeChar, Required: true,
			Label: "Observing modes affected by the delivery"},
		{Key: "correctness_testing", Type: schema.TypeChar, Required: true,
			Label: "Testing performed to verify correctness"},
		{Key: "additional_considerations", Type: schema.TypeChar,
			Label: "Additional considerations for the reviewers"},
		{Key: "delivery_reason", Type: schema.TypeChar, Required: true,
			Label: "Reason for the delivery"},
	}
}

// descriptionYAML renders the form description document.
func descriptionYAML(obs submission.Observatory) ([]byte, error) {
	return yaml.Marshal(describeForm(obs))
}

// descriptionSchema builds the schema the server itself validates incoming
// submissions against, from the same descriptors it serves.
func descriptionSchema(obs submission.Observatory) (*schema.Schema, error) {
	doc, err := descriptionYAML(obs)
	if err != nil {
		return nil, err
	}
	return schema.Parse(doc)
}
