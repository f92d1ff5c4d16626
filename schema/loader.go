package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gopkg.in/yaml.v3"
)

// DescriptionPath is the fixed relative path of the form description
// document on every CRIMSON server.
const DescriptionPath = "submission_form/description.yml"

// descriptor mirrors one entry of the wire document. The "key" wrapper
// field becomes the schema mapping key.
type descriptor struct {
	Key      string   `yaml:"key"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Label    string   `yaml:"label"`
	HelpText string   `yaml:"help_text"`
	Initial  any      `yaml:"initial"`
	Choices  []string `yaml:"choices"`
}

// Load fetches the form description from baseURL and converts it into a
// Schema. The base URL is explicit configuration; there is no package-level
// endpoint table. A nil client falls back to http.DefaultClient.
func Load(ctx context.Context, client *http.Client, baseURL string) (*Schema, error) {
	if client == nil {
		client = http.DefaultClient
	}
	u, err := url.JoinPath(baseURL, DescriptionPath)
	if err != nil {
		return nil, &UnavailableError{URL: baseURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &UnavailableError{URL: u, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &UnavailableError{URL: u, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{URL: u, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{URL: u, Err: err}
	}
	s, err := Parse(body)
	if err != nil {
		var unavailable *UnavailableError
		if errors.As(err, &unavailable) {
			unavailable.URL = u
		}
		return nil, err
	}
	return s, nil
}

// Parse converts a form description document into a Schema, preserving the
// document's field order.
func Parse(doc []byte) (*Schema, error) {
	var descriptors []descriptor
	if err := yaml.Unmarshal(doc, &descriptors); err != nil {
		return nil, &UnavailableError{Err: err}
	}
	if len(descriptors) == 0 {
		return nil, &UnavailableError{Err: errors.New("empty form description")}
	}

	defs := make([]FieldDefinition, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Key == "" {
			return nil, &UnavailableError{Err: errMissingKey}
		}
		if d.Type == "" {
			return nil, &UnavailableError{Err: fmt.Errorf("field %q has no type", d.Key)}
		}
		kind, ok := wireKinds[d.Type]
		if !ok {
			return nil, &UnknownFieldTypeError{Key: d.Key, Type: d.Type}
		}
		defs = append(defs, FieldDefinition{
			Key:      d.Key,
			Kind:     kind,
			Required: d.Required,
			Label:    d.Label,
			HelpText: d.HelpText,
			Choices:  d.Choices,
			Initial:  d.Initial,
		})
	}
	return New(defs...)
}
