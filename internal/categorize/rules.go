package categorize

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet is the on-disk shape of a taxonomy override file:
//
//	job_title:
//	  rules:
//	    - label: Individual Contributor
//	      keywords: [developer, engineer]
//	industry:
//	  rules:
//	    - label: Technology
//	      keywords: [software]
//
// A taxonomy omitted from the file keeps its built-in rules.
type RuleSet struct {
	JobTitle Taxonomy `yaml:"job_title"`
	Industry Taxonomy `yaml:"industry"`
}

// Defaults returns the built-in taxonomies.
func Defaults() RuleSet {
	return RuleSet{JobTitle: JobTitles, Industry: Industries}
}

// LoadRules reads a YAML rule file. An empty path returns Defaults.
func LoadRules(path string) (RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		return Defaults(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(b)
}

// ParseRules decodes YAML rules and fills missing taxonomies with the
// built-ins. Unknown fields are rejected so typos do not silently fall back.
func ParseRules(b []byte) (RuleSet, error) {
	var rs RuleSet
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil && !errors.Is(err, io.EOF) {
		return RuleSet{}, fmt.Errorf("decode rules: %w", err)
	}

	if len(rs.JobTitle.Rules) == 0 {
		rs.JobTitle = JobTitles
	} else if rs.JobTitle.Name == "" {
		rs.JobTitle.Name = JobTitles.Name
	}
	if len(rs.Industry.Rules) == 0 {
		rs.Industry = Industries
	} else if rs.Industry.Name == "" {
		rs.Industry.Name = Industries.Name
	}

	if err := rs.JobTitle.validate(); err != nil {
		return RuleSet{}, err
	}
	if err := rs.Industry.validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

func (t Taxonomy) validate() error {
	for i, r := range t.Rules {
		if strings.TrimSpace(string(r.Label)) == "" {
			return fmt.Errorf("%s.rules[%d]: label must not be empty", t.Name, i)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("%s.rules[%d]: %q has no keywords", t.Name, i, r.Label)
		}
		for j, kw := range r.Keywords {
			// An empty keyword is contained in every string.
			if kw == "" {
				return fmt.Errorf("%s.rules[%d].keywords[%d]: keyword must not be empty", t.Name, i, j)
			}
		}
	}
	return nil
}
