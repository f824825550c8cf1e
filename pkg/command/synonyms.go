package command

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SynonymTable maps a search term to alternative phrasings used when scoring
// page elements. Keys and values are matched case-insensitively.
type SynonymTable map[string][]string

// DefaultSynonyms returns the built-in table. It covers common government
// service phrasings and is meant as sample configuration; deployments
// replace it via LoadSynonyms.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"tax":          {"taxes", "taxation", "revenue"},
		"taxes":        {"tax", "taxation", "revenue"},
		"car":          {"vehicle", "automobile", "motor"},
		"vehicle":      {"car", "automobile", "motor"},
		"registration": {"register", "renew", "renewal"},
		"register":     {"registration", "sign up", "signup", "enroll"},
		"license":      {"licence", "permit", "id card"},
		"benefits":     {"benefit", "assistance", "aid", "support"},
		"apply":        {"application", "start", "begin"},
		"renew":        {"renewal", "extend", "registration"},
	}
}

// LoadSynonyms reads a YAML file mapping terms to synonym lists and merges
// it over the built-in defaults. File entries replace default entries for
// the same term.
func LoadSynonyms(path string) (SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonym file: %w", err)
	}

	var loaded map[string][]string
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse synonym file: %w", err)
	}

	table := DefaultSynonyms()
	for term, alts := range loaded {
		table[strings.ToLower(term)] = alts
	}
	return table, nil
}

// lookup returns the synonyms for term, case-insensitively.
func (t SynonymTable) lookup(term string) []string {
	if t == nil {
		return nil
	}
	return t[strings.ToLower(term)]
}
