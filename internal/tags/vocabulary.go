// Package tags manages the per-account tag vocabulary the classifier
// validates against. The vocabulary is derived from the account's knowledge
// articles, optionally overridden by a YAML file, and cached by account with
// an explicit invalidation point.
package tags

import (
	"fmt"
	"sort"
)

// Vocabulary is the closed set of classification tags valid for one account.
type Vocabulary struct {
	tags []string
	set  map[string]bool
}

// NewVocabulary builds a vocabulary from a tag list. Duplicates are dropped
// and the tag order is normalized to sorted.
func NewVocabulary(tags []string) *Vocabulary {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}

	unique := make([]string, 0, len(set))
	for tag := range set {
		unique = append(unique, tag)
	}
	sort.Strings(unique)

	return &Vocabulary{tags: unique, set: set}
}

// Tags returns the sorted tag list.
func (v *Vocabulary) Tags() []string {
	return v.tags
}

// Contains reports whether tag is part of the closed set.
func (v *Vocabulary) Contains(tag string) bool {
	return v.set[tag]
}

// Len returns the number of tags in the vocabulary.
func (v *Vocabulary) Len() int {
	return len(v.tags)
}

// Filter splits candidate tags into those inside the closed set and those
// outside it, preserving candidate order.
func (v *Vocabulary) Filter(candidates []string) (valid, dropped []string) {
	for _, tag := range candidates {
		if v.set[tag] {
			valid = append(valid, tag)
		} else {
			dropped = append(dropped, tag)
		}
	}
	return valid, dropped
}

// Validate returns an error if any candidate tag is outside the closed set.
func (v *Vocabulary) Validate(candidates []string) error {
	_, dropped := v.Filter(candidates)
	if len(dropped) > 0 {
		return fmt.Errorf("tags not in vocabulary: %v", dropped)
	}
	return nil
}
