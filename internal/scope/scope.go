// Package scope guesses which equipment categories a job touches from its
// free-text fields. The result narrows which optional attribute sections
// are shown. Matching favors recall: a missed category hides a section,
// an extra one only adds an optional section.
package scope

import (
	"strings"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
)

// Category is an equipment category.
type Category string

const (
	Pole           Category = "pole"
	Transformer    Category = "transformer"
	Conductor      Category = "conductor"
	Switchgear     Category = "switchgear"
	OtherEquipment Category = "other_equipment"
)

// order is the stable presentation order of categories.
var order = []Category{Pole, Transformer, Conductor, Switchgear, OtherEquipment}

var keywords = map[Category][]string{
	Transformer:    {"xfmr", "transformer"},
	Conductor:      {"conductor", "reconductor", "wire", "cable"},
	Switchgear:     {"switch", "fuse", "recloser", "sectionalizer"},
	OtherEquipment: {"capacitor", "regulator", "streetlight", "riser"},
}

var sectionLabels = map[Category]string{
	Pole:           "Pole attributes",
	Transformer:    "Transformer attributes",
	Conductor:      "Conductor attributes",
	Switchgear:     "Switchgear attributes",
	OtherEquipment: "Other equipment attributes",
}

// Scope is a set of categories.
type Scope map[Category]struct{}

// Has reports whether c is in the scope.
func (s Scope) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

// Categories returns the members in presentation order.
func (s Scope) Categories() []Category {
	out := make([]Category, 0, len(s))
	for _, c := range order {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Detect returns the categories relevant to job. Pole is always included;
// a nil job yields {pole}.
func Detect(job *domain.Job) Scope {
	s := Scope{Pole: {}}
	if job == nil {
		return s
	}

	parts := []string{job.Description}
	for _, tag := range job.ECTags {
		parts = append(parts, tag.ItemType)
	}
	text := strings.ToLower(strings.Join(parts, " "))

	for _, c := range order {
		for _, kw := range keywords[c] {
			if strings.Contains(text, kw) {
				s[c] = struct{}{}
				break
			}
		}
	}
	return s
}

// AttributeSections returns the labels of the equipment attribute sections
// to render for s, in presentation order.
func AttributeSections(s Scope) []string {
	cats := s.Categories()
	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = sectionLabels[c]
	}
	return labels
}
