// Package roster filters the student browser.
package roster

import (
	"strings"

	admin "github.com/goliatone/go-school-admin"
)

// Filter narrows a student list. Empty fields match everything.
type Filter struct {
	Name        string `query:"name" form:"name"`
	AdmissionNo string `query:"admissionNo" form:"admissionNo"`
	Class       string `query:"class" form:"class"`
	Section     string `query:"section" form:"section"`
}

// Apply returns the students matching every set field. Name and admission
// number match case-insensitive substrings as typed, surrounding spaces
// included. Class and section match exactly.
func (f Filter) Apply(students []admin.Student) []admin.Student {
	name := strings.ToLower(f.Name)
	admissionNo := strings.ToLower(f.AdmissionNo)

	out := make([]admin.Student, 0, len(students))
	for _, s := range students {
		if name != "" && !strings.Contains(strings.ToLower(s.Name), name) {
			continue
		}
		if admissionNo != "" && !strings.Contains(strings.ToLower(s.AdmissionNo), admissionNo) {
			continue
		}
		if f.Class != "" && s.Class != f.Class {
			continue
		}
		if f.Section != "" && s.Section != f.Section {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Reconcile drops a Section that does not belong to the selected Class and
// returns the sections offered for that class.
func (f *Filter) Reconcile(classes []admin.Class) []string {
	if f.Class == "" {
		f.Section = ""
		return nil
	}

	selected, ok := findClass(classes, f.Class)
	if !ok {
		f.Section = ""
		return nil
	}

	if f.Section != "" && !selected.HasSection(f.Section) {
		f.Section = ""
	}
	return selected.SectionNames()
}

// IsZero reports whether no field is set
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Clear resets every field.
func (f *Filter) Clear() {
	*f = Filter{}
}

func findClass(classes []admin.Class, name string) (admin.Class, bool) {
	for _, c := range classes {
		if c.Name == name {
			return c, true
		}
	}
	return admin.Class{}, false
}

// ClassNames lists class names once each, in the order the API sent them.
func ClassNames(classes []admin.Class) []string {
	seen := make(map[string]struct{}, len(classes))
	names := make([]string, 0, len(classes))
	for _, c := range classes {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		names = append(names, c.Name)
	}
	return names
}
