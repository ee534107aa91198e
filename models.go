package admin

// LoginSession is an academic session the admin picks at login
type LoginSession struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Student is a row of the student browser
type Student struct {
	AdmissionNo string `json:"admissionNo"`
	Name        string `json:"name"`
	Age         int    `json:"age,omitempty"`
	Class       string `json:"class,omitempty"`
	Section     string `json:"section,omitempty"`
	Photo       string `json:"photo,omitempty"`
}

// Class groups students. The API reports either a single Section (as
// created) or the full list of Sections.
type Class struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Section  string   `json:"section,omitempty"`
	Sections []string `json:"sections,omitempty"`
}

// SectionNames returns Sections, falling back to the single Section.
func (c Class) SectionNames() []string {
	if len(c.Sections) > 0 {
		return c.Sections
	}
	if c.Section != "" {
		return []string{c.Section}
	}
	return nil
}

// HasSection reports whether section belongs to the class
func (c Class) HasSection(section string) bool {
	for _, s := range c.SectionNames() {
		if s == section {
			return true
		}
	}
	return false
}

// Teacher is a staff member managed from the console
type Teacher struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	MobileNo string `json:"mobileNo,omitempty"`
	Email    string `json:"email"`
	Photo    string `json:"photo,omitempty"`
}

// DashboardMetric is a headline figure on the dashboard home
type DashboardMetric struct {
	Title string `json:"title"`
	Value string `json:"value"`
}
