package preference

// MultiSelect is an insertion-ordered set of labels. Selecting a label
// appends it; selecting it again removes it. The zero value is empty.
type MultiSelect struct {
	labels []string
}

// NewMultiSelect selects labels in order, skipping repeats.
func NewMultiSelect(labels ...string) MultiSelect {
	var m MultiSelect
	for _, l := range labels {
		m.Add(l)
	}
	return m
}

// Toggle selects label if absent and deselects it otherwise. It returns the
// new membership.
func (m *MultiSelect) Toggle(label string) bool {
	if m.Has(label) {
		m.Remove(label)
		return false
	}
	m.labels = append(m.labels, label)
	return true
}

// Add selects label if it is not already selected.
func (m *MultiSelect) Add(label string) {
	if !m.Has(label) {
		m.labels = append(m.labels, label)
	}
}

// Remove deselects label.
func (m *MultiSelect) Remove(label string) {
	for i, l := range m.labels {
		if l == label {
			m.labels = append(m.labels[:i:i], m.labels[i+1:]...)
			return
		}
	}
}

// Has reports whether label is selected.
func (m MultiSelect) Has(label string) bool {
	for _, l := range m.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Values returns the selected labels in selection order.
func (m MultiSelect) Values() []string {
	return append([]string(nil), m.labels...)
}

// Len returns the number of selected labels.
func (m MultiSelect) Len() int {
	return len(m.labels)
}
