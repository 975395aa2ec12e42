package suite

// Metadata carries per-test execution state the loop reads before the body
// runs. A test blocked by metadata produces lifecycle events but its body
// never executes.
type Metadata struct {
	name       string
	groups     []string
	skip       *string
	incomplete *string
}

// NewMetadata returns metadata for a named test.
func NewMetadata(name string) *Metadata {
	return &Metadata{name: name}
}

// Name returns the test name the metadata belongs to.
func (m *Metadata) Name() string {
	return m.name
}

// Groups returns the group tags used for event fanout.
func (m *Metadata) Groups() []string {
	return m.groups
}

// AddGroup tags the test with a group. Duplicates are kept out.
func (m *Metadata) AddGroup(group string) {
	for _, g := range m.groups {
		if g == group {
			return
		}
	}
	m.groups = append(m.groups, group)
}

// SetGroups replaces the group list.
func (m *Metadata) SetGroups(groups []string) {
	m.groups = groups
}

// MarkSkipped blocks the test with a skip reason. An empty reason still
// blocks.
func (m *Metadata) MarkSkipped(reason string) {
	m.skip = &reason
}

// MarkIncomplete blocks the test with an incomplete reason. An empty reason
// still blocks.
func (m *Metadata) MarkIncomplete(reason string) {
	m.incomplete = &reason
}

// Skipped reports whether a skip marker is set.
func (m *Metadata) Skipped() bool {
	return m.skip != nil
}

// Incomplete reports whether an incomplete marker is set.
func (m *Metadata) Incomplete() bool {
	return m.incomplete != nil
}

// Blocked reports whether the test must not execute. Both markers may be set
// at once; the loop records both outcomes.
func (m *Metadata) Blocked() bool {
	return m.skip != nil || m.incomplete != nil
}

// SkipReason returns the skip reason, or "" when not skipped.
func (m *Metadata) SkipReason() string {
	if m.skip == nil {
		return ""
	}
	return *m.skip
}

// IncompleteReason returns the incomplete reason, or "" when not incomplete.
func (m *Metadata) IncompleteReason() string {
	if m.incomplete == nil {
		return ""
	}
	return *m.incomplete
}
