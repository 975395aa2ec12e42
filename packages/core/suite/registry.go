package suite

// Registry is the ordered collection of tests for one suite run, together
// with the configuration the execution loop propagates to each test. It is
// built once before the run and is not safe for concurrent mutation.
type Registry struct {
	tests   []Test
	modules map[string]Module

	reportUselessTests bool
	backupGlobals      bool
	strictGlobalState  bool
	disallowOutput     bool
	collectCoverage    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a test to the collection. Nil tests are ignored.
func (r *Registry) Add(t Test) {
	if t == nil {
		return
	}
	r.tests = append(r.tests, t)
}

// Tests returns a copy of the collection in its current order.
func (r *Registry) Tests() []Test {
	out := make([]Test, len(r.tests))
	copy(out, r.tests)
	return out
}

// SetTests replaces the collection. The previous order is discarded; the
// dependency resolver uses this to install the execution order.
func (r *Registry) SetTests(tests []Test) {
	r.tests = tests
}

// Count returns the number of collected tests.
func (r *Registry) Count() int {
	return len(r.tests)
}

// Modules returns the capability modules available to tests in this suite.
func (r *Registry) Modules() map[string]Module {
	return r.modules
}

// SetModules installs the capability modules keyed by module name.
func (r *Registry) SetModules(modules map[string]Module) {
	r.modules = modules
}

func (r *Registry) SetReportUselessTests(v bool) { r.reportUselessTests = v }
func (r *Registry) ReportUselessTests() bool     { return r.reportUselessTests }

func (r *Registry) SetBackupGlobals(v bool) { r.backupGlobals = v }
func (r *Registry) BackupGlobals() bool     { return r.backupGlobals }

func (r *Registry) SetStrictGlobalState(v bool) { r.strictGlobalState = v }
func (r *Registry) StrictGlobalState() bool     { return r.strictGlobalState }

func (r *Registry) SetDisallowOutput(v bool) { r.disallowOutput = v }
func (r *Registry) DisallowOutput() bool     { return r.disallowOutput }

func (r *Registry) SetCollectCoverage(v bool) { r.collectCoverage = v }
func (r *Registry) CollectCoverage() bool     { return r.collectCoverage }
