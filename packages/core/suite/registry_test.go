package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
)

// stubTest is a minimal Test for registry and signature tests.
type stubTest struct {
	meta *Metadata
	sig  string
	deps []string
}

func newStub(name string, groups ...string) *stubTest {
	m := NewMetadata(name)
	for _, g := range groups {
		m.AddGroup(g)
	}
	return &stubTest{meta: m}
}

func (s *stubTest) Name() string               { return s.meta.Name() }
func (s *stubTest) Groups() []string           { return s.meta.Groups() }
func (s *stubTest) Metadata() *Metadata        { return s.meta }
func (s *stubTest) SetEventSink(event.Sink)    {}
func (s *stubTest) SetReportUselessTests(bool) {}
func (s *stubTest) SetCollectCoverage(bool)    {}
func (s *stubTest) Run(ResultAggregator)       {}

// signedStub also implements Signer.
type signedStub struct {
	stubTest
}

func (s *signedStub) Signature() string { return s.sig }

func TestRegistry_Add(t *testing.T) {
	t.Run("appends in order", func(t *testing.T) {
		r := NewRegistry()
		a := newStub("a")
		b := newStub("b")
		r.Add(a)
		r.Add(b)

		require.Equal(t, 2, r.Count())
		tests := r.Tests()
		assert.Equal(t, "a", tests[0].Name())
		assert.Equal(t, "b", tests[1].Name())
	})

	t.Run("ignores nil", func(t *testing.T) {
		r := NewRegistry()
		r.Add(nil)
		assert.Equal(t, 0, r.Count())
	})
}

func TestRegistry_Tests_ReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Add(newStub("a"))
	r.Add(newStub("b"))

	tests := r.Tests()
	tests[0] = newStub("mutated")

	assert.Equal(t, "a", r.Tests()[0].Name())
}

func TestRegistry_SetTests(t *testing.T) {
	r := NewRegistry()
	r.Add(newStub("a"))
	r.Add(newStub("b"))

	r.SetTests([]Test{newStub("c")})

	require.Equal(t, 1, r.Count())
	assert.Equal(t, "c", r.Tests()[0].Name())
}

func TestRegistry_ConfigFlags(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.ReportUselessTests())
	assert.False(t, r.BackupGlobals())
	assert.False(t, r.StrictGlobalState())
	assert.False(t, r.DisallowOutput())
	assert.False(t, r.CollectCoverage())

	r.SetReportUselessTests(true)
	r.SetBackupGlobals(true)
	r.SetStrictGlobalState(true)
	r.SetDisallowOutput(true)
	r.SetCollectCoverage(true)

	assert.True(t, r.ReportUselessTests())
	assert.True(t, r.BackupGlobals())
	assert.True(t, r.StrictGlobalState())
	assert.True(t, r.DisallowOutput())
	assert.True(t, r.CollectCoverage())
}

func TestRegistry_Modules(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Modules())

	mods := map[string]Module{"shell": nil}
	r.SetModules(mods)
	assert.Equal(t, mods, r.Modules())
}

func TestSignatureOf(t *testing.T) {
	t.Run("defaults to name", func(t *testing.T) {
		assert.Equal(t, "login", SignatureOf(newStub("login")))
	})

	t.Run("prefers explicit signature", func(t *testing.T) {
		s := &signedStub{}
		s.meta = NewMetadata("login flow")
		s.sig = "auth.login"
		assert.Equal(t, "auth.login", SignatureOf(s))
	})
}

func TestOutcomeErrors(t *testing.T) {
	assert.Equal(t, "db down", (&SkippedError{Reason: "db down"}).Error())
	assert.Equal(t, "test skipped", (&SkippedError{}).Error())
	assert.Equal(t, "wip", (&IncompleteError{Reason: "wip"}).Error())
	assert.Equal(t, "test incomplete", (&IncompleteError{}).Error())
}
