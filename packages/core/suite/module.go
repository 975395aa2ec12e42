package suite

// Action is a single capability a module exposes to scenario steps. It
// receives the step's arguments and returns the step output.
type Action func(args ...string) (string, error)

// Module groups related actions under a name. Scenario steps address a
// capability as "module.action".
type Module interface {
	Name() string
	Actions() map[string]Action
}
