// Package scenario implements the test unit the suite runner executes.
//
// A Scenario is a named, grouped, dependency-declaring test whose body is an
// ordered sequence of steps. Each step invokes a module action ("shell.run",
// "env.set") recorded up front and replayed at run time against the suite's
// module map, with optional expectations on the step output:
//   - output equals/contains/matches
//   - json:<path> equals/contains/exists (gjson path syntax)
//
// Suite flags change how a passing scenario is judged: strict global state
// reports leaked environment mutations as risky, disallow-output reports
// unexamined step output as risky, and report-useless reports scenarios
// without a single expectation as risky. With coverage collection enabled a
// step event is published per step for capability-coverage observers.
package scenario
