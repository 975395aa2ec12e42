// Package modules ships the built-in capability modules scenario steps can
// invoke.
//
// Available modules and actions:
//   - shell: run (execute a command line via sh -c, combined output)
//   - env: set, unset, get
//   - fs: write, read, mkdir, remove, exists
//   - wait: sleep, for_http (poll a URL until it returns a status)
//
// Builtin wires all of them against a working directory; custom modules
// implement the suite Module interface and join the same map.
package modules
