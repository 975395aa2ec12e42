// Package env loads dotenv files into the process environment so manifest
// variable references can fall back to them.
package env
