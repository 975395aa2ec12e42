// Package builtin provides the functions manifest variable references can
// call, like ${uuid()} or ${random(1, 100)}.
//
// Available functions:
//   - now(): current UTC time in RFC 3339
//   - date(layout): current UTC date, Go reference layout
//   - timestamp(): current Unix timestamp
//   - uuid(): random UUID v4
//   - random(min, max): random integer in range
//   - randomString(length): random alphanumeric string
//   - base64(value): base64-encode a string
//   - sha256(value): hex SHA-256 digest of a string
package builtin
