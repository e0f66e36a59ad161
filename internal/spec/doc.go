// Package spec provides the lowered descriptor tree and its renderings.
//
// Every other package lowers its records into spec values. spec imports
// nothing internal, so it stays the foundational layer of the module.
//
// Key design constraints:
//   - A field explicitly reset to the platform default lowers to Null and is
//     kept in the output; an unset field is absent and dropped
//   - Map preserves insertion order so endpoint fields render in declaration order
//   - Canonical JSON (RFC 8785) is used only for content hashing
package spec
