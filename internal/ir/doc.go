// Package ir provides the shared vocabulary of the procedure runtime: type
// tags, procedure signatures, domain entities and output rows.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps IR the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - TypeTag is a closed set; list tags are the only composite tag
//   - Signatures are immutable once built (builders hand out copies)
//   - A signature's qualified name is its global identity
//   - Fingerprints use RFC 8785 canonical JSON and SHA-256 with domain separation
package ir
