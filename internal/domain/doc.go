// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/todo). This root package
// holds sentinel errors, validation types, the caller identity (Actor), and
// the Optional wrapper used for partial-update semantics.
package domain
