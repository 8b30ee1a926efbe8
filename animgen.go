// Package animgen turns natural-language questions into runnable animation
// scripts. It indexes locally mirrored documentation of the animation
// library, retrieves the passages most relevant to a question, and asks a
// language model to write a scene that only uses documented symbols.
//
// This package contains domain types, interfaces and pure text helpers
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/,
// gemini/, goquery/).
package animgen
