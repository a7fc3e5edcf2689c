// Package pattern compiles the path predicates shared by navigation source
// exclusion and bundle rule matching.
//
// Globs use doublestar syntax: "**" spans zero or more whole segments,
// "{a,b}" picks alternatives, and "*", "?" and "[...]" stay inside one
// segment. A glob without "/" is matched against the basename only, so
// "TODO.md" matches both "TODO.md" and "docs/TODO.md".
//
// A Set ORs globs together and also tests every ancestor directory of the
// candidate, which is how a directory entry such as "api" excludes
// "api/index.md".
//
// Rule matchers are globs too unless they start with "re:", in which case
// the rest is a JavaScript-style regex literal such as "re:/\.css$/i".
package pattern
