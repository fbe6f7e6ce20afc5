// Package deps reports whether the external binaries stemmix shells out to
// are installed and usable.
package deps
