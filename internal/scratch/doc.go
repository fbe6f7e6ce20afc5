// Package scratch owns the transient working files of mix requests.
//
// Dir roots the shared scratch directory, Registry tracks the files one
// request acquired and deletes them on every exit path, and Sweep/Sweeper
// reclaim leftovers from crashed processes under a flock so only one process
// sweeps a shared directory at a time.
package scratch
