// Package mixing validates mix requests and drives them through the
// fetch → mix → respond → cleanup state machine.
//
// ParseRequest turns a raw body into a Request, resolving each stem
// descriptor exactly once. Pipeline.Run downloads stems in index order into
// request-namespaced scratch files, runs one encoder invocation, and hands
// back a Result whose Close removes every scratch file the job acquired. Any
// failure cleans up before Run returns.
package mixing
