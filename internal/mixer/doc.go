// Package mixer runs the single ffmpeg invocation that applies per-stem gain,
// sums every input with duration=longest and no normalisation, and encodes
// the result as a 192 kbit/s MP3.
package mixer
