package mixing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/whomstve123/mixing-api/internal/scratch"
	"github.com/whomstve123/mixing-api/internal/services"
)

// Stage names a step of the mix state machine. Stages run strictly in order;
// cleanup is reached from responding on success and from failing otherwise.
type Stage string

const (
	StageValidating Stage = "validating"
	StageFetching   Stage = "fetching"
	StageMixing     Stage = "mixing"
	StageResponding Stage = "responding"
	StageCleanup    Stage = "cleanup"
	StageFailing    Stage = "failing"
)

// ContentType is the media type of every successful mix response.
const ContentType = "audio/mpeg"

// Job is the in-memory record of one mix. It is never persisted.
type Job struct {
	RequestID string
	Inputs    []string
	Output    string
	Volumes   []float64
}

// OutputFilename names the encoder's scratch output for a request.
func OutputFilename(requestID string) string {
	return requestID + "_output.mp3"
}

// AttachmentFilename is the filename offered to the client.
func AttachmentFilename(requestID string) string {
	return fmt.Sprintf("mixed_%s.mp3", requestID)
}

// ContentDisposition returns the attachment header value for a request.
func ContentDisposition(requestID string) string {
	return fmt.Sprintf("attachment; filename=%q", AttachmentFilename(requestID))
}

// Result holds the encoded mix open for streaming. Close must be called once
// the stream has drained or failed; it removes every scratch file of the job.
type Result struct {
	Job  Job
	Size int64

	file     *os.File
	registry *scratch.Registry
	release  func()
	once     sync.Once
	cleanup  scratch.CleanupResult
}

// Stream copies the encoded mix to w. Write failures wrap services.ErrStream.
func (r *Result) Stream(w io.Writer) (int64, error) {
	if r == nil || r.file == nil {
		return 0, services.Wrap(services.ErrStream, string(StageResponding), "stream", "no output to stream", nil)
	}
	written, err := io.Copy(w, r.file)
	if err != nil {
		return written, services.Wrap(services.ErrStream, string(StageResponding), "stream", "copy to client", err)
	}
	return written, nil
}

// Close releases the output handle and runs cleanup. Later calls return the
// first call's result.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var closeErr error
	r.once.Do(func() {
		if r.file != nil {
			if err := r.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
				closeErr = err
			}
		}
		if r.registry != nil {
			r.cleanup = r.registry.Cleanup()
		}
		if r.release != nil {
			r.release()
		}
	})
	return closeErr
}

// Cleanup reports what Close removed.
func (r *Result) Cleanup() scratch.CleanupResult {
	return r.cleanup
}
