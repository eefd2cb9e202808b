package compositor

import "fmt"

// EmptyInputError means the clips directory contained no eligible files.
type EmptyInputError struct {
	Dir string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no eligible clips found in %s", e.Dir)
}

// InvalidAudioError means the audio track is missing, undecodable, or has
// no positive duration.
type InvalidAudioError struct {
	Path string
	Err  error
}

func (e *InvalidAudioError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid audio %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid audio %s", e.Path)
}

func (e *InvalidAudioError) Unwrap() error { return e.Err }

// InvalidClipError identifies the specific clip that could not be decoded
// or rendered. The whole run is aborted; no output is written.
type InvalidClipError struct {
	Path string
	Err  error
}

func (e *InvalidClipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid clip %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid clip %s", e.Path)
}

func (e *InvalidClipError) Unwrap() error { return e.Err }

// OutputWriteError means the destination could not be created or written.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("cannot write output %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }
