package sdrdsp

import "errors"

// Errors returned by devices, down-converters and spectrometers. Callers
// test them with errors.Is; the returned errors wrap them with context.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidChannel indicates an LO channel outside [0, Channels).
	ErrInvalidChannel = errors.New("invalid LO channel")

	// ErrInvalidInput indicates empty or malformed input samples.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBufferTooSmall indicates the destination buffer is too small.
	ErrBufferTooSmall = errors.New("output buffer too small")

	// ErrNoOutput indicates FetchOutput was called before any successful
	// Process call.
	ErrNoOutput = errors.New("no output available")

	// ErrOutOfMemory indicates a resource would exceed the device memory limit.
	ErrOutOfMemory = errors.New("device memory exhausted")

	// ErrClosed indicates use of a closed device or resource.
	ErrClosed = errors.New("closed")

	// ErrResourcesInUse indicates a device was closed with live resources.
	ErrResourcesInUse = errors.New("device resources still in use")

	// ErrCompute indicates a failure inside a compute kernel.
	ErrCompute = errors.New("compute failure")
)
