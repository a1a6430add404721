package sdrdsp

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	simdcpu "github.com/tphakala/simd/cpu"
	"golang.org/x/sys/cpu"
)

// ResourceKind identifies what a device resource is.
type ResourceKind int

const (
	// ResourceDDC is a down-converter created by NewDDC.
	ResourceDDC ResourceKind = iota
	// ResourceWaterfall is a spectrometer created by NewSpectrometer.
	ResourceWaterfall
)

// String returns the resource kind name.
func (k ResourceKind) String() string {
	switch k {
	case ResourceDDC:
		return "ddc"
	case ResourceWaterfall:
		return "waterfall"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// Device is the compute context every resource is created on. It owns the
// worker slots shared by all resources and the memory budget they reserve
// their buffers from. A Device is safe for concurrent use.
type Device struct {
	mu        sync.Mutex
	limit     int64
	inUse     int64
	resources map[uuid.UUID]resource
	closed    bool

	workers int
	slots   chan struct{}
}

type resource struct {
	kind  ResourceKind
	bytes int64
}

// DeviceInfo describes a device and the host SIMD support.
type DeviceInfo struct {
	Workers       int
	MemoryLimit   int64 // 0 means unlimited
	MemoryInUse   int64
	LiveResources int
	SIMD          string // kernel selection reported by the SIMD library
	AVX2          bool
	FMA           bool
	ASIMD         bool
}

// NewDevice creates a device. A nil config selects defaults.
func NewDevice(config *DeviceConfig) (*Device, error) {
	if config == nil {
		config = &DeviceConfig{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	workers := config.workers()
	return &Device{
		limit:     config.MemoryLimit,
		resources: make(map[uuid.UUID]resource),
		workers:   workers,
		slots:     make(chan struct{}, workers),
	}, nil
}

// reserve registers a resource and charges its footprint to the budget.
func (d *Device) reserve(kind ResourceKind, bytes int64) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return uuid.Nil, fmt.Errorf("device: %w", ErrClosed)
	}
	if d.limit > 0 && d.inUse+bytes > d.limit {
		return uuid.Nil, fmt.Errorf("%w: %s needs %d bytes, %d of %d in use",
			ErrOutOfMemory, kind, bytes, d.inUse, d.limit)
	}

	id := uuid.New()
	d.resources[id] = resource{kind: kind, bytes: bytes}
	d.inUse += bytes
	return id, nil
}

// release returns a resource's reservation. Unknown IDs are ignored.
func (d *Device) release(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r, ok := d.resources[id]; ok {
		d.inUse -= r.bytes
		delete(d.resources, id)
	}
}

// acquireWorkers blocks for one worker slot, then takes up to want−1 more
// if they are free. It returns the number of slots held.
func (d *Device) acquireWorkers(want int) int {
	d.slots <- struct{}{}
	held := 1
	for held < want {
		select {
		case d.slots <- struct{}{}:
			held++
		default:
			return held
		}
	}
	return held
}

// releaseWorkers returns slots taken by acquireWorkers.
func (d *Device) releaseWorkers(n int) {
	for range n {
		<-d.slots
	}
}

// Workers returns the number of worker slots.
func (d *Device) Workers() int {
	return d.workers
}

// MemoryInUse returns the bytes currently reserved by live resources.
func (d *Device) MemoryInUse() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inUse
}

// LiveResources returns the number of resources not yet closed.
func (d *Device) LiveResources() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.resources)
}

// Info returns a snapshot of the device state.
func (d *Device) Info() DeviceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	return DeviceInfo{
		Workers:       d.workers,
		MemoryLimit:   d.limit,
		MemoryInUse:   d.inUse,
		LiveResources: len(d.resources),
		SIMD:          simdcpu.Info(),
		AVX2:          cpu.X86.HasAVX2,
		FMA:           cpu.X86.HasFMA,
		ASIMD:         cpu.ARM64.HasASIMD,
	}
}

// Close marks the device closed; later resource constructors fail with
// ErrClosed. If resources are still live it returns ErrResourcesInUse and
// they remain usable until closed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("device: %w", ErrClosed)
	}
	d.closed = true

	if n := len(d.resources); n > 0 {
		return fmt.Errorf("%w: %d live", ErrResourcesInUse, n)
	}
	return nil
}
