// Package stats samples process resources while a lattice job runs.
package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/process"
)

// Sample is a single reading of runtime and process resources.
type Sample struct {
	Elapsed      time.Duration `json:"elapsed"`
	HeapAlloc    uint64        `json:"heap_alloc"`
	Sys          uint64        `json:"sys"`
	RSS          uint64        `json:"rss"`
	CPUPercent   float64       `json:"cpu_percent"`
	NumGoroutine int           `json:"num_goroutine"`
	NumGC        uint32        `json:"num_gc"`
}

// Stage marks the end of a named step of a job.
type Stage struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed"`
}

type Report struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Samples []Sample  `json:"samples"`
	Stages  []Stage   `json:"stages"`

	PeakHeapAlloc  uint64  `json:"peak_heap_alloc"`
	PeakRSS        uint64  `json:"peak_rss"`
	PeakCPUPercent float64 `json:"peak_cpu_percent"`
	AvgCPUPercent  float64 `json:"avg_cpu_percent"`
	PeakGoroutines int     `json:"peak_goroutines"`
}

func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Collector samples resources on an interval until stopped.
type Collector struct {
	mu       sync.Mutex
	start    time.Time
	samples  []Sample
	stages   []Stage
	interval time.Duration
	proc     *process.Process

	stop chan struct{}
	done chan struct{}
}

func NewCollector(interval time.Duration) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process info: %w", err)
	}
	return &Collector{
		interval: interval,
		proc:     proc,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

func (c *Collector) Start() {
	c.start = time.Now()
	go c.collect()
}

func (c *Collector) collect() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.sample()
	for {
		select {
		case <-c.stop:
			c.sample()
			return
		case <-ticker.C:
			c.sample()
		}
	}
}

func (c *Collector) sample() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Sample{
		Elapsed:      time.Since(c.start),
		HeapAlloc:    mem.HeapAlloc,
		Sys:          mem.Sys,
		NumGC:        mem.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
	}
	if info, err := c.proc.MemoryInfo(); err == nil && info != nil {
		s.RSS = info.RSS
	}
	if cpu, err := c.proc.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}

	c.mu.Lock()
	c.samples = append(c.samples, s)
	c.mu.Unlock()
}

// Mark records that a stage finished now.
func (c *Collector) Mark(name string) {
	c.mu.Lock()
	c.stages = append(c.stages, Stage{Name: name, Elapsed: time.Since(c.start)})
	c.mu.Unlock()
}

// Stop ends sampling and summarizes what was collected.
func (c *Collector) Stop() *Report {
	close(c.stop)
	<-c.done

	c.mu.Lock()
	defer c.mu.Unlock()

	return summarize(c.start, time.Now(), c.samples, c.stages)
}

func summarize(start, end time.Time, samples []Sample, stages []Stage) *Report {
	r := &Report{
		Start:   start,
		End:     end,
		Samples: samples,
		Stages:  stages,
	}
	if len(samples) == 0 {
		return r
	}

	var totalCPU float64
	for _, s := range samples {
		r.PeakHeapAlloc = max(r.PeakHeapAlloc, s.HeapAlloc)
		r.PeakRSS = max(r.PeakRSS, s.RSS)
		r.PeakCPUPercent = max(r.PeakCPUPercent, s.CPUPercent)
		r.PeakGoroutines = max(r.PeakGoroutines, s.NumGoroutine)
		totalCPU += s.CPUPercent
	}
	r.AvgCPUPercent = totalCPU / float64(len(samples))
	return r
}

// WriteTo prints a human readable summary.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}

	fmt.Fprintf(cw, "Duration:        %s\n", r.Duration().Round(time.Millisecond))
	for _, s := range r.Stages {
		fmt.Fprintf(cw, "  %-14s %s\n", s.Name+":", s.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintf(cw, "Peak heap:       %s\n", humanize.IBytes(r.PeakHeapAlloc))
	fmt.Fprintf(cw, "Peak RSS:        %s\n", humanize.IBytes(r.PeakRSS))
	fmt.Fprintf(cw, "CPU peak/avg:    %.1f%% / %.1f%%\n", r.PeakCPUPercent, r.AvgCPUPercent)
	fmt.Fprintf(cw, "Peak goroutines: %d\n", r.PeakGoroutines)
	fmt.Fprintf(cw, "Samples:         %s\n", humanize.Comma(int64(len(r.Samples))))

	if err := cw.w.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// SaveToFile writes the summary to filename.
func (r *Report) SaveToFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create stats file: %w", err)
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return f.Close()
}

type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
