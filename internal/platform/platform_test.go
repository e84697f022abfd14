package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWorkers(t *testing.T) {
	n := runtime.NumCPU()
	tests := []struct {
		requested int
		want      int
	}{
		{0, n},
		{-3, n},
		{1, 1},
		{n, n},
		{n + 100, n},
	}
	for _, tt := range tests {
		if got := Workers(tt.requested); got != tt.want {
			t.Errorf("Workers(%d) = %d, expected %d", tt.requested, got, tt.want)
		}
	}
}

func TestCPUModelLinux(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpuinfo")
	content := "processor\t: 0\nvendor_id\t: GenuineIntel\nmodel name\t: Test CPU @ 3.00GHz\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := cpuModelLinux(path); got != "Test CPU @ 3.00GHz" {
		t.Errorf("Expected model name, got %q", got)
	}
	if got := cpuModelLinux(filepath.Join(t.TempDir(), "missing")); got != "Unknown" {
		t.Errorf("Expected Unknown for missing file, got %q", got)
	}
}

func TestDetect(t *testing.T) {
	info := Detect()
	if info.Cores != runtime.NumCPU() || info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Errorf("Unexpected platform info: %+v", info)
	}
	if info.CPU == "" {
		t.Error("Expected a CPU description")
	}
}

// TestCPUTimeMonotonic verifies CPU time does not go backwards across work
func TestCPUTimeMonotonic(t *testing.T) {
	before := CPUTime()
	sum := 0
	for i := 0; i < 5_000_000; i++ {
		sum += i
	}
	_ = sum
	if after := CPUTime(); after < before {
		t.Errorf("CPU time went backwards: %v -> %v", before, after)
	}
}
