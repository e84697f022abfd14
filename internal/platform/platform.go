// Package platform describes the machine a benchmark runs on.
package platform

import (
	"bufio"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Info contains platform detection information.
type Info struct {
	CPU        string   `json:"cpu"`
	Cores      int      `json:"cores"`
	GOMAXPROCS int      `json:"gomaxprocs"`
	OS         string   `json:"os"`
	Arch       string   `json:"arch"`
	Features   []string `json:"features,omitempty"`
}

// Detect detects CPU model, core count, OS, architecture and vector features.
func Detect() Info {
	info := Info{
		Cores:      runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Features:   Features(),
	}

	switch runtime.GOOS {
	case "linux":
		info.CPU = cpuModelLinux("/proc/cpuinfo")
	case "darwin":
		if runtime.GOARCH == "arm64" {
			info.CPU = "Apple Silicon"
		} else {
			info.CPU = "Intel"
		}
	default:
		info.CPU = "Unknown"
	}
	return info
}

// cpuModelLinux reads the first "model name" entry from a cpuinfo file.
func cpuModelLinux(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "Unknown"
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "model name") {
			if _, model, ok := strings.Cut(line, ":"); ok {
				return strings.TrimSpace(model)
			}
		}
	}
	return "Unknown"
}

// Features lists the vector extensions reported by the CPU. The flags are
// only populated on the matching architecture.
func Features() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	add(cpu.X86.HasSSE42, "sse4.2")
	add(cpu.X86.HasAVX, "avx")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasFMA, "fma")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasSVE, "sve")
	return out
}

// Workers resolves a requested worker count against available hardware
// parallelism: non-positive requests use every CPU, larger requests are
// capped at runtime.NumCPU.
func Workers(requested int) int {
	n := runtime.NumCPU()
	if requested <= 0 || requested > n {
		return n
	}
	return requested
}
