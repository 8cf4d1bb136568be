//go:build linux

package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/store"
)

const sectorSize = 512

// SysfsScanner enumerates block devices from /sys/block. Virtual
// devices (loop, ram, device-mapper, zram) are skipped.
type SysfsScanner struct {
	sysBlock string
	mounts   string
}

// NewScanner returns the sysfs-backed scanner on Linux.
func NewScanner() (Scanner, error) {
	return &SysfsScanner{
		sysBlock: "/sys/block",
		mounts:   "/proc/mounts",
	}, nil
}

// List reads /sys/block and returns one Drive per physical device.
func (s *SysfsScanner) List(ctx context.Context) ([]store.Drive, error) {
	entries, err := os.ReadDir(s.sysBlock)
	if err != nil {
		slog.Error("drive_scan_sysfs_failed", "path", s.sysBlock, "error", err)
		return nil, errors.Wrap(err, "failed to read sysfs block devices")
	}

	systemDevices := s.systemDevices()

	drives := []store.Drive{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if isVirtualDevice(name) {
			continue
		}

		device := "/dev/" + name
		drive := store.Drive{
			Device:    device,
			Size:      s.deviceSize(name),
			Protected: s.readFlag(name, "ro"),
			System:    systemDevices[device],
		}
		drives = append(drives, drive)
	}

	slog.Debug("drive_scan_complete", "drive_count", len(drives))
	return drives, nil
}

func isVirtualDevice(name string) bool {
	for _, prefix := range []string{"loop", "ram", "dm-", "zram", "md"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (s *SysfsScanner) deviceSize(name string) int64 {
	raw, err := os.ReadFile(filepath.Join(s.sysBlock, name, "size"))
	if err != nil {
		return 0
	}
	sectors, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0
	}
	return sectors * sectorSize
}

func (s *SysfsScanner) readFlag(name, file string) bool {
	raw, err := os.ReadFile(filepath.Join(s.sysBlock, name, file))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(raw)) == "1"
}

// systemDevices returns the devices backing the root and boot mounts.
// Partition suffixes are stripped so /dev/sda2 marks /dev/sda.
func (s *SysfsScanner) systemDevices() map[string]bool {
	devices := map[string]bool{}

	raw, err := os.ReadFile(s.mounts)
	if err != nil {
		slog.Warn("drive_scan_mounts_unreadable", "path", s.mounts, "error", err)
		return devices
	}

	for _, line := range strings.Split(string(raw), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "/dev/") {
			continue
		}
		mountPoint := fields[1]
		if mountPoint != "/" && mountPoint != "/boot" && !strings.HasPrefix(mountPoint, "/boot/") {
			continue
		}
		devices[stripPartition(fields[0])] = true
	}
	return devices
}

func stripPartition(device string) string {
	if strings.Contains(device, "nvme") || strings.Contains(device, "mmcblk") {
		// nvme0n1p2 -> nvme0n1
		if i := strings.LastIndex(device, "p"); i > 0 {
			if _, err := strconv.Atoi(device[i+1:]); err == nil {
				return device[:i]
			}
		}
		return device
	}
	// sda2 -> sda
	return strings.TrimRight(device, "0123456789")
}
