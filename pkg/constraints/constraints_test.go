package constraints

import (
	"testing"

	"github.com/driveburn/driveburn/pkg/store"
)

func TestHasLargeEnoughStorage(t *testing.T) {
	p := New()

	tests := []struct {
		name  string
		drive store.Drive
		image *store.Image
		want  bool
	}{
		{"nil image never fits", store.Drive{Size: 64e9}, nil, false},
		{"exact fit", store.Drive{Size: 4e9}, &store.Image{Size: 4e9}, true},
		{"too small", store.Drive{Size: 4e9}, &store.Image{Size: 8e9}, false},
		{"plenty of room", store.Drive{Size: 64e9}, &store.Image{Size: 8e9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.HasLargeEnoughStorage(tt.drive, tt.image); got != tt.want {
				t.Errorf("HasLargeEnoughStorage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasLargeEnoughStorage_AlignmentMargin(t *testing.T) {
	p := &Policy{AlignmentMargin: 1e6}

	if p.HasLargeEnoughStorage(store.Drive{Size: 4e9}, &store.Image{Size: 4e9}) {
		t.Error("margin must be reserved on top of the image size")
	}
	if !p.HasLargeEnoughStorage(store.Drive{Size: 4e9 + 1e6}, &store.Image{Size: 4e9}) {
		t.Error("drive covering image plus margin must fit")
	}
}

func TestIsSizeRecommended(t *testing.T) {
	p := New()

	tests := []struct {
		name  string
		drive store.Drive
		image *store.Image
		want  bool
	}{
		{"nil image", store.Drive{Size: 64e9}, nil, false},
		{"meets recommendation", store.Drive{Size: 8e9}, &store.Image{Size: 2e9, RecommendedDriveSize: 8e9}, true},
		{"below recommendation", store.Drive{Size: 4e9}, &store.Image{Size: 2e9, RecommendedDriveSize: 8e9}, false},
		{"no recommendation falls back to size", store.Drive{Size: 2e9}, &store.Image{Size: 2e9}, true},
		{"no recommendation and too small", store.Drive{Size: 1e9}, &store.Image{Size: 2e9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsSizeRecommended(tt.drive, tt.image); got != tt.want {
				t.Errorf("IsSizeRecommended() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDriveValid(t *testing.T) {
	p := New()
	image := &store.Image{Path: "/home/user/images/os.img", Size: 2e9}

	tests := []struct {
		name  string
		drive store.Drive
		image *store.Image
		want  bool
	}{
		{"nil image", store.Drive{Device: "/dev/sda", Size: 64e9}, nil, false},
		{"good target", store.Drive{Device: "/dev/sda", Size: 64e9}, image, true},
		{"write-protected", store.Drive{Device: "/dev/sda", Size: 64e9, Protected: true}, image, false},
		{"too small", store.Drive{Device: "/dev/sda", Size: 1e9}, image, false},
		{
			"image lives on the drive",
			store.Drive{Device: "/dev/sdb", Size: 64e9},
			&store.Image{Path: "/dev/sdb", Size: 2e9},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsDriveValid(tt.drive, tt.image); got != tt.want {
				t.Errorf("IsDriveValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSourceDrivePrefixBoundary(t *testing.T) {
	drive := store.Drive{Device: "/dev/sd", Size: 64e9}
	image := &store.Image{Path: "/dev/sdz1/os.img", Size: 1e9}

	// /dev/sdz1 is not on /dev/sd; a plain prefix match would say it is.
	if !New().IsDriveValid(drive, image) {
		t.Error("prefix match must respect path boundaries")
	}
}

func TestIsSystemDrive(t *testing.T) {
	p := New()
	if !p.IsSystemDrive(store.Drive{Device: "/dev/nvme0n1", System: true}) {
		t.Error("flagged drive must be reported as system")
	}
	if p.IsSystemDrive(store.Drive{Device: "/dev/sda"}) {
		t.Error("unflagged drive must not be reported as system")
	}
}
