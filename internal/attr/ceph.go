package attr

import "golang.org/x/sys/unix"

// Filesystem magic numbers accepted as Ceph mounts. The second value is the
// FUSE magic, which is what a ceph-fuse mount reports.
const (
	CephSuperMagic = 0x00c36400
	FuseSuperMagic = 0x65735546
)

// IsCephMagic reports whether a statfs f_type value belongs to a Ceph mount.
func IsCephMagic(fsType int64) bool {
	return fsType == CephSuperMagic || fsType == FuseSuperMagic
}

// IsCeph reports whether path lives on a filesystem expected to expose the
// recursive attributes. Returns false on any statfs failure.
func IsCeph(path string) bool {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return false
	}

	return IsCephMagic(int64(stat.Type))
}
