package storage

import (
	"fmt"
	"io"
	"sync"

	"github.com/shashiranjanraj/feria/config"
)

var (
	mu     sync.RWMutex
	disks  = map[string]Disk{}
	active string
)

// Connect boots the configured disks. The local driver is always
// available; the s3 driver is added when S3_BUCKET is set. Call once at
// startup, before any handler touches storage.
func Connect() {
	mu.Lock()
	defer mu.Unlock()

	active = config.Get("STORAGE_DISK", "local")
	disks["local"] = newLocalDisk()

	if config.Get("S3_BUCKET", "") != "" {
		d, err := newS3Disk()
		if err != nil {
			fmt.Printf("⚠️  storage: s3 disk disabled: %v\n", err)
		} else {
			disks["s3"] = d
		}
	}
}

// Use returns the named disk, panicking when it was never configured.
// Misconfiguration should surface at boot, not as a nil deref later.
func Use(name string) Disk {
	mu.RLock()
	d, ok := disks[name]
	mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("storage: disk %q is not configured", name))
	}
	return d
}

// Default returns the disk selected by STORAGE_DISK.
func Default() Disk { return Use(active) }

// Register plugs in a custom Disk. Intended for tests and boot-time
// extensions.
func Register(name string, d Disk) {
	mu.Lock()
	disks[name] = d
	mu.Unlock()
}

// Convenience proxies to the default disk.

func Put(key string, r io.Reader) error     { return Default().Put(key, r) }
func Get(key string) (io.ReadCloser, error) { return Default().Get(key) }
func Exists(key string) bool                { return Default().Exists(key) }
func Delete(key string) error               { return Default().Delete(key) }
func URL(key string) string                 { return Default().URL(key) }
