package attr

import (
	"os/user"
	"strconv"
	"sync"
)

// nameCache memoizes uid/gid lookups; a listing of a large directory would
// otherwise hit the passwd database once per entry.
type nameCache struct {
	mu    sync.Mutex
	names map[uint32]string
}

var (
	userCache  = nameCache{names: make(map[uint32]string)}
	groupCache = nameCache{names: make(map[uint32]string)}
)

func (c *nameCache) get(id uint32, lookup func(string) (string, error)) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name, ok := c.names[id]; ok {
		return name
	}

	idStr := strconv.FormatUint(uint64(id), 10)

	name, err := lookup(idStr)
	if err != nil || name == "" {
		name = idStr
	}

	c.names[id] = name

	return name
}

// UserName resolves a uid to a login name, falling back to the numeric id.
func UserName(uid uint32) string {
	return userCache.get(uid, func(id string) (string, error) {
		u, err := user.LookupId(id)
		if err != nil {
			return "", err
		}

		return u.Username, nil
	})
}

// GroupName resolves a gid to a group name, falling back to the numeric id.
func GroupName(gid uint32) string {
	return groupCache.get(gid, func(id string) (string, error) {
		g, err := user.LookupGroupId(id)
		if err != nil {
			return "", err
		}

		return g.Name, nil
	})
}
