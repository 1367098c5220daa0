package service

// keyedFlight 按 key 的在途标记；重复请求直接丢弃而不是排队。
// 调用方持有所属 store 的锁。
type keyedFlight map[uint64]struct{}

func (f keyedFlight) tryAcquire(key uint64) bool {
	if _, busy := f[key]; busy {
		return false
	}
	f[key] = struct{}{}
	return true
}

func (f keyedFlight) release(key uint64) {
	delete(f, key)
}

func (f keyedFlight) busy(key uint64) bool {
	_, ok := f[key]
	return ok
}
